package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mensahub/mensahub/app/mensa"
)

// IngestMenuTask runs the full fetch → normalize → reconcile pipeline for one
// venue and the current serving date.
type IngestMenuTask struct {
	Task
	Location     mensa.Location
	client       MenuClientInterface
	mealRepo     MealStoreInterface
	locationRepo LocationStoreInterface
	now          func() time.Time
}

func NewIngestMenuTask(location mensa.Location, client MenuClientInterface,
	mealRepo MealStoreInterface, locationRepo LocationStoreInterface) *IngestMenuTask {
	return &IngestMenuTask{
		Task:         NewTask(TaskTypeIngestMenu, location.ID),
		Location:     location,
		client:       client,
		mealRepo:     mealRepo,
		locationRepo: locationRepo,
		now:          time.Now,
	}
}

func (t *IngestMenuTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// time.Local carries the venues' civil timezone (set from config).
	now := t.now().In(time.Local)
	if mensa.IsWeekend(now) {
		slog.Debug("Weekend, no meals served", "location", t.LocationID)
		return nil
	}

	date := now.Format("2006-01-02")

	canteen, err := t.client.FetchMenu(ctx, t.Location)
	if err != nil {
		return fmt.Errorf("failed to fetch menu: %w", err)
	}

	meals := mensa.ExtractMealsForDate(canteen, date, t.Location.ID)

	if err := t.mealRepo.UpsertMeals(meals); err != nil {
		return fmt.Errorf("failed to reconcile meals: %w", err)
	}

	t.updateOpeningHours(ctx)

	slog.Info("Task completed",
		"type", "IngestMenu",
		"location", t.LocationID,
		"date", date,
		"duration", t.GetDuration(),
		"meals", len(meals))

	return nil
}

// updateOpeningHours refreshes the venue's opening hours from its meta
// document. Best effort; a failure never fails the menu ingestion.
func (t *IngestMenuTask) updateOpeningHours(ctx context.Context) {
	times, err := t.client.FetchMeta(ctx, t.Location)
	if err != nil {
		slog.Warn("Failed to fetch meta document", "location", t.LocationID, "error", err)
		return
	}

	encoded, err := json.Marshal(times)
	if err != nil {
		slog.Warn("Failed to encode opening hours", "location", t.LocationID, "error", err)
		return
	}

	if err := t.locationRepo.UpdateOpeningHours(t.Location.ID, string(encoded)); err != nil {
		slog.Warn("Failed to store opening hours", "location", t.LocationID, "error", err)
	}
}

package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mensahub/mensahub/app/mensa"
)

type fakeMenuClient struct {
	canteen   *mensa.Canteen
	meta      *mensa.OpeningTimes
	menuErr   error
	metaErr   error
	menuCalls int
	metaCalls int
}

func (c *fakeMenuClient) FetchMenu(ctx context.Context, location mensa.Location) (*mensa.Canteen, error) {
	c.menuCalls++
	return c.canteen, c.menuErr
}

func (c *fakeMenuClient) FetchMeta(ctx context.Context, location mensa.Location) (*mensa.OpeningTimes, error) {
	c.metaCalls++
	return c.meta, c.metaErr
}

type fakeMealStore struct {
	upserted  [][]mensa.Meal
	upsertErr error
}

func (s *fakeMealStore) UpsertMeals(meals []mensa.Meal) error {
	s.upserted = append(s.upserted, meals)
	return s.upsertErr
}

type fakeLocationStore struct {
	openingHours map[string]string
}

func (s *fakeLocationStore) UpdateOpeningHours(locationID, openingHours string) error {
	if s.openingHours == nil {
		s.openingHours = map[string]string{}
	}
	s.openingHours[locationID] = openingHours
	return nil
}

func testLocation() mensa.Location {
	return mensa.Location{ID: "herrenkrug", Name: "Mensa Herrenkrug", FeedID: 108}
}

func newTestTask(client *fakeMenuClient, store *fakeMealStore, locations *fakeLocationStore, at time.Time) *IngestMenuTask {
	task := NewIngestMenuTask(testLocation(), client, store, locations)
	task.now = func() time.Time { return at }
	return task
}

func TestIngestMenuTask_WeekendShortCircuit(t *testing.T) {
	client := &fakeMenuClient{}
	store := &fakeMealStore{}

	// 2026-03-07 is a Saturday
	saturday := time.Date(2026, 3, 7, 9, 0, 0, 0, time.Local)
	task := newTestTask(client, store, &fakeLocationStore{}, saturday)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if client.menuCalls != 0 {
		t.Errorf("Weekend must skip the fetch entirely, got %d calls", client.menuCalls)
	}
	if len(store.upserted) != 0 {
		t.Errorf("Weekend must not touch the store, got %d batches", len(store.upserted))
	}
}

func TestIngestMenuTask_Pipeline(t *testing.T) {
	// 2026-03-02 is a Monday
	monday := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

	client := &fakeMenuClient{
		canteen: &mensa.Canteen{
			Days: []mensa.Day{{
				Date: "2026-03-02",
				Categories: []mensa.Category{{
					Name: "Hauptgericht",
					Meals: []mensa.MealItem{{
						Name:   "Rindergulasch (A,C)",
						Prices: []mensa.Price{{Role: mensa.PriceRoleStudent, Value: "2.60"}},
						Notes:  []string{"enthält Rindfleisch"},
					}},
				}},
			}},
		},
		meta: &mensa.OpeningTimes{Monday: "11:00-14:00"},
	}
	store := &fakeMealStore{}
	locations := &fakeLocationStore{}

	task := newTestTask(client, store, locations, monday)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(store.upserted) != 1 {
		t.Fatalf("Expected 1 reconciled batch, got %d", len(store.upserted))
	}
	batch := store.upserted[0]
	if len(batch) != 1 {
		t.Fatalf("Expected 1 meal in batch, got %d", len(batch))
	}
	if batch[0].Name != "Rindergulasch" {
		t.Errorf("Expected normalized name, got '%s'", batch[0].Name)
	}
	if batch[0].ExternalID != "herrenkrug_2026-03-02_Rindergulasch_(A,C)" {
		t.Errorf("Unexpected external id: %s", batch[0].ExternalID)
	}

	if locations.openingHours["herrenkrug"] == "" {
		t.Error("Expected opening hours stored")
	}
}

func TestIngestMenuTask_FetchError(t *testing.T) {
	monday := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

	client := &fakeMenuClient{
		menuErr: &mensa.FetchError{Location: "herrenkrug", URL: "http://example.org/108/menu.xml", Err: errors.New("connection refused")},
	}
	store := &fakeMealStore{}

	task := newTestTask(client, store, &fakeLocationStore{}, monday)
	err := task.Execute(context.Background())
	if err == nil {
		t.Fatal("Expected error")
	}

	var fetchErr *mensa.FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("Fetch failures must stay identifiable through wrapping, got: %v", err)
	}
	if len(store.upserted) != 0 {
		t.Error("Fetch failure must not reach the store")
	}
}

func TestIngestMenuTask_StoreError(t *testing.T) {
	monday := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

	client := &fakeMenuClient{canteen: &mensa.Canteen{Days: []mensa.Day{{
		Date: "2026-03-02",
		Categories: []mensa.Category{{
			Name:  "Hauptgericht",
			Meals: []mensa.MealItem{{Name: "Reis", Prices: []mensa.Price{{Role: mensa.PriceRoleStudent, Value: "0.60"}}}},
		}},
	}}}}
	store := &fakeMealStore{upsertErr: errors.New("disk full")}

	task := newTestTask(client, store, &fakeLocationStore{}, monday)
	err := task.Execute(context.Background())
	if err == nil {
		t.Fatal("Expected error")
	}

	var fetchErr *mensa.FetchError
	if errors.As(err, &fetchErr) {
		t.Error("Storage failures must not masquerade as fetch failures")
	}
}

func TestIngestMenuTask_MetaFailureBestEffort(t *testing.T) {
	monday := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

	client := &fakeMenuClient{
		canteen: &mensa.Canteen{},
		metaErr: errors.New("meta unavailable"),
	}

	task := newTestTask(client, &fakeMealStore{}, &fakeLocationStore{}, monday)
	if err := task.Execute(context.Background()); err != nil {
		t.Errorf("Meta fetch failure must not fail the ingestion: %v", err)
	}
}

func TestIngestMenuTask_CancelledContext(t *testing.T) {
	monday := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	client := &fakeMenuClient{}

	task := newTestTask(client, &fakeMealStore{}, &fakeLocationStore{}, monday)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := task.Execute(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
	if client.menuCalls != 0 {
		t.Error("Cancelled task must not fetch")
	}
}

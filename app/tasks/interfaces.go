package tasks

import (
	"context"
	"time"

	"github.com/mensahub/mensahub/app/database"
	"github.com/mensahub/mensahub/app/mensa"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetLocationID() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
}

// TaskSchedulerInterface defines the interface for background menu ingestion.
// The HTTP layer uses it for on-demand refreshes; concurrent runs are not
// deduplicated because the upsert is idempotent per row.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueIngest(locationID string) error
	EnqueueIngestAll() error
}

// MenuClientInterface is the fetcher contract consumed by the ingest task.
type MenuClientInterface interface {
	FetchMenu(ctx context.Context, location mensa.Location) (*mensa.Canteen, error)
	FetchMeta(ctx context.Context, location mensa.Location) (*mensa.OpeningTimes, error)
}

var _ MenuClientInterface = (*mensa.Client)(nil)

// MealStoreInterface is the reconciliation contract consumed by the ingest task.
type MealStoreInterface interface {
	UpsertMeals(meals []mensa.Meal) error
}

var _ MealStoreInterface = (*database.MealRepository)(nil)

type LocationStoreInterface interface {
	UpdateOpeningHours(locationID, openingHours string) error
}

var _ LocationStoreInterface = (*database.LocationRepository)(nil)

package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mensahub/mensahub/app/cfg"
	"github.com/mensahub/mensahub/app/mensa"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	client       MenuClientInterface
	mealRepo     MealStoreInterface
	locationRepo LocationStoreInterface
	refreshAt    string
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface
}

func NewScheduler(client MenuClientInterface, mealRepo MealStoreInterface,
	locationRepo LocationStoreInterface) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		client:       client,
		mealRepo:     mealRepo,
		locationRepo: locationRepo,
		refreshAt:    cfg.RefreshAt,
		workerCount:  cfg.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if err := s.EnqueueIngestAll(); err != nil {
			slog.Warn("Failed to enqueue startup ingestion", "error", err)
		}

		for {
			next := nextRunAt(time.Now().In(time.Local), s.refreshAt)
			slog.Debug("Next scheduled menu refresh", "at", next.Format(time.RFC3339))

			timer := time.NewTimer(time.Until(next))
			select {
			case <-s.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				if err := s.EnqueueIngestAll(); err != nil {
					slog.Warn("Failed to enqueue scheduled ingestion", "error", err)
				}
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueIngest schedules an on-demand ingestion for one venue.
func (s *Scheduler) EnqueueIngest(locationID string) error {
	location, err := mensa.GetLocation(locationID)
	if err != nil {
		return err
	}

	task := NewIngestMenuTask(*location, s.client, s.mealRepo, s.locationRepo)
	return s.EnqueueTask(task)
}

// EnqueueIngestAll schedules ingestion for every known venue. A venue whose
// task cannot be enqueued is logged and skipped; the others proceed.
func (s *Scheduler) EnqueueIngestAll() error {
	locations, err := mensa.Locations()
	if err != nil {
		return err
	}

	for _, location := range locations {
		task := NewIngestMenuTask(location, s.client, s.mealRepo, s.locationRepo)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue IngestMenuTask", "location", location.ID, "error", err)
		}
	}

	return nil
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	// Fetch failures degrade to "no meals available" and are picked up by
	// the next scheduled run; only storage-side failures are retried.
	var fetchErr *mensa.FetchError
	if errors.As(err, &fetchErr) {
		slog.Warn("Menu fetch failed, skipping until next run",
			"worker_id", workerID, "location", task.GetLocationID(), "error", err)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID,
		"type", string(task.GetType()), "id", task.GetID(),
		"retry_count", task.GetRetryCount(), "error", err)

	if task.CanRetry() {
		task.IncrementRetryCount()
		retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}

		slog.Warn("Task retry scheduled", "type", string(task.GetType()),
			"location", task.GetLocationID(), "retry_count", task.GetRetryCount(),
			"max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

		// The WaitGroup covers the sleeping goroutine so Stop cannot close
		// the queue while a re-enqueue is still possible.
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()

			select {
			case <-s.ctx.Done():
				slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
				return
			case <-time.After(retryDelay):
			}

			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "error", retryErr)
			}
		}()
	} else {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()),
			"id", task.GetID(), "retry_count", task.GetRetryCount(),
			"max_retries", task.GetMaxRetries(), "last_error", err)
	}
}

// nextRunAt returns the next occurrence of the daily refresh time, in the
// timezone of now. The refresh time string is validated at config load.
func nextRunAt(now time.Time, refreshAt string) time.Time {
	at, err := time.Parse("15:04", refreshAt)
	if err != nil {
		at = time.Date(0, 1, 1, 10, 30, 0, 0, time.UTC)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

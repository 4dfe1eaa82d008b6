package tasks

import (
	"testing"
)

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeIngestMenu, "unicampus")

	if task.GetType() != TaskTypeIngestMenu {
		t.Errorf("Unexpected type: %s", task.GetType())
	}
	if task.GetLocationID() != "unicampus" {
		t.Errorf("Unexpected location: %s", task.GetLocationID())
	}
	if task.GetID() == "" {
		t.Error("Expected a generated task id")
	}
	if task.GetRetryCount() != 0 {
		t.Errorf("Expected retry count 0, got %d", task.GetRetryCount())
	}
	if task.GetMaxRetries() != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, task.GetMaxRetries())
	}
}

func TestTask_RetryBookkeeping(t *testing.T) {
	task := NewTask(TaskTypeIngestMenu, "unicampus")

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry %d allowed", i+1)
		}
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Error("Expected no retries left after reaching the maximum")
	}
}

func TestTask_Duration(t *testing.T) {
	task := NewTask(TaskTypeIngestMenu, "unicampus")

	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before Start")
	}

	task.Start()
	if task.GetDuration() < 0 {
		t.Error("Expected non-negative duration after Start")
	}
}

package cfg

import (
	"os"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "1.2.3"
	if GetVersion() != "1.2.3" {
		t.Errorf("Expected '1.2.3', got '%s'", GetVersion())
	}

	Version = ""
	if GetVersion() != "unknown" {
		t.Errorf("Expected 'unknown' for empty version, got '%s'", GetVersion())
	}
}

func TestLoad_Defaults(t *testing.T) {
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()
	os.Args = []string{"mensahub"}
	t.Setenv("TZ", "Europe/Berlin")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected configuration, got nil")
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port '8080', got '%s'", cfg.Port)
	}
	if cfg.DBPath != "./mensahub.db" {
		t.Errorf("Unexpected default db path: %s", cfg.DBPath)
	}
	if cfg.RefreshAt != "10:30" {
		t.Errorf("Expected default refresh time '10:30', got '%s'", cfg.RefreshAt)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("Expected default worker count 2, got %d", cfg.WorkerCount)
	}
	if cfg.Timezone != "Europe/Berlin" {
		t.Errorf("Expected default timezone 'Europe/Berlin', got '%s'", cfg.Timezone)
	}
	if cfg.FeedURL == "" {
		t.Error("Expected a default feed URL")
	}
}

func TestLoad_InvalidRefreshTime(t *testing.T) {
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()
	os.Args = []string{"mensahub", "--refresh-at", "25:99"}

	_, err := Load()
	if err == nil {
		t.Error("Expected error for invalid refresh time")
	}
}

func TestGet_AfterLoad(t *testing.T) {
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()
	os.Args = []string{"mensahub"}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if Get() != loaded {
		t.Error("Get() must return the loaded configuration")
	}
}

func TestApplyTimezone(t *testing.T) {
	originalLocal := time.Local
	defer func() { time.Local = originalLocal }()

	if err := applyTimezone("Europe/Berlin"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if time.Local.String() != "Europe/Berlin" {
		t.Errorf("Expected local timezone 'Europe/Berlin', got '%s'", time.Local.String())
	}

	if err := applyTimezone("Invalid/Zone"); err == nil {
		t.Error("Expected error for unknown timezone")
	}
}

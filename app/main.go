package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mensahub/mensahub/app/api"
	"github.com/mensahub/mensahub/app/cfg"
	"github.com/mensahub/mensahub/app/database"
	"github.com/mensahub/mensahub/app/mensa"
	"github.com/mensahub/mensahub/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting MensaHub server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	// Repositories
	mealRepo := database.NewMealRepository(db)
	locationRepo := database.NewLocationRepository(db)
	voteRepo := database.NewVoteRepository(db)
	commentRepo := database.NewCommentRepository(db)
	photoRepo := database.NewPhotoRepository(db)

	// Register the embedded venue registry
	locations, err := mensa.Locations()
	if err != nil {
		slog.Error("Failed to load location registry", "error", err)
		os.Exit(1)
	}
	if err := locationRepo.SeedLocations(locations); err != nil {
		slog.Error("Failed to seed locations", "error", err)
		os.Exit(1)
	}
	slog.Info("Registered locations", "count", len(locations))

	// Core components
	httpClient := &http.Client{Timeout: 30 * time.Second}
	menuClient := mensa.NewClient(httpClient, appCfg.FeedURL, appCfg.UserAgent)

	scheduler := tasks.NewScheduler(menuClient, mealRepo, locationRepo)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "daily_refresh_at", appCfg.RefreshAt, "timezone", appCfg.Timezone)

	// HTTP server
	handler := api.NewHandler(mealRepo, locationRepo, voteRepo, commentRepo, photoRepo, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

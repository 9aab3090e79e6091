package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"healthsync/internal/adapter/anthropic"
	"healthsync/internal/adapter/github"
	adapthttp "healthsync/internal/adapter/http"
	"healthsync/internal/adapter/postgres"
	"healthsync/internal/adapter/strava"
	"healthsync/internal/adapter/tidepool"
	"healthsync/internal/app"
	"healthsync/internal/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = db.Close() }()

	syncSvc := app.NewSyncService(app.SyncDeps{
		Health: tidepool.NewClient(tidepool.Config{
			BaseURL:  cfg.TidepoolBaseURL,
			Email:    cfg.TidepoolEmail,
			Password: cfg.TidepoolPassword,
		}),
		Workouts: strava.NewClient(strava.Config{
			BaseURL:      cfg.StravaBaseURL,
			TokenURL:     cfg.StravaTokenURL,
			ClientID:     cfg.StravaClientID,
			ClientSecret: cfg.StravaClientSecret,
			PageDelay:    cfg.PageDelay,
		}, db),
		Contributions: github.NewClient(github.Config{
			BaseURL:   cfg.GitHubBaseURL,
			User:      cfg.GitHubUser,
			Token:     cfg.GitHubToken,
			PageDelay: cfg.PageDelay,
		}),
		Usage: anthropic.NewClient(anthropic.Config{
			BaseURL:   cfg.AnthropicBaseURL,
			AdminKey:  cfg.AnthropicAdminKey,
			PageDelay: cfg.PageDelay,
		}),
		Glucose:      db,
		Doses:        db,
		Sessions:     db,
		Rollups:      db,
		LookbackDays: cfg.LookbackDays,
		Timeout:      cfg.SyncTimeout,
	})
	statsSvc := app.NewStatsService(db, db, db, db)

	// Recurring sync alongside the HTTP trigger.
	if cfg.SyncInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.SyncInterval)
			defer ticker.Stop()
			for range ticker.C {
				syncSvc.Run(context.Background(), app.SyncOptions{})
			}
		}()
	}

	h := adapthttp.New(syncSvc, statsSvc, db, cfg.AccessHeader).Handler()
	log.Printf("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/recipebook/internal/api"
	"github.com/Veraticus/recipebook/internal/config"
	"github.com/Veraticus/recipebook/internal/repository"
	"github.com/Veraticus/recipebook/internal/storage"
	"github.com/spf13/viper"
)

// app bundles what the commands need.
type app struct {
	cfg    *config.Config
	store  *storage.SQLiteStorage
	client *api.Client
	repo   *repository.Repository
}

func (a *app) Close() {
	_ = a.store.Close()
}

// loadConfig resolves the effective configuration from flags, file and environment.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the local database and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initApp wires the API client, the local store and the repository over them.
func initApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.APIBaseURL,
		Token:   cfg.APIToken,
		Timeout: cfg.APITimeout,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	repo, err := repository.New(store, client)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{cfg: cfg, store: store, client: client, repo: repo}, nil
}

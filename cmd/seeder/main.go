package main

import (
	"context"
	"time"

	"controlling_irrigation/internal/app"
	"controlling_irrigation/internal/config"
	"controlling_irrigation/internal/logger"
	"controlling_irrigation/internal/repository/db"
)

const seedTimeout = 10 * time.Second

// Writes the default settings and manual mode into the configured store.
func main() {
	cfg, err := config.Load("configs")
	if err != nil {
		logger.New(logger.InfoLevel, logger.FormatConsole).Fatalw("error reading config", "err", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() { _ = sqlDB.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg, sqlDB)
	if err != nil {
		log.Fatalw("failed to open document store", "err", err, "type", cfg.Store.Type)
	}
	defer func() { _ = store.Close() }()

	if err := app.Seed(ctx, store); err != nil {
		log.Fatalw("seed failed", "err", err)
	}
	log.Infow("seeded settings and mode", "store", cfg.Store.Type)
}

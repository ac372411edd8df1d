package repository

import (
	"context"
	"database/sql"
	"time"

	"controlling_irrigation/internal/models"
)

type ModeRepo interface {
	Load(ctx context.Context) (models.Mode, error)
	Save(ctx context.Context, m models.Mode) error
}

type StatusRepo interface {
	// Load returns nil when the controller is idle.
	Load(ctx context.Context) (*models.Status, error)
	Save(ctx context.Context, s models.Status) error
	Clear(ctx context.Context) error
}

type SettingsRepo interface {
	Load(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, s models.Settings) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.IrrigationEvent) error
	List(ctx context.Context, q EventQuery) ([]models.IrrigationEvent, error)
	// Prune removes entries older than before.
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type Repository struct {
	ModeRepo     ModeRepo
	StatusRepo   StatusRepo
	SettingsRepo SettingsRepo
	EventRepo    EventRepo
}

// NewRepository binds the three shared documents to store and the event log to db.
func NewRepository(store DocumentStore, db *sql.DB) *Repository {
	return &Repository{
		ModeRepo:     NewModeDocRepo(store),
		StatusRepo:   NewStatusDocRepo(store),
		SettingsRepo: NewSettingsDocRepo(store),
		EventRepo:    NewEventSQLite(db),
	}
}

package service

import (
	"context"
	"time"

	"controlling_irrigation/internal/logger"
	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/relay"
	"controlling_irrigation/internal/repository"
)

// ModeControl reads and switches the operating mode.
type ModeControl interface {
	GetMode(ctx context.Context) (models.ModeName, error)
	GetModeState(ctx context.Context) (models.Mode, error)
	SetMode(ctx context.Context, name models.ModeName) error
	// Manual closes every valve, clears the status and switches to manual.
	Manual(ctx context.Context) error
	// Reset closes every valve and clears the status, keeping the mode.
	Reset(ctx context.Context) error
}

// Sequencer starts sequences and individual steps.
type Sequencer interface {
	StartSequence(ctx context.Context) error
	StartStep(ctx context.Context, index int) error
	IsStepFinished(ctx context.Context) (bool, error)
}

// PauseControl suspends and resumes a running step.
type PauseControl interface {
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
}

// Monitoring exposes read-only state.
type Monitoring interface {
	GetState(ctx context.Context) (State, error)
	GetStatus(ctx context.Context) (*models.Status, error)
}

// Configuration manages the settings document.
type Configuration interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	UpdateSettings(ctx context.Context, s models.Settings) error
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.IrrigationEvent, error)
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Loop runs the background poll loop.
// Stop via context cancellation in main() for graceful shutdown.
type Loop interface {
	Run(ctx context.Context, tick time.Duration)
	Tick(ctx context.Context) error
}

// Service aggregates all sub-services.
type Service struct {
	ModeControl
	Sequencer
	PauseControl
	Monitoring
	Configuration
	EventLog
	Loop
}

// Options tunes NewService. Zero values select the system clock, the host
// time zone and a no-op logger.
type Options struct {
	Clock    Clock
	Location *time.Location
	Log      *logger.Logger
}

// NewService wires the repository layer and the relay driver into concrete services.
func NewService(repos *repository.Repository, driver relay.Driver, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	events := &recorder{repo: repos.EventRepo, clock: opts.Clock, log: opts.Log}

	modes := NewModeService(repos.ModeRepo, repos.StatusRepo, driver, events)
	sequence := NewSequenceService(repos.StatusRepo, repos.SettingsRepo, driver, opts.Clock, events)

	return &Service{
		ModeControl:   modes,
		Sequencer:     sequence,
		PauseControl:  NewPauseService(modes, repos.StatusRepo, driver, opts.Clock, events),
		Monitoring:    NewMonitoringService(modes, repos.StatusRepo, opts.Clock),
		Configuration: NewSettingsService(repos.SettingsRepo, events),
		EventLog:      NewEventLogService(repos.EventRepo, opts.Clock),
		Loop: NewLoopService(modes, repos.StatusRepo, repos.SettingsRepo, sequence,
			opts.Clock, opts.Location, opts.Log, events),
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"controlling_irrigation/internal/metrics"
	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/relay"
	"controlling_irrigation/internal/repository"
)

// Sequence start triggers, used as metric labels.
const (
	triggerAPI      = "api"
	triggerSchedule = "schedule"
)

// SequenceService advances the valves one step at a time. The running
// sequence has no identity of its own: it is the status document.
type SequenceService struct {
	status   repository.StatusRepo
	settings repository.SettingsRepo
	driver   relay.Driver
	clock    Clock
	events   *recorder
}

func NewSequenceService(status repository.StatusRepo, settings repository.SettingsRepo, driver relay.Driver, clock Clock, events *recorder) *SequenceService {
	return &SequenceService{status: status, settings: settings, driver: driver, clock: clock, events: events}
}

// StartSequence clears the status and opens the first valve.
func (s *SequenceService) StartSequence(ctx context.Context) error {
	return s.startSequence(ctx, triggerAPI)
}

func (s *SequenceService) startSequence(ctx context.Context, trigger string) error {
	if err := s.status.Clear(ctx); err != nil {
		return persistenceErr("clear status", err)
	}
	if err := s.StartStep(ctx, 0); err != nil {
		return err
	}
	metrics.SequencesStarted.WithLabelValues(trigger).Inc()
	s.events.record(ctx, models.EventSequenceStart, "Sequence started", map[string]any{"trigger": trigger})
	return nil
}

// StartStep makes index the only open valve and records its deadline.
// Settings are checked first so a bad document leaves valves and status alone.
func (s *SequenceService) StartStep(ctx context.Context, index int) error {
	if !models.ValidRelay(index) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	settings, err := s.loadSequence(ctx)
	if err != nil {
		return err
	}

	if err := s.driver.CloseAll(ctx); err != nil {
		return driverErr("close all", err)
	}
	if err := s.driver.Open(ctx, index); err != nil {
		return driverErr(fmt.Sprintf("open relay %d", index), err)
	}

	now := s.clock.Now().Unix()
	st := models.Status{OpenedRelay: index, OpenedAt: now}
	if d := settings.Sequence[index]; d > 0 {
		closeAt := now + int64(d)
		st.ShouldCloseAt = &closeAt
	}
	if err := s.status.Save(ctx, st); err != nil {
		return persistenceErr("save status", err)
	}

	metrics.ObserveStep(index)
	s.events.record(ctx, models.EventStepStart, fmt.Sprintf("Relay %d opened", index), map[string]any{
		"relay":        index,
		"duration_sec": settings.Sequence[index],
	})
	return nil
}

func (s *SequenceService) loadSequence(ctx context.Context) (models.Settings, error) {
	settings, err := s.settings.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrMalformed):
		return models.Settings{}, fmt.Errorf("%w: %w", ErrSettingsMissing, err)
	case err != nil:
		return models.Settings{}, persistenceErr("load settings", err)
	}
	if err := settings.ValidateSequence(); err != nil {
		return models.Settings{}, fmt.Errorf("%w: %w", ErrSettingsMissing, err)
	}
	return settings, nil
}

// IsStepFinished reports whether the open valve has reached its deadline.
// Idle and open-ended steps are never finished.
func (s *SequenceService) IsStepFinished(ctx context.Context) (bool, error) {
	st, err := loadStatus(ctx, s.status)
	if err != nil {
		return false, err
	}
	return stepFinished(st, s.clock.Now()), nil
}

func stepFinished(st *models.Status, now time.Time) bool {
	if st == nil || !st.HasDeadline() {
		return false
	}
	return now.Unix() >= *st.ShouldCloseAt
}

// loadStatus maps repository errors onto the controller taxonomy.
func loadStatus(ctx context.Context, repo repository.StatusRepo) (*models.Status, error) {
	st, err := repo.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrMalformed):
		return nil, fmt.Errorf("%w: %w", ErrStatusMalformed, err)
	case err != nil:
		return nil, persistenceErr("load status", err)
	}
	return st, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"controlling_irrigation/internal/metrics"
	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/relay"
	"controlling_irrigation/internal/repository"
)

// ModeService owns the mode document and the idle transitions.
type ModeService struct {
	modes  repository.ModeRepo
	status repository.StatusRepo
	driver relay.Driver
	events *recorder
}

func NewModeService(modes repository.ModeRepo, status repository.StatusRepo, driver relay.Driver, events *recorder) *ModeService {
	return &ModeService{modes: modes, status: status, driver: driver, events: events}
}

// GetModeState returns the full mode including pause metadata. An absent or
// unreadable document is ErrNotFound.
func (s *ModeService) GetModeState(ctx context.Context) (models.Mode, error) {
	m, err := s.modes.Load(ctx)
	switch {
	case err == nil:
		return m, nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrMalformed):
		return models.Mode{}, fmt.Errorf("%w: mode: %w", ErrNotFound, err)
	default:
		return models.Mode{}, persistenceErr("load mode", err)
	}
}

func (s *ModeService) GetMode(ctx context.Context) (models.ModeName, error) {
	m, err := s.GetModeState(ctx)
	if err != nil {
		return "", err
	}
	return m.Current, nil
}

// SetMode writes a plain mode. Any pause metadata is dropped.
func (s *ModeService) SetMode(ctx context.Context, name models.ModeName) error {
	if !name.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, name)
	}
	from := models.ModeName("")
	if prev, err := s.modes.Load(ctx); err == nil {
		from = prev.Current
	}
	if err := s.apply(ctx, models.NewMode(name)); err != nil {
		return err
	}
	s.events.record(ctx, models.EventModeChange, "Mode changed to "+string(name), map[string]any{
		"from": string(from),
		"to":   string(name),
	})
	return nil
}

// apply overwrites the document and reads it back.
func (s *ModeService) apply(ctx context.Context, m models.Mode) error {
	if err := s.modes.Save(ctx, m); err != nil {
		return persistenceErr("save mode", err)
	}
	got, err := s.modes.Load(ctx)
	if err != nil {
		return persistenceErr("verify mode", err)
	}
	if !got.Equal(m) {
		return fmt.Errorf("%w: verify mode: wrote %q, read %q", ErrPersistence, m.Current, got.Current)
	}
	return nil
}

// ForceIdle closes every valve and clears the status before switching to
// target, so the new mode is never visible with a valve still open.
func (s *ModeService) ForceIdle(ctx context.Context, target models.ModeName) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, target)
	}
	if err := s.idle(ctx); err != nil {
		return err
	}
	return s.SetMode(ctx, target)
}

// Manual stops any sequence and hands control to the operator.
func (s *ModeService) Manual(ctx context.Context) error {
	return s.ForceIdle(ctx, models.ModeManual)
}

// Reset stops any sequence and leaves the mode as it is.
func (s *ModeService) Reset(ctx context.Context) error {
	if err := s.idle(ctx); err != nil {
		return err
	}
	s.events.record(ctx, models.EventReset, "Valves closed and status cleared", nil)
	return nil
}

func (s *ModeService) idle(ctx context.Context) error {
	if err := s.driver.CloseAll(ctx); err != nil {
		return driverErr("close all", err)
	}
	metrics.ObserveIdle()
	if err := s.status.Clear(ctx); err != nil {
		return persistenceErr("clear status", err)
	}
	return nil
}

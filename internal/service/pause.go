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

// PauseService freezes a running step and later shifts its deadline by the
// time spent paused. Neither operation rolls back on partial failure.
type PauseService struct {
	modes  *ModeService
	status repository.StatusRepo
	driver relay.Driver
	clock  Clock
	events *recorder
}

func NewPauseService(modes *ModeService, status repository.StatusRepo, driver relay.Driver, clock Clock, events *recorder) *PauseService {
	return &PauseService{modes: modes, status: status, driver: driver, clock: clock, events: events}
}

// Pause is a no-op when already paused. The status document is left as is;
// Resume corrects its deadline.
func (s *PauseService) Pause(ctx context.Context) error {
	m, err := s.modes.GetModeState(ctx)
	if err != nil {
		return err
	}
	if m.Current == models.ModePause {
		return nil
	}

	pausedAt := s.clock.Now().Unix()
	if err := s.modes.apply(ctx, models.Paused(m.Current, pausedAt)); err != nil {
		return err
	}
	if err := s.driver.CloseAll(ctx); err != nil {
		return driverErr("close all", err)
	}
	metrics.ObserveIdle()

	s.events.record(ctx, models.EventPause, "Paused", map[string]any{
		"previous_mode": string(m.Current),
		"paused_at":     pausedAt,
	})
	return nil
}

// Resume reopens the paused valve, pushes its deadline forward by the pause
// length and restores the previous mode.
func (s *PauseService) Resume(ctx context.Context) error {
	m, err := s.modes.GetModeState(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotPaused, err)
	case err != nil:
		return err
	case m.Pause == nil:
		return fmt.Errorf("%w: mode is %q", ErrNotPaused, m.Current)
	}
	rec := *m.Pause
	delta := s.clock.Now().Unix() - rec.PausedAt

	st, err := loadStatus(ctx, s.status)
	switch {
	case errors.Is(err, ErrStatusMalformed):
		return fmt.Errorf("%w: %w", ErrNoActiveStep, err)
	case err != nil:
		return err
	case st == nil:
		return ErrNoActiveStep
	}

	if st.HasDeadline() {
		shifted := *st.ShouldCloseAt + delta
		st.ShouldCloseAt = &shifted
		if err := s.status.Save(ctx, *st); err != nil {
			return persistenceErr("save status", err)
		}
	}
	if err := s.driver.Open(ctx, st.OpenedRelay); err != nil {
		return driverErr(fmt.Sprintf("open relay %d", st.OpenedRelay), err)
	}
	metrics.SetActiveRelay(st.OpenedRelay)

	if err := s.modes.apply(ctx, models.NewMode(rec.Previous)); err != nil {
		return err
	}
	s.events.record(ctx, models.EventResume, "Resumed to "+string(rec.Previous), map[string]any{
		"relay":        st.OpenedRelay,
		"paused_for_s": delta,
	})
	return nil
}

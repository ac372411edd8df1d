package service

import (
	"context"
	"errors"
	"time"

	"controlling_irrigation/internal/logger"
	"controlling_irrigation/internal/metrics"
	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/repository"
)

// DefaultTick is the poll interval of the control loop.
const DefaultTick = 100 * time.Millisecond

// LoopService polls the shared documents and drives automatic modes.
type LoopService struct {
	modes    *ModeService
	status   repository.StatusRepo
	settings repository.SettingsRepo
	sequence *SequenceService
	clock    Clock
	loc      *time.Location
	log      *logger.Logger
	events   *recorder

	lastErr string
}

func NewLoopService(modes *ModeService, status repository.StatusRepo, settings repository.SettingsRepo,
	sequence *SequenceService, clock Clock, loc *time.Location, log *logger.Logger, events *recorder) *LoopService {
	return &LoopService{
		modes:    modes,
		status:   status,
		settings: settings,
		sequence: sequence,
		clock:    clock,
		loc:      loc,
		log:      log,
		events:   events,
	}
}

// Run ticks at the given interval until ctx is canceled. Tick errors are
// logged and never stop the loop.
func (l *LoopService) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = DefaultTick
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	l.log.Infow("loop_started", "tick", tick.String())
	for {
		select {
		case <-ctx.Done():
			l.log.Infow("loop_stopped")
			return
		case <-t.C:
			l.step(ctx)
		}
	}
}

func (l *LoopService) step(ctx context.Context) {
	metrics.LoopTicks.Inc()
	err := l.Tick(ctx)
	if err == nil {
		if l.lastErr != "" {
			l.log.Infow("loop_recovered", "previous_err", l.lastErr)
			l.lastErr = ""
		}
		return
	}
	metrics.LoopErrors.WithLabelValues(errorKind(err)).Inc()
	// log only when the error changes
	if msg := err.Error(); msg != l.lastErr {
		l.log.Errorw("loop_tick_failed", "err", err)
		l.events.record(ctx, models.EventError, msg, map[string]any{"kind": errorKind(err)})
		l.lastErr = msg
	}
}

// Tick runs one pass: advance the open step when it is due, or start a
// sequence when idle and the schedule matches. Nothing happens outside the
// automatic modes. A finished last step is held until someone intervenes.
func (l *LoopService) Tick(ctx context.Context) error {
	m, err := l.modes.GetModeState(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !m.Current.Automatic() {
		return nil
	}

	st, err := loadStatus(ctx, l.status)
	if err != nil {
		return err
	}
	now := l.clock.Now()
	if st != nil {
		if !stepFinished(st, now) || st.OpenedRelay >= models.LastRelay {
			return nil
		}
		return l.sequence.StartStep(ctx, st.OpenedRelay+1)
	}

	settings, err := l.settings.Load(ctx)
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrMalformed) {
		return nil
	}
	if err != nil {
		return persistenceErr("load settings", err)
	}
	local := now.In(l.loc)
	if !ShouldTrigger(settings, local) {
		return nil
	}
	if err := l.sequence.startSequence(ctx, triggerSchedule); err != nil {
		return err
	}
	l.events.record(ctx, models.EventScheduleTrigger, "Scheduled start at "+settings.StartAt, map[string]any{
		"weekday": ScheduleDay(local),
	})
	return nil
}

func errorKind(err error) string {
	for _, k := range []struct {
		err  error
		name string
	}{
		{ErrPersistence, "persistence"},
		{ErrDriver, "driver"},
		{ErrSettingsMissing, "settings"},
		{ErrStatusMalformed, "status"},
		{ErrInvalidIndex, "index"},
	} {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "other"
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/repository"
)

// ErrInvalidFilter is returned for a reversed range, a negative limit or an
// unknown event type.
var ErrInvalidFilter = errors.New("invalid log filter")

var knownEventTypes = map[string]bool{
	models.EventModeChange:      true,
	models.EventSequenceStart:   true,
	models.EventStepStart:       true,
	models.EventPause:           true,
	models.EventResume:          true,
	models.EventReset:           true,
	models.EventScheduleTrigger: true,
	models.EventSettingsChange:  true,
	models.EventError:           true,
}

type EventLogService struct {
	eventRepo repository.EventRepo
	clock     Clock
}

func NewEventLogService(eventRepo repository.EventRepo, clock Clock) *EventLogService {
	return &EventLogService{eventRepo: eventRepo, clock: clock}
}

// utcOrZero returns t in UTC, preserving zero time values.
func utcOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeFilter converts the bounds to UTC, uppercases the type, bounds the
// limit and checks the range and type.
func normalizeFilter(f LogFilter) (LogFilter, error) {
	out := LogFilter{
		From:  utcOrZero(f.From),
		To:    utcOrZero(f.To),
		Type:  strings.ToUpper(strings.TrimSpace(f.Type)),
		Limit: f.Limit,
	}
	switch {
	case out.Limit < 0:
		return LogFilter{}, fmt.Errorf("%w: negative limit %d", ErrInvalidFilter, out.Limit)
	case out.Limit == 0:
		out.Limit = DefaultLogLimit
	case out.Limit > MaxLogLimit:
		out.Limit = MaxLogLimit
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, fmt.Errorf("%w: %w", ErrInvalidFilter, errInvalidTimeRange)
	}
	if out.Type != "" && !knownEventTypes[out.Type] {
		return LogFilter{}, fmt.Errorf("%w: unknown event type %q", ErrInvalidFilter, out.Type)
	}
	return out, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.IrrigationEvent, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.List(ctx, repository.EventQuery{
		From:  f.From,
		To:    f.To,
		Type:  f.Type,
		Limit: f.Limit,
	})
	if err != nil {
		return nil, persistenceErr("list events", err)
	}
	return events, nil
}

// Prune drops entries older than retention. A non-positive retention keeps
// everything.
func (s *EventLogService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	n, err := s.eventRepo.Prune(ctx, s.clock.Now().Add(-retention))
	if err != nil {
		return 0, persistenceErr("prune events", err)
	}
	return n, nil
}

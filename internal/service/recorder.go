package service

import (
	"context"

	"controlling_irrigation/internal/logger"
	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/repository"

	"github.com/google/uuid"
)

// recorder appends events to the log. A failed append is logged and never
// fails the operation that produced it.
type recorder struct {
	repo  repository.EventRepo
	clock Clock
	log   *logger.Logger
}

func (r *recorder) record(ctx context.Context, typ, description string, meta map[string]any) {
	if r == nil || r.repo == nil {
		return
	}
	ev := models.IrrigationEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  r.clock.Now().UTC(),
		Type:        typ,
		Description: description,
	}
	if len(meta) > 0 {
		ev.Metadata = meta
	}
	if err := r.repo.Append(ctx, ev); err != nil {
		r.log.Warnw("event_append_failed", "type", typ, "err", err)
	}
}

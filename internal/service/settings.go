package service

import (
	"context"
	"errors"
	"fmt"

	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/repository"
)

// SettingsService is the operator side of the settings document. The loop
// and the sequence engine only ever read it.
type SettingsService struct {
	repo   repository.SettingsRepo
	events *recorder
}

func NewSettingsService(repo repository.SettingsRepo, events *recorder) *SettingsService {
	return &SettingsService{repo: repo, events: events}
}

func (s *SettingsService) GetSettings(ctx context.Context) (models.Settings, error) {
	settings, err := s.repo.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrMalformed):
		return models.Settings{}, fmt.Errorf("%w: %w", ErrSettingsMissing, err)
	case err != nil:
		return models.Settings{}, persistenceErr("load settings", err)
	}
	return settings, nil
}

// UpdateSettings validates and replaces the whole document.
func (s *SettingsService) UpdateSettings(ctx context.Context, settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return persistenceErr("save settings", err)
	}
	s.events.record(ctx, models.EventSettingsChange, "Settings updated", map[string]any{
		"start_at": settings.StartAt,
		"sequence": settings.Sequence,
		"schedule": settings.Schedule,
	})
	return nil
}

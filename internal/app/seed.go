package app

import (
	"context"
	"fmt"

	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/repository"
)

// Seed overwrites the settings with the defaults and the mode with manual.
func Seed(ctx context.Context, store repository.DocumentStore) error {
	if err := repository.NewSettingsDocRepo(store).Save(ctx, models.DefaultSettings()); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	if err := repository.NewModeDocRepo(store).Save(ctx, models.NewMode(models.ModeManual)); err != nil {
		return fmt.Errorf("seed mode: %w", err)
	}
	return nil
}

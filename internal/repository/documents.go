package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"controlling_irrigation/internal/models"
)

// ModeDocRepo reads and writes the "mode" document.
type ModeDocRepo struct{ store DocumentStore }

func NewModeDocRepo(store DocumentStore) *ModeDocRepo { return &ModeDocRepo{store: store} }

// Load returns ErrNotFound when the key is absent and ErrMalformed when the
// document is not JSON or current is not a known mode.
func (r *ModeDocRepo) Load(ctx context.Context) (models.Mode, error) {
	raw, err := r.store.Get(ctx, KeyMode)
	if err != nil {
		return models.Mode{}, err
	}
	var doc models.ModeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.Mode{}, fmt.Errorf("%w: mode: %v", ErrMalformed, err)
	}
	m, ok := doc.Mode()
	if !ok {
		return models.Mode{}, fmt.Errorf("%w: mode: unknown current %q", ErrMalformed, doc.Current)
	}
	return m, nil
}

// Save overwrites the whole document.
func (r *ModeDocRepo) Save(ctx context.Context, m models.Mode) error {
	return setJSON(ctx, r.store, KeyMode, m.Document())
}

// statusDocument mirrors models.Status with every field optional so that
// missing fields can be told apart from zero values.
type statusDocument struct {
	OpenedRelay   *int   `json:"opened_relay"`
	OpenedAt      *int64 `json:"opened_at"`
	ShouldCloseAt *int64 `json:"should_close_at,omitempty"`
}

// StatusDocRepo reads and writes the "status" document.
type StatusDocRepo struct{ store DocumentStore }

func NewStatusDocRepo(store DocumentStore) *StatusDocRepo { return &StatusDocRepo{store: store} }

// Load returns (nil, nil) when idle. A document without opened_relay or
// opened_at, or with a relay outside the bank, is ErrMalformed.
func (r *StatusDocRepo) Load(ctx context.Context) (*models.Status, error) {
	raw, err := r.store.Get(ctx, KeyStatus)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc statusDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: status: %v", ErrMalformed, err)
	}
	switch {
	case doc.OpenedRelay == nil:
		return nil, fmt.Errorf("%w: status: missing opened_relay", ErrMalformed)
	case doc.OpenedAt == nil:
		return nil, fmt.Errorf("%w: status: missing opened_at", ErrMalformed)
	case !models.ValidRelay(*doc.OpenedRelay):
		return nil, fmt.Errorf("%w: status: opened_relay %d out of range", ErrMalformed, *doc.OpenedRelay)
	}
	return &models.Status{
		OpenedRelay:   *doc.OpenedRelay,
		OpenedAt:      *doc.OpenedAt,
		ShouldCloseAt: doc.ShouldCloseAt,
	}, nil
}

func (r *StatusDocRepo) Save(ctx context.Context, s models.Status) error {
	return setJSON(ctx, r.store, KeyStatus, s)
}

// Clear deletes the document, returning the controller to idle.
func (r *StatusDocRepo) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, KeyStatus)
}

// SettingsDocRepo reads and writes the "settings" document. It does not
// validate lengths; that is up to the caller.
type SettingsDocRepo struct{ store DocumentStore }

func NewSettingsDocRepo(store DocumentStore) *SettingsDocRepo {
	return &SettingsDocRepo{store: store}
}

func (r *SettingsDocRepo) Load(ctx context.Context) (models.Settings, error) {
	raw, err := r.store.Get(ctx, KeySettings)
	if err != nil {
		return models.Settings{}, err
	}
	var s models.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.Settings{}, fmt.Errorf("%w: settings: %v", ErrMalformed, err)
	}
	return s, nil
}

func (r *SettingsDocRepo) Save(ctx context.Context, s models.Settings) error {
	return setJSON(ctx, r.store, KeySettings, s)
}

func setJSON(ctx context.Context, store DocumentStore, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return store.Set(ctx, key, b)
}

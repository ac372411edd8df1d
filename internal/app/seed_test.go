package app

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/repository"
)

func TestSeed_WritesDefaults(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	_ = store.Set(ctx, repository.KeyMode, []byte(`{"current":"auto"}`))

	if err := Seed(ctx, store); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	raw, err := store.Get(ctx, repository.KeySettings)
	if err != nil {
		t.Fatalf("Get settings: %v", err)
	}
	var s models.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := models.Settings{
		StartAt:  "20:00",
		Sequence: []int{3600, 3600, 3600, 3600, 3600, 3600, 3600, 0},
		Schedule: []bool{false, false, false, false, false, false, true},
	}
	if !reflect.DeepEqual(s, want) {
		t.Fatalf("settings = %+v", s)
	}

	m, err := repository.NewModeDocRepo(store).Load(ctx)
	if err != nil || !m.Equal(models.NewMode(models.ModeManual)) {
		t.Fatalf("mode = %+v, %v", m, err)
	}
}

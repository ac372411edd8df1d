package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/repository"
	"controlling_irrigation/internal/repository/db"
)

func TestSQLiteStore_ContractOnRealDB(t *testing.T) {
	sqlDB, err := db.InitDB(filepath.Join(t.TempDir(), "docs.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer sqlDB.Close()

	exerciseStore(t, repository.NewSQLiteStore(sqlDB, ""))
}

func TestEventSQLite_AppendThenListOnRealDB(t *testing.T) {
	sqlDB, err := db.InitDB(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer sqlDB.Close()

	repo := repository.NewEventSQLite(sqlDB)
	ctx := context.Background()
	base := time.Date(2025, 7, 6, 20, 0, 0, 0, time.UTC)

	events := []models.IrrigationEvent{
		{OccurredAt: base, Type: models.EventScheduleTrigger, Description: "schedule matched"},
		{OccurredAt: base.Add(time.Second), Type: models.EventStepStart, Description: "relay 0 opened", Metadata: map[string]any{"relay": 0}},
		{OccurredAt: base.Add(time.Hour), Type: models.EventStepStart, Description: "relay 1 opened"},
	}
	for _, e := range events {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := repo.List(ctx, repository.EventQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].Description != "relay 1 opened" {
		t.Fatalf("List all = %+v, want 3 newest first", all)
	}

	steps, err := repo.List(ctx, repository.EventQuery{From: base, To: base.Add(time.Minute), Type: models.EventStepStart})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(steps) != 1 || steps[0].Description != "relay 0 opened" {
		t.Fatalf("List filtered = %+v", steps)
	}

	latest, err := repo.List(ctx, repository.EventQuery{Limit: 1})
	if err != nil || len(latest) != 1 || latest[0].Description != "relay 1 opened" {
		t.Fatalf("List limit = %+v, %v", latest, err)
	}

	n, err := repo.Prune(ctx, base.Add(30*time.Minute))
	if err != nil || n != 2 {
		t.Fatalf("Prune = %d, %v", n, err)
	}
	rest, _ := repo.List(ctx, repository.EventQuery{})
	if len(rest) != 1 {
		t.Fatalf("after prune = %+v", rest)
	}
}

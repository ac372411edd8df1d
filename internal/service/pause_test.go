package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/relay"
	"controlling_irrigation/internal/repository"
)

// runningStep puts the harness in auto mode with relay index open.
func runningStep(t *testing.T, h *harness, index int) {
	t.Helper()
	h.seedSettings(t, settingsWith(uniform(600)...))
	h.seedMode(t, models.ModeAuto)
	if err := h.sequence.StartStep(context.Background(), index); err != nil {
		t.Fatalf("StartStep: %v", err)
	}
}

func TestPauseService_Pause(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	runningStep(t, h, 2)
	before := *h.status(t)
	pausedAt := h.clock.Now().Unix()

	if err := h.pause.Pause(ctx); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	doc := h.modeDoc(t)
	if doc.Current != "pause" || doc.PreviousMode != "auto" || doc.PausedAt == nil || *doc.PausedAt != pausedAt {
		t.Fatalf("mode doc = %+v", doc)
	}
	h.assertOnlyOpen(t)

	after := h.status(t)
	if after == nil || after.OpenedAt != before.OpenedAt || *after.ShouldCloseAt != *before.ShouldCloseAt {
		t.Fatalf("status changed by pause: %+v -> %+v", before, after)
	}
}

func TestPauseService_Pause_Idempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	runningStep(t, h, 0)

	if err := h.pause.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	first := h.modeDoc(t)
	h.clock.Advance(5 * time.Minute)
	if err := h.pause.Pause(ctx); err != nil {
		t.Fatalf("second Pause: %v", err)
	}
	second := h.modeDoc(t)
	if second.PreviousMode != first.PreviousMode || *second.PausedAt != *first.PausedAt {
		t.Fatalf("pause record changed: %+v -> %+v", first, second)
	}
}

func TestPauseService_Pause_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("no mode document", func(t *testing.T) {
		h := newHarness(t)
		if err := h.pause.Pause(ctx); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("mode write fails", func(t *testing.T) {
		h := newHarness(t)
		runningStep(t, h, 1)
		h.store.setErr[repository.KeyMode] = errors.New("READONLY")
		if err := h.pause.Pause(ctx); !errors.Is(err, ErrPersistence) {
			t.Fatalf("err = %v, want ErrPersistence", err)
		}
		h.assertOnlyOpen(t, 1)
	})

	t.Run("driver fails after mode write", func(t *testing.T) {
		h := newHarness(t)
		runningStep(t, h, 1)
		h.bank.FailNext(relay.OpCloseAll, errors.New("board offline"))
		if err := h.pause.Pause(ctx); !errors.Is(err, ErrDriver) {
			t.Fatalf("err = %v, want ErrDriver", err)
		}
		if doc := h.modeDoc(t); doc.Current != "pause" {
			t.Fatalf("mode = %q, mode write is not rolled back", doc.Current)
		}
	})
}

func TestPauseService_Resume_ShiftsDeadlineByPauseLength(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	runningStep(t, h, 3)
	h.clock.Advance(100 * time.Second)
	before := *h.status(t).ShouldCloseAt

	if err := h.pause.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	const pauseLen = 437 * time.Second
	h.clock.Advance(pauseLen)
	if err := h.pause.Resume(ctx); err != nil {
		t.Fatalf("Resume: %v", err)
	}

	st := h.status(t)
	if got := *st.ShouldCloseAt - before; got != int64(pauseLen/time.Second) {
		t.Fatalf("deadline shifted by %ds, want %d", got, int64(pauseLen/time.Second))
	}
	doc := h.modeDoc(t)
	if doc.Current != "auto" || doc.PreviousMode != "" || doc.PausedAt != nil {
		t.Fatalf("mode doc after resume = %+v", doc)
	}
	h.assertOnlyOpen(t, 3)
}

func TestPauseService_Resume_OpenEndedStep(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.seedSettings(t, settingsWith(10, 10, 10, 10, 10, 10, 10, 0))
	h.seedMode(t, models.ModeSemiAuto)
	if err := h.sequence.StartStep(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if err := h.pause.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	h.clock.Advance(time.Hour)

	if err := h.pause.Resume(ctx); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if st := h.status(t); st.ShouldCloseAt != nil {
		t.Fatalf("deadline appeared: %+v", st)
	}
	if doc := h.modeDoc(t); doc.Current != "semi_auto" {
		t.Fatalf("mode = %q", doc.Current)
	}
	h.assertOnlyOpen(t, 7)
}

func TestPauseService_Resume_Preconditions(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name  string
		setup func(t *testing.T, h *harness)
		want  error
	}{
		{
			name:  "no mode document",
			setup: func(t *testing.T, h *harness) {},
			want:  ErrNotPaused,
		},
		{
			name:  "not paused",
			setup: func(t *testing.T, h *harness) { h.seedMode(t, models.ModeAuto) },
			want:  ErrNotPaused,
		},
		{
			name:  "plain pause without record",
			setup: func(t *testing.T, h *harness) { h.seedMode(t, models.ModePause) },
			want:  ErrNotPaused,
		},
		{
			name: "paused_at missing",
			setup: func(t *testing.T, h *harness) {
				h.putJSON(t, repository.KeyMode, map[string]any{"current": "pause", "previous_mode": "auto"})
			},
			want: ErrNotPaused,
		},
		{
			name: "pause fields under a non-pause mode",
			setup: func(t *testing.T, h *harness) {
				h.putJSON(t, repository.KeyMode, map[string]any{"current": "auto", "previous_mode": "manual", "paused_at": 1})
				h.putJSON(t, repository.KeyStatus, map[string]any{"opened_relay": 2, "opened_at": 1})
			},
			want: ErrNotPaused,
		},
		{
			name: "no status",
			setup: func(t *testing.T, h *harness) {
				h.putJSON(t, repository.KeyMode, models.Paused(models.ModeAuto, 1).Document())
			},
			want: ErrNoActiveStep,
		},
		{
			name: "relay out of range",
			setup: func(t *testing.T, h *harness) {
				h.putJSON(t, repository.KeyMode, models.Paused(models.ModeAuto, 1).Document())
				h.putJSON(t, repository.KeyStatus, map[string]any{"opened_relay": 9, "opened_at": 1})
			},
			want: ErrNoActiveStep,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			tc.setup(t, h)
			if err := h.pause.Resume(ctx); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			h.assertOnlyOpen(t)
		})
	}
}

func TestPauseService_Resume_DriverFailureKeepsShiftedStatus(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	runningStep(t, h, 0)
	before := *h.status(t).ShouldCloseAt
	if err := h.pause.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	h.clock.Advance(30 * time.Second)
	h.bank.FailNext(relay.OpOpen, errors.New("relay stuck"))

	if err := h.pause.Resume(ctx); !errors.Is(err, ErrDriver) {
		t.Fatalf("err = %v, want ErrDriver", err)
	}
	if got := *h.status(t).ShouldCloseAt; got != before+30 {
		t.Fatalf("should_close_at = %d, want %d", got, before+30)
	}
	if doc := h.modeDoc(t); doc.Current != "pause" {
		t.Fatalf("mode = %q, want pause", doc.Current)
	}
}

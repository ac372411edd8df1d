package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"controlling_irrigation/internal/logger"
	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/relay"
	"controlling_irrigation/internal/repository"
)

// ---- Test doubles ----

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(t time.Time) *manualClock { return &manualClock{now: t} }

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// memEventRepo keeps appended events in memory.
type memEventRepo struct {
	mu        sync.Mutex
	events    []models.IrrigationEvent
	appendErr error
}

func (r *memEventRepo) Append(_ context.Context, e models.IrrigationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.events = append(r.events, e)
	return nil
}

func (r *memEventRepo) List(_ context.Context, q repository.EventQuery) ([]models.IrrigationEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.IrrigationEvent
	for _, e := range r.events {
		if q.Type == "" || e.Type == q.Type {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEventRepo) Prune(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.events[:0]
	for _, e := range r.events {
		if !e.OccurredAt.Before(before) {
			kept = append(kept, e)
		}
	}
	n := int64(len(r.events) - len(kept))
	r.events = kept
	return n, nil
}

func (r *memEventRepo) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// faultyStore wraps a store and fails chosen operations per key.
type faultyStore struct {
	repository.DocumentStore
	mu      sync.Mutex
	getErr  map[string]error
	setErr  map[string]error
	delErr  map[string]error
	rewrite map[string][]byte // stored instead of what Set receives
}

func newFaultyStore(inner repository.DocumentStore) *faultyStore {
	return &faultyStore{
		DocumentStore: inner,
		getErr:        map[string]error{},
		setErr:        map[string]error{},
		delErr:        map[string]error{},
		rewrite:       map[string][]byte{},
	}
}

func (s *faultyStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	err := s.getErr[key]
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.DocumentStore.Get(ctx, key)
}

func (s *faultyStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	err, alt := s.setErr[key], s.rewrite[key]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if alt != nil {
		value = alt
	}
	return s.DocumentStore.Set(ctx, key, value)
}

func (s *faultyStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	err := s.delErr[key]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.DocumentStore.Delete(ctx, key)
}

// ---- Harness ----

// sunday2000 is Sunday 2024-06-02 20:00:00 UTC.
var sunday2000 = time.Date(2024, time.June, 2, 20, 0, 0, 0, time.UTC)

type harness struct {
	store  *faultyStore
	bank   *relay.Bank
	clock  *manualClock
	events *memEventRepo
	svc    *Service

	modes    *ModeService
	sequence *SequenceService
	pause    *PauseService
	loop     *LoopService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := newFaultyStore(repository.NewMemoryStore())
	h := &harness{
		store:  store,
		bank:   relay.NewBank(),
		clock:  newManualClock(sunday2000.Add(-time.Hour)),
		events: &memEventRepo{},
	}
	repos := &repository.Repository{
		ModeRepo:     repository.NewModeDocRepo(store),
		StatusRepo:   repository.NewStatusDocRepo(store),
		SettingsRepo: repository.NewSettingsDocRepo(store),
		EventRepo:    h.events,
	}
	h.svc = NewService(repos, h.bank, Options{Clock: h.clock, Location: time.UTC, Log: logger.Nop()})
	h.modes = h.svc.ModeControl.(*ModeService)
	h.sequence = h.svc.Sequencer.(*SequenceService)
	h.pause = h.svc.PauseControl.(*PauseService)
	h.loop = h.svc.Loop.(*LoopService)
	return h
}

func (h *harness) putJSON(t *testing.T, key string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.store.DocumentStore.Set(context.Background(), key, b); err != nil {
		t.Fatal(err)
	}
}

func (h *harness) seedSettings(t *testing.T, s models.Settings) {
	t.Helper()
	h.putJSON(t, repository.KeySettings, s)
}

func (h *harness) seedMode(t *testing.T, name models.ModeName) {
	t.Helper()
	h.putJSON(t, repository.KeyMode, models.NewMode(name).Document())
}

func (h *harness) modeDoc(t *testing.T) models.ModeDocument {
	t.Helper()
	raw, err := h.store.DocumentStore.Get(context.Background(), repository.KeyMode)
	if err != nil {
		t.Fatalf("read mode: %v", err)
	}
	var doc models.ModeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode mode: %v", err)
	}
	return doc
}

func (h *harness) status(t *testing.T) *models.Status {
	t.Helper()
	st, err := repository.NewStatusDocRepo(h.store.DocumentStore).Load(context.Background())
	if err != nil {
		t.Fatalf("read status: %v", err)
	}
	return st
}

func (h *harness) assertOnlyOpen(t *testing.T, want ...int) {
	t.Helper()
	got := h.bank.OpenIndexes()
	if len(got) != len(want) {
		t.Fatalf("open relays = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("open relays = %v, want %v", got, want)
		}
	}
}

// settingsWith returns a Sunday 20:00 schedule with the given durations.
func settingsWith(seq ...int) models.Settings {
	s := models.DefaultSettings()
	s.Sequence = seq
	return s
}

func uniform(d int) []int {
	seq := make([]int, models.RelayCount)
	for i := range seq {
		seq[i] = d
	}
	return seq
}

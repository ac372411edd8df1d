package relay

import (
	"context"
	"sync"
)

// Bank is an in-memory relay board used for simulation and tests. Faults can
// be injected per operation with FailNext.
type Bank struct {
	mu    sync.Mutex
	open  [Count]bool
	fail  map[string]error
	calls []string
}

// Operation names accepted by FailNext.
const (
	OpOpen     = "open"
	OpClose    = "close"
	OpCloseAll = "close_all"
	OpOpenAll  = "open_all"
)

func NewBank() *Bank {
	return &Bank{fail: make(map[string]error)}
}

// FailNext makes the next call of op return err.
func (b *Bank) FailNext(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[op] = err
}

func (b *Bank) takeFault(op string) error {
	err := b.fail[op]
	delete(b.fail, op)
	b.calls = append(b.calls, op)
	return err
}

func (b *Bank) Open(_ context.Context, index int) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.takeFault(OpOpen); err != nil {
		return err
	}
	b.open[index] = true
	return nil
}

func (b *Bank) Close(_ context.Context, index int) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.takeFault(OpClose); err != nil {
		return err
	}
	b.open[index] = false
	return nil
}

func (b *Bank) CloseAll(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.takeFault(OpCloseAll); err != nil {
		return err
	}
	b.open = [Count]bool{}
	return nil
}

func (b *Bank) OpenAll(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.takeFault(OpOpenAll); err != nil {
		return err
	}
	for i := range b.open {
		b.open[i] = true
	}
	return nil
}

// Snapshot returns the open/closed state of every valve.
func (b *Bank) Snapshot() [Count]bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// OpenIndexes lists the valves currently open.
func (b *Bank) OpenIndexes() []int {
	snap := b.Snapshot()
	var out []int
	for i, on := range snap {
		if on {
			out = append(out, i)
		}
	}
	return out
}

// Calls returns the operations received so far, in order.
func (b *Bank) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Package relay drives the eight irrigation valves.
//
// Drivers only translate a valve index into a hardware command. They do not
// enforce that a single valve is open; the sequence engine does that by
// closing everything before opening the next valve.
package relay

import (
	"context"
	"errors"
	"fmt"
)

// Count is the number of valves on every supported board.
const Count = 8

// ErrInvalidIndex is returned for indexes outside [0, Count).
var ErrInvalidIndex = errors.New("relay index out of range")

// Driver switches valves. Every call may block on I/O and may fail.
type Driver interface {
	Open(ctx context.Context, index int) error
	Close(ctx context.Context, index int) error
	CloseAll(ctx context.Context) error
	OpenAll(ctx context.Context) error
}

func checkIndex(index int) error {
	if index < 0 || index >= Count {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	return nil
}

// forEach applies fn to every valve and stops at the first error.
func forEach(ctx context.Context, fn func(ctx context.Context, index int) error) error {
	for i := 0; i < Count; i++ {
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

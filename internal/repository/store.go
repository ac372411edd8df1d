package repository

import (
	"context"
	"errors"
)

// Errors returned by the document layer.
var (
	ErrNotFound  = errors.New("document not found")
	ErrMalformed = errors.New("document malformed")
)

// Document keys shared with the control API.
const (
	KeyMode     = "mode"
	KeyStatus   = "status"
	KeySettings = "settings"
)

// DocumentStore is the shared key/value store holding JSON documents.
//
// The store is shared with other writers (the control API, operator tools)
// without locking, versioning or compare-and-swap: every Set is
// last-writer-wins and every read-modify-write sequence built on top of it
// may interleave with a concurrent writer. Callers must tolerate that.
// Implementations never retry; timeouts come from ctx or the backend.
type DocumentStore interface {
	// Get returns the raw document or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

package service

import (
	"errors"
	"fmt"
)

// Error kinds returned by the controller. Callers match them with errors.Is;
// the underlying cause stays in the chain.
var (
	ErrInvalidMode     = errors.New("invalid mode")
	ErrInvalidIndex    = errors.New("relay index out of range")
	ErrNotFound        = errors.New("document not found")
	ErrSettingsMissing = errors.New("settings missing or malformed")
	ErrStatusMalformed = errors.New("status malformed")
	ErrNotPaused       = errors.New("controller is not paused")
	ErrNoActiveStep    = errors.New("no active step to resume")
	ErrPersistence     = errors.New("persistence failure")
	ErrDriver          = errors.New("relay driver failure")
	ErrInvalidSettings = errors.New("invalid settings")
)

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func driverErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDriver, op, err)
}

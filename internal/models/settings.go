package models

import (
	"errors"
	"fmt"
	"time"
)

// ScheduleDays is the number of weekday flags, Monday first.
const ScheduleDays = 7

// StartAtLayout is the minute resolution clock layout of Settings.StartAt.
const StartAtLayout = "15:04"

// Settings is the operator owned configuration document.
type Settings struct {
	StartAt  string `json:"start_at"` // HH:MM
	Sequence []int  `json:"sequence"` // seconds per relay, 0 keeps the relay open
	Schedule []bool `json:"schedule"` // Monday..Sunday
}

var (
	errSequenceLength = fmt.Errorf("sequence must hold exactly %d durations", RelayCount)
	errScheduleLength = fmt.Errorf("schedule must hold exactly %d flags", ScheduleDays)
	errNegativeStep   = errors.New("sequence durations must be >= 0")
)

// ValidateSequence checks only what the sequence engine relies on.
func (s Settings) ValidateSequence() error {
	if len(s.Sequence) != RelayCount {
		return errSequenceLength
	}
	for i, d := range s.Sequence {
		if d < 0 {
			return fmt.Errorf("relay %d: %w", i, errNegativeStep)
		}
	}
	return nil
}

// Validate checks the full document before it is stored.
func (s Settings) Validate() error {
	if err := s.ValidateSequence(); err != nil {
		return err
	}
	if len(s.Schedule) != ScheduleDays {
		return errScheduleLength
	}
	if _, err := time.Parse(StartAtLayout, s.StartAt); err != nil || len(s.StartAt) != len(StartAtLayout) {
		return fmt.Errorf("start_at %q must be HH:MM", s.StartAt)
	}
	return nil
}

// Duration returns the configured run time of relay i.
func (s Settings) Duration(i int) time.Duration {
	return time.Duration(s.Sequence[i]) * time.Second
}

// DefaultSettings is what the seeder writes on a fresh store: Sunday 20:00,
// one hour per valve and the last valve held open.
func DefaultSettings() Settings {
	seq := make([]int, RelayCount)
	for i := range seq {
		seq[i] = 3600
	}
	seq[LastRelay] = 0
	sched := make([]bool, ScheduleDays)
	sched[ScheduleDays-1] = true
	return Settings{StartAt: "20:00", Sequence: seq, Schedule: sched}
}

package models

import "time"

// Event types written to the event log.
const (
	EventModeChange      = "MODE_CHANGE"
	EventSequenceStart   = "SEQUENCE_START"
	EventStepStart       = "STEP_START"
	EventPause           = "PAUSE"
	EventResume          = "RESUME"
	EventReset           = "RESET"
	EventScheduleTrigger = "SCHEDULE_TRIGGER"
	EventSettingsChange  = "SETTINGS_CHANGE"
	EventError           = "ERROR"
)

// IrrigationEvent is a single log entry.
type IrrigationEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // MODE_CHANGE | STEP_START | PAUSE | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

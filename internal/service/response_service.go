package service

import "time"

// Page size bounds for log listings.
const (
	DefaultLogLimit = 200
	MaxLogLimit     = 1000
)

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Type  string    // "", "MODE_CHANGE", "STEP_START", "PAUSE", "RESUME", ...
	Limit int       // newest entries to return; 0 means DefaultLogLimit
}

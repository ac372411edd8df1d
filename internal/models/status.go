package models

// RelayCount is the number of valves driven by the controller.
const RelayCount = 8

// LastRelay is the index of the final step of a sequence.
const LastRelay = RelayCount - 1

// ValidRelay reports whether i addresses one of the valves.
func ValidRelay(i int) bool {
	return i >= 0 && i < RelayCount
}

// Status is the single active step. Its absence means the controller is idle.
type Status struct {
	OpenedRelay   int    `json:"opened_relay"`
	OpenedAt      int64  `json:"opened_at"`                 // unix seconds
	ShouldCloseAt *int64 `json:"should_close_at,omitempty"` // unset for zero duration steps
}

// HasDeadline reports whether the step ends by time.
func (s Status) HasDeadline() bool {
	return s.ShouldCloseAt != nil
}

// Remaining returns the seconds left before the deadline at now, clamped at 0.
// ok is false for steps without a deadline.
func (s Status) Remaining(now int64) (secs int64, ok bool) {
	if s.ShouldCloseAt == nil {
		return 0, false
	}
	left := *s.ShouldCloseAt - now
	if left < 0 {
		left = 0
	}
	return left, true
}

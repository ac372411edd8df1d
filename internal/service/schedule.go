package service

import (
	"time"

	"controlling_irrigation/internal/models"
)

// ScheduleDay returns the schedule index of t: Monday is 0, Sunday is 6.
func ScheduleDay(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ShouldTrigger reports whether a sequence must start at now. The match is on
// the exact minute, so it holds for at most one minute per scheduled day.
func ShouldTrigger(s models.Settings, now time.Time) bool {
	if len(s.Schedule) == 0 || s.StartAt == "" {
		return false
	}
	day := ScheduleDay(now)
	if day >= len(s.Schedule) || !s.Schedule[day] {
		return false
	}
	return now.Format(models.StartAtLayout) == s.StartAt
}

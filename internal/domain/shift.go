package domain

import "time"

// Shift is the working shift bucket derived from an event's wall-clock hour.
type Shift string

const (
	ShiftDay       Shift = "DAY_SHIFT"
	ShiftAfternoon Shift = "AFTERNOON_SHIFT"
	ShiftNight     Shift = "NIGHT_SHIFT"
)

// ShiftAt buckets an instant into a shift: [06:00,14:00) day,
// [14:00,22:00) afternoon, everything else night.
func ShiftAt(t time.Time) Shift {
	switch h := t.Hour(); {
	case h >= 6 && h < 14:
		return ShiftDay
	case h >= 14 && h < 22:
		return ShiftAfternoon
	default:
		return ShiftNight
	}
}

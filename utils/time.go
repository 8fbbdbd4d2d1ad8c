package utils

import (
	"fmt"
	"time"
)

const (
	clockLayout = "15:04:05"
	dateLayout  = "2006-01-02"
)

// ValidateClock enforces the "HH:MM:SS" wall-clock format slots and
// bookings use. Second precision, no offsets.
func ValidateClock(s string) error {
	if len(s) != len(clockLayout) {
		return fmt.Errorf("time %q must match HH:MM:SS", s)
	}
	if _, err := time.Parse(clockLayout, s); err != nil {
		return fmt.Errorf("time %q must match HH:MM:SS", s)
	}
	return nil
}

// ClockBefore compares two validated "HH:MM:SS" strings. Fixed-width
// zero-padded clocks order lexicographically.
func ClockBefore(a, b string) bool {
	return a < b
}

// ParseDate enforces the "YYYY-MM-DD" calendar-date format.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must match YYYY-MM-DD", s)
	}
	return t, nil
}

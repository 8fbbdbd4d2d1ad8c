package models

import (
	"fmt"

	"gorm.io/gorm"
)

type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// ParseDayOfWeek validates the numeric day value at the API boundary.
func ParseDayOfWeek(d int) (DayOfWeek, error) {
	if d < int(Sunday) || d > int(Saturday) {
		return 0, fmt.Errorf("day_of_week must be 0-6, got %d", d)
	}
	return DayOfWeek(d), nil
}

func (d DayOfWeek) String() string {
	switch d {
	case Sunday:
		return "sunday"
	case Monday:
		return "monday"
	case Tuesday:
		return "tuesday"
	case Wednesday:
		return "wednesday"
	case Thursday:
		return "thursday"
	case Friday:
		return "friday"
	case Saturday:
		return "saturday"
	}
	return "unknown"
}

// AvailabilitySlot is a recurring weekly window a therapist offers.
// A slot referenced by a pending or confirmed booking is never deleted,
// only deactivated.
type AvailabilitySlot struct {
	gorm.Model
	TherapistID uint      `json:"therapist_id" gorm:"uniqueIndex:idx_slot_day_start"`
	Therapist   User      `json:"therapist,omitempty" gorm:"foreignKey:TherapistID"`
	DayOfWeek   DayOfWeek `json:"day_of_week" gorm:"uniqueIndex:idx_slot_day_start"`
	IsWeekday   bool      `json:"is_weekday"`
	StartTime   string    `json:"start_time" gorm:"uniqueIndex:idx_slot_day_start"` // "HH:MM:SS"
	EndTime     string    `json:"end_time"`                                         // "HH:MM:SS"
	IsActive    bool      `json:"is_active" gorm:"default:true"`
}

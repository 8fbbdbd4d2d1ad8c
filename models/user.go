package models

import (
	"fmt"
	"time"
)

type UserStatus string

const (
	StatusUserPending   UserStatus = "pending"
	StatusUserActive    UserStatus = "active"
	StatusUserInactive  UserStatus = "inactive"
	StatusUserSuspended UserStatus = "suspended"
)

// ParseUserStatus validates a status string at the API boundary.
func ParseUserStatus(s string) (UserStatus, error) {
	switch UserStatus(s) {
	case StatusUserPending, StatusUserActive, StatusUserInactive, StatusUserSuspended:
		return UserStatus(s), nil
	default:
		return "", fmt.Errorf("unknown user status %q", s)
	}
}

type User struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Name           string     `json:"name"`
	Email          string     `json:"email" gorm:"unique"`
	Password       string     `json:"password,omitempty"`
	RoleID         uint       `json:"role_id"`
	Role           Role       `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	Status         UserStatus `json:"status" gorm:"default:active"`
	SessionFee     float64    `json:"session_fee"`
	ProfilePicture string     `json:"profile_picture"`

	AvailabilitySlots []AvailabilitySlot `json:"availability_slots,omitempty" gorm:"foreignKey:TherapistID"`
	Bookings          []Booking          `json:"bookings,omitempty" gorm:"foreignKey:TherapistID"`
	CustomerBookings  []Booking          `json:"customer_bookings,omitempty" gorm:"foreignKey:CustomerID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTherapist reports whether the user carries the therapist role.
// Role must be preloaded.
func (u *User) IsTherapist() bool {
	return u.Role.Name == RoleTherapist
}

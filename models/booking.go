package models

import (
	"fmt"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// NonTerminalStatuses are the statuses that still occupy the slot/time
// exclusively. The partial unique index over bookings is filtered to
// exactly these.
var NonTerminalStatuses = []BookingStatus{StatusPending, StatusConfirmed}

// ParseBookingStatus validates a status string at the API boundary.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return BookingStatus(s), nil
	default:
		return "", fmt.Errorf("unknown booking status %q", s)
	}
}

// CanTransitionTo reports whether the forward-only status machine allows
// moving from s to next. Cancellation is a status change, never a delete.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

type SessionKind string

const (
	SessionVideo    SessionKind = "video"
	SessionAudio    SessionKind = "audio"
	SessionInPerson SessionKind = "in_person"
)

func ParseSessionKind(s string) (SessionKind, error) {
	switch SessionKind(s) {
	case SessionVideo, SessionAudio, SessionInPerson:
		return SessionKind(s), nil
	default:
		return "", fmt.Errorf("unknown session kind %q", s)
	}
}

// Booking reserves one slot for one calendar date. Date is "YYYY-MM-DD",
// StartTime/EndTime are "HH:MM:SS" wall clock.
type Booking struct {
	gorm.Model
	CustomerID         uint             `json:"customer_id"`
	Customer           User             `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	TherapistID        uint             `json:"therapist_id"`
	Therapist          User             `json:"therapist,omitempty" gorm:"foreignKey:TherapistID"`
	AvailabilitySlotID uint             `json:"availability_slot_id"`
	AvailabilitySlot   AvailabilitySlot `json:"availability_slot,omitempty" gorm:"foreignKey:AvailabilitySlotID"`
	Date               string           `json:"date" gorm:"size:10"`
	StartTime          string           `json:"start_time"`
	EndTime            string           `json:"end_time"`
	Status             BookingStatus    `json:"status"`
	SessionKind        SessionKind      `json:"session_kind"`
	Price              float64          `json:"price"`
	IsPaid             bool             `json:"is_paid"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = StatusPending
	}
	return nil
}

// UpdateStatus applies a forward-only transition and persists it.
func (b *Booking) UpdateStatus(tx *gorm.DB, next BookingStatus) error {
	if !b.Status.CanTransitionTo(next) {
		return fmt.Errorf("invalid transition from %s to %s", b.Status, next)
	}
	b.Status = next
	return tx.Model(b).Update("status", next).Error
}

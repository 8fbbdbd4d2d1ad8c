package models

import (
	"time"
)

type TherapistEventKind string

const (
	EventTherapistCreated       TherapistEventKind = "created"
	EventTherapistNameChanged   TherapistEventKind = "name-changed"
	EventTherapistStatusChanged TherapistEventKind = "status-changed"
)

// OutboxEvent records a therapist identity/status change in the same
// transaction as the authoritative write. A worker drains the table and
// applies the corresponding search-index mutation, deleting the row only
// after the index confirmed it. Rows survive index outages and are
// retried with backoff.
type OutboxEvent struct {
	ID            uint               `json:"id" gorm:"primaryKey"`
	EventID       string             `json:"event_id" gorm:"unique"`
	Kind          TherapistEventKind `json:"kind"`
	TherapistID   uint               `json:"therapist_id" gorm:"index"`
	Name          string             `json:"name"`
	Status        UserStatus         `json:"status"`
	Attempts      int                `json:"attempts"`
	NextAttemptAt time.Time          `json:"next_attempt_at" gorm:"index"`
	CreatedAt     time.Time          `json:"created_at"`
}

package services

import (
	"context"
	"errors"

	"github.com/mindsettle/therapy-app/models"
	"github.com/mindsettle/therapy-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultSessionFee prices a booking when the therapist has not set a
// session fee. The resolved price is frozen on the booking at creation.
const DefaultSessionFee = 60.0

// ReservationInput is the customer-facing reservation request.
type ReservationInput struct {
	TherapistID        uint   `json:"therapist_id"`
	AvailabilitySlotID uint   `json:"availability_id"`
	Date               string `json:"date"`
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	SessionKind        string `json:"session_kind"`
}

type BookingService struct {
	db *gorm.DB
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

func validateReservationInput(in ReservationInput) (models.SessionKind, error) {
	if in.TherapistID == 0 || in.AvailabilitySlotID == 0 {
		return "", utils.InvalidInput("therapist_id and availability_id are required")
	}
	if _, err := utils.ParseDate(in.Date); err != nil {
		return "", utils.InvalidInput(err.Error())
	}
	if err := utils.ValidateClock(in.StartTime); err != nil {
		return "", utils.InvalidInput(err.Error())
	}
	if err := utils.ValidateClock(in.EndTime); err != nil {
		return "", utils.InvalidInput(err.Error())
	}
	if !utils.ClockBefore(in.StartTime, in.EndTime) {
		return "", utils.InvalidInput("start time must be before end time")
	}
	kind := models.SessionVideo
	if in.SessionKind != "" {
		parsed, err := models.ParseSessionKind(in.SessionKind)
		if err != nil {
			return "", utils.InvalidInput(err.Error())
		}
		kind = parsed
	}
	return kind, nil
}

// resolvePrice freezes the session price at creation time; it is never
// recomputed after the therapist changes their fee.
func resolvePrice(sessionFee float64) float64 {
	if sessionFee > 0 {
		return sessionFee
	}
	return DefaultSessionFee
}

// Reserve validates and commits a reservation. The slot row is locked
// for the check, and the partial unique index over non-terminal
// bookings is the final arbiter: when two requests race for the same
// (slot, date, start), the store lets exactly one insert through and
// the loser gets a conflict.
func (s *BookingService) Reserve(ctx context.Context, customerID uint, in ReservationInput) (*models.Booking, error) {
	kind, err := validateReservationInput(in)
	if err != nil {
		return nil, err
	}

	var booking models.Booking
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var therapist models.User
		err := tx.Preload("Role").First(&therapist, in.TherapistID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("therapist not found")
		}
		if err != nil {
			return err
		}
		if !therapist.IsTherapist() {
			return utils.NotFound("therapist not found")
		}

		var slot models.AvailabilitySlot
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&slot, in.AvailabilitySlotID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("availability slot not found")
		}
		if err != nil {
			return err
		}
		if slot.TherapistID != therapist.ID {
			return utils.Unauthorized("slot does not belong to this therapist")
		}
		if !slot.IsActive {
			return utils.Conflict("this slot is no longer offered")
		}

		var held int64
		err = tx.Model(&models.Booking{}).
			Where("availability_slot_id = ? AND date = ? AND start_time = ? AND end_time = ? AND status IN ?",
				slot.ID, in.Date, in.StartTime, in.EndTime, models.NonTerminalStatuses).
			Count(&held).Error
		if err != nil {
			return err
		}
		if held > 0 {
			return utils.Conflict("this time is no longer available")
		}

		booking = models.Booking{
			CustomerID:         customerID,
			TherapistID:        therapist.ID,
			AvailabilitySlotID: slot.ID,
			Date:               in.Date,
			StartTime:          in.StartTime,
			EndTime:            in.EndTime,
			Status:             models.StatusPending,
			SessionKind:        kind,
			Price:              resolvePrice(therapist.SessionFee),
		}
		if err := tx.Create(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.Conflict("this time is no longer available")
			}
			return err
		}
		return nil
	})
	if txErr != nil {
		var appErr *utils.AppError
		if errors.As(txErr, &appErr) {
			return nil, appErr
		}
		return nil, utils.Unavailable("failed to create booking", txErr)
	}
	return &booking, nil
}

// UpdateStatus applies a forward-only transition on behalf of an
// authorized actor. Customers may cancel their own booking; therapists
// confirm, cancel, or complete theirs; admins may do any of it.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID, actorID uint, actorRole string, next models.BookingStatus) (*models.Booking, error) {
	var booking models.Booking
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, bookingID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("booking not found")
		}
		if err != nil {
			return err
		}

		switch actorRole {
		case models.RoleAdmin:
		case models.RoleTherapist:
			if booking.TherapistID != actorID {
				return utils.Unauthorized("booking does not belong to you")
			}
		case models.RoleCustomer:
			if booking.CustomerID != actorID {
				return utils.Unauthorized("booking does not belong to you")
			}
			if next != models.StatusCancelled {
				return utils.Unauthorized("customers may only cancel bookings")
			}
		default:
			return utils.Unauthorized("booking does not belong to you")
		}

		if !booking.Status.CanTransitionTo(next) {
			return utils.Conflict("booking cannot move from " + string(booking.Status) + " to " + string(next))
		}
		return booking.UpdateStatus(tx, next)
	})
	if txErr != nil {
		var appErr *utils.AppError
		if errors.As(txErr, &appErr) {
			return nil, appErr
		}
		return nil, utils.Unavailable("failed to update booking", txErr)
	}
	return &booking, nil
}

// BookedStartTimes lists the occupied start times for one therapist on
// one date, so clients can grey out taken slots.
func (s *BookingService) BookedStartTimes(ctx context.Context, therapistID uint, date string) ([]string, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, utils.InvalidInput(err.Error())
	}

	var times []string
	err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("therapist_id = ? AND date = ? AND status IN ?", therapistID, date, models.NonTerminalStatuses).
		Order("start_time").
		Pluck("start_time", &times).Error
	if err != nil {
		return nil, utils.Unavailable("failed to load booked slots", err)
	}
	return times, nil
}

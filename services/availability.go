package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mindsettle/therapy-app/models"
	"github.com/mindsettle/therapy-app/utils"
	"gorm.io/gorm"
)

// advisory lock namespace for per-therapist reconciliation
const availabilityLockClass = 4217

// SlotInput is one desired weekly entry in a submitted schedule.
// IsActive defaults to true when omitted.
type SlotInput struct {
	DayOfWeek int    `json:"day_of_week"`
	IsWeekday bool   `json:"is_weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsActive  *bool  `json:"is_active"`
}

// ReconcileResult carries the refreshed slot list plus warnings for
// slots that could not be deactivated because a booking still holds
// them. Warnings ride alongside the successful parts, not as a failure.
type ReconcileResult struct {
	Slots    []models.AvailabilitySlot `json:"slots"`
	Warnings []string                  `json:"warnings"`
}

// GroupedSlots is the public availability view, split the way clients
// render it.
type GroupedSlots struct {
	Weekday []models.AvailabilitySlot `json:"weekday"`
	Weekend []models.AvailabilitySlot `json:"weekend"`
}

type AvailabilityService struct {
	db *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: db}
}

// desiredEntry is a validated SlotInput.
type desiredEntry struct {
	day       models.DayOfWeek
	isWeekday bool
	start     string
	end       string
	active    bool
}

type slotKey struct {
	day   models.DayOfWeek
	start string
}

// slotPlan is the minimal change set reconciliation will apply.
// Candidates are stored active slots absent from the desired schedule;
// whether each is deactivated depends on the booking check at apply time.
type slotPlan struct {
	updates    []models.AvailabilitySlot
	inserts    []models.AvailabilitySlot
	candidates []models.AvailabilitySlot
}

// normalizeSchedule validates every entry before any mutation is
// attempted; a single malformed time fails the whole submission.
func normalizeSchedule(desired []SlotInput) ([]desiredEntry, error) {
	entries := make([]desiredEntry, 0, len(desired))
	seen := make(map[slotKey]struct{}, len(desired))
	for i, in := range desired {
		day, err := models.ParseDayOfWeek(in.DayOfWeek)
		if err != nil {
			return nil, utils.InvalidInput(err.Error())
		}
		if err := utils.ValidateClock(in.StartTime); err != nil {
			return nil, utils.InvalidInput(err.Error())
		}
		if err := utils.ValidateClock(in.EndTime); err != nil {
			return nil, utils.InvalidInput(err.Error())
		}
		if !utils.ClockBefore(in.StartTime, in.EndTime) {
			return nil, utils.InvalidInput(fmt.Sprintf("entry %d: start time must be before end time", i))
		}
		key := slotKey{day: day, start: in.StartTime}
		if _, dup := seen[key]; dup {
			return nil, utils.Conflict(fmt.Sprintf("duplicate slot definition for %s %s", day, in.StartTime))
		}
		seen[key] = struct{}{}

		active := true
		if in.IsActive != nil {
			active = *in.IsActive
		}
		entries = append(entries, desiredEntry{
			day:       day,
			isWeekday: in.IsWeekday,
			start:     in.StartTime,
			end:       in.EndTime,
			active:    active,
		})
	}
	return entries, nil
}

// computeSlotPlan diffs the desired schedule against stored slots,
// keyed by (day-of-week, start-time).
func computeSlotPlan(therapistID uint, current []models.AvailabilitySlot, desired []desiredEntry) slotPlan {
	stored := make(map[slotKey]models.AvailabilitySlot, len(current))
	for _, slot := range current {
		stored[slotKey{day: slot.DayOfWeek, start: slot.StartTime}] = slot
	}

	var plan slotPlan
	wanted := make(map[slotKey]struct{}, len(desired))
	for _, entry := range desired {
		key := slotKey{day: entry.day, start: entry.start}
		wanted[key] = struct{}{}

		slot, exists := stored[key]
		if !exists {
			plan.inserts = append(plan.inserts, models.AvailabilitySlot{
				TherapistID: therapistID,
				DayOfWeek:   entry.day,
				IsWeekday:   entry.isWeekday,
				StartTime:   entry.start,
				EndTime:     entry.end,
				IsActive:    entry.active,
			})
			continue
		}
		if slot.EndTime != entry.end || slot.IsActive != entry.active || slot.IsWeekday != entry.isWeekday {
			slot.EndTime = entry.end
			slot.IsActive = entry.active
			slot.IsWeekday = entry.isWeekday
			plan.updates = append(plan.updates, slot)
		}
	}

	for _, slot := range current {
		if !slot.IsActive {
			continue
		}
		if _, ok := wanted[slotKey{day: slot.DayOfWeek, start: slot.StartTime}]; !ok {
			plan.candidates = append(plan.candidates, slot)
		}
	}
	return plan
}

// Reconcile makes the stored weekly schedule match the desired one,
// except that slots held by a pending or confirmed booking are never
// deactivated. Those come back as warnings instead. The whole change set
// applies in one transaction under a per-therapist advisory lock, so
// concurrent submissions for the same therapist serialize.
func (s *AvailabilityService) Reconcile(ctx context.Context, therapistID uint, desired []SlotInput) (*ReconcileResult, error) {
	entries, err := normalizeSchedule(desired)
	if err != nil {
		return nil, err
	}

	var warnings []string
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", availabilityLockClass, int32(therapistID)).Error; err != nil {
			return err
		}

		var current []models.AvailabilitySlot
		if err := tx.Where("therapist_id = ?", therapistID).Find(&current).Error; err != nil {
			return err
		}

		plan := computeSlotPlan(therapistID, current, entries)

		for i := range plan.updates {
			slot := plan.updates[i]
			err := tx.Model(&models.AvailabilitySlot{}).Where("id = ?", slot.ID).
				Updates(map[string]interface{}{
					"end_time":   slot.EndTime,
					"is_active":  slot.IsActive,
					"is_weekday": slot.IsWeekday,
				}).Error
			if err != nil {
				return err
			}
		}
		for i := range plan.inserts {
			if err := tx.Create(&plan.inserts[i]).Error; err != nil {
				return err
			}
		}
		for _, slot := range plan.candidates {
			var held int64
			err := tx.Model(&models.Booking{}).
				Where("availability_slot_id = ? AND status IN ?", slot.ID, models.NonTerminalStatuses).
				Count(&held).Error
			if err != nil {
				return err
			}
			if held > 0 {
				warnings = append(warnings, fmt.Sprintf(
					"slot %s %s-%s was kept active: %d booking(s) still hold it",
					slot.DayOfWeek, slot.StartTime, slot.EndTime, held))
				continue
			}
			err = tx.Model(&models.AvailabilitySlot{}).Where("id = ?", slot.ID).
				Update("is_active", false).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		var appErr *utils.AppError
		if errors.As(txErr, &appErr) {
			return nil, appErr
		}
		return nil, utils.Unavailable("failed to update availability", txErr)
	}

	var slots []models.AvailabilitySlot
	err = s.db.WithContext(ctx).
		Where("therapist_id = ?", therapistID).
		Order("day_of_week, start_time").
		Find(&slots).Error
	if err != nil {
		return nil, utils.Unavailable("failed to load availability", err)
	}
	return &ReconcileResult{Slots: slots, Warnings: warnings}, nil
}

// Deactivate flips one slot inactive on behalf of its owner or an
// admin. A slot held by a pending or confirmed booking stays active.
func (s *AvailabilityService) Deactivate(ctx context.Context, slotID, requesterID uint, isAdmin bool) error {
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot models.AvailabilitySlot
		if err := tx.First(&slot, slotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("availability slot not found")
			}
			return err
		}
		if !isAdmin && slot.TherapistID != requesterID {
			return utils.Unauthorized("you do not own this availability slot")
		}

		var held int64
		err := tx.Model(&models.Booking{}).
			Where("availability_slot_id = ? AND status IN ?", slot.ID, models.NonTerminalStatuses).
			Count(&held).Error
		if err != nil {
			return err
		}
		if held > 0 {
			return utils.Conflict("slot has active bookings and cannot be deactivated")
		}
		return tx.Model(&slot).Update("is_active", false).Error
	})
	if txErr != nil {
		var appErr *utils.AppError
		if errors.As(txErr, &appErr) {
			return appErr
		}
		return utils.Unavailable("failed to deactivate slot", txErr)
	}
	return nil
}

// ListForTherapist returns the therapist's active slots grouped for the
// public availability view.
func (s *AvailabilityService) ListForTherapist(ctx context.Context, therapistID uint) (*GroupedSlots, error) {
	var slots []models.AvailabilitySlot
	err := s.db.WithContext(ctx).
		Where("therapist_id = ? AND is_active = ?", therapistID, true).
		Order("day_of_week, start_time").
		Find(&slots).Error
	if err != nil {
		return nil, utils.Unavailable("failed to load availability", err)
	}

	grouped := &GroupedSlots{
		Weekday: []models.AvailabilitySlot{},
		Weekend: []models.AvailabilitySlot{},
	}
	for _, slot := range slots {
		if slot.IsWeekday {
			grouped.Weekday = append(grouped.Weekday, slot)
		} else {
			grouped.Weekend = append(grouped.Weekend, slot)
		}
	}
	return grouped, nil
}

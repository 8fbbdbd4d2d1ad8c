package services

import (
	"testing"

	"github.com/mindsettle/therapy-app/models"
	"github.com/mindsettle/therapy-app/utils"
)

func boolPtr(b bool) *bool { return &b }

func TestNormalizeScheduleRejectsBeforeAnyMutation(t *testing.T) {
	cases := []struct {
		name    string
		in      []SlotInput
		kind    utils.ErrorKind
		wantErr bool
	}{
		{
			name: "valid",
			in: []SlotInput{
				{DayOfWeek: 1, IsWeekday: true, StartTime: "09:00:00", EndTime: "10:00:00"},
				{DayOfWeek: 6, StartTime: "11:00:00", EndTime: "12:00:00", IsActive: boolPtr(false)},
			},
		},
		{
			name:    "malformed start time",
			in:      []SlotInput{{DayOfWeek: 1, StartTime: "9:00", EndTime: "10:00:00"}},
			kind:    utils.KindInvalidInput,
			wantErr: true,
		},
		{
			name:    "malformed end time",
			in:      []SlotInput{{DayOfWeek: 1, StartTime: "09:00:00", EndTime: "25:00:00"}},
			kind:    utils.KindInvalidInput,
			wantErr: true,
		},
		{
			name:    "start after end",
			in:      []SlotInput{{DayOfWeek: 1, StartTime: "11:00:00", EndTime: "10:00:00"}},
			kind:    utils.KindInvalidInput,
			wantErr: true,
		},
		{
			name:    "day out of range",
			in:      []SlotInput{{DayOfWeek: 7, StartTime: "09:00:00", EndTime: "10:00:00"}},
			kind:    utils.KindInvalidInput,
			wantErr: true,
		},
		{
			name: "duplicate key",
			in: []SlotInput{
				{DayOfWeek: 1, StartTime: "09:00:00", EndTime: "10:00:00"},
				{DayOfWeek: 1, StartTime: "09:00:00", EndTime: "11:00:00"},
			},
			kind:    utils.KindConflict,
			wantErr: true,
		},
		{
			name: "one bad entry fails the whole submission",
			in: []SlotInput{
				{DayOfWeek: 1, StartTime: "09:00:00", EndTime: "10:00:00"},
				{DayOfWeek: 2, StartTime: "bogus", EndTime: "10:00:00"},
			},
			kind:    utils.KindInvalidInput,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := normalizeSchedule(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				if got := utils.KindOf(err); got != tc.kind {
					t.Errorf("error kind = %q, want %q", got, tc.kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(entries) != len(tc.in) {
				t.Errorf("got %d entries, want %d", len(entries), len(tc.in))
			}
		})
	}
}

func TestNormalizeScheduleDefaultsActive(t *testing.T) {
	entries, err := normalizeSchedule([]SlotInput{
		{DayOfWeek: 1, StartTime: "09:00:00", EndTime: "10:00:00"},
		{DayOfWeek: 2, StartTime: "09:00:00", EndTime: "10:00:00", IsActive: boolPtr(false)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !entries[0].active {
		t.Error("omitted is_active should default to true")
	}
	if entries[1].active {
		t.Error("explicit is_active=false should be kept")
	}
}

func mustEntries(t *testing.T, in []SlotInput) []desiredEntry {
	t.Helper()
	entries, err := normalizeSchedule(in)
	if err != nil {
		t.Fatalf("normalizeSchedule: %v", err)
	}
	return entries
}

func storedSlot(id uint, day models.DayOfWeek, start, end string, active, weekday bool) models.AvailabilitySlot {
	slot := models.AvailabilitySlot{
		TherapistID: 7,
		DayOfWeek:   day,
		IsWeekday:   weekday,
		StartTime:   start,
		EndTime:     end,
		IsActive:    active,
	}
	slot.ID = id
	return slot
}

func TestComputeSlotPlanInsertsNewKeys(t *testing.T) {
	desired := mustEntries(t, []SlotInput{
		{DayOfWeek: 1, IsWeekday: true, StartTime: "09:00:00", EndTime: "10:00:00"},
	})

	plan := computeSlotPlan(7, nil, desired)
	if len(plan.inserts) != 1 || len(plan.updates) != 0 || len(plan.candidates) != 0 {
		t.Fatalf("plan = %d inserts, %d updates, %d candidates; want 1/0/0",
			len(plan.inserts), len(plan.updates), len(plan.candidates))
	}
	ins := plan.inserts[0]
	if ins.TherapistID != 7 || ins.DayOfWeek != models.Monday || !ins.IsActive {
		t.Errorf("insert not populated from entry: %+v", ins)
	}
}

func TestComputeSlotPlanUpdatesChangedFields(t *testing.T) {
	current := []models.AvailabilitySlot{
		storedSlot(1, models.Monday, "09:00:00", "10:00:00", true, true),
		storedSlot(2, models.Tuesday, "09:00:00", "10:00:00", true, true),
	}
	desired := mustEntries(t, []SlotInput{
		// same key, longer window
		{DayOfWeek: 1, IsWeekday: true, StartTime: "09:00:00", EndTime: "11:00:00"},
		// identical to stored, no update expected
		{DayOfWeek: 2, IsWeekday: true, StartTime: "09:00:00", EndTime: "10:00:00"},
	})

	plan := computeSlotPlan(7, current, desired)
	if len(plan.updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(plan.updates))
	}
	if plan.updates[0].ID != 1 || plan.updates[0].EndTime != "11:00:00" {
		t.Errorf("wrong update: %+v", plan.updates[0])
	}
	if len(plan.inserts) != 0 || len(plan.candidates) != 0 {
		t.Errorf("unexpected inserts/candidates: %d/%d", len(plan.inserts), len(plan.candidates))
	}
}

func TestComputeSlotPlanFlagsOmittedActiveSlots(t *testing.T) {
	current := []models.AvailabilitySlot{
		storedSlot(1, models.Monday, "09:00:00", "10:00:00", true, true),
		storedSlot(2, models.Wednesday, "09:00:00", "10:00:00", false, true), // already inactive
	}
	desired := mustEntries(t, []SlotInput{
		{DayOfWeek: 5, IsWeekday: true, StartTime: "14:00:00", EndTime: "15:00:00"},
	})

	plan := computeSlotPlan(7, current, desired)
	if len(plan.candidates) != 1 || plan.candidates[0].ID != 1 {
		t.Fatalf("expected only the active omitted slot as candidate, got %+v", plan.candidates)
	}
	if len(plan.inserts) != 1 {
		t.Errorf("expected the new friday slot to be inserted")
	}
}

func TestComputeSlotPlanReactivatesViaUpdate(t *testing.T) {
	current := []models.AvailabilitySlot{
		storedSlot(1, models.Monday, "09:00:00", "10:00:00", false, true),
	}
	desired := mustEntries(t, []SlotInput{
		{DayOfWeek: 1, IsWeekday: true, StartTime: "09:00:00", EndTime: "10:00:00"},
	})

	plan := computeSlotPlan(7, current, desired)
	if len(plan.updates) != 1 || !plan.updates[0].IsActive {
		t.Fatalf("resubmitting an inactive slot should reactivate it, got %+v", plan.updates)
	}
}

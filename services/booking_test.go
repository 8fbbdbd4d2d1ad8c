package services

import (
	"testing"

	"github.com/mindsettle/therapy-app/models"
	"github.com/mindsettle/therapy-app/utils"
)

func validReservation() ReservationInput {
	return ReservationInput{
		TherapistID:        1,
		AvailabilitySlotID: 2,
		Date:               "2025-03-03",
		StartTime:          "09:00:00",
		EndTime:            "10:00:00",
		SessionKind:        "video",
	}
}

func TestValidateReservationInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ReservationInput)
		ok     bool
	}{
		{"valid", func(in *ReservationInput) {}, true},
		{"kind defaults when empty", func(in *ReservationInput) { in.SessionKind = "" }, true},
		{"missing therapist", func(in *ReservationInput) { in.TherapistID = 0 }, false},
		{"missing slot", func(in *ReservationInput) { in.AvailabilitySlotID = 0 }, false},
		{"bad date", func(in *ReservationInput) { in.Date = "03/03/2025" }, false},
		{"bad start", func(in *ReservationInput) { in.StartTime = "9am" }, false},
		{"bad end", func(in *ReservationInput) { in.EndTime = "10:00" }, false},
		{"start after end", func(in *ReservationInput) { in.StartTime, in.EndTime = in.EndTime, in.StartTime }, false},
		{"unknown kind", func(in *ReservationInput) { in.SessionKind = "seance" }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validReservation()
			tc.mutate(&in)
			kind, err := validateReservationInput(in)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if in.SessionKind == "" && kind != models.SessionVideo {
					t.Errorf("empty kind should default to video, got %s", kind)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got none")
			}
			if utils.KindOf(err) != utils.KindInvalidInput {
				t.Errorf("error kind = %q, want invalid_input", utils.KindOf(err))
			}
		})
	}
}

func TestResolvePriceFreezesFeeOrFallback(t *testing.T) {
	if got := resolvePrice(85); got != 85 {
		t.Errorf("resolvePrice(85) = %v, want 85", got)
	}
	if got := resolvePrice(0); got != DefaultSessionFee {
		t.Errorf("resolvePrice(0) = %v, want fallback %v", got, DefaultSessionFee)
	}
	if got := resolvePrice(-10); got != DefaultSessionFee {
		t.Errorf("negative fee must fall back, got %v", got)
	}
}

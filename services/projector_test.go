package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mindsettle/therapy-app/models"
)

// fakeIndex records mutations in order so both the event state machine
// and the apply ordering can be checked without a Redis backend.
type fakeIndex struct {
	upserts map[uint]string
	deletes []uint
	ops     []string
	fail    error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{upserts: make(map[uint]string)}
}

func (f *fakeIndex) Upsert(_ context.Context, id uint, name string) error {
	if f.fail != nil {
		return f.fail
	}
	f.upserts[id] = name
	f.ops = append(f.ops, fmt.Sprintf("upsert:%d:%s", id, name))
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id uint) error {
	if f.fail != nil {
		return f.fail
	}
	f.deletes = append(f.deletes, id)
	f.ops = append(f.ops, fmt.Sprintf("delete:%d", id))
	return nil
}

func event(kind models.TherapistEventKind, id uint, name string, status models.UserStatus) models.OutboxEvent {
	return models.OutboxEvent{Kind: kind, TherapistID: id, Name: name, Status: status}
}

func TestApplyEventUpsertsActiveTherapist(t *testing.T) {
	idx := newFakeIndex()

	cases := []models.OutboxEvent{
		event(models.EventTherapistStatusChanged, 1, "Dr. A", models.StatusUserActive),
		event(models.EventTherapistNameChanged, 2, "Dr. B", models.StatusUserActive),
		event(models.EventTherapistCreated, 3, "Dr. C", models.StatusUserActive),
	}
	for _, ev := range cases {
		if err := applyEvent(context.Background(), idx, ev); err != nil {
			t.Fatalf("applyEvent(%s): %v", ev.Kind, err)
		}
	}
	if len(idx.upserts) != 3 || idx.upserts[2] != "Dr. B" {
		t.Errorf("upserts = %v, want all three active therapists", idx.upserts)
	}
	if len(idx.deletes) != 0 {
		t.Errorf("unexpected deletes: %v", idx.deletes)
	}
}

func TestApplyEventDeletesWhenLeavingActive(t *testing.T) {
	idx := newFakeIndex()

	for _, status := range []models.UserStatus{
		models.StatusUserPending,
		models.StatusUserInactive,
		models.StatusUserSuspended,
	} {
		if err := applyEvent(context.Background(), idx, event(models.EventTherapistStatusChanged, 9, "Dr. X", status)); err != nil {
			t.Fatalf("applyEvent(status=%s): %v", status, err)
		}
	}
	if len(idx.deletes) != 3 {
		t.Errorf("got %d deletes, want 3", len(idx.deletes))
	}
	if len(idx.upserts) != 0 {
		t.Errorf("unexpected upserts: %v", idx.upserts)
	}
}

func TestApplyEventCreatedPendingTherapistIsNotIndexed(t *testing.T) {
	idx := newFakeIndex()
	ev := event(models.EventTherapistCreated, 4, "Dr. New", models.StatusUserPending)
	if err := applyEvent(context.Background(), idx, ev); err != nil {
		t.Fatalf("applyEvent: %v", err)
	}
	if len(idx.upserts) != 0 {
		t.Errorf("pending therapist must not be upserted, got %v", idx.upserts)
	}
}

func TestApplyEventPropagatesIndexFailure(t *testing.T) {
	idx := newFakeIndex()
	idx.fail = errors.New("connection refused")
	ev := event(models.EventTherapistCreated, 5, "Dr. Y", models.StatusUserActive)
	if err := applyEvent(context.Background(), idx, ev); err == nil {
		t.Error("expected index failure to propagate so the row is retried")
	}
}

func queuedEvent(id, therapistID uint, name string, status models.UserStatus) models.OutboxEvent {
	ev := event(models.EventTherapistStatusChanged, therapistID, name, status)
	ev.ID = id
	return ev
}

func TestApplicableEventsOnlyAppliesQueueHeads(t *testing.T) {
	due := []models.OutboxEvent{
		queuedEvent(2, 9, "Dr. A", models.StatusUserSuspended), // older row 1 still outstanding
		queuedEvent(3, 4, "Dr. B", models.StatusUserActive),    // head of its queue
	}
	heads := map[uint]uint{9: 1, 4: 3}

	got := applicableEvents(due, heads)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("applicable = %+v, want only the head event id=3", got)
	}
}

func TestApplicableEventsHeadMayBeApplied(t *testing.T) {
	due := []models.OutboxEvent{
		queuedEvent(1, 9, "Dr. A", models.StatusUserActive),
	}
	got := applicableEvents(due, map[uint]uint{9: 1})
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("head event must be applicable, got %+v", got)
	}
}

// A failed event backing off must hold back every later event for the
// same therapist until it lands, so the index never applies a
// therapist's history out of emit order.
func TestRetriedEventCannotOvertakeNewerOne(t *testing.T) {
	idx := newFakeIndex()
	activation := queuedEvent(1, 9, "Dr. A", models.StatusUserActive)
	suspension := queuedEvent(2, 9, "Dr. A", models.StatusUserSuspended)

	applyDue := func(due []models.OutboxEvent, heads map[uint]uint) (applied []uint) {
		for _, ev := range applicableEvents(due, heads) {
			if err := applyEvent(context.Background(), idx, ev); err != nil {
				continue
			}
			applied = append(applied, ev.ID)
		}
		return applied
	}

	// pass 1: index down, activation fails and starts backing off
	idx.fail = errors.New("connection refused")
	if applied := applyDue([]models.OutboxEvent{activation}, map[uint]uint{9: 1}); len(applied) != 0 {
		t.Fatalf("pass 1 applied %v, want nothing", applied)
	}

	// pass 2: index back, suspension is due but the activation row is
	// still outstanding, so it must wait
	idx.fail = nil
	if applied := applyDue([]models.OutboxEvent{suspension}, map[uint]uint{9: 1}); len(applied) != 0 {
		t.Fatalf("pass 2 applied %v ahead of the outstanding activation", applied)
	}

	// pass 3: activation retries and lands
	if applied := applyDue([]models.OutboxEvent{activation}, map[uint]uint{9: 1}); len(applied) != 1 {
		t.Fatal("pass 3 should apply the retried activation")
	}

	// pass 4: suspension is now the head and lands
	if applied := applyDue([]models.OutboxEvent{suspension}, map[uint]uint{9: 2}); len(applied) != 1 {
		t.Fatal("pass 4 should apply the suspension")
	}

	want := []string{"upsert:9:Dr. A", "delete:9"}
	if len(idx.ops) != len(want) || idx.ops[0] != want[0] || idx.ops[1] != want[1] {
		t.Errorf("index ops = %v, want %v (suspension last)", idx.ops, want)
	}
}

func TestRetryDelayBacksOffAndCaps(t *testing.T) {
	if retryDelay(0) != baseBackoff {
		t.Errorf("first retry = %v, want %v", retryDelay(0), baseBackoff)
	}
	if retryDelay(1) != 2*baseBackoff {
		t.Errorf("second retry = %v, want %v", retryDelay(1), 2*baseBackoff)
	}
	for _, attempts := range []int{10, 30, 63} {
		if d := retryDelay(attempts); d != maxBackoff {
			t.Errorf("retryDelay(%d) = %v, want cap %v", attempts, d, maxBackoff)
		}
	}
	if maxBackoff > 10*time.Minute {
		t.Errorf("cap unexpectedly large: %v", maxBackoff)
	}
}

package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mindsettle/therapy-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SearchIndex is the slice of the index backend the projector mutates.
type SearchIndex interface {
	Upsert(ctx context.Context, id uint, name string) error
	Delete(ctx context.Context, id uint) error
}

const (
	drainBatchSize = 50
	baseBackoff    = 15 * time.Second
	maxBackoff     = 10 * time.Minute
)

// EmitTherapistChange appends an outbox row inside the caller's
// transaction, so the event commits or rolls back together with the
// authoritative write. The index itself is never touched here.
func EmitTherapistChange(tx *gorm.DB, kind models.TherapistEventKind, therapist *models.User) error {
	event := models.OutboxEvent{
		EventID:       uuid.NewString(),
		Kind:          kind,
		TherapistID:   therapist.ID,
		Name:          therapist.Name,
		Status:        therapist.Status,
		NextAttemptAt: time.Now(),
	}
	return tx.Create(&event).Error
}

// Projector drains the outbox and applies the minimal index mutation
// per event. The index is a derived cache: failures never propagate to
// the writer that emitted the event, they only delay the row.
type Projector struct {
	db    *gorm.DB
	index SearchIndex
}

func NewProjector(db *gorm.DB, index SearchIndex) *Projector {
	return &Projector{db: db, index: index}
}

// applyEvent maps the event payload onto the index state machine:
// active therapists are upserted, everything else is deleted (a delete
// of an absent document is a no-op, so replays are safe).
func applyEvent(ctx context.Context, index SearchIndex, event models.OutboxEvent) error {
	if event.Status == models.StatusUserActive {
		return index.Upsert(ctx, event.TherapistID, event.Name)
	}
	return index.Delete(ctx, event.TherapistID)
}

func retryDelay(attempts int) time.Duration {
	delay := baseBackoff << uint(attempts)
	if delay > maxBackoff || delay <= 0 {
		return maxBackoff
	}
	return delay
}

// applicableEvents keeps only the events sitting at the head of their
// therapist's queue. An event whose therapist still has an older
// outstanding row must wait for it, even when backoff made the newer
// event due first: applying it early would let the older retry
// overwrite newer state, and the index would stay wrong until the next
// unrelated change.
func applicableEvents(due []models.OutboxEvent, heads map[uint]uint) []models.OutboxEvent {
	var out []models.OutboxEvent
	for _, event := range due {
		if head, ok := heads[event.TherapistID]; ok && event.ID == head {
			out = append(out, event)
		}
	}
	return out
}

// queueHeads reads the lowest outstanding outbox id per therapist in
// the batch. Read fresh rather than derived from the batch, so rows
// that are merely backing off (and therefore not due) still block
// their successors.
func queueHeads(tx *gorm.DB, due []models.OutboxEvent) (map[uint]uint, error) {
	therapistIDs := make([]uint, 0, len(due))
	seen := make(map[uint]struct{}, len(due))
	for _, event := range due {
		if _, ok := seen[event.TherapistID]; ok {
			continue
		}
		seen[event.TherapistID] = struct{}{}
		therapistIDs = append(therapistIDs, event.TherapistID)
	}

	type headRow struct {
		TherapistID uint
		Head        uint
	}
	var rows []headRow
	err := tx.Model(&models.OutboxEvent{}).
		Select("therapist_id, MIN(id) AS head").
		Where("therapist_id IN ?", therapistIDs).
		Group("therapist_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	heads := make(map[uint]uint, len(rows))
	for _, row := range rows {
		heads[row.TherapistID] = row.Head
	}
	return heads, nil
}

// Drain claims due outbox rows and pushes them to the index, deleting
// each row only after the index confirmed the mutation. Rows are
// claimed with SKIP LOCKED so concurrent drainers never double-apply,
// and only queue heads are applied so a therapist's events always land
// in emit order across passes.
func (p *Projector) Drain(ctx context.Context) {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due []models.OutboxEvent
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("next_attempt_at <= ?", time.Now()).
			Order("id").
			Limit(drainBatchSize).
			Find(&due).Error
		if err != nil {
			return err
		}
		if len(due) == 0 {
			return nil
		}

		heads, err := queueHeads(tx, due)
		if err != nil {
			return err
		}

		for _, event := range applicableEvents(due, heads) {
			if applyErr := applyEvent(ctx, p.index, event); applyErr != nil {
				log.Printf("search projector: event %s (therapist %d) failed, attempt %d: %v",
					event.EventID, event.TherapistID, event.Attempts+1, applyErr)
				err := tx.Model(&models.OutboxEvent{}).Where("id = ?", event.ID).
					Updates(map[string]interface{}{
						"attempts":        event.Attempts + 1,
						"next_attempt_at": time.Now().Add(retryDelay(event.Attempts)),
					}).Error
				if err != nil {
					return err
				}
				continue
			}
			if err := tx.Delete(&models.OutboxEvent{}, event.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("search projector: drain pass failed: %v", err)
	}
}

package services

import (
	"context"
	"errors"

	"github.com/mindsettle/therapy-app/models"
	"github.com/mindsettle/therapy-app/utils"
	"gorm.io/gorm"
)

// TherapistService owns therapist identity mutations. Every change that
// affects the search index (status, display name) writes its outbox
// event in the same transaction as the authoritative update.
type TherapistService struct {
	db *gorm.DB
}

func NewTherapistService(db *gorm.DB) *TherapistService {
	return &TherapistService{db: db}
}

// ProfileUpdate carries the fields a therapist may change themselves.
type ProfileUpdate struct {
	Name       string   `json:"name"`
	SessionFee *float64 `json:"session_fee"`
}

func (s *TherapistService) loadTherapist(tx *gorm.DB, id uint) (*models.User, error) {
	var therapist models.User
	err := tx.Preload("Role").First(&therapist, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("therapist not found")
	}
	if err != nil {
		return nil, err
	}
	if !therapist.IsTherapist() {
		return nil, utils.NotFound("therapist not found")
	}
	return &therapist, nil
}

// SetStatus applies an admin-decided status transition and emits the
// status-changed event. Approving a pending therapist makes them
// searchable; leaving active eventually removes them from the index.
func (s *TherapistService) SetStatus(ctx context.Context, therapistID uint, status models.UserStatus) (*models.User, error) {
	var therapist *models.User
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		therapist, err = s.loadTherapist(tx, therapistID)
		if err != nil {
			return err
		}
		if therapist.Status == status {
			return nil
		}
		therapist.Status = status
		if err := tx.Model(therapist).Update("status", status).Error; err != nil {
			return err
		}
		return EmitTherapistChange(tx, models.EventTherapistStatusChanged, therapist)
	})
	if txErr != nil {
		var appErr *utils.AppError
		if errors.As(txErr, &appErr) {
			return nil, appErr
		}
		return nil, utils.Unavailable("failed to update therapist status", txErr)
	}
	therapist.Password = ""
	return therapist, nil
}

// UpdateProfile changes name and/or session fee. A name change emits a
// name-changed event; the projector decides from the carried status
// whether the index needs the new name.
func (s *TherapistService) UpdateProfile(ctx context.Context, therapistID uint, in ProfileUpdate) (*models.User, error) {
	var therapist *models.User
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		therapist, err = s.loadTherapist(tx, therapistID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		nameChanged := false
		if in.Name != "" && in.Name != therapist.Name {
			therapist.Name = in.Name
			updates["name"] = in.Name
			nameChanged = true
		}
		if in.SessionFee != nil {
			if *in.SessionFee < 0 {
				return utils.InvalidInput("session fee cannot be negative")
			}
			therapist.SessionFee = *in.SessionFee
			updates["session_fee"] = *in.SessionFee
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(therapist).Updates(updates).Error; err != nil {
			return err
		}
		if nameChanged {
			return EmitTherapistChange(tx, models.EventTherapistNameChanged, therapist)
		}
		return nil
	})
	if txErr != nil {
		var appErr *utils.AppError
		if errors.As(txErr, &appErr) {
			return nil, appErr
		}
		return nil, utils.Unavailable("failed to update therapist profile", txErr)
	}
	therapist.Password = ""
	return therapist, nil
}

// SetProfilePicture stores an already-uploaded avatar URL.
func (s *TherapistService) SetProfilePicture(ctx context.Context, therapistID uint, url string) error {
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", therapistID).
		Update("profile_picture", url).Error
	if err != nil {
		return utils.Unavailable("failed to update profile picture", err)
	}
	return nil
}

// ListPending returns therapists awaiting admin approval.
func (s *TherapistService) ListPending(ctx context.Context) ([]models.User, error) {
	var therapists []models.User
	err := s.db.WithContext(ctx).Preload("Role").
		Joins("JOIN roles ON users.role_id = roles.id").
		Where("roles.name = ? AND users.status = ?", models.RoleTherapist, models.StatusUserPending).
		Find(&therapists).Error
	if err != nil {
		return nil, utils.Unavailable("failed to load pending therapists", err)
	}
	for i := range therapists {
		therapists[i].Password = ""
	}
	return therapists, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nimbuslabs/profile-gateway/internal/domain"
	"github.com/nimbuslabs/profile-gateway/internal/ports"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

var _ ports.ProfileRepository = (*ProfileRepository)(nil)

func (r *ProfileRepository) Create(ctx context.Context, params ports.CreateProfileParams) (domain.Profile, error) {
	model := profileModel{
		ProfileID:   uuid.New(),
		SubjectID:   params.SubjectID,
		Name:        params.Name,
		Gender:      string(params.Gender),
		City:        params.City,
		Email:       params.Email,
		Phone:       params.Phone,
		DateOfBirth: params.DateOfBirth,
		IsActive:    true,
		Bio:         params.Bio,
		Theme:       string(domain.ThemeLight),
		NotifyEmail: true,
		NotifyPush:  true,
		CreatedAt:   params.CreatedAt,
		UpdatedAt:   params.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return domain.Profile{}, fmt.Errorf("%w: active profile for subject", domain.ErrAlreadyExists)
		}
		return domain.Profile{}, mapStoreError(fmt.Errorf("insert profile: %w", err))
	}
	return toDomainProfile(model), nil
}

func (r *ProfileRepository) GetActiveBySubject(ctx context.Context, subjectID string) (domain.Profile, error) {
	var model profileModel
	err := r.db.WithContext(ctx).
		Where("subject_id = ? AND is_active", subjectID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, mapStoreError(fmt.Errorf("load profile by subject: %w", err))
	}
	return toDomainProfile(model), nil
}

func (r *ProfileRepository) GetActiveByID(ctx context.Context, profileID uuid.UUID) (domain.Profile, error) {
	var model profileModel
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND is_active", profileID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, mapStoreError(fmt.Errorf("load profile by id: %w", err))
	}
	return toDomainProfile(model), nil
}

func (r *ProfileRepository) Update(ctx context.Context, params ports.UpdateProfileParams) (domain.Profile, error) {
	changes := map[string]any{"updated_at": params.UpdatedAt}
	if params.Name != nil {
		changes["name"] = *params.Name
	}
	if params.Gender != nil {
		changes["gender"] = string(*params.Gender)
	}
	if params.City != nil {
		changes["city"] = *params.City
	}
	if params.Phone != nil {
		changes["phone"] = *params.Phone
	}
	if params.ClearDateOfBirth {
		changes["date_of_birth"] = nil
	} else if params.DateOfBirth != nil {
		changes["date_of_birth"] = *params.DateOfBirth
	}
	if params.ProfilePicture != nil {
		changes["profile_picture"] = *params.ProfilePicture
	}
	if params.Bio != nil {
		changes["bio"] = *params.Bio
	}
	if params.Theme != nil {
		changes["theme"] = string(*params.Theme)
	}
	if params.NotifyEmail != nil {
		changes["notify_email"] = *params.NotifyEmail
	}
	if params.NotifyPush != nil {
		changes["notify_push"] = *params.NotifyPush
	}

	result := r.db.WithContext(ctx).
		Model(&profileModel{}).
		Where("subject_id = ? AND is_active", params.SubjectID).
		Updates(changes)
	if result.Error != nil {
		return domain.Profile{}, mapStoreError(fmt.Errorf("update profile: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return domain.Profile{}, domain.ErrNotFound
	}
	return r.GetActiveBySubject(ctx, params.SubjectID)
}

func (r *ProfileRepository) SoftDelete(ctx context.Context, subjectID string, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&profileModel{}).
		Where("subject_id = ? AND is_active", subjectID).
		Updates(map[string]any{"is_active": false, "updated_at": now})
	if result.Error != nil {
		return mapStoreError(fmt.Errorf("soft delete profile: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) TouchLastLogin(ctx context.Context, subjectID string, now time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&profileModel{}).
		Where("subject_id = ? AND is_active", subjectID).
		Update("last_login", now).Error
	if err != nil {
		return mapStoreError(fmt.Errorf("touch last login: %w", err))
	}
	return nil
}

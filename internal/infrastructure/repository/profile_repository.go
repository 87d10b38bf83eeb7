package repository

import (
	"context"
	"errors"

	"github.com/confreg/registration-api/internal/domain/entity"
	domainRepo "github.com/confreg/registration-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new attendee profile repository
func NewProfileRepository(db *gorm.DB) domainRepo.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *entity.AttendeeProfile) error {
	return dbFromContext(ctx, r.db).Create(profile).Error
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.AttendeeProfile, error) {
	var profile entity.AttendeeProfile
	err := dbFromContext(ctx, r.db).First(&profile, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &profile, err
}

func (r *profileRepository) GetByAccessCode(ctx context.Context, code string) (*entity.AttendeeProfile, error) {
	var profile entity.AttendeeProfile
	err := dbFromContext(ctx, r.db).First(&profile, "access_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &profile, err
}

func (r *profileRepository) Update(ctx context.Context, profile *entity.AttendeeProfile) error {
	return dbFromContext(ctx, r.db).Save(profile).Error
}

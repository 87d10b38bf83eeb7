package repository

import (
	"context"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/google/uuid"
)

// ProfileRepository defines the interface for attendee profile operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.AttendeeProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.AttendeeProfile, error)
	GetByAccessCode(ctx context.Context, code string) (*entity.AttendeeProfile, error)
	Update(ctx context.Context, profile *entity.AttendeeProfile) error
}

package service

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/repository"
	"github.com/confreg/registration-api/pkg/apperror"
	"github.com/google/uuid"
)

// ProfileService handles attendee profile business logic
type ProfileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo repository.ProfileRepository, userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
	}
}

// GetProfile retrieves the user's profile, creating a default one if
// none exists
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.AttendeeProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	code, err := generateAccessCode()
	if err != nil {
		return nil, err
	}
	profile = &entity.AttendeeProfile{
		UserID:        userID,
		BadgeName:     user.FirstName + " " + user.LastName,
		AccessCode:    code,
		EmailReceipts: true,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetProfileByAccessCode looks a profile up by its registration desk
// code
func (s *ProfileService) GetProfileByAccessCode(ctx context.Context, code string) (*entity.AttendeeProfile, error) {
	profile, err := s.profileRepo.GetByAccessCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperror.NewNotFoundError("Profile")
	}
	return profile, nil
}

// UpdateProfileInput represents the input for updating a profile
type UpdateProfileInput struct {
	UserID                uuid.UUID
	BadgeName             *string
	Company               *string
	Pronouns              *string
	DietaryNotes          *string
	AccessibilityNotes    *string
	CompletedRegistration *bool
	EmailReceipts         *bool
}

// UpdateProfile updates the user's profile
func (s *ProfileService) UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.AttendeeProfile, error) {
	profile, err := s.GetProfile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.BadgeName != nil {
		profile.BadgeName = *input.BadgeName
	}
	if input.Company != nil {
		profile.Company = input.Company
	}
	if input.Pronouns != nil {
		profile.Pronouns = input.Pronouns
	}
	if input.DietaryNotes != nil {
		profile.DietaryNotes = input.DietaryNotes
	}
	if input.AccessibilityNotes != nil {
		profile.AccessibilityNotes = input.AccessibilityNotes
	}
	if input.CompletedRegistration != nil {
		profile.CompletedRegistration = *input.CompletedRegistration
	}
	if input.EmailReceipts != nil {
		profile.EmailReceipts = *input.EmailReceipts
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// access codes skip ambiguous characters so they survive being read
// over a desk
const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateAccessCode() (string, error) {
	code := make([]byte, 6)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(accessCodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = accessCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

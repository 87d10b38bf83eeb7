package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/confreg/registration-api/internal/application/service"
	"github.com/confreg/registration-api/internal/presentation/http/dto/request"
	"github.com/confreg/registration-api/internal/presentation/http/dto/response"
)

// ProfileHandler handles attendee profile HTTP requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Get returns the current user's attendee profile, creating a default
// one on first access.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Attendee profile retrieved successfully", profile)
}

// Update updates the current user's attendee profile
func (h *ProfileHandler) Update(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.UpdateAttendeeProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), &service.UpdateProfileInput{
		UserID:                *userID,
		BadgeName:             req.BadgeName,
		Company:               req.Company,
		Pronouns:              req.Pronouns,
		DietaryNotes:          req.DietaryNotes,
		AccessibilityNotes:    req.AccessibilityNotes,
		CompletedRegistration: req.CompletedRegistration,
		EmailReceipts:         req.EmailReceipts,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Attendee profile updated successfully", profile)
}

// GetByAccessCode looks up an attendee profile by its desk access code
func (h *ProfileHandler) GetByAccessCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, "Access code is required")
		return
	}

	profile, err := h.profileService.GetProfileByAccessCode(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Attendee profile retrieved successfully", profile)
}

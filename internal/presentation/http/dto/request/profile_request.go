package request

// UpdateAttendeeProfileRequest updates the attendee's registration
// profile
type UpdateAttendeeProfileRequest struct {
	BadgeName             *string `json:"badge_name" binding:"omitempty,min=1,max=255"`
	Company               *string `json:"company" binding:"omitempty,max=255"`
	Pronouns              *string `json:"pronouns" binding:"omitempty,max=50"`
	DietaryNotes          *string `json:"dietary_notes"`
	AccessibilityNotes    *string `json:"accessibility_notes"`
	CompletedRegistration *bool   `json:"completed_registration"`
	EmailReceipts         *bool   `json:"email_receipts"`
}

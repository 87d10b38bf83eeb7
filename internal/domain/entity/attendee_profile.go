package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttendeeProfile holds badge and registration preferences for a user
type AttendeeProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	// Badge details
	BadgeName string  `gorm:"size:64" json:"badge_name"`
	Company   *string `gorm:"size:255" json:"company,omitempty"`
	Pronouns  *string `gorm:"size:32" json:"pronouns,omitempty"`

	// Registration details
	DietaryNotes       *string `gorm:"type:text" json:"dietary_notes,omitempty"`
	AccessibilityNotes *string `gorm:"type:text" json:"accessibility_notes,omitempty"`
	// Six-character code quoted at the registration desk
	AccessCode            string `gorm:"size:6;unique;index" json:"access_code"`
	CompletedRegistration bool   `gorm:"default:false" json:"completed_registration"`

	// Notification settings
	EmailReceipts bool `gorm:"default:true" json:"email_receipts"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new profile
func (p *AttendeeProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the AttendeeProfile model
func (AttendeeProfile) TableName() string {
	return "attendee_profiles"
}

// InvoiceRecipient renders the profile for the recipient block of an
// invoice. Falls back to the badge name when no company is set.
func (p *AttendeeProfile) InvoiceRecipient() string {
	if p.Company != nil && *p.Company != "" {
		return p.BadgeName + "\n" + *p.Company
	}
	return p.BadgeName
}

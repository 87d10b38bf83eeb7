package entity

import (
	"time"

	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnablingCondition gates the visibility and purchasability of the
// products and categories it is attached to.
//
// A mandatory condition must hold for its products to be displayed; if a
// product only carries optional conditions, at least one of them must
// hold. A product with no conditions is always displayed.
//
// Which of the kind-specific fields are meaningful depends on Kind:
// enabling products for Product, an enabling category for Category, a
// voucher for Voucher, a role for Role, and a window plus stock limit for
// TimeOrStock.
type EnablingCondition struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Description string             `gorm:"size:255;not null" json:"description"`
	Kind        enum.ConditionKind `gorm:"not null;index" json:"kind"`
	Mandatory   bool               `gorm:"default:false" json:"mandatory"`

	EnablingCategoryID *uuid.UUID `gorm:"type:uuid;index" json:"enabling_category_id,omitempty"`
	VoucherID          *uuid.UUID `gorm:"type:uuid;index" json:"voucher_id,omitempty"`
	RoleID             *uint      `gorm:"index" json:"role_id,omitempty"`
	StartTime          *time.Time `json:"start_time,omitempty"`
	EndTime            *time.Time `json:"end_time,omitempty"`
	Limit              *int       `json:"limit,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products         []Product  `gorm:"many2many:condition_products" json:"products,omitempty"`
	Categories       []Category `gorm:"many2many:condition_categories" json:"categories,omitempty"`
	EnablingProducts []Product  `gorm:"many2many:condition_enabling_products" json:"enabling_products,omitempty"`
	EnablingCategory *Category  `gorm:"foreignKey:EnablingCategoryID" json:"-"`
	Voucher          *Voucher   `gorm:"foreignKey:VoucherID" json:"-"`
	Role             *Role      `gorm:"foreignKey:RoleID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new condition
func (c *EnablingCondition) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the EnablingCondition model
func (EnablingCondition) TableName() string {
	return "enabling_conditions"
}

// WithinWindow reports whether a time-or-stock condition's window is open.
// Conditions of other kinds have no window and are always "open".
func (c *EnablingCondition) WithinWindow(now time.Time) bool {
	if c.StartTime != nil && now.Before(*c.StartTime) {
		return false
	}
	if c.EndTime != nil && now.After(*c.EndTime) {
		return false
	}
	return true
}

package entity

import (
	"time"

	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Discount is a named price reduction with an enabling rule (its Kind)
// and one or more product/category lines describing what it takes off.
// The description appears on invoices where the discount applies.
type Discount struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	Description string            `gorm:"size:255;not null" json:"description"`
	Kind        enum.DiscountKind `gorm:"not null;index" json:"kind"`

	VoucherID *uuid.UUID `gorm:"type:uuid;index" json:"voucher_id,omitempty"`
	RoleID    *uint      `gorm:"index" json:"role_id,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Limit     *int       `json:"limit,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	EnablingProducts []Product          `gorm:"many2many:discount_enabling_products" json:"enabling_products,omitempty"`
	ProductLines     []DiscountProduct  `gorm:"foreignKey:DiscountID" json:"product_lines,omitempty"`
	CategoryLines    []DiscountCategory `gorm:"foreignKey:DiscountID" json:"category_lines,omitempty"`
	Voucher          *Voucher           `gorm:"foreignKey:VoucherID" json:"-"`
	Role             *Role              `gorm:"foreignKey:RoleID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new discount
func (d *Discount) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Discount model
func (Discount) TableName() string {
	return "discounts"
}

// WithinWindow reports whether a time-or-stock discount's window is open
func (d *Discount) WithinWindow(now time.Time) bool {
	if d.StartTime != nil && now.Before(*d.StartTime) {
		return false
	}
	if d.EndTime != nil && now.After(*d.EndTime) {
		return false
	}
	return true
}

// DiscountProduct is a discount line for a single product. It carries a
// percentage or a fixed amount, never both, and a quantity pool shared
// across all carts until exhausted.
type DiscountProduct struct {
	ID         uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	DiscountID uuid.UUID        `gorm:"type:uuid;not null;index" json:"discount_id"`
	ProductID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_id"`
	Percentage *decimal.Decimal `gorm:"type:numeric(5,2)" json:"percentage,omitempty"`
	Amount     *decimal.Decimal `gorm:"type:numeric(8,2)" json:"amount,omitempty"`
	Quantity   int              `gorm:"not null" json:"quantity"`

	// Relationships
	Discount Discount `gorm:"foreignKey:DiscountID" json:"-"`
	Product  Product  `gorm:"foreignKey:ProductID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new discount line
func (l *DiscountProduct) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DiscountProduct model
func (DiscountProduct) TableName() string {
	return "discount_products"
}

// ValueFor returns how much this line takes off one unit at the given price
func (l *DiscountProduct) ValueFor(price decimal.Decimal) decimal.Decimal {
	if l.Percentage != nil {
		return price.Mul(*l.Percentage).Div(decimal.NewFromInt(100))
	}
	if l.Amount != nil {
		return *l.Amount
	}
	return decimal.Zero
}

// DiscountCategory is a discount line covering every product in a
// category. Category lines are always percentages.
type DiscountCategory struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	DiscountID uuid.UUID       `gorm:"type:uuid;not null;index" json:"discount_id"`
	CategoryID uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Percentage decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"percentage"`
	Quantity   int             `gorm:"not null" json:"quantity"`

	// Relationships
	Discount Discount `gorm:"foreignKey:DiscountID" json:"-"`
	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new discount line
func (l *DiscountCategory) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DiscountCategory model
func (DiscountCategory) TableName() string {
	return "discount_categories"
}

// ValueFor returns how much this line takes off one unit at the given price
func (l *DiscountCategory) ValueFor(price decimal.Decimal) decimal.Decimal {
	return price.Mul(l.Percentage).Div(decimal.NewFromInt(100))
}

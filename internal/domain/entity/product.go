package entity

import (
	"time"

	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products on the registration form. By convention the
// ticket category carries the lowest display order.
type Category struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name         string          `gorm:"size:65;not null" json:"name"`
	Slug         string          `gorm:"size:255;unique;not null" json:"slug"`
	Description  string          `gorm:"size:255" json:"description"`
	LimitPerUser *int            `json:"limit_per_user,omitempty"`
	Required     bool            `gorm:"default:false" json:"required"`
	Order        int             `gorm:"not null;index" json:"order"`
	RenderType   enum.RenderType `gorm:"default:0" json:"render_type"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// Product is a single purchasable item of conference inventory: a ticket
// type, a dinner seat, a t-shirt size.
type Product struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CategoryID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Name         string          `gorm:"size:65;not null" json:"name"`
	Slug         string          `gorm:"size:255;unique;not null" json:"slug"`
	Description  *string         `gorm:"size:255" json:"description,omitempty"`
	Price        decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"price"`
	LimitPerUser *int            `json:"limit_per_user,omitempty"`
	// How long an unpaid cart holding this product keeps it reserved.
	ReservationDuration time.Duration  `gorm:"not null" json:"reservation_duration"`
	Order               int            `gorm:"not null;index" json:"order"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Ceilings []Ceiling `gorm:"many2many:product_ceilings" json:"ceilings,omitempty"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// DisplayName is what appears on invoices and the registration form
func (p *Product) DisplayName() string {
	if p.Category != nil {
		return p.Category.Name + " - " + p.Name
	}
	return p.Name
}

// Ceiling caps the combined stock of the products attached to it, within
// an optional sale window. A product is unavailable if any of its ceilings
// is exhausted.
type Ceiling struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name           string         `gorm:"size:65;not null" json:"name"`
	StartTime      *time.Time     `json:"start_time,omitempty"`
	EndTime        *time.Time     `json:"end_time,omitempty"`
	TotalAvailable *int           `json:"total_available,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"many2many:product_ceilings" json:"-"`
}

// BeforeCreate generates a UUID before creating a new ceiling
func (c *Ceiling) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Ceiling model
func (Ceiling) TableName() string {
	return "ceilings"
}

// WithinWindow reports whether the ceiling's sale window is open at the
// given instant. A missing bound is unbounded on that side.
func (c *Ceiling) WithinWindow(now time.Time) bool {
	if c.StartTime != nil && now.Before(*c.StartTime) {
		return false
	}
	if c.EndTime != nil && now.After(*c.EndTime) {
		return false
	}
	return true
}

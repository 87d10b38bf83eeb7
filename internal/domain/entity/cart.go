package entity

import (
	"time"

	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is the set of items an attendee is building towards an invoice.
// Each user has exactly one active cart at a time; a cart becomes paid
// when a paid invoice references it, and released if that payment is
// later refunded.
type Cart struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_carts_user_status" json:"user_id"`
	Status          enum.CartStatus `gorm:"default:0;index:idx_carts_user_status" json:"status"`
	TimeLastUpdated time.Time       `gorm:"not null;index" json:"time_last_updated"`
	// The longest protection window granted by the cart's contents; see
	// ReservedAt.
	ReservationDuration time.Duration `gorm:"not null" json:"reservation_duration"`
	Revision            int           `gorm:"default:1" json:"revision"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`

	// Relationships
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	Items         []CartItem     `gorm:"foreignKey:CartID" json:"items,omitempty"`
	Vouchers      []Voucher      `gorm:"many2many:cart_vouchers" json:"vouchers,omitempty"`
	DiscountItems []DiscountItem `gorm:"foreignKey:CartID" json:"discount_items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new cart
func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Cart model
func (Cart) TableName() string {
	return "carts"
}

// ReservedAt reports whether the cart's items are still protected from
// being counted as available to others. Paid carts are reserved forever;
// released carts never are; active carts are reserved while their
// reservation window is open. Recomputed on demand, never stored.
func (c *Cart) ReservedAt(now time.Time) bool {
	switch c.Status {
	case enum.CartStatusPaid:
		return true
	case enum.CartStatusReleased:
		return false
	}
	return now.Sub(c.TimeLastUpdated) <= c.ReservationDuration
}

// CartItem is a product-quantity pair in a cart
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;index" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Cart    Cart    `gorm:"foreignKey:CartID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new cart item
func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CartItem model
func (CartItem) TableName() string {
	return "cart_items"
}

// DiscountItem records that a discount line was allocated to some units
// of a product in a cart. Rebuilt from scratch on every cart mutation.
type DiscountItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CartID     uuid.UUID `gorm:"type:uuid;not null;index" json:"cart_id"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	DiscountID uuid.UUID `gorm:"type:uuid;not null;index" json:"discount_id"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	Cart     Cart     `gorm:"foreignKey:CartID" json:"-"`
	Product  Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Discount Discount `gorm:"foreignKey:DiscountID" json:"discount,omitempty"`
}

// BeforeCreate generates a UUID before creating a new discount item
func (i *DiscountItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DiscountItem model
func (DiscountItem) TableName() string {
	return "discount_items"
}

package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountProductLine is a product-level discount clause. Exactly one
// of percentage or amount must be set.
type DiscountProductLine struct {
	ProductID  uuid.UUID        `json:"product_id" binding:"required"`
	Percentage *decimal.Decimal `json:"percentage"`
	Amount     *decimal.Decimal `json:"amount"`
	Quantity   int              `json:"quantity" binding:"required,min=1"`
}

// DiscountCategoryLine is a category-level discount clause
type DiscountCategoryLine struct {
	CategoryID uuid.UUID       `json:"category_id" binding:"required"`
	Percentage decimal.Decimal `json:"percentage" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required,min=1"`
}

// CreateDiscountRequest represents a discount creation request
type CreateDiscountRequest struct {
	Description string `json:"description" binding:"required,min=2,max=255"`
	Kind        int    `json:"kind" binding:"min=0,max=3"`

	VoucherID        *uuid.UUID  `json:"voucher_id"`
	RoleID           *uint       `json:"role_id"`
	StartTime        *time.Time  `json:"start_time"`
	EndTime          *time.Time  `json:"end_time"`
	Limit            *int        `json:"limit" binding:"omitempty,min=0"`
	EnablingProducts []uuid.UUID `json:"enabling_products"`

	ProductLines  []DiscountProductLine  `json:"product_lines" binding:"dive"`
	CategoryLines []DiscountCategoryLine `json:"category_lines" binding:"dive"`
}

// UpdateDiscountRequest represents a discount update request. The kind
// is immutable once created.
type UpdateDiscountRequest struct {
	Description *string    `json:"description" binding:"omitempty,min=2,max=255"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Limit       *int       `json:"limit" binding:"omitempty,min=0"`

	ProductLines  []DiscountProductLine  `json:"product_lines" binding:"dive"`
	CategoryLines []DiscountCategoryLine `json:"category_lines" binding:"dive"`
}

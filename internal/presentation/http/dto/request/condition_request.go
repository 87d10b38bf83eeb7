package request

import (
	"time"

	"github.com/google/uuid"
)

// CreateConditionRequest represents an enabling condition creation
// request. Which of the optional fields are required depends on the
// condition kind.
type CreateConditionRequest struct {
	Description string `json:"description" binding:"required,min=2,max=255"`
	Kind        int    `json:"kind" binding:"min=0,max=4"`
	Mandatory   bool   `json:"mandatory"`

	EnablingCategoryID *uuid.UUID `json:"enabling_category_id"`
	VoucherID          *uuid.UUID `json:"voucher_id"`
	RoleID             *uint      `json:"role_id"`
	StartTime          *time.Time `json:"start_time"`
	EndTime            *time.Time `json:"end_time"`
	Limit              *int       `json:"limit" binding:"omitempty,min=0"`

	ProductIDs         []uuid.UUID `json:"product_ids"`
	CategoryIDs        []uuid.UUID `json:"category_ids"`
	EnablingProductIDs []uuid.UUID `json:"enabling_product_ids"`
}

// UpdateConditionRequest represents an enabling condition update
// request. The kind is immutable once created.
type UpdateConditionRequest struct {
	Description *string    `json:"description" binding:"omitempty,min=2,max=255"`
	Mandatory   *bool      `json:"mandatory"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Limit       *int       `json:"limit" binding:"omitempty,min=0"`

	ProductIDs         []uuid.UUID `json:"product_ids"`
	CategoryIDs        []uuid.UUID `json:"category_ids"`
	EnablingProductIDs []uuid.UUID `json:"enabling_product_ids"`
}

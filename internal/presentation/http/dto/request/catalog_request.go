package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest represents a category creation request
type CreateCategoryRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=255"`
	Description  string `json:"description"`
	LimitPerUser *int   `json:"limit_per_user" binding:"omitempty,min=1"`
	Required     bool   `json:"required"`
	Order        int    `json:"order" binding:"min=0"`
	RenderType   int    `json:"render_type" binding:"min=0,max=1"`
}

// UpdateCategoryRequest represents a category update request
type UpdateCategoryRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=2,max=255"`
	Description  *string `json:"description"`
	LimitPerUser *int    `json:"limit_per_user" binding:"omitempty,min=1"`
	Required     *bool   `json:"required"`
	Order        *int    `json:"order" binding:"omitempty,min=0"`
	RenderType   *int    `json:"render_type" binding:"omitempty,min=0,max=1"`
}

// CreateProductRequest represents a product creation request. The
// reservation duration is given in seconds.
type CreateProductRequest struct {
	CategoryID         uuid.UUID       `json:"category_id" binding:"required"`
	Name               string          `json:"name" binding:"required,min=2,max=255"`
	Description        *string         `json:"description"`
	Price              decimal.Decimal `json:"price" binding:"required"`
	LimitPerUser       *int            `json:"limit_per_user" binding:"omitempty,min=1"`
	ReservationSeconds int64           `json:"reservation_seconds" binding:"min=0"`
	Order              int             `json:"order" binding:"min=0"`
	CeilingIDs         []uuid.UUID     `json:"ceiling_ids"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name               *string          `json:"name" binding:"omitempty,min=2,max=255"`
	Description        *string          `json:"description"`
	Price              *decimal.Decimal `json:"price"`
	LimitPerUser       *int             `json:"limit_per_user" binding:"omitempty,min=1"`
	ReservationSeconds *int64           `json:"reservation_seconds" binding:"omitempty,min=0"`
	Order              *int             `json:"order" binding:"omitempty,min=0"`
	CeilingIDs         []uuid.UUID      `json:"ceiling_ids"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// CreateCeilingRequest represents a ceiling creation request
type CreateCeilingRequest struct {
	Name           string      `json:"name" binding:"required,min=2,max=255"`
	StartTime      *time.Time  `json:"start_time"`
	EndTime        *time.Time  `json:"end_time"`
	TotalAvailable *int        `json:"total_available" binding:"omitempty,min=0"`
	ProductIDs     []uuid.UUID `json:"product_ids"`
}

// UpdateCeilingRequest represents a ceiling update request
type UpdateCeilingRequest struct {
	Name           *string    `json:"name" binding:"omitempty,min=2,max=255"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	TotalAvailable *int       `json:"total_available" binding:"omitempty,min=0"`
}

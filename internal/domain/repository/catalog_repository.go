package repository

import (
	"context"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/pkg/pagination"
	"github.com/google/uuid"
)

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	CategoryID *uuid.UUID
	SortBy     string
	SortOrder  string
}

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Product, error)
	// GetWithCeilings preloads category and ceilings for availability checks
	GetWithCeilings(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns products ordered by category display order, then
	// product display order
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	// ListByCategory returns the category's products in display order
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error)
	ReplaceCeilings(ctx context.Context, productID uuid.UUID, ceilingIDs []uuid.UUID) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns all categories in display order
	List(ctx context.Context) ([]entity.Category, error)
	// ListRequired returns categories an attendee must hold an item from
	ListRequired(ctx context.Context) ([]entity.Category, error)
}

// CeilingRepository defines the interface for ceiling data operations
type CeilingRepository interface {
	Create(ctx context.Context, ceiling *entity.Ceiling) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Ceiling, error)
	// GetWithProducts preloads the products sharing the ceiling
	GetWithProducts(ctx context.Context, id uuid.UUID) (*entity.Ceiling, error)
	Update(ctx context.Context, ceiling *entity.Ceiling) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]entity.Ceiling, error)
	// ListForProduct returns every ceiling attached to the product
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]entity.Ceiling, error)
}

// VoucherRepository defines the interface for voucher data operations
type VoucherRepository interface {
	Create(ctx context.Context, voucher *entity.Voucher) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Voucher, error)
	// GetByCode looks up a voucher by its normalised code
	GetByCode(ctx context.Context, code string) (*entity.Voucher, error)
	Update(ctx context.Context, voucher *entity.Voucher) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Voucher, int64, error)
}

package repository

import (
	"context"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/google/uuid"
)

// DiscountRepository defines the interface for discount data operations
type DiscountRepository interface {
	Create(ctx context.Context, discount *entity.Discount) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Discount, error)
	Update(ctx context.Context, discount *entity.Discount) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]entity.Discount, error)
	// ListForProducts returns every discount with at least one product
	// line naming one of the given products or one category line naming
	// one of the given categories, lines and enabling products
	// preloaded, deduplicated.
	ListForProducts(ctx context.Context, productIDs []uuid.UUID, categoryIDs []uuid.UUID) ([]entity.Discount, error)
	ReplaceProductLines(ctx context.Context, discountID uuid.UUID, lines []entity.DiscountProduct) error
	ReplaceCategoryLines(ctx context.Context, discountID uuid.UUID, lines []entity.DiscountCategory) error
}

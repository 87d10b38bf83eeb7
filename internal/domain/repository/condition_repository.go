package repository

import (
	"context"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/google/uuid"
)

// ConditionRepository defines the interface for enabling-condition data
// operations
type ConditionRepository interface {
	Create(ctx context.Context, condition *entity.EnablingCondition) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.EnablingCondition, error)
	Update(ctx context.Context, condition *entity.EnablingCondition) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]entity.EnablingCondition, error)
	// ListForProducts returns every condition attached to any of the
	// given products or their categories, with kind-specific relations
	// preloaded. Conditions are deduplicated.
	ListForProducts(ctx context.Context, productIDs []uuid.UUID, categoryIDs []uuid.UUID) ([]entity.EnablingCondition, error)
	ReplaceProducts(ctx context.Context, conditionID uuid.UUID, productIDs []uuid.UUID) error
	ReplaceCategories(ctx context.Context, conditionID uuid.UUID, categoryIDs []uuid.UUID) error
	ReplaceEnablingProducts(ctx context.Context, conditionID uuid.UUID, productIDs []uuid.UUID) error
}

package service

import (
	"context"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/confreg/registration-api/internal/domain/repository"
	"github.com/confreg/registration-api/pkg/apperror"
	"github.com/google/uuid"
)

// ConditionService handles enabling-condition administration
type ConditionService struct {
	conditionRepo repository.ConditionRepository
}

// NewConditionService creates a new condition service
func NewConditionService(conditionRepo repository.ConditionRepository) *ConditionService {
	return &ConditionService{conditionRepo: conditionRepo}
}

// CreateConditionInput represents the create condition input
type CreateConditionInput struct {
	Description string
	Kind        enum.ConditionKind
	Mandatory   bool

	EnablingCategoryID *uuid.UUID
	VoucherID          *uuid.UUID
	RoleID             *uint
	StartTime          *time.Time
	EndTime            *time.Time
	Limit              *int

	ProductIDs         []uuid.UUID
	CategoryIDs        []uuid.UUID
	EnablingProductIDs []uuid.UUID
}

// CreateCondition creates a new enabling condition
func (s *ConditionService) CreateCondition(ctx context.Context, input *CreateConditionInput) (*entity.EnablingCondition, error) {
	if err := validateConditionKind(input.Kind, input.EnablingCategoryID, input.VoucherID, input.RoleID, input.EnablingProductIDs); err != nil {
		return nil, err
	}
	if len(input.ProductIDs) == 0 && len(input.CategoryIDs) == 0 {
		return nil, apperror.NewUnprocessableEntityError("Condition must gate at least one product or category")
	}

	condition := &entity.EnablingCondition{
		Description:        input.Description,
		Kind:               input.Kind,
		Mandatory:          input.Mandatory,
		EnablingCategoryID: input.EnablingCategoryID,
		VoucherID:          input.VoucherID,
		RoleID:             input.RoleID,
		StartTime:          input.StartTime,
		EndTime:            input.EndTime,
		Limit:              input.Limit,
	}
	for _, id := range input.ProductIDs {
		condition.Products = append(condition.Products, entity.Product{ID: id})
	}
	for _, id := range input.CategoryIDs {
		condition.Categories = append(condition.Categories, entity.Category{ID: id})
	}
	for _, id := range input.EnablingProductIDs {
		condition.EnablingProducts = append(condition.EnablingProducts, entity.Product{ID: id})
	}

	if err := s.conditionRepo.Create(ctx, condition); err != nil {
		return nil, err
	}
	return s.conditionRepo.GetByID(ctx, condition.ID)
}

// UpdateConditionInput represents the update condition input
type UpdateConditionInput struct {
	Description *string
	Mandatory   *bool
	StartTime   *time.Time
	EndTime     *time.Time
	Limit       *int

	ProductIDs         []uuid.UUID
	CategoryIDs        []uuid.UUID
	EnablingProductIDs []uuid.UUID
}

// UpdateCondition updates a condition and its attachments
func (s *ConditionService) UpdateCondition(ctx context.Context, id uuid.UUID, input *UpdateConditionInput) (*entity.EnablingCondition, error) {
	condition, err := s.conditionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if condition == nil {
		return nil, apperror.NewNotFoundError("Condition")
	}

	if input.Description != nil {
		condition.Description = *input.Description
	}
	if input.Mandatory != nil {
		condition.Mandatory = *input.Mandatory
	}
	if input.StartTime != nil {
		condition.StartTime = input.StartTime
	}
	if input.EndTime != nil {
		condition.EndTime = input.EndTime
	}
	if input.Limit != nil {
		condition.Limit = input.Limit
	}

	condition.Products = nil
	condition.Categories = nil
	condition.EnablingProducts = nil
	if err := s.conditionRepo.Update(ctx, condition); err != nil {
		return nil, err
	}

	if input.ProductIDs != nil {
		if err := s.conditionRepo.ReplaceProducts(ctx, id, input.ProductIDs); err != nil {
			return nil, err
		}
	}
	if input.CategoryIDs != nil {
		if err := s.conditionRepo.ReplaceCategories(ctx, id, input.CategoryIDs); err != nil {
			return nil, err
		}
	}
	if input.EnablingProductIDs != nil {
		if err := s.conditionRepo.ReplaceEnablingProducts(ctx, id, input.EnablingProductIDs); err != nil {
			return nil, err
		}
	}

	return s.conditionRepo.GetByID(ctx, id)
}

// GetCondition retrieves a condition by ID
func (s *ConditionService) GetCondition(ctx context.Context, id uuid.UUID) (*entity.EnablingCondition, error) {
	condition, err := s.conditionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if condition == nil {
		return nil, apperror.NewNotFoundError("Condition")
	}
	return condition, nil
}

// ListConditions lists all conditions
func (s *ConditionService) ListConditions(ctx context.Context) ([]entity.EnablingCondition, error) {
	return s.conditionRepo.List(ctx)
}

// DeleteCondition deletes a condition
func (s *ConditionService) DeleteCondition(ctx context.Context, id uuid.UUID) error {
	condition, err := s.conditionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if condition == nil {
		return apperror.NewNotFoundError("Condition")
	}
	return s.conditionRepo.Delete(ctx, id)
}

func validateConditionKind(kind enum.ConditionKind, categoryID *uuid.UUID, voucherID *uuid.UUID, roleID *uint, enablingProductIDs []uuid.UUID) error {
	switch kind {
	case enum.ConditionKindProduct:
		if len(enablingProductIDs) == 0 {
			return apperror.NewUnprocessableEntityError("Product condition needs enabling products")
		}
	case enum.ConditionKindCategory:
		if categoryID == nil {
			return apperror.NewUnprocessableEntityError("Category condition needs an enabling category")
		}
	case enum.ConditionKindVoucher:
		if voucherID == nil {
			return apperror.NewUnprocessableEntityError("Voucher condition needs a voucher")
		}
	case enum.ConditionKindRole:
		if roleID == nil {
			return apperror.NewUnprocessableEntityError("Role condition needs a role")
		}
	case enum.ConditionKindTimeOrStock:
		// window and limit are both optional
	default:
		return apperror.NewBadRequestError("Unknown condition kind")
	}
	return nil
}

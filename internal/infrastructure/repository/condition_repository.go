package repository

import (
	"context"
	"errors"

	"github.com/confreg/registration-api/internal/domain/entity"
	domainRepo "github.com/confreg/registration-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type conditionRepository struct {
	db *gorm.DB
}

// NewConditionRepository creates a new enabling-condition repository
func NewConditionRepository(db *gorm.DB) domainRepo.ConditionRepository {
	return &conditionRepository{db: db}
}

func (r *conditionRepository) Create(ctx context.Context, condition *entity.EnablingCondition) error {
	return dbFromContext(ctx, r.db).Create(condition).Error
}

func (r *conditionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.EnablingCondition, error) {
	var condition entity.EnablingCondition
	err := dbFromContext(ctx, r.db).
		Preload("Products").Preload("Categories").Preload("EnablingProducts").
		First(&condition, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &condition, err
}

func (r *conditionRepository) Update(ctx context.Context, condition *entity.EnablingCondition) error {
	return dbFromContext(ctx, r.db).Save(condition).Error
}

func (r *conditionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFromContext(ctx, r.db).Delete(&entity.EnablingCondition{}, "id = ?", id).Error
}

func (r *conditionRepository) List(ctx context.Context) ([]entity.EnablingCondition, error) {
	var conditions []entity.EnablingCondition
	err := dbFromContext(ctx, r.db).
		Preload("Products").Preload("Categories").Preload("EnablingProducts").
		Order("description ASC").
		Find(&conditions).Error
	return conditions, err
}

func (r *conditionRepository) ListForProducts(ctx context.Context, productIDs []uuid.UUID, categoryIDs []uuid.UUID) ([]entity.EnablingCondition, error) {
	if len(productIDs) == 0 && len(categoryIDs) == 0 {
		return []entity.EnablingCondition{}, nil
	}

	db := dbFromContext(ctx, r.db)

	// Two association paths reach a condition, so collect IDs first and
	// load once to deduplicate.
	idSet := make(map[uuid.UUID]struct{})

	if len(productIDs) > 0 {
		var ids []uuid.UUID
		err := db.Table("condition_products").
			Distinct("enabling_condition_id").
			Where("product_id IN ?", productIDs).
			Pluck("enabling_condition_id", &ids).Error
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			idSet[id] = struct{}{}
		}
	}

	if len(categoryIDs) > 0 {
		var ids []uuid.UUID
		err := db.Table("condition_categories").
			Distinct("enabling_condition_id").
			Where("category_id IN ?", categoryIDs).
			Pluck("enabling_condition_id", &ids).Error
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			idSet[id] = struct{}{}
		}
	}

	if len(idSet) == 0 {
		return []entity.EnablingCondition{}, nil
	}

	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var conditions []entity.EnablingCondition
	err := db.
		Preload("Products").Preload("Categories").Preload("EnablingProducts").
		Where("id IN ?", ids).
		Find(&conditions).Error
	return conditions, err
}

func (r *conditionRepository) ReplaceProducts(ctx context.Context, conditionID uuid.UUID, productIDs []uuid.UUID) error {
	return replaceConditionAssoc(ctx, r.db, conditionID, "Products", productIDs)
}

func (r *conditionRepository) ReplaceEnablingProducts(ctx context.Context, conditionID uuid.UUID, productIDs []uuid.UUID) error {
	return replaceConditionAssoc(ctx, r.db, conditionID, "EnablingProducts", productIDs)
}

func (r *conditionRepository) ReplaceCategories(ctx context.Context, conditionID uuid.UUID, categoryIDs []uuid.UUID) error {
	categories := make([]entity.Category, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		categories = append(categories, entity.Category{ID: id})
	}
	return dbFromContext(ctx, r.db).
		Model(&entity.EnablingCondition{ID: conditionID}).
		Association("Categories").
		Replace(categories)
}

func replaceConditionAssoc(ctx context.Context, db *gorm.DB, conditionID uuid.UUID, assoc string, productIDs []uuid.UUID) error {
	products := make([]entity.Product, 0, len(productIDs))
	for _, id := range productIDs {
		products = append(products, entity.Product{ID: id})
	}
	return dbFromContext(ctx, db).
		Model(&entity.EnablingCondition{ID: conditionID}).
		Association(assoc).
		Replace(products)
}

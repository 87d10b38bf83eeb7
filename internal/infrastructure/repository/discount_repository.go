package repository

import (
	"context"
	"errors"

	"github.com/confreg/registration-api/internal/domain/entity"
	domainRepo "github.com/confreg/registration-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type discountRepository struct {
	db *gorm.DB
}

// NewDiscountRepository creates a new discount repository
func NewDiscountRepository(db *gorm.DB) domainRepo.DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) Create(ctx context.Context, discount *entity.Discount) error {
	return dbFromContext(ctx, r.db).Create(discount).Error
}

func (r *discountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Discount, error) {
	var discount entity.Discount
	err := dbFromContext(ctx, r.db).
		Preload("ProductLines").Preload("ProductLines.Product").
		Preload("CategoryLines").Preload("CategoryLines.Category").
		Preload("EnablingProducts").
		First(&discount, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &discount, err
}

func (r *discountRepository) Update(ctx context.Context, discount *entity.Discount) error {
	return dbFromContext(ctx, r.db).Save(discount).Error
}

func (r *discountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFromContext(ctx, r.db).Delete(&entity.Discount{}, "id = ?", id).Error
}

func (r *discountRepository) List(ctx context.Context) ([]entity.Discount, error) {
	var discounts []entity.Discount
	err := dbFromContext(ctx, r.db).
		Preload("ProductLines").Preload("CategoryLines").Preload("EnablingProducts").
		Order("description ASC").
		Find(&discounts).Error
	return discounts, err
}

func (r *discountRepository) ListForProducts(ctx context.Context, productIDs []uuid.UUID, categoryIDs []uuid.UUID) ([]entity.Discount, error) {
	if len(productIDs) == 0 && len(categoryIDs) == 0 {
		return []entity.Discount{}, nil
	}

	db := dbFromContext(ctx, r.db)
	idSet := make(map[uuid.UUID]struct{})

	if len(productIDs) > 0 {
		var ids []uuid.UUID
		err := db.Model(&entity.DiscountProduct{}).
			Distinct("discount_id").
			Where("product_id IN ?", productIDs).
			Pluck("discount_id", &ids).Error
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			idSet[id] = struct{}{}
		}
	}

	if len(categoryIDs) > 0 {
		var ids []uuid.UUID
		err := db.Model(&entity.DiscountCategory{}).
			Distinct("discount_id").
			Where("category_id IN ?", categoryIDs).
			Pluck("discount_id", &ids).Error
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			idSet[id] = struct{}{}
		}
	}

	if len(idSet) == 0 {
		return []entity.Discount{}, nil
	}

	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var discounts []entity.Discount
	err := db.
		Preload("ProductLines").Preload("ProductLines.Product").
		Preload("CategoryLines").Preload("CategoryLines.Category").
		Preload("EnablingProducts").
		Where("id IN ?", ids).
		Find(&discounts).Error
	return discounts, err
}

func (r *discountRepository) ReplaceProductLines(ctx context.Context, discountID uuid.UUID, lines []entity.DiscountProduct) error {
	db := dbFromContext(ctx, r.db)
	if err := db.Delete(&entity.DiscountProduct{}, "discount_id = ?", discountID).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].DiscountID = discountID
	}
	return db.Create(&lines).Error
}

func (r *discountRepository) ReplaceCategoryLines(ctx context.Context, discountID uuid.UUID, lines []entity.DiscountCategory) error {
	db := dbFromContext(ctx, r.db)
	if err := db.Delete(&entity.DiscountCategory{}, "discount_id = ?", discountID).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].DiscountID = discountID
	}
	return db.Create(&lines).Error
}

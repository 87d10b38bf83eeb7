package repository

import (
	"context"
	"errors"

	"github.com/confreg/registration-api/internal/domain/entity"
	domainRepo "github.com/confreg/registration-api/internal/domain/repository"
	"github.com/confreg/registration-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return dbFromContext(ctx, r.db).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := dbFromContext(ctx, r.db).
		Preload("Category").
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	var product entity.Product
	err := dbFromContext(ctx, r.db).
		Preload("Category").
		First(&product, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := dbFromContext(ctx, r.db).
		Preload("Category").
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) GetWithCeilings(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := dbFromContext(ctx, r.db).
		Preload("Category").Preload("Ceilings").
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return dbFromContext(ctx, r.db).Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFromContext(ctx, r.db).Delete(&entity.Product{}, "id = ?", id).Error
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := dbFromContext(ctx, r.db).Model(&entity.Product{})

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR slug ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Default to catalogue display order
	order := `"order" ASC, name ASC`
	if params.SortBy != "" {
		dir := "DESC"
		if params.SortOrder == "ASC" || params.SortOrder == "asc" {
			dir = "ASC"
		}
		order = params.SortBy + " " + dir
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Category").
		Order(order).
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error) {
	var products []entity.Product
	err := dbFromContext(ctx, r.db).
		Where("category_id = ?", categoryID).
		Order(`"order" ASC, name ASC`).
		Find(&products).Error
	return products, err
}

// ReplaceCeilings resets the product's ceiling associations to the given set
func (r *productRepository) ReplaceCeilings(ctx context.Context, productID uuid.UUID, ceilingIDs []uuid.UUID) error {
	ceilings := make([]entity.Ceiling, 0, len(ceilingIDs))
	for _, id := range ceilingIDs {
		ceilings = append(ceilings, entity.Ceiling{ID: id})
	}
	return dbFromContext(ctx, r.db).
		Model(&entity.Product{ID: productID}).
		Association("Ceilings").
		Replace(ceilings)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) domainRepo.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return dbFromContext(ctx, r.db).Create(category).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	err := dbFromContext(ctx, r.db).First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &category, err
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	var category entity.Category
	err := dbFromContext(ctx, r.db).First(&category, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &category, err
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	return dbFromContext(ctx, r.db).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFromContext(ctx, r.db).Delete(&entity.Category{}, "id = ?", id).Error
}

func (r *categoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	err := dbFromContext(ctx, r.db).
		Order(`"order" ASC, name ASC`).
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) ListRequired(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	err := dbFromContext(ctx, r.db).
		Where("required = ?", true).
		Order(`"order" ASC, name ASC`).
		Find(&categories).Error
	return categories, err
}

type ceilingRepository struct {
	db *gorm.DB
}

// NewCeilingRepository creates a new ceiling repository
func NewCeilingRepository(db *gorm.DB) domainRepo.CeilingRepository {
	return &ceilingRepository{db: db}
}

func (r *ceilingRepository) Create(ctx context.Context, ceiling *entity.Ceiling) error {
	return dbFromContext(ctx, r.db).Create(ceiling).Error
}

func (r *ceilingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Ceiling, error) {
	var ceiling entity.Ceiling
	err := dbFromContext(ctx, r.db).First(&ceiling, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ceiling, err
}

func (r *ceilingRepository) GetWithProducts(ctx context.Context, id uuid.UUID) (*entity.Ceiling, error) {
	var ceiling entity.Ceiling
	err := dbFromContext(ctx, r.db).
		Preload("Products").
		First(&ceiling, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ceiling, err
}

func (r *ceilingRepository) Update(ctx context.Context, ceiling *entity.Ceiling) error {
	return dbFromContext(ctx, r.db).Save(ceiling).Error
}

func (r *ceilingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFromContext(ctx, r.db).Delete(&entity.Ceiling{}, "id = ?", id).Error
}

func (r *ceilingRepository) List(ctx context.Context) ([]entity.Ceiling, error) {
	var ceilings []entity.Ceiling
	err := dbFromContext(ctx, r.db).Order("name ASC").Find(&ceilings).Error
	return ceilings, err
}

func (r *ceilingRepository) ListForProduct(ctx context.Context, productID uuid.UUID) ([]entity.Ceiling, error) {
	var ceilings []entity.Ceiling
	err := dbFromContext(ctx, r.db).
		Joins("JOIN product_ceilings pc ON pc.ceiling_id = ceilings.id").
		Where("pc.product_id = ?", productID).
		Find(&ceilings).Error
	return ceilings, err
}

type voucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository creates a new voucher repository
func NewVoucherRepository(db *gorm.DB) domainRepo.VoucherRepository {
	return &voucherRepository{db: db}
}

func (r *voucherRepository) Create(ctx context.Context, voucher *entity.Voucher) error {
	return dbFromContext(ctx, r.db).Create(voucher).Error
}

func (r *voucherRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Voucher, error) {
	var voucher entity.Voucher
	err := dbFromContext(ctx, r.db).First(&voucher, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &voucher, err
}

func (r *voucherRepository) GetByCode(ctx context.Context, code string) (*entity.Voucher, error) {
	var voucher entity.Voucher
	err := dbFromContext(ctx, r.db).
		First(&voucher, "code = ?", entity.NormaliseVoucherCode(code)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &voucher, err
}

func (r *voucherRepository) Update(ctx context.Context, voucher *entity.Voucher) error {
	return dbFromContext(ctx, r.db).Save(voucher).Error
}

func (r *voucherRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFromContext(ctx, r.db).Delete(&entity.Voucher{}, "id = ?", id).Error
}

func (r *voucherRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Voucher, int64, error) {
	var vouchers []entity.Voucher
	var total int64

	query := dbFromContext(ctx, r.db).Model(&entity.Voucher{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("code ASC").
		Find(&vouchers).Error

	return vouchers, total, err
}

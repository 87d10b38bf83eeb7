package service

import (
	"context"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/confreg/registration-api/internal/domain/repository"
	"github.com/confreg/registration-api/pkg/apperror"
	"github.com/confreg/registration-api/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogService handles the inventory the organisers define: categories,
// products and ceilings
type CatalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	ceilingRepo  repository.CeilingRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	ceilingRepo repository.CeilingRepository,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		ceilingRepo:  ceilingRepo,
	}
}

// CreateCategoryInput represents the create category input
type CreateCategoryInput struct {
	Name         string
	Description  string
	LimitPerUser *int
	Required     bool
	Order        int
	RenderType   enum.RenderType
}

// CreateCategory creates a new category
func (s *CatalogService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*entity.Category, error) {
	slug := utils.Slugify(input.Name)
	existing, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Category already exists")
	}

	category := &entity.Category{
		Name:         input.Name,
		Slug:         slug,
		Description:  input.Description,
		LimitPerUser: input.LimitPerUser,
		Required:     input.Required,
		Order:        input.Order,
		RenderType:   input.RenderType,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategoryInput represents the update category input
type UpdateCategoryInput struct {
	Name         *string
	Description  *string
	LimitPerUser *int
	Required     *bool
	Order        *int
	RenderType   *enum.RenderType
}

// UpdateCategory updates a category
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, input *UpdateCategoryInput) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}

	if input.Name != nil {
		category.Name = *input.Name
		category.Slug = utils.Slugify(*input.Name)
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.LimitPerUser != nil {
		category.LimitPerUser = input.LimitPerUser
	}
	if input.Required != nil {
		category.Required = *input.Required
	}
	if input.Order != nil {
		category.Order = *input.Order
	}
	if input.RenderType != nil {
		category.RenderType = *input.RenderType
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategory retrieves a category by ID
func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}
	return category, nil
}

// ListCategories lists all categories in display order
func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	return s.categoryRepo.List(ctx)
}

// DeleteCategory deletes a category with no products
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return apperror.NewNotFoundError("Category")
	}
	products, err := s.productRepo.ListByCategory(ctx, id)
	if err != nil {
		return err
	}
	if len(products) > 0 {
		return apperror.NewConflictError("Category still has products")
	}
	return s.categoryRepo.Delete(ctx, id)
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	CategoryID          uuid.UUID
	Name                string
	Description         *string
	Price               decimal.Decimal
	LimitPerUser        *int
	ReservationDuration time.Duration
	Order               int
	CeilingIDs          []uuid.UUID
}

// CreateProduct creates a new product
func (s *CatalogService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	category, err := s.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}
	if input.Price.IsNegative() {
		return nil, apperror.NewBadRequestError("Price cannot be negative")
	}

	slug := utils.Slugify(category.Name + "-" + input.Name)
	existing, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Product already exists")
	}

	product := &entity.Product{
		CategoryID:          input.CategoryID,
		Name:                input.Name,
		Slug:                slug,
		Description:         input.Description,
		Price:               input.Price,
		LimitPerUser:        input.LimitPerUser,
		ReservationDuration: input.ReservationDuration,
		Order:               input.Order,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	if len(input.CeilingIDs) > 0 {
		if err := s.productRepo.ReplaceCeilings(ctx, product.ID, input.CeilingIDs); err != nil {
			return nil, err
		}
	}
	return s.productRepo.GetWithCeilings(ctx, product.ID)
}

// UpdateProductInput represents the update product input
type UpdateProductInput struct {
	Name                *string
	Description         *string
	Price               *decimal.Decimal
	LimitPerUser        *int
	ReservationDuration *time.Duration
	Order               *int
	CeilingIDs          []uuid.UUID
}

// UpdateProduct updates a product
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperror.NewBadRequestError("Price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.LimitPerUser != nil {
		product.LimitPerUser = input.LimitPerUser
	}
	if input.ReservationDuration != nil {
		product.ReservationDuration = *input.ReservationDuration
	}
	if input.Order != nil {
		product.Order = *input.Order
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	if input.CeilingIDs != nil {
		if err := s.productRepo.ReplaceCeilings(ctx, id, input.CeilingIDs); err != nil {
			return nil, err
		}
	}
	return s.productRepo.GetWithCeilings(ctx, id)
}

// GetProduct retrieves a product by ID with its ceilings
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetWithCeilings(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering and pagination
func (s *CatalogService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	return s.productRepo.List(ctx, params)
}

// DeleteProduct deletes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.NewNotFoundError("Product")
	}
	return s.productRepo.Delete(ctx, id)
}

// CreateCeilingInput represents the create ceiling input
type CreateCeilingInput struct {
	Name           string
	StartTime      *time.Time
	EndTime        *time.Time
	TotalAvailable *int
	ProductIDs     []uuid.UUID
}

// CreateCeiling creates a new ceiling over the given products
func (s *CatalogService) CreateCeiling(ctx context.Context, input *CreateCeilingInput) (*entity.Ceiling, error) {
	ceiling := &entity.Ceiling{
		Name:           input.Name,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		TotalAvailable: input.TotalAvailable,
	}
	for _, id := range input.ProductIDs {
		ceiling.Products = append(ceiling.Products, entity.Product{ID: id})
	}
	if err := s.ceilingRepo.Create(ctx, ceiling); err != nil {
		return nil, err
	}
	return s.ceilingRepo.GetWithProducts(ctx, ceiling.ID)
}

// UpdateCeilingInput represents the update ceiling input
type UpdateCeilingInput struct {
	Name           *string
	StartTime      *time.Time
	EndTime        *time.Time
	TotalAvailable *int
}

// UpdateCeiling updates a ceiling
func (s *CatalogService) UpdateCeiling(ctx context.Context, id uuid.UUID, input *UpdateCeilingInput) (*entity.Ceiling, error) {
	ceiling, err := s.ceilingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ceiling == nil {
		return nil, apperror.NewNotFoundError("Ceiling")
	}

	if input.Name != nil {
		ceiling.Name = *input.Name
	}
	if input.StartTime != nil {
		ceiling.StartTime = input.StartTime
	}
	if input.EndTime != nil {
		ceiling.EndTime = input.EndTime
	}
	if input.TotalAvailable != nil {
		ceiling.TotalAvailable = input.TotalAvailable
	}

	if err := s.ceilingRepo.Update(ctx, ceiling); err != nil {
		return nil, err
	}
	return s.ceilingRepo.GetWithProducts(ctx, id)
}

// GetCeiling retrieves a ceiling with its products
func (s *CatalogService) GetCeiling(ctx context.Context, id uuid.UUID) (*entity.Ceiling, error) {
	ceiling, err := s.ceilingRepo.GetWithProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	if ceiling == nil {
		return nil, apperror.NewNotFoundError("Ceiling")
	}
	return ceiling, nil
}

// ListCeilings lists all ceilings
func (s *CatalogService) ListCeilings(ctx context.Context) ([]entity.Ceiling, error) {
	return s.ceilingRepo.List(ctx)
}

// DeleteCeiling deletes a ceiling
func (s *CatalogService) DeleteCeiling(ctx context.Context, id uuid.UUID) error {
	ceiling, err := s.ceilingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ceiling == nil {
		return apperror.NewNotFoundError("Ceiling")
	}
	return s.ceilingRepo.Delete(ctx, id)
}

package service

import (
	"context"
	"sort"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/confreg/registration-api/internal/domain/repository"
	"github.com/confreg/registration-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountService owns discount definitions and allocates their line
// pools to carts.
type DiscountService struct {
	discountRepo repository.DiscountRepository
	productRepo  repository.ProductRepository
	cartRepo     repository.CartRepository
	userRepo     repository.UserRepository
}

// NewDiscountService creates a new discount service
func NewDiscountService(
	discountRepo repository.DiscountRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
) *DiscountService {
	return &DiscountService{
		discountRepo: discountRepo,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
		userRepo:     userRepo,
	}
}

// DiscountAllocation is one discount line applied to some units of a
// cart item
type DiscountAllocation struct {
	DiscountID  uuid.UUID
	ProductID   uuid.UUID
	Description string
	Quantity    int
	// UnitValue is how much one unit is reduced by
	UnitValue decimal.Decimal
}

// AllocateForCart recomputes the cart's discount allocation from
// scratch. Cart lines are visited in descending price order, and for
// each line the applicable clauses in descending per-unit value order,
// so the most valuable reductions land first. Clause pools are shared
// across all carts; exhausted pools allocate nothing.
func (s *DiscountService) AllocateForCart(ctx context.Context, cart *entity.Cart, now time.Time) ([]DiscountAllocation, error) {
	if len(cart.Items) == 0 {
		return nil, nil
	}

	productIDs := make([]uuid.UUID, 0, len(cart.Items))
	categorySet := make(map[uuid.UUID]struct{})
	for _, item := range cart.Items {
		productIDs = append(productIDs, item.ProductID)
		categorySet[item.Product.CategoryID] = struct{}{}
	}
	categoryIDs := make([]uuid.UUID, 0, len(categorySet))
	for id := range categorySet {
		categoryIDs = append(categoryIDs, id)
	}

	discounts, err := s.discountRepo.ListForProducts(ctx, productIDs, categoryIDs)
	if err != nil {
		return nil, err
	}

	enabled := make([]*entity.Discount, 0, len(discounts))
	for i := range discounts {
		ok, err := s.discountEnabled(ctx, cart, &discounts[i], now)
		if err != nil {
			return nil, err
		}
		if ok {
			enabled = append(enabled, &discounts[i])
		}
	}
	if len(enabled) == 0 {
		return nil, nil
	}

	// Remaining discount-level pools (time-or-stock limits)
	discountPool := make(map[uuid.UUID]int)
	for _, d := range enabled {
		if d.Limit == nil {
			continue
		}
		used, err := s.cartRepo.ReservedDiscountUsage(ctx, d.ID, &cart.ID, now)
		if err != nil {
			return nil, err
		}
		discountPool[d.ID] = maxInt(*d.Limit-used, 0)
	}

	type clause struct {
		discount    *entity.Discount
		productID   *uuid.UUID // set for product lines
		categoryID  *uuid.UUID // set for category lines
		unitValueOf func(price decimal.Decimal) decimal.Decimal
		remaining   int
	}

	clauses := make([]*clause, 0)
	for _, d := range enabled {
		for i := range d.ProductLines {
			line := d.ProductLines[i]
			used, err := s.cartRepo.ReservedDiscountProductUsage(ctx, d.ID, line.ProductID, &cart.ID, now)
			if err != nil {
				return nil, err
			}
			remaining := maxInt(line.Quantity-used, 0)
			if remaining == 0 {
				continue
			}
			pid := line.ProductID
			clauses = append(clauses, &clause{
				discount:    d,
				productID:   &pid,
				unitValueOf: line.ValueFor,
				remaining:   remaining,
			})
		}
		for i := range d.CategoryLines {
			line := d.CategoryLines[i]
			used, err := s.cartRepo.ReservedDiscountCategoryUsage(ctx, d.ID, line.CategoryID, &cart.ID, now)
			if err != nil {
				return nil, err
			}
			remaining := maxInt(line.Quantity-used, 0)
			if remaining == 0 {
				continue
			}
			cid := line.CategoryID
			clauses = append(clauses, &clause{
				discount:    d,
				categoryID:  &cid,
				unitValueOf: line.ValueFor,
				remaining:   remaining,
			})
		}
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	// Most expensive lines first, so percentage clauses do the most good
	items := make([]entity.CartItem, len(cart.Items))
	copy(items, cart.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Product.Price.GreaterThan(items[j].Product.Price)
	})

	var allocations []DiscountAllocation
	for _, item := range items {
		price := item.Product.Price

		matching := make([]*clause, 0)
		for _, c := range clauses {
			if c.productID != nil && *c.productID == item.ProductID {
				matching = append(matching, c)
			} else if c.categoryID != nil && *c.categoryID == item.Product.CategoryID {
				matching = append(matching, c)
			}
		}
		sort.SliceStable(matching, func(i, j int) bool {
			return matching[i].unitValueOf(price).GreaterThan(matching[j].unitValueOf(price))
		})

		unmatched := item.Quantity
		for _, c := range matching {
			if unmatched == 0 {
				break
			}
			pool := c.remaining
			if limit, capped := discountPool[c.discount.ID]; capped && limit < pool {
				pool = limit
			}
			take := minInt(unmatched, pool)
			if take == 0 {
				continue
			}

			allocations = append(allocations, DiscountAllocation{
				DiscountID:  c.discount.ID,
				ProductID:   item.ProductID,
				Description: c.discount.Description,
				Quantity:    take,
				UnitValue:   c.unitValueOf(price),
			})

			unmatched -= take
			c.remaining -= take
			if _, capped := discountPool[c.discount.ID]; capped {
				discountPool[c.discount.ID] -= take
			}
		}
	}

	return allocations, nil
}

// ValueOfItem reports how much a stored discount item reduces the
// invoice, using the discount's line matching its product.
func (s *DiscountService) ValueOfItem(ctx context.Context, item *entity.DiscountItem, product *entity.Product) (decimal.Decimal, error) {
	discount := &item.Discount
	if discount.ID == uuid.Nil {
		loaded, err := s.discountRepo.GetByID(ctx, item.DiscountID)
		if err != nil {
			return decimal.Zero, err
		}
		if loaded == nil {
			return decimal.Zero, apperror.NewNotFoundError("Discount")
		}
		discount = loaded
	}
	for i := range discount.ProductLines {
		if discount.ProductLines[i].ProductID == product.ID {
			return discount.ProductLines[i].ValueFor(product.Price), nil
		}
	}
	for i := range discount.CategoryLines {
		if discount.CategoryLines[i].CategoryID == product.CategoryID {
			return discount.CategoryLines[i].ValueFor(product.Price), nil
		}
	}
	return decimal.Zero, nil
}

func (s *DiscountService) discountEnabled(ctx context.Context, cart *entity.Cart, discount *entity.Discount, now time.Time) (bool, error) {
	switch discount.Kind {
	case enum.DiscountKindTimeOrStock:
		if !discount.WithinWindow(now) {
			return false, nil
		}
		if discount.Limit != nil {
			used, err := s.cartRepo.ReservedDiscountUsage(ctx, discount.ID, &cart.ID, now)
			if err != nil {
				return false, err
			}
			if used >= *discount.Limit {
				return false, nil
			}
		}
		return true, nil

	case enum.DiscountKindVoucher:
		if discount.VoucherID == nil {
			return false, nil
		}
		for _, v := range cart.Vouchers {
			if v.ID == *discount.VoucherID {
				return true, nil
			}
		}
		return false, nil

	case enum.DiscountKindRole:
		if discount.RoleID == nil {
			return false, nil
		}
		user, err := s.userRepo.GetWithRoles(ctx, cart.UserID)
		if err != nil || user == nil {
			return false, err
		}
		for _, role := range user.Roles {
			if role.ID == *discount.RoleID {
				return true, nil
			}
		}
		return false, nil

	case enum.DiscountKindIncludedProduct:
		ids := make([]uuid.UUID, 0, len(discount.EnablingProducts))
		for _, p := range discount.EnablingProducts {
			ids = append(ids, p.ID)
		}
		return s.cartRepo.UserHoldsAnyOfProducts(ctx, cart.UserID, ids, now)
	}

	return false, nil
}

// CreateDiscountInput represents the create discount input
type CreateDiscountInput struct {
	Description      string
	Kind             enum.DiscountKind
	VoucherID        *uuid.UUID
	RoleID           *uint
	StartTime        *time.Time
	EndTime          *time.Time
	Limit            *int
	EnablingProducts []uuid.UUID
	ProductLines     []entity.DiscountProduct
	CategoryLines    []entity.DiscountCategory
}

// CreateDiscount creates a new discount after checking its lines do not
// overlap
func (s *DiscountService) CreateDiscount(ctx context.Context, input *CreateDiscountInput) (*entity.Discount, error) {
	if err := s.validateLines(ctx, input.ProductLines, input.CategoryLines); err != nil {
		return nil, err
	}

	discount := &entity.Discount{
		Description:   input.Description,
		Kind:          input.Kind,
		VoucherID:     input.VoucherID,
		RoleID:        input.RoleID,
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		Limit:         input.Limit,
		ProductLines:  input.ProductLines,
		CategoryLines: input.CategoryLines,
	}
	for _, id := range input.EnablingProducts {
		discount.EnablingProducts = append(discount.EnablingProducts, entity.Product{ID: id})
	}

	if err := s.discountRepo.Create(ctx, discount); err != nil {
		return nil, err
	}
	return s.discountRepo.GetByID(ctx, discount.ID)
}

// UpdateDiscountInput represents the update discount input
type UpdateDiscountInput struct {
	Description   *string
	StartTime     *time.Time
	EndTime       *time.Time
	Limit         *int
	ProductLines  []entity.DiscountProduct
	CategoryLines []entity.DiscountCategory
}

// UpdateDiscount updates a discount and replaces its lines
func (s *DiscountService) UpdateDiscount(ctx context.Context, id uuid.UUID, input *UpdateDiscountInput) (*entity.Discount, error) {
	discount, err := s.discountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, apperror.NewNotFoundError("Discount")
	}

	productLines := discount.ProductLines
	if input.ProductLines != nil {
		productLines = input.ProductLines
	}
	categoryLines := discount.CategoryLines
	if input.CategoryLines != nil {
		categoryLines = input.CategoryLines
	}
	if err := s.validateLines(ctx, productLines, categoryLines); err != nil {
		return nil, err
	}

	if input.Description != nil {
		discount.Description = *input.Description
	}
	if input.StartTime != nil {
		discount.StartTime = input.StartTime
	}
	if input.EndTime != nil {
		discount.EndTime = input.EndTime
	}
	if input.Limit != nil {
		discount.Limit = input.Limit
	}

	discount.ProductLines = nil
	discount.CategoryLines = nil
	if err := s.discountRepo.Update(ctx, discount); err != nil {
		return nil, err
	}
	if input.ProductLines != nil {
		if err := s.discountRepo.ReplaceProductLines(ctx, id, input.ProductLines); err != nil {
			return nil, err
		}
	}
	if input.CategoryLines != nil {
		if err := s.discountRepo.ReplaceCategoryLines(ctx, id, input.CategoryLines); err != nil {
			return nil, err
		}
	}

	return s.discountRepo.GetByID(ctx, id)
}

// GetDiscount retrieves a discount by ID
func (s *DiscountService) GetDiscount(ctx context.Context, id uuid.UUID) (*entity.Discount, error) {
	discount, err := s.discountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, apperror.NewNotFoundError("Discount")
	}
	return discount, nil
}

// ListDiscounts lists all discounts
func (s *DiscountService) ListDiscounts(ctx context.Context) ([]entity.Discount, error) {
	return s.discountRepo.List(ctx)
}

// DeleteDiscount deletes a discount
func (s *DiscountService) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	discount, err := s.discountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if discount == nil {
		return apperror.NewNotFoundError("Discount")
	}
	return s.discountRepo.Delete(ctx, id)
}

// validateLines rejects definitions where a product line's product also
// falls under a category line. One unit would otherwise be reducible
// twice by the same discount.
func (s *DiscountService) validateLines(ctx context.Context, productLines []entity.DiscountProduct, categoryLines []entity.DiscountCategory) error {
	if len(productLines) == 0 && len(categoryLines) == 0 {
		return apperror.NewUnprocessableEntityError("Discount needs at least one line")
	}
	productSet := make(map[uuid.UUID]struct{}, len(productLines))
	for _, line := range productLines {
		if line.Percentage != nil && line.Amount != nil {
			return apperror.NewUnprocessableEntityError("Discount line cannot carry both a percentage and an amount")
		}
		if line.Percentage == nil && line.Amount == nil {
			return apperror.NewUnprocessableEntityError("Discount line needs a percentage or an amount")
		}
		if _, dup := productSet[line.ProductID]; dup {
			return apperror.ErrDiscountConflict
		}
		productSet[line.ProductID] = struct{}{}
	}
	if len(categoryLines) == 0 {
		return nil
	}

	categorySet := make(map[uuid.UUID]struct{}, len(categoryLines))
	for _, line := range categoryLines {
		if _, dup := categorySet[line.CategoryID]; dup {
			return apperror.ErrDiscountConflict
		}
		categorySet[line.CategoryID] = struct{}{}
	}

	ids := make([]uuid.UUID, 0, len(productLines))
	for _, line := range productLines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range products {
		if _, overlap := categorySet[p.CategoryID]; overlap {
			return apperror.ErrDiscountConflict
		}
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

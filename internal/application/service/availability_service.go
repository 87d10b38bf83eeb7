package service

import (
	"context"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/confreg/registration-api/internal/domain/repository"
	"github.com/google/uuid"
)

// AvailabilityService decides which products a user may currently see
// and buy. It combines per-user limits, enabling conditions and ceiling
// stock into a single verdict per product.
type AvailabilityService struct {
	productRepo   repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	ceilingRepo   repository.CeilingRepository
	conditionRepo repository.ConditionRepository
	cartRepo      repository.CartRepository
	userRepo      repository.UserRepository
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	ceilingRepo repository.CeilingRepository,
	conditionRepo repository.ConditionRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
) *AvailabilityService {
	return &AvailabilityService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		ceilingRepo:   ceilingRepo,
		conditionRepo: conditionRepo,
		cartRepo:      cartRepo,
		userRepo:      userRepo,
	}
}

// ProductVerdict is the availability decision for one product
type ProductVerdict struct {
	Product   *entity.Product
	Available bool
	// Remaining is the largest quantity the user could still add, or
	// nil when nothing bounds it.
	Remaining *int
	Reason    string
}

// CheckRequest asks whether the user may add the given quantities on
// top of what their carts already hold.
type CheckRequest struct {
	UserID     uuid.UUID
	Cart       *entity.Cart // the user's active cart, may be nil
	Quantities map[uuid.UUID]int
}

// CanAddProducts reports whether every requested quantity fits within
// user limits, enabling conditions and ceilings. The first failing
// product's verdict is returned with Available false.
func (s *AvailabilityService) CanAddProducts(ctx context.Context, req *CheckRequest, now time.Time) (*ProductVerdict, error) {
	ids := make([]uuid.UUID, 0, len(req.Quantities))
	for id := range req.Quantities {
		ids = append(ids, id)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for id, qty := range req.Quantities {
		product := byID[id]
		if product == nil {
			return &ProductVerdict{Available: false, Reason: "no such product"}, nil
		}
		if qty < 0 {
			return &ProductVerdict{Product: product, Available: false, Reason: "negative quantity"}, nil
		}
		verdict, err := s.checkProduct(ctx, req, product, qty, now)
		if err != nil {
			return nil, err
		}
		if !verdict.Available {
			return verdict, nil
		}
	}

	return &ProductVerdict{Available: true}, nil
}

// VisibleProducts returns the products of a category the user is
// currently allowed to see, with their remaining quantities. Products
// failing a mandatory condition, or all of their optional conditions,
// are omitted.
func (s *AvailabilityService) VisibleProducts(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID, now time.Time) ([]ProductVerdict, error) {
	products, err := s.productRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	verdicts := make([]ProductVerdict, 0, len(products))
	for i := range products {
		req := &CheckRequest{UserID: userID, Cart: cart}
		verdict, err := s.checkProduct(ctx, req, &products[i], 0, now)
		if err != nil {
			return nil, err
		}
		if verdict.Available {
			verdicts = append(verdicts, *verdict)
		}
	}
	return verdicts, nil
}

// CategoryVerdict is the availability decision for one category
type CategoryVerdict struct {
	Category  entity.Category `json:"category"`
	Available bool            `json:"available"`
}

// VisibleCategories returns the categories the user may currently see,
// in display order. A category with no products, or whose products all
// fail their enabling conditions, is omitted. One whose visible
// products are merely out of stock stays listed but is flagged
// unavailable.
func (s *AvailabilityService) VisibleCategories(ctx context.Context, userID uuid.UUID, now time.Time) ([]CategoryVerdict, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	verdicts := make([]CategoryVerdict, 0, len(categories))
	for i := range categories {
		products, err := s.VisibleProducts(ctx, userID, categories[i].ID, now)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			continue
		}
		available := false
		for _, p := range products {
			if p.Remaining == nil || *p.Remaining > 0 {
				available = true
				break
			}
		}
		verdicts = append(verdicts, CategoryVerdict{
			Category:  categories[i],
			Available: available,
		})
	}
	return verdicts, nil
}

// ValidateCartContents re-checks a cart that was assembled earlier.
// Limits compare what the user already holds against the cap; stock
// checks ask whether the cart's own quantities still fit what remains
// once every other reserved cart is counted.
func (s *AvailabilityService) ValidateCartContents(ctx context.Context, cart *entity.Cart, now time.Time) ([]ProductVerdict, error) {
	var failures []ProductVerdict
	req := &CheckRequest{UserID: cart.UserID, Cart: cart}

	for i := range cart.Items {
		item := &cart.Items[i]
		product := &item.Product
		verdict := &ProductVerdict{Product: product, Available: true}

		if product.LimitPerUser != nil {
			held, err := s.cartRepo.UserProductQuantity(ctx, cart.UserID, product.ID, now)
			if err != nil {
				return nil, err
			}
			if held > *product.LimitPerUser {
				over := item.Quantity - (held - *product.LimitPerUser)
				lowerRemaining(verdict, over)
				verdict.Available = false
				verdict.Reason = "per-user product limit reached"
			}
		}

		ok, remaining, err := s.conditionsHold(ctx, req, product, item.Quantity, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			zero := 0
			failures = append(failures, ProductVerdict{
				Product: product, Available: false,
				Remaining: &zero, Reason: "not enabled for this user",
			})
			continue
		}
		if remaining != nil && item.Quantity > *remaining {
			lowerRemaining(verdict, *remaining)
			verdict.Available = false
			verdict.Reason = "sold out"
		}

		ceilingRemaining, err := s.ceilingRemainder(ctx, product, cart, now)
		if err != nil {
			return nil, err
		}
		if ceilingRemaining != nil && item.Quantity > *ceilingRemaining {
			lowerRemaining(verdict, *ceilingRemaining)
			verdict.Available = false
			verdict.Reason = "sold out"
		}

		if !verdict.Available {
			failures = append(failures, *verdict)
		}
	}

	// Required categories must be represented before checkout
	required, err := s.categoryRepo.ListRequired(ctx)
	if err != nil {
		return nil, err
	}
	for i := range required {
		held, err := s.cartRepo.UserCategoryQuantity(ctx, cart.UserID, required[i].ID, now)
		if err != nil {
			return nil, err
		}
		if held == 0 {
			failures = append(failures, ProductVerdict{
				Available: false,
				Reason:    "an item from category " + required[i].Name + " is required",
			})
		}
	}

	return failures, nil
}

func (s *AvailabilityService) checkProduct(ctx context.Context, req *CheckRequest, product *entity.Product, addQty int, now time.Time) (*ProductVerdict, error) {
	verdict := &ProductVerdict{Product: product, Available: true}

	// Per-user product limit counts across all of the user's reserved
	// carts, including the active one.
	if product.LimitPerUser != nil {
		held, err := s.cartRepo.UserProductQuantity(ctx, req.UserID, product.ID, now)
		if err != nil {
			return nil, err
		}
		remaining := *product.LimitPerUser - held
		if addQty > remaining {
			verdict.Available = false
			verdict.Reason = "per-user product limit reached"
			return verdict, nil
		}
		lowerRemaining(verdict, remaining)
	}

	// Per-user category limit
	category := product.Category
	if category == nil {
		loaded, err := s.categoryRepo.GetByID(ctx, product.CategoryID)
		if err != nil {
			return nil, err
		}
		category = loaded
	}
	if category != nil && category.LimitPerUser != nil {
		held, err := s.cartRepo.UserCategoryQuantity(ctx, req.UserID, category.ID, now)
		if err != nil {
			return nil, err
		}
		remaining := *category.LimitPerUser - held
		if addQty > remaining {
			verdict.Available = false
			verdict.Reason = "per-user category limit reached"
			return verdict, nil
		}
		lowerRemaining(verdict, remaining)
	}

	ok, remaining, err := s.conditionsHold(ctx, req, product, addQty, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		verdict.Available = false
		verdict.Reason = "not enabled for this user"
		return verdict, nil
	}
	if remaining != nil {
		if addQty > *remaining {
			verdict.Available = false
			verdict.Reason = "sold out"
			return verdict, nil
		}
		lowerRemaining(verdict, *remaining)
	}

	ceilingRemaining, err := s.ceilingRemainder(ctx, product, req.Cart, now)
	if err != nil {
		return nil, err
	}
	if ceilingRemaining != nil {
		if addQty > *ceilingRemaining {
			verdict.Available = false
			verdict.Reason = "sold out"
			return verdict, nil
		}
		lowerRemaining(verdict, *ceilingRemaining)
	}

	return verdict, nil
}

// conditionsHold evaluates the enabling conditions attached to the
// product or its category. Every mandatory condition must hold; when
// only optional conditions exist, at least one must hold. The returned
// remainder is the tightest stock bound among satisfied time-or-stock
// conditions, nil when none applies.
func (s *AvailabilityService) conditionsHold(ctx context.Context, req *CheckRequest, product *entity.Product, addQty int, now time.Time) (bool, *int, error) {
	conditions, err := s.conditionRepo.ListForProducts(ctx,
		[]uuid.UUID{product.ID}, []uuid.UUID{product.CategoryID})
	if err != nil {
		return false, nil, err
	}
	if len(conditions) == 0 {
		return true, nil, nil
	}

	var remainder *int
	sawOptional := false
	optionalHolds := false

	for i := range conditions {
		cond := &conditions[i]
		holds, condRemaining, err := s.conditionHolds(ctx, req, cond, now)
		if err != nil {
			return false, nil, err
		}

		if cond.Mandatory {
			if !holds {
				return false, nil, nil
			}
		} else {
			sawOptional = true
			if holds {
				optionalHolds = true
			} else {
				continue
			}
		}

		if condRemaining != nil && (remainder == nil || *condRemaining < *remainder) {
			r := *condRemaining
			remainder = &r
		}
	}

	if sawOptional && !optionalHolds {
		return false, nil, nil
	}
	return true, remainder, nil
}

func (s *AvailabilityService) conditionHolds(ctx context.Context, req *CheckRequest, cond *entity.EnablingCondition, now time.Time) (bool, *int, error) {
	switch cond.Kind {
	case enum.ConditionKindProduct:
		ids := make([]uuid.UUID, 0, len(cond.EnablingProducts))
		for _, p := range cond.EnablingProducts {
			ids = append(ids, p.ID)
		}
		holds, err := s.cartRepo.UserHoldsAnyOfProducts(ctx, req.UserID, ids, now)
		return holds, nil, err

	case enum.ConditionKindCategory:
		if cond.EnablingCategoryID == nil {
			return false, nil, nil
		}
		holds, err := s.cartRepo.UserHoldsCategory(ctx, req.UserID, *cond.EnablingCategoryID, now)
		return holds, nil, err

	case enum.ConditionKindVoucher:
		if cond.VoucherID == nil {
			return false, nil, nil
		}
		// The voucher must sit in the cart being built, not merely in
		// some past cart.
		if req.Cart != nil {
			for _, v := range req.Cart.Vouchers {
				if v.ID == *cond.VoucherID {
					return true, nil, nil
				}
			}
		}
		return false, nil, nil

	case enum.ConditionKindRole:
		if cond.RoleID == nil {
			return false, nil, nil
		}
		user, err := s.userRepo.GetWithRoles(ctx, req.UserID)
		if err != nil || user == nil {
			return false, nil, err
		}
		for _, role := range user.Roles {
			if role.ID == *cond.RoleID {
				return true, nil, nil
			}
		}
		return false, nil, nil

	case enum.ConditionKindTimeOrStock:
		if !cond.WithinWindow(now) {
			return false, nil, nil
		}
		if cond.Limit == nil {
			return true, nil, nil
		}
		ids := make([]uuid.UUID, 0, len(cond.Products))
		for _, p := range cond.Products {
			ids = append(ids, p.ID)
		}
		var exclude *uuid.UUID
		if req.Cart != nil {
			exclude = &req.Cart.ID
		}
		reserved, err := s.cartRepo.ReservedQuantityForProducts(ctx, ids, exclude, now)
		if err != nil {
			return false, nil, err
		}
		remaining := *cond.Limit - reserved
		if remaining < 0 {
			remaining = 0
		}
		return remaining > 0, &remaining, nil
	}

	return false, nil, nil
}

// ceilingRemainder returns the tightest remaining quantity across the
// product's ceilings, nil when no ceiling bounds it. A ceiling whose
// sale window is closed makes the product unavailable outright, which
// is reported as a zero remainder.
func (s *AvailabilityService) ceilingRemainder(ctx context.Context, product *entity.Product, cart *entity.Cart, now time.Time) (*int, error) {
	ceilings := product.Ceilings
	if ceilings == nil {
		loaded, err := s.ceilingRepo.ListForProduct(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		ceilings = loaded
	}
	if len(ceilings) == 0 {
		return nil, nil
	}

	var tightest *int
	for i := range ceilings {
		ceiling := &ceilings[i]
		if !ceiling.WithinWindow(now) {
			zero := 0
			return &zero, nil
		}
		if ceiling.TotalAvailable == nil {
			continue
		}

		full, err := s.ceilingRepo.GetWithProducts(ctx, ceiling.ID)
		if err != nil {
			return nil, err
		}
		if full == nil {
			continue
		}
		ids := make([]uuid.UUID, 0, len(full.Products))
		for _, p := range full.Products {
			ids = append(ids, p.ID)
		}
		var exclude *uuid.UUID
		if cart != nil {
			exclude = &cart.ID
		}
		reserved, err := s.cartRepo.ReservedQuantityForProducts(ctx, ids, exclude, now)
		if err != nil {
			return nil, err
		}
		remaining := *ceiling.TotalAvailable - reserved
		if remaining < 0 {
			remaining = 0
		}
		if tightest == nil || remaining < *tightest {
			r := remaining
			tightest = &r
		}
	}
	return tightest, nil
}

func lowerRemaining(verdict *ProductVerdict, remaining int) {
	if remaining < 0 {
		remaining = 0
	}
	if verdict.Remaining == nil || remaining < *verdict.Remaining {
		verdict.Remaining = &remaining
	}
}

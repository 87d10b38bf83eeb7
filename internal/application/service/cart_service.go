package service

import (
	"context"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/repository"
	"github.com/confreg/registration-api/pkg/apperror"
	"github.com/google/uuid"
)

// CartService manages each user's active cart. Every mutation runs in
// one transaction that checks availability, applies the change, bumps
// the cart revision and rebuilds the discount allocation.
type CartService struct {
	txManager    repository.TxManager
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	voucherRepo  repository.VoucherRepository
	availability *AvailabilityService
	discounts    *DiscountService
	// vouchers keep their cart reserved for at least this long
	voucherWindow time.Duration
}

// NewCartService creates a new cart service
func NewCartService(
	txManager repository.TxManager,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	voucherRepo repository.VoucherRepository,
	availability *AvailabilityService,
	discounts *DiscountService,
	voucherWindow time.Duration,
) *CartService {
	return &CartService{
		txManager:     txManager,
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		voucherRepo:   voucherRepo,
		availability:  availability,
		discounts:     discounts,
		voucherWindow: voucherWindow,
	}
}

// GetOrCreateCart returns the user's active cart, creating an empty one
// if none exists
func (s *CartService) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart = &entity.Cart{
		UserID:          userID,
		TimeLastUpdated: time.Now(),
		Revision:        1,
	}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, err
	}
	return s.cartRepo.GetByID(ctx, cart.ID)
}

// SetQuantities sets the cart's quantity for each given product,
// replacing whatever it held before. A quantity of zero removes the
// item. Increases are checked against limits, conditions and stock;
// decreases always succeed.
func (s *CartService) SetQuantities(ctx context.Context, userID uuid.UUID, quantities map[uuid.UUID]int) (*entity.Cart, error) {
	var out *entity.Cart
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		now := time.Now()

		cart, err := s.GetOrCreateCart(ctx, userID)
		if err != nil {
			return err
		}

		current := make(map[uuid.UUID]int, len(cart.Items))
		for _, item := range cart.Items {
			current[item.ProductID] = item.Quantity
		}

		// Only growth consumes stock
		additions := make(map[uuid.UUID]int)
		for id, qty := range quantities {
			if qty < 0 {
				return apperror.NewBadRequestError("Quantity cannot be negative")
			}
			if delta := qty - current[id]; delta > 0 {
				additions[id] = delta
			}
		}

		if len(additions) > 0 {
			verdict, err := s.availability.CanAddProducts(ctx, &CheckRequest{
				UserID:     userID,
				Cart:       cart,
				Quantities: additions,
			}, now)
			if err != nil {
				return err
			}
			if !verdict.Available {
				return apperror.NewUnavailableError(verdict.Reason)
			}
		}

		for id, qty := range quantities {
			if qty == current[id] {
				continue
			}
			if qty == 0 {
				if err := s.cartRepo.RemoveItem(ctx, cart.ID, id); err != nil {
					return err
				}
			} else {
				if err := s.cartRepo.UpsertItem(ctx, cart.ID, id, qty); err != nil {
					return err
				}
			}
		}

		out, err = s.endBatch(ctx, cart.ID, now)
		return err
	})
	return out, err
}

// AddToCart adds quantity units of a product on top of what the cart
// already holds
func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, productID uuid.UUID, quantity int) (*entity.Cart, error) {
	if quantity <= 0 {
		return nil, apperror.NewBadRequestError("Quantity must be positive")
	}
	var out *entity.Cart
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		cart, err := s.GetOrCreateCart(ctx, userID)
		if err != nil {
			return err
		}
		target := quantity
		for _, item := range cart.Items {
			if item.ProductID == productID {
				target += item.Quantity
				break
			}
		}
		out, err = s.SetQuantities(ctx, userID, map[uuid.UUID]int{productID: target})
		return err
	})
	return out, err
}

// ApplyVoucher attaches a voucher to the user's active cart. The code
// must exist, must not sit in another of the user's reserved carts, and
// must have uses left once every other reserved cart is counted.
// Re-applying a code the cart already carries succeeds without change.
func (s *CartService) ApplyVoucher(ctx context.Context, userID uuid.UUID, code string) (*entity.Cart, error) {
	var out *entity.Cart
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		now := time.Now()

		voucher, err := s.voucherRepo.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if voucher == nil {
			return apperror.ErrVoucherInvalid
		}

		cart, err := s.GetOrCreateCart(ctx, userID)
		if err != nil {
			return err
		}

		// Re-applying a code the cart already carries is a no-op; the
		// revision does not move.
		for _, v := range cart.Vouchers {
			if v.ID == voucher.ID {
				out = cart
				return nil
			}
		}

		// Held in another of the user's reserved carts
		held, err := s.cartRepo.UserHoldsVoucher(ctx, userID, voucher.ID, now)
		if err != nil {
			return err
		}
		if held {
			return apperror.ErrVoucherInvalid
		}

		inUse, err := s.cartRepo.CountReservedCartsWithVoucher(ctx, voucher.ID, &cart.ID, now)
		if err != nil {
			return err
		}
		if inUse >= voucher.Limit {
			return apperror.ErrVoucherExhausted
		}

		if err := s.cartRepo.AddVoucher(ctx, cart.ID, voucher.ID); err != nil {
			return err
		}

		out, err = s.endBatch(ctx, cart.ID, now)
		return err
	})
	return out, err
}

// RemoveVoucher detaches a voucher from the user's active cart
func (s *CartService) RemoveVoucher(ctx context.Context, userID uuid.UUID, voucherID uuid.UUID) (*entity.Cart, error) {
	var out *entity.Cart
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return apperror.NewNotFoundError("Cart")
		}
		if err := s.cartRepo.RemoveVoucher(ctx, cart.ID, voucherID); err != nil {
			return err
		}
		out, err = s.endBatch(ctx, cart.ID, time.Now())
		return err
	})
	return out, err
}

// ValidateCart reports everything that would block the cart from being
// invoiced right now
func (s *CartService) ValidateCart(ctx context.Context, userID uuid.UUID) ([]ProductVerdict, error) {
	cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperror.NewNotFoundError("Cart")
	}

	now := time.Now()
	failures, err := s.availability.ValidateCartContents(ctx, cart, now)
	if err != nil {
		return nil, err
	}

	for _, voucher := range cart.Vouchers {
		inUse, err := s.cartRepo.CountReservedCartsWithVoucher(ctx, voucher.ID, &cart.ID, now)
		if err != nil {
			return nil, err
		}
		if inUse >= voucher.Limit {
			failures = append(failures, ProductVerdict{
				Available: false,
				Reason:    "voucher " + voucher.Code + " is no longer available",
			})
		}
	}

	return failures, nil
}

// FixSimpleErrors lowers or removes cart items that availability no
// longer supports. Verdicts without a product, such as a missing
// required category, cannot be fixed automatically and are left to the
// user.
func (s *CartService) FixSimpleErrors(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	failures, err := s.ValidateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	quantities := make(map[uuid.UUID]int)
	for _, f := range failures {
		if f.Product == nil {
			continue
		}
		allowed := 0
		if f.Remaining != nil && *f.Remaining > 0 {
			allowed = *f.Remaining
		}
		quantities[f.Product.ID] = allowed
	}
	if len(quantities) == 0 {
		return s.cartRepo.GetActiveByUser(ctx, userID)
	}

	return s.SetQuantities(ctx, userID, quantities)
}

// endBatch closes a mutation batch: the revision moves on, the
// reservation clock restarts with a window covering everything the
// cart now holds, and discounts are reallocated against the new
// contents. Any invoice captured at the previous revision is dead from
// this point.
func (s *CartService) endBatch(ctx context.Context, cartID uuid.UUID, now time.Time) (*entity.Cart, error) {
	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperror.NewNotFoundError("Cart")
	}

	var window time.Duration
	for _, item := range cart.Items {
		if item.Product.ReservationDuration > window {
			window = item.Product.ReservationDuration
		}
	}
	if len(cart.Vouchers) > 0 && s.voucherWindow > window {
		window = s.voucherWindow
	}

	cart.Revision++
	cart.TimeLastUpdated = now
	cart.ReservationDuration = window
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}

	allocations, err := s.discounts.AllocateForCart(ctx, cart, now)
	if err != nil {
		return nil, err
	}
	items := make([]entity.DiscountItem, 0, len(allocations))
	for _, a := range allocations {
		items = append(items, entity.DiscountItem{
			CartID:     cart.ID,
			ProductID:  a.ProductID,
			DiscountID: a.DiscountID,
			Quantity:   a.Quantity,
		})
	}
	if err := s.cartRepo.ReplaceDiscountItems(ctx, cart.ID, items); err != nil {
		return nil, err
	}

	return s.cartRepo.GetByID(ctx, cart.ID)
}

package repository

import (
	"context"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/google/uuid"
)

// CartRepository defines the interface for cart data operations. The
// counting queries feed the availability and discount engines; they all
// restrict to reserved carts, meaning paid carts plus active carts whose
// reservation window has not lapsed at the given instant.
type CartRepository interface {
	Create(ctx context.Context, cart *entity.Cart) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Cart, error)
	// GetActiveByUser returns the user's single active cart with items,
	// vouchers and discount items preloaded, or gorm.ErrRecordNotFound.
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*entity.Cart, error)
	Save(ctx context.Context, cart *entity.Cart) error
	SetStatus(ctx context.Context, cartID uuid.UUID, status enum.CartStatus) error
	UpsertItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) error
	AddVoucher(ctx context.Context, cartID uuid.UUID, voucherID uuid.UUID) error
	RemoveVoucher(ctx context.Context, cartID uuid.UUID, voucherID uuid.UUID) error
	ReplaceDiscountItems(ctx context.Context, cartID uuid.UUID, items []entity.DiscountItem) error

	// Per-user quantity sums across the user's reserved carts, the
	// user's own active cart included.
	UserProductQuantity(ctx context.Context, userID uuid.UUID, productID uuid.UUID, now time.Time) (int, error)
	UserCategoryQuantity(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID, now time.Time) (int, error)
	UserHoldsAnyOfProducts(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID, now time.Time) (bool, error)
	UserHoldsCategory(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID, now time.Time) (bool, error)
	UserHoldsVoucher(ctx context.Context, userID uuid.UUID, voucherID uuid.UUID, now time.Time) (bool, error)

	// Global pools. excludeCartID removes the caller's own active cart
	// from the count so its current contents do not block itself.
	CountReservedCartsWithVoucher(ctx context.Context, voucherID uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error)
	ReservedQuantityForProducts(ctx context.Context, productIDs []uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error)
	ReservedDiscountUsage(ctx context.Context, discountID uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error)
	ReservedDiscountProductUsage(ctx context.Context, discountID uuid.UUID, productID uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error)
	ReservedDiscountCategoryUsage(ctx context.Context, discountID uuid.UUID, categoryID uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error)
}

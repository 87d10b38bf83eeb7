package repository

import (
	"context"
	"errors"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	domainRepo "github.com/confreg/registration-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// reservedCartCond is the SQL form of Cart.ReservedAt: paid carts, plus
// active carts whose reservation window is still open. The duration
// column holds nanoseconds.
const reservedCartCond = `(carts.status = 1 OR (carts.status = 0 AND
	carts.time_last_updated + (carts.reservation_duration / 1000000000.0) * INTERVAL '1 second' >= ?))`

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *gorm.DB) domainRepo.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(ctx context.Context, cart *entity.Cart) error {
	return dbFromContext(ctx, r.db).Create(cart).Error
}

func (r *cartRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Cart, error) {
	var cart entity.Cart
	err := dbFromContext(ctx, r.db).
		Preload("Items").Preload("Items.Product").Preload("Items.Product.Category").
		Preload("Vouchers").
		Preload("DiscountItems").Preload("DiscountItems.Discount").
		First(&cart, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cart, err
}

func (r *cartRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	var cart entity.Cart
	err := dbFromContext(ctx, r.db).
		Preload("Items").Preload("Items.Product").Preload("Items.Product.Category").
		Preload("Vouchers").
		Preload("DiscountItems").Preload("DiscountItems.Discount").
		First(&cart, "user_id = ? AND status = ?", userID, enum.CartStatusActive).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cart, err
}

func (r *cartRepository) Save(ctx context.Context, cart *entity.Cart) error {
	return dbFromContext(ctx, r.db).Save(cart).Error
}

func (r *cartRepository) SetStatus(ctx context.Context, cartID uuid.UUID, status enum.CartStatus) error {
	return dbFromContext(ctx, r.db).Model(&entity.Cart{}).
		Where("id = ?", cartID).
		Update("status", status).Error
}

func (r *cartRepository) UpsertItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID, quantity int) error {
	db := dbFromContext(ctx, r.db)
	var item entity.CartItem
	err := db.First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = entity.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
		return db.Create(&item).Error
	}
	if err != nil {
		return err
	}
	item.Quantity = quantity
	return db.Save(&item).Error
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) error {
	return dbFromContext(ctx, r.db).
		Delete(&entity.CartItem{}, "cart_id = ? AND product_id = ?", cartID, productID).Error
}

func (r *cartRepository) AddVoucher(ctx context.Context, cartID uuid.UUID, voucherID uuid.UUID) error {
	return dbFromContext(ctx, r.db).
		Model(&entity.Cart{ID: cartID}).
		Association("Vouchers").
		Append(&entity.Voucher{ID: voucherID})
}

func (r *cartRepository) RemoveVoucher(ctx context.Context, cartID uuid.UUID, voucherID uuid.UUID) error {
	return dbFromContext(ctx, r.db).
		Model(&entity.Cart{ID: cartID}).
		Association("Vouchers").
		Delete(&entity.Voucher{ID: voucherID})
}

// ReplaceDiscountItems drops and rewrites the cart's discount items.
// Allocation is recomputed from scratch on every mutation, so the old
// rows are never patched in place.
func (r *cartRepository) ReplaceDiscountItems(ctx context.Context, cartID uuid.UUID, items []entity.DiscountItem) error {
	db := dbFromContext(ctx, r.db)
	if err := db.Delete(&entity.DiscountItem{}, "cart_id = ?", cartID).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].CartID = cartID
	}
	return db.Create(&items).Error
}

func (r *cartRepository) UserProductQuantity(ctx context.Context, userID uuid.UUID, productID uuid.UUID, now time.Time) (int, error) {
	var total int64
	err := dbFromContext(ctx, r.db).Model(&entity.CartItem{}).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).
		Where("cart_items.product_id = ?", productID).
		Where(reservedCartCond, now).
		Scan(&total).Error
	return int(total), err
}

func (r *cartRepository) UserCategoryQuantity(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID, now time.Time) (int, error) {
	var total int64
	err := dbFromContext(ctx, r.db).Model(&entity.CartItem{}).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("carts.user_id = ?", userID).
		Where("products.category_id = ?", categoryID).
		Where(reservedCartCond, now).
		Scan(&total).Error
	return int(total), err
}

func (r *cartRepository) UserHoldsAnyOfProducts(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID, now time.Time) (bool, error) {
	if len(productIDs) == 0 {
		return false, nil
	}
	var count int64
	err := dbFromContext(ctx, r.db).Model(&entity.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).
		Where("cart_items.product_id IN ?", productIDs).
		Where("cart_items.quantity > 0").
		Where(reservedCartCond, now).
		Count(&count).Error
	return count > 0, err
}

func (r *cartRepository) UserHoldsCategory(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID, now time.Time) (bool, error) {
	qty, err := r.UserCategoryQuantity(ctx, userID, categoryID, now)
	return qty > 0, err
}

func (r *cartRepository) UserHoldsVoucher(ctx context.Context, userID uuid.UUID, voucherID uuid.UUID, now time.Time) (bool, error) {
	var count int64
	err := dbFromContext(ctx, r.db).Model(&entity.Cart{}).
		Joins("JOIN cart_vouchers cv ON cv.cart_id = carts.id").
		Where("carts.user_id = ?", userID).
		Where("cv.voucher_id = ?", voucherID).
		Where(reservedCartCond, now).
		Count(&count).Error
	return count > 0, err
}

func (r *cartRepository) CountReservedCartsWithVoucher(ctx context.Context, voucherID uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error) {
	query := dbFromContext(ctx, r.db).Model(&entity.Cart{}).
		Joins("JOIN cart_vouchers cv ON cv.cart_id = carts.id").
		Where("cv.voucher_id = ?", voucherID).
		Where(reservedCartCond, now)
	if excludeCartID != nil {
		query = query.Where("carts.id <> ?", *excludeCartID)
	}
	var count int64
	err := query.Count(&count).Error
	return int(count), err
}

func (r *cartRepository) ReservedQuantityForProducts(ctx context.Context, productIDs []uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	query := dbFromContext(ctx, r.db).Model(&entity.CartItem{}).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.product_id IN ?", productIDs).
		Where(reservedCartCond, now)
	if excludeCartID != nil {
		query = query.Where("carts.id <> ?", *excludeCartID)
	}
	var total int64
	err := query.Scan(&total).Error
	return int(total), err
}

func (r *cartRepository) ReservedDiscountUsage(ctx context.Context, discountID uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error) {
	query := dbFromContext(ctx, r.db).Model(&entity.DiscountItem{}).
		Select("COALESCE(SUM(discount_items.quantity), 0)").
		Joins("JOIN carts ON carts.id = discount_items.cart_id").
		Where("discount_items.discount_id = ?", discountID).
		Where(reservedCartCond, now)
	if excludeCartID != nil {
		query = query.Where("carts.id <> ?", *excludeCartID)
	}
	var total int64
	err := query.Scan(&total).Error
	return int(total), err
}

func (r *cartRepository) ReservedDiscountProductUsage(ctx context.Context, discountID uuid.UUID, productID uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error) {
	query := dbFromContext(ctx, r.db).Model(&entity.DiscountItem{}).
		Select("COALESCE(SUM(discount_items.quantity), 0)").
		Joins("JOIN carts ON carts.id = discount_items.cart_id").
		Where("discount_items.discount_id = ?", discountID).
		Where("discount_items.product_id = ?", productID).
		Where(reservedCartCond, now)
	if excludeCartID != nil {
		query = query.Where("carts.id <> ?", *excludeCartID)
	}
	var total int64
	err := query.Scan(&total).Error
	return int(total), err
}

func (r *cartRepository) ReservedDiscountCategoryUsage(ctx context.Context, discountID uuid.UUID, categoryID uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error) {
	query := dbFromContext(ctx, r.db).Model(&entity.DiscountItem{}).
		Select("COALESCE(SUM(discount_items.quantity), 0)").
		Joins("JOIN carts ON carts.id = discount_items.cart_id").
		Joins("JOIN products ON products.id = discount_items.product_id").
		Where("discount_items.discount_id = ?", discountID).
		Where("products.category_id = ?", categoryID).
		Where(reservedCartCond, now)
	if excludeCartID != nil {
		query = query.Where("carts.id <> ?", *excludeCartID)
	}
	var total int64
	err := query.Scan(&total).Error
	return int(total), err
}

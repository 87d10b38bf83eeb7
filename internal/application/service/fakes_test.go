package service_test

import (
	"context"
	"strconv"
	"time"

	"github.com/confreg/registration-api/internal/application/service"
	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/confreg/registration-api/internal/domain/repository"
	"github.com/confreg/registration-api/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore backs every fake repository with plain maps, so service
// behaviour can be exercised without a database. Relations that gorm
// would preload are hydrated on read.
type memStore struct {
	products    map[uuid.UUID]*entity.Product
	categories  map[uuid.UUID]*entity.Category
	ceilings    map[uuid.UUID]*entity.Ceiling
	vouchers    map[uuid.UUID]*entity.Voucher
	conditions  map[uuid.UUID]*entity.EnablingCondition
	discounts   map[uuid.UUID]*entity.Discount
	carts       map[uuid.UUID]*entity.Cart
	users       map[uuid.UUID]*entity.User
	invoices    map[uuid.UUID]*entity.Invoice
	payments    []entity.Payment
	creditNotes map[uuid.UUID]*entity.CreditNote
	profiles    map[uuid.UUID]*entity.AttendeeProfile

	seq int
}

func newMemStore() *memStore {
	return &memStore{
		products:    make(map[uuid.UUID]*entity.Product),
		categories:  make(map[uuid.UUID]*entity.Category),
		ceilings:    make(map[uuid.UUID]*entity.Ceiling),
		vouchers:    make(map[uuid.UUID]*entity.Voucher),
		conditions:  make(map[uuid.UUID]*entity.EnablingCondition),
		discounts:   make(map[uuid.UUID]*entity.Discount),
		carts:       make(map[uuid.UUID]*entity.Cart),
		users:       make(map[uuid.UUID]*entity.User),
		invoices:    make(map[uuid.UUID]*entity.Invoice),
		creditNotes: make(map[uuid.UUID]*entity.CreditNote),
		profiles:    make(map[uuid.UUID]*entity.AttendeeProfile),
	}
}

// test data builders

func (s *memStore) addUser(roles ...entity.Role) *entity.User {
	s.seq++
	u := &entity.User{
		ID:        uuid.New(),
		FirstName: "Test",
		LastName:  "Attendee " + strconv.Itoa(s.seq),
		Email:     "attendee" + strconv.Itoa(s.seq) + "@example.com",
		Roles:     roles,
	}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addCategory(name string, required bool, limitPerUser *int) *entity.Category {
	s.seq++
	c := &entity.Category{
		ID:           uuid.New(),
		Name:         name,
		Slug:         "cat-" + strconv.Itoa(s.seq),
		Required:     required,
		LimitPerUser: limitPerUser,
		Order:        s.seq,
	}
	s.categories[c.ID] = c
	return c
}

func (s *memStore) addProduct(category *entity.Category, name, price string, limitPerUser *int, window time.Duration) *entity.Product {
	s.seq++
	p := &entity.Product{
		ID:                  uuid.New(),
		CategoryID:          category.ID,
		Name:                name,
		Slug:                "prod-" + strconv.Itoa(s.seq),
		Price:               decimal.RequireFromString(price),
		LimitPerUser:        limitPerUser,
		ReservationDuration: window,
		Order:               s.seq,
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) addCeiling(name string, total *int, products ...*entity.Product) *entity.Ceiling {
	c := &entity.Ceiling{
		ID:             uuid.New(),
		Name:           name,
		TotalAvailable: total,
	}
	for _, p := range products {
		c.Products = append(c.Products, *p)
		p.Ceilings = append(p.Ceilings, *c)
	}
	s.ceilings[c.ID] = c
	return c
}

func (s *memStore) addVoucher(code string, limit int) *entity.Voucher {
	v := &entity.Voucher{
		ID:    uuid.New(),
		Code:  entity.NormaliseVoucherCode(code),
		Limit: limit,
	}
	s.vouchers[v.ID] = v
	return v
}

func (s *memStore) addDiscount(d *entity.Discount) *entity.Discount {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	for i := range d.ProductLines {
		if d.ProductLines[i].ID == uuid.Nil {
			d.ProductLines[i].ID = uuid.New()
		}
		d.ProductLines[i].DiscountID = d.ID
	}
	for i := range d.CategoryLines {
		if d.CategoryLines[i].ID == uuid.Nil {
			d.CategoryLines[i].ID = uuid.New()
		}
		d.CategoryLines[i].DiscountID = d.ID
	}
	s.discounts[d.ID] = d
	return d
}

func (s *memStore) addCondition(c *entity.EnablingCondition) *entity.EnablingCondition {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.conditions[c.ID] = c
	return c
}

// hydrateCart fills the relations a gorm preload would have loaded
func (s *memStore) hydrateCart(cart *entity.Cart) *entity.Cart {
	if cart == nil {
		return nil
	}
	for i := range cart.Items {
		if p := s.products[cart.Items[i].ProductID]; p != nil {
			cart.Items[i].Product = s.productCopy(p)
		}
	}
	for i := range cart.DiscountItems {
		if d := s.discounts[cart.DiscountItems[i].DiscountID]; d != nil {
			cart.DiscountItems[i].Discount = *d
		}
	}
	return cart
}

func (s *memStore) productCopy(p *entity.Product) entity.Product {
	out := *p
	if c := s.categories[p.CategoryID]; c != nil {
		out.Category = c
	}
	return out
}

// reservedGlobally mirrors the reserved-cart predicate of the SQL
// counting queries: paid carts plus active carts within their window.
func reservedGlobally(c *entity.Cart, now time.Time) bool {
	return c.ReservedAt(now)
}

// reservedForUser counts the user's own holdings: everything not
// released, the active cart included even if its window lapsed.
func reservedForUser(c *entity.Cart) bool {
	return c.Status != enum.CartStatusReleased
}

// fakeTxManager runs the function directly; the fakes have no
// transactions to join
type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeCartRepo

type fakeCartRepo struct{ s *memStore }

func (r *fakeCartRepo) Create(_ context.Context, cart *entity.Cart) error {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	r.s.carts[cart.ID] = cart
	return nil
}

func (r *fakeCartRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Cart, error) {
	return r.s.hydrateCart(r.s.carts[id]), nil
}

func (r *fakeCartRepo) GetActiveByUser(_ context.Context, userID uuid.UUID) (*entity.Cart, error) {
	for _, c := range r.s.carts {
		if c.UserID == userID && c.Status == enum.CartStatusActive {
			return r.s.hydrateCart(c), nil
		}
	}
	return nil, nil
}

func (r *fakeCartRepo) Save(_ context.Context, cart *entity.Cart) error {
	r.s.carts[cart.ID] = cart
	return nil
}

func (r *fakeCartRepo) SetStatus(_ context.Context, cartID uuid.UUID, status enum.CartStatus) error {
	if c := r.s.carts[cartID]; c != nil {
		c.Status = status
	}
	return nil
}

func (r *fakeCartRepo) UpsertItem(_ context.Context, cartID uuid.UUID, productID uuid.UUID, quantity int) error {
	c := r.s.carts[cartID]
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return nil
		}
	}
	c.Items = append(c.Items, entity.CartItem{
		ID: uuid.New(), CartID: cartID, ProductID: productID, Quantity: quantity,
	})
	return nil
}

func (r *fakeCartRepo) RemoveItem(_ context.Context, cartID uuid.UUID, productID uuid.UUID) error {
	c := r.s.carts[cartID]
	items := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	c.Items = items
	return nil
}

func (r *fakeCartRepo) AddVoucher(_ context.Context, cartID uuid.UUID, voucherID uuid.UUID) error {
	c := r.s.carts[cartID]
	if v := r.s.vouchers[voucherID]; v != nil {
		c.Vouchers = append(c.Vouchers, *v)
	}
	return nil
}

func (r *fakeCartRepo) RemoveVoucher(_ context.Context, cartID uuid.UUID, voucherID uuid.UUID) error {
	c := r.s.carts[cartID]
	vouchers := c.Vouchers[:0]
	for _, v := range c.Vouchers {
		if v.ID != voucherID {
			vouchers = append(vouchers, v)
		}
	}
	c.Vouchers = vouchers
	return nil
}

func (r *fakeCartRepo) ReplaceDiscountItems(_ context.Context, cartID uuid.UUID, items []entity.DiscountItem) error {
	r.s.carts[cartID].DiscountItems = items
	return nil
}

func (r *fakeCartRepo) UserProductQuantity(_ context.Context, userID uuid.UUID, productID uuid.UUID, _ time.Time) (int, error) {
	total := 0
	for _, c := range r.s.carts {
		if c.UserID != userID || !reservedForUser(c) {
			continue
		}
		for _, item := range c.Items {
			if item.ProductID == productID {
				total += item.Quantity
			}
		}
	}
	return total, nil
}

func (r *fakeCartRepo) UserCategoryQuantity(_ context.Context, userID uuid.UUID, categoryID uuid.UUID, _ time.Time) (int, error) {
	total := 0
	for _, c := range r.s.carts {
		if c.UserID != userID || !reservedForUser(c) {
			continue
		}
		for _, item := range c.Items {
			if p := r.s.products[item.ProductID]; p != nil && p.CategoryID == categoryID {
				total += item.Quantity
			}
		}
	}
	return total, nil
}

func (r *fakeCartRepo) UserHoldsAnyOfProducts(_ context.Context, userID uuid.UUID, productIDs []uuid.UUID, _ time.Time) (bool, error) {
	wanted := make(map[uuid.UUID]struct{}, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = struct{}{}
	}
	for _, c := range r.s.carts {
		if c.UserID != userID || !reservedForUser(c) {
			continue
		}
		for _, item := range c.Items {
			if _, ok := wanted[item.ProductID]; ok && item.Quantity > 0 {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *fakeCartRepo) UserHoldsCategory(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID, now time.Time) (bool, error) {
	qty, err := r.UserCategoryQuantity(ctx, userID, categoryID, now)
	return qty > 0, err
}

func (r *fakeCartRepo) UserHoldsVoucher(_ context.Context, userID uuid.UUID, voucherID uuid.UUID, _ time.Time) (bool, error) {
	for _, c := range r.s.carts {
		if c.UserID != userID || !reservedForUser(c) {
			continue
		}
		for _, v := range c.Vouchers {
			if v.ID == voucherID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *fakeCartRepo) CountReservedCartsWithVoucher(_ context.Context, voucherID uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error) {
	count := 0
	for _, c := range r.s.carts {
		if excludeCartID != nil && c.ID == *excludeCartID {
			continue
		}
		if !reservedGlobally(c, now) {
			continue
		}
		for _, v := range c.Vouchers {
			if v.ID == voucherID {
				count++
				break
			}
		}
	}
	return count, nil
}

func (r *fakeCartRepo) ReservedQuantityForProducts(_ context.Context, productIDs []uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error) {
	wanted := make(map[uuid.UUID]struct{}, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = struct{}{}
	}
	total := 0
	for _, c := range r.s.carts {
		if excludeCartID != nil && c.ID == *excludeCartID {
			continue
		}
		if !reservedGlobally(c, now) {
			continue
		}
		for _, item := range c.Items {
			if _, ok := wanted[item.ProductID]; ok {
				total += item.Quantity
			}
		}
	}
	return total, nil
}

func (r *fakeCartRepo) ReservedDiscountUsage(_ context.Context, discountID uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error) {
	total := 0
	for _, c := range r.s.carts {
		if excludeCartID != nil && c.ID == *excludeCartID {
			continue
		}
		if !reservedGlobally(c, now) {
			continue
		}
		for _, di := range c.DiscountItems {
			if di.DiscountID == discountID {
				total += di.Quantity
			}
		}
	}
	return total, nil
}

func (r *fakeCartRepo) ReservedDiscountProductUsage(_ context.Context, discountID uuid.UUID, productID uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error) {
	total := 0
	for _, c := range r.s.carts {
		if excludeCartID != nil && c.ID == *excludeCartID {
			continue
		}
		if !reservedGlobally(c, now) {
			continue
		}
		for _, di := range c.DiscountItems {
			if di.DiscountID == discountID && di.ProductID == productID {
				total += di.Quantity
			}
		}
	}
	return total, nil
}

func (r *fakeCartRepo) ReservedDiscountCategoryUsage(_ context.Context, discountID uuid.UUID, categoryID uuid.UUID, excludeCartID *uuid.UUID, now time.Time) (int, error) {
	total := 0
	for _, c := range r.s.carts {
		if excludeCartID != nil && c.ID == *excludeCartID {
			continue
		}
		if !reservedGlobally(c, now) {
			continue
		}
		for _, di := range c.DiscountItems {
			if di.DiscountID != discountID {
				continue
			}
			if p := r.s.products[di.ProductID]; p != nil && p.CategoryID == categoryID {
				total += di.Quantity
			}
		}
	}
	return total, nil
}

// fakeProductRepo

type fakeProductRepo struct{ s *memStore }

func (r *fakeProductRepo) Create(_ context.Context, product *entity.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.s.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	if p := r.s.products[id]; p != nil {
		out := r.s.productCopy(p)
		return &out, nil
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	out := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		if p := r.s.products[id]; p != nil {
			out = append(out, r.s.productCopy(p))
		}
	}
	return out, nil
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.Slug == slug {
			out := r.s.productCopy(p)
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetWithCeilings(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.s.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.s.products, id)
	return nil
}

func (r *fakeProductRepo) List(_ context.Context, _ *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	out := make([]entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, r.s.productCopy(p))
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) ListByCategory(_ context.Context, categoryID uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range r.s.products {
		if p.CategoryID == categoryID {
			out = append(out, r.s.productCopy(p))
		}
	}
	return out, nil
}

func (r *fakeProductRepo) ReplaceCeilings(_ context.Context, productID uuid.UUID, ceilingIDs []uuid.UUID) error {
	p := r.s.products[productID]
	p.Ceilings = nil
	for _, id := range ceilingIDs {
		if c := r.s.ceilings[id]; c != nil {
			p.Ceilings = append(p.Ceilings, *c)
		}
	}
	return nil
}

// fakeCategoryRepo

type fakeCategoryRepo struct{ s *memStore }

func (r *fakeCategoryRepo) Create(_ context.Context, category *entity.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	r.s.categories[category.ID] = category
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Category, error) {
	return r.s.categories[id], nil
}

func (r *fakeCategoryRepo) GetBySlug(_ context.Context, slug string) (*entity.Category, error) {
	for _, c := range r.s.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *entity.Category) error {
	r.s.categories[category.ID] = category
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.s.categories, id)
	return nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]entity.Category, error) {
	out := make([]entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) ListRequired(_ context.Context) ([]entity.Category, error) {
	var out []entity.Category
	for _, c := range r.s.categories {
		if c.Required {
			out = append(out, *c)
		}
	}
	return out, nil
}

// fakeCeilingRepo

type fakeCeilingRepo struct{ s *memStore }

func (r *fakeCeilingRepo) Create(_ context.Context, ceiling *entity.Ceiling) error {
	if ceiling.ID == uuid.Nil {
		ceiling.ID = uuid.New()
	}
	r.s.ceilings[ceiling.ID] = ceiling
	return nil
}

func (r *fakeCeilingRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Ceiling, error) {
	return r.s.ceilings[id], nil
}

func (r *fakeCeilingRepo) GetWithProducts(_ context.Context, id uuid.UUID) (*entity.Ceiling, error) {
	return r.s.ceilings[id], nil
}

func (r *fakeCeilingRepo) Update(_ context.Context, ceiling *entity.Ceiling) error {
	r.s.ceilings[ceiling.ID] = ceiling
	return nil
}

func (r *fakeCeilingRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.s.ceilings, id)
	return nil
}

func (r *fakeCeilingRepo) List(_ context.Context) ([]entity.Ceiling, error) {
	out := make([]entity.Ceiling, 0, len(r.s.ceilings))
	for _, c := range r.s.ceilings {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCeilingRepo) ListForProduct(_ context.Context, productID uuid.UUID) ([]entity.Ceiling, error) {
	var out []entity.Ceiling
	for _, c := range r.s.ceilings {
		for _, p := range c.Products {
			if p.ID == productID {
				out = append(out, *c)
				break
			}
		}
	}
	return out, nil
}

// fakeVoucherRepo

type fakeVoucherRepo struct{ s *memStore }

func (r *fakeVoucherRepo) Create(_ context.Context, voucher *entity.Voucher) error {
	if voucher.ID == uuid.Nil {
		voucher.ID = uuid.New()
	}
	voucher.Code = entity.NormaliseVoucherCode(voucher.Code)
	r.s.vouchers[voucher.ID] = voucher
	return nil
}

func (r *fakeVoucherRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Voucher, error) {
	return r.s.vouchers[id], nil
}

func (r *fakeVoucherRepo) GetByCode(_ context.Context, code string) (*entity.Voucher, error) {
	code = entity.NormaliseVoucherCode(code)
	for _, v := range r.s.vouchers {
		if v.Code == code {
			return v, nil
		}
	}
	return nil, nil
}

func (r *fakeVoucherRepo) Update(_ context.Context, voucher *entity.Voucher) error {
	r.s.vouchers[voucher.ID] = voucher
	return nil
}

func (r *fakeVoucherRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.s.vouchers, id)
	return nil
}

func (r *fakeVoucherRepo) List(_ context.Context, _ *pagination.PaginationParams) ([]entity.Voucher, int64, error) {
	out := make([]entity.Voucher, 0, len(r.s.vouchers))
	for _, v := range r.s.vouchers {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

// fakeConditionRepo

type fakeConditionRepo struct{ s *memStore }

func (r *fakeConditionRepo) Create(_ context.Context, condition *entity.EnablingCondition) error {
	if condition.ID == uuid.Nil {
		condition.ID = uuid.New()
	}
	r.s.conditions[condition.ID] = condition
	return nil
}

func (r *fakeConditionRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.EnablingCondition, error) {
	return r.s.conditions[id], nil
}

func (r *fakeConditionRepo) Update(_ context.Context, condition *entity.EnablingCondition) error {
	r.s.conditions[condition.ID] = condition
	return nil
}

func (r *fakeConditionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.s.conditions, id)
	return nil
}

func (r *fakeConditionRepo) List(_ context.Context) ([]entity.EnablingCondition, error) {
	out := make([]entity.EnablingCondition, 0, len(r.s.conditions))
	for _, c := range r.s.conditions {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeConditionRepo) ListForProducts(_ context.Context, productIDs []uuid.UUID, categoryIDs []uuid.UUID) ([]entity.EnablingCondition, error) {
	wantedProducts := make(map[uuid.UUID]struct{}, len(productIDs))
	for _, id := range productIDs {
		wantedProducts[id] = struct{}{}
	}
	wantedCategories := make(map[uuid.UUID]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		wantedCategories[id] = struct{}{}
	}

	var out []entity.EnablingCondition
	for _, c := range r.s.conditions {
		matched := false
		for _, p := range c.Products {
			if _, ok := wantedProducts[p.ID]; ok {
				matched = true
				break
			}
		}
		if !matched {
			for _, cat := range c.Categories {
				if _, ok := wantedCategories[cat.ID]; ok {
					matched = true
					break
				}
			}
		}
		if matched {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeConditionRepo) ReplaceProducts(_ context.Context, conditionID uuid.UUID, productIDs []uuid.UUID) error {
	c := r.s.conditions[conditionID]
	c.Products = nil
	for _, id := range productIDs {
		if p := r.s.products[id]; p != nil {
			c.Products = append(c.Products, *p)
		}
	}
	return nil
}

func (r *fakeConditionRepo) ReplaceCategories(_ context.Context, conditionID uuid.UUID, categoryIDs []uuid.UUID) error {
	c := r.s.conditions[conditionID]
	c.Categories = nil
	for _, id := range categoryIDs {
		if cat := r.s.categories[id]; cat != nil {
			c.Categories = append(c.Categories, *cat)
		}
	}
	return nil
}

func (r *fakeConditionRepo) ReplaceEnablingProducts(_ context.Context, conditionID uuid.UUID, productIDs []uuid.UUID) error {
	c := r.s.conditions[conditionID]
	c.EnablingProducts = nil
	for _, id := range productIDs {
		if p := r.s.products[id]; p != nil {
			c.EnablingProducts = append(c.EnablingProducts, *p)
		}
	}
	return nil
}

// fakeDiscountRepo

type fakeDiscountRepo struct{ s *memStore }

func (r *fakeDiscountRepo) Create(_ context.Context, discount *entity.Discount) error {
	r.s.addDiscount(discount)
	return nil
}

func (r *fakeDiscountRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Discount, error) {
	return r.s.discounts[id], nil
}

func (r *fakeDiscountRepo) Update(_ context.Context, discount *entity.Discount) error {
	existing := r.s.discounts[discount.ID]
	if existing != nil {
		if discount.ProductLines == nil {
			discount.ProductLines = existing.ProductLines
		}
		if discount.CategoryLines == nil {
			discount.CategoryLines = existing.CategoryLines
		}
	}
	r.s.discounts[discount.ID] = discount
	return nil
}

func (r *fakeDiscountRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.s.discounts, id)
	return nil
}

func (r *fakeDiscountRepo) List(_ context.Context) ([]entity.Discount, error) {
	out := make([]entity.Discount, 0, len(r.s.discounts))
	for _, d := range r.s.discounts {
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeDiscountRepo) ListForProducts(_ context.Context, productIDs []uuid.UUID, categoryIDs []uuid.UUID) ([]entity.Discount, error) {
	wantedProducts := make(map[uuid.UUID]struct{}, len(productIDs))
	for _, id := range productIDs {
		wantedProducts[id] = struct{}{}
	}
	wantedCategories := make(map[uuid.UUID]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		wantedCategories[id] = struct{}{}
	}

	var out []entity.Discount
	for _, d := range r.s.discounts {
		matched := false
		for _, line := range d.ProductLines {
			if _, ok := wantedProducts[line.ProductID]; ok {
				matched = true
				break
			}
		}
		if !matched {
			for _, line := range d.CategoryLines {
				if _, ok := wantedCategories[line.CategoryID]; ok {
					matched = true
					break
				}
			}
		}
		if matched {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDiscountRepo) ReplaceProductLines(_ context.Context, discountID uuid.UUID, lines []entity.DiscountProduct) error {
	d := r.s.discounts[discountID]
	for i := range lines {
		lines[i].DiscountID = discountID
	}
	d.ProductLines = lines
	return nil
}

func (r *fakeDiscountRepo) ReplaceCategoryLines(_ context.Context, discountID uuid.UUID, lines []entity.DiscountCategory) error {
	d := r.s.discounts[discountID]
	for i := range lines {
		lines[i].DiscountID = discountID
	}
	d.CategoryLines = lines
	return nil
}

// fakeUserRepo

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.s.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.s.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.s.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.s.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _ *pagination.PaginationParams, _ string) ([]entity.User, int64, error) {
	out := make([]entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) GetWithRoles(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.s.users[id], nil
}

func (r *fakeUserRepo) AssignRole(_ context.Context, userID uuid.UUID, roleID uint) error {
	if u := r.s.users[userID]; u != nil {
		u.Roles = append(u.Roles, entity.Role{ID: roleID})
	}
	return nil
}

func (r *fakeUserRepo) RemoveRole(_ context.Context, userID uuid.UUID, roleID uint) error {
	u := r.s.users[userID]
	if u == nil {
		return nil
	}
	roles := u.Roles[:0]
	for _, role := range u.Roles {
		if role.ID != roleID {
			roles = append(roles, role)
		}
	}
	u.Roles = roles
	return nil
}

// fakeInvoiceRepo

type fakeInvoiceRepo struct{ s *memStore }

func (r *fakeInvoiceRepo) Create(_ context.Context, invoice *entity.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	r.s.invoices[invoice.ID] = invoice
	return nil
}

func (r *fakeInvoiceRepo) hydrate(invoice *entity.Invoice) *entity.Invoice {
	if invoice == nil {
		return nil
	}
	invoice.Payments = nil
	for _, p := range r.s.payments {
		if p.InvoiceID == invoice.ID {
			invoice.Payments = append(invoice.Payments, p)
		}
	}
	return invoice
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.hydrate(r.s.invoices[id]), nil
}

func (r *fakeInvoiceRepo) GetByInvoiceNo(_ context.Context, invoiceNo string) (*entity.Invoice, error) {
	for _, inv := range r.s.invoices {
		if inv.InvoiceNo == invoiceNo {
			return r.hydrate(inv), nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) GetByCartAndRevision(_ context.Context, cartID uuid.UUID, revision int) (*entity.Invoice, error) {
	for _, inv := range r.s.invoices {
		if inv.CartID != nil && *inv.CartID == cartID &&
			inv.CartRevision != nil && *inv.CartRevision == revision &&
			!inv.IsVoid() {
			return r.hydrate(inv), nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]entity.Invoice, error) {
	var out []entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.UserID == userID {
			out = append(out, *r.hydrate(inv))
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListByStatus(_ context.Context, status enum.InvoiceStatus) ([]entity.Invoice, error) {
	var out []entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.Status == status {
			out = append(out, *r.hydrate(inv))
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListOverdue(_ context.Context, now time.Time) ([]entity.Invoice, error) {
	var out []entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.IsUnpaid() && inv.DueTime.Before(now) {
			out = append(out, *r.hydrate(inv))
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enum.InvoiceStatus) error {
	if inv := r.s.invoices[id]; inv != nil {
		inv.Status = status
	}
	return nil
}

// fakePaymentRepo

type fakePaymentRepo struct{ s *memStore }

func (r *fakePaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if payment.Time.IsZero() {
		payment.Time = time.Now()
	}
	r.s.payments = append(r.s.payments, *payment)
	return nil
}

func (r *fakePaymentRepo) ListByInvoice(_ context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	var out []entity.Payment
	for _, p := range r.s.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) SumForInvoice(_ context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.s.payments {
		if p.InvoiceID == invoiceID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

// fakeCreditNoteRepo

type fakeCreditNoteRepo struct{ s *memStore }

func (r *fakeCreditNoteRepo) Create(_ context.Context, note *entity.CreditNote) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if note.IssueTime.IsZero() {
		note.IssueTime = time.Now()
	}
	r.s.creditNotes[note.ID] = note
	return nil
}

func (r *fakeCreditNoteRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.CreditNote, error) {
	return r.s.creditNotes[id], nil
}

func (r *fakeCreditNoteRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]entity.CreditNote, error) {
	var out []entity.CreditNote
	for _, n := range r.s.creditNotes {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeCreditNoteRepo) ListUnclaimedByUser(_ context.Context, userID uuid.UUID) ([]entity.CreditNote, error) {
	var out []entity.CreditNote
	for _, n := range r.s.creditNotes {
		if n.UserID == userID && !n.IsClaimed() {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeCreditNoteRepo) ListUnclaimed(_ context.Context) ([]entity.CreditNote, error) {
	var out []entity.CreditNote
	for _, n := range r.s.creditNotes {
		if !n.IsClaimed() {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeCreditNoteRepo) MarkApplied(_ context.Context, id uuid.UUID, invoiceID uuid.UUID, at time.Time) error {
	n := r.s.creditNotes[id]
	n.AppliedToInvoiceID = &invoiceID
	n.AppliedAt = &at
	return nil
}

func (r *fakeCreditNoteRepo) MarkRefunded(_ context.Context, id uuid.UUID, reference string, at time.Time) error {
	n := r.s.creditNotes[id]
	n.RefundReference = &reference
	n.RefundedAt = &at
	return nil
}

// fakeProfileRepo

type fakeProfileRepo struct{ s *memStore }

func (r *fakeProfileRepo) Create(_ context.Context, profile *entity.AttendeeProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	r.s.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*entity.AttendeeProfile, error) {
	return r.s.profiles[userID], nil
}

func (r *fakeProfileRepo) GetByAccessCode(_ context.Context, code string) (*entity.AttendeeProfile, error) {
	for _, p := range r.s.profiles {
		if p.AccessCode == code {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProfileRepo) Update(_ context.Context, profile *entity.AttendeeProfile) error {
	r.s.profiles[profile.UserID] = profile
	return nil
}

// fixture wires the commerce services over one memStore

type fixture struct {
	store        *memStore
	availability *service.AvailabilityService
	discounts    *service.DiscountService
	carts        *service.CartService
	invoices     *service.InvoiceService
	creditNotes  *service.CreditNoteService
}

func newFixture() *fixture {
	store := newMemStore()
	tx := fakeTxManager{}

	cartRepo := &fakeCartRepo{s: store}
	productRepo := &fakeProductRepo{s: store}
	categoryRepo := &fakeCategoryRepo{s: store}
	ceilingRepo := &fakeCeilingRepo{s: store}
	voucherRepo := &fakeVoucherRepo{s: store}
	conditionRepo := &fakeConditionRepo{s: store}
	discountRepo := &fakeDiscountRepo{s: store}
	userRepo := &fakeUserRepo{s: store}
	invoiceRepo := &fakeInvoiceRepo{s: store}
	paymentRepo := &fakePaymentRepo{s: store}
	creditNoteRepo := &fakeCreditNoteRepo{s: store}
	profileRepo := &fakeProfileRepo{s: store}

	availability := service.NewAvailabilityService(productRepo, categoryRepo, ceilingRepo, conditionRepo, cartRepo, userRepo)
	discounts := service.NewDiscountService(discountRepo, productRepo, cartRepo, userRepo)
	carts := service.NewCartService(tx, cartRepo, productRepo, voucherRepo, availability, discounts, time.Hour)
	invoices := service.NewInvoiceService(tx, invoiceRepo, paymentRepo, creditNoteRepo, cartRepo, userRepo, profileRepo, carts, discounts, nil, 7*24*time.Hour)
	creditNotes := service.NewCreditNoteService(tx, creditNoteRepo)

	return &fixture{
		store:        store,
		availability: availability,
		discounts:    discounts,
		carts:        carts,
		invoices:     invoices,
		creditNotes:  creditNotes,
	}
}

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func decimalFromString(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

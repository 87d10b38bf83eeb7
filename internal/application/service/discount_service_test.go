package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/confreg/registration-api/internal/application/service"
	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/confreg/registration-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateBestClauseFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)

	// One free ticket, then 15% off the rest
	f.store.addDiscount(&entity.Discount{
		Description: "Sponsor package",
		Kind:        enum.DiscountKindTimeOrStock,
		ProductLines: []entity.DiscountProduct{
			{ProductID: ticket.ID, Percentage: decPtr("100"), Quantity: 1},
			{ProductID: ticket.ID, Percentage: decPtr("15"), Quantity: 10},
		},
	})

	cart, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 2})
	require.NoError(t, err)

	allocations, err := f.discounts.AllocateForCart(ctx, cart, time.Now())
	require.NoError(t, err)
	require.Len(t, allocations, 2)

	// The 100% clause lands before the 15% one
	assert.Equal(t, 1, allocations[0].Quantity)
	assert.Equal(t, "100", allocations[0].UnitValue.String())
	assert.Equal(t, 1, allocations[1].Quantity)
	assert.Equal(t, "15", allocations[1].UnitValue.String())
}

func TestAllocatePoolSharedAcrossCarts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tickets := f.store.addCategory("Tickets", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)

	f.store.addDiscount(&entity.Discount{
		Description: "First two half price",
		Kind:        enum.DiscountKindTimeOrStock,
		ProductLines: []entity.DiscountProduct{
			{ProductID: ticket.ID, Percentage: decPtr("50"), Quantity: 2},
		},
	})

	// The first attendee's cart takes one unit of the pool
	first := f.store.addUser()
	_, err := f.carts.SetQuantities(ctx, first.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)

	// The second asks for three; only one discounted unit remains
	second := f.store.addUser()
	cart, err := f.carts.SetQuantities(ctx, second.ID, map[uuid.UUID]int{ticket.ID: 3})
	require.NoError(t, err)

	require.Len(t, cart.DiscountItems, 1)
	assert.Equal(t, 1, cart.DiscountItems[0].Quantity)
}

func TestAllocateDiscountLevelLimit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)

	// The line pool is generous but the discount itself caps at 1
	f.store.addDiscount(&entity.Discount{
		Description: "One per conference",
		Kind:        enum.DiscountKindTimeOrStock,
		Limit:       intPtr(1),
		ProductLines: []entity.DiscountProduct{
			{ProductID: ticket.ID, Percentage: decPtr("50"), Quantity: 10},
		},
	})

	cart, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 3})
	require.NoError(t, err)
	require.Len(t, cart.DiscountItems, 1)
	assert.Equal(t, 1, cart.DiscountItems[0].Quantity)
}

func TestAllocateTimeWindow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)

	past := time.Now().Add(-time.Hour)
	f.store.addDiscount(&entity.Discount{
		Description: "Early bird",
		Kind:        enum.DiscountKindTimeOrStock,
		EndTime:     &past,
		ProductLines: []entity.DiscountProduct{
			{ProductID: ticket.ID, Percentage: decPtr("25"), Quantity: 10},
		},
	})

	cart, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	assert.Empty(t, cart.DiscountItems, "the window closed an hour ago")
}

func TestVoucherDiscountNeedsVoucherInCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)
	voucher := f.store.addVoucher("PRESS", 5)

	f.store.addDiscount(&entity.Discount{
		Description: "Press pass",
		Kind:        enum.DiscountKindVoucher,
		VoucherID:   &voucher.ID,
		ProductLines: []entity.DiscountProduct{
			{ProductID: ticket.ID, Percentage: decPtr("100"), Quantity: 1},
		},
	})

	cart, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	assert.Empty(t, cart.DiscountItems)

	cart, err = f.carts.ApplyVoucher(ctx, user.ID, "PRESS")
	require.NoError(t, err)
	require.Len(t, cart.DiscountItems, 1)
	assert.Equal(t, 1, cart.DiscountItems[0].Quantity)
}

func TestRoleDiscount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	speakerRole := entity.Role{ID: 7, Name: "speaker"}
	speaker := f.store.addUser(speakerRole)
	attendee := f.store.addUser()

	tickets := f.store.addCategory("Tickets", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)

	roleID := speakerRole.ID
	f.store.addDiscount(&entity.Discount{
		Description: "Speakers attend free",
		Kind:        enum.DiscountKindRole,
		RoleID:      &roleID,
		ProductLines: []entity.DiscountProduct{
			{ProductID: ticket.ID, Percentage: decPtr("100"), Quantity: 100},
		},
	})

	cart, err := f.carts.SetQuantities(ctx, speaker.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	assert.Len(t, cart.DiscountItems, 1)

	cart, err = f.carts.SetQuantities(ctx, attendee.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	assert.Empty(t, cart.DiscountItems)
}

func TestCategoryLineCoversWholeCategory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	extras := f.store.addCategory("Extras", false, nil)
	shirt := f.store.addProduct(extras, "T-Shirt", "25.00", nil, time.Hour)
	hoodie := f.store.addProduct(extras, "Hoodie", "60.00", nil, time.Hour)

	f.store.addDiscount(&entity.Discount{
		Description: "Merch sale",
		Kind:        enum.DiscountKindTimeOrStock,
		CategoryLines: []entity.DiscountCategory{
			{CategoryID: extras.ID, Percentage: decimalFromString("20"), Quantity: 10},
		},
	})

	cart, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{
		shirt.ID:  1,
		hoodie.ID: 1,
	})
	require.NoError(t, err)
	assert.Len(t, cart.DiscountItems, 2)
}

func TestCreateDiscountRejectsOverlappingLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	extras := f.store.addCategory("Extras", false, nil)
	shirt := f.store.addProduct(extras, "T-Shirt", "25.00", nil, time.Hour)

	// A product line whose product sits inside a category line of the
	// same discount would reduce one unit twice
	_, err := f.discounts.CreateDiscount(ctx, &service.CreateDiscountInput{
		Description: "Broken",
		Kind:        enum.DiscountKindTimeOrStock,
		ProductLines: []entity.DiscountProduct{
			{ProductID: shirt.ID, Percentage: decPtr("10"), Quantity: 5},
		},
		CategoryLines: []entity.DiscountCategory{
			{CategoryID: extras.ID, Percentage: decimalFromString("20"), Quantity: 5},
		},
	})
	require.ErrorIs(t, err, apperror.ErrDiscountConflict)
}

func TestCreateDiscountLineValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	extras := f.store.addCategory("Extras", false, nil)
	shirt := f.store.addProduct(extras, "T-Shirt", "25.00", nil, time.Hour)

	t.Run("needs at least one line", func(t *testing.T) {
		_, err := f.discounts.CreateDiscount(ctx, &service.CreateDiscountInput{
			Description: "Empty",
			Kind:        enum.DiscountKindTimeOrStock,
		})
		require.Error(t, err)
	})

	t.Run("percentage and amount are exclusive", func(t *testing.T) {
		_, err := f.discounts.CreateDiscount(ctx, &service.CreateDiscountInput{
			Description: "Both",
			Kind:        enum.DiscountKindTimeOrStock,
			ProductLines: []entity.DiscountProduct{
				{ProductID: shirt.ID, Percentage: decPtr("10"), Amount: decPtr("5.00"), Quantity: 5},
			},
		})
		require.Error(t, err)
	})

	t.Run("duplicate product lines conflict", func(t *testing.T) {
		_, err := f.discounts.CreateDiscount(ctx, &service.CreateDiscountInput{
			Description: "Shirt twice",
			Kind:        enum.DiscountKindTimeOrStock,
			ProductLines: []entity.DiscountProduct{
				{ProductID: shirt.ID, Percentage: decPtr("20"), Quantity: 5},
				{ProductID: shirt.ID, Percentage: decPtr("10"), Quantity: 5},
			},
		})
		require.ErrorIs(t, err, apperror.ErrDiscountConflict)
	})

	t.Run("duplicate category lines conflict", func(t *testing.T) {
		_, err := f.discounts.CreateDiscount(ctx, &service.CreateDiscountInput{
			Description: "Twice",
			Kind:        enum.DiscountKindTimeOrStock,
			CategoryLines: []entity.DiscountCategory{
				{CategoryID: extras.ID, Percentage: decimalFromString("20"), Quantity: 5},
				{CategoryID: extras.ID, Percentage: decimalFromString("10"), Quantity: 5},
			},
		})
		require.ErrorIs(t, err, apperror.ErrDiscountConflict)
	})
}

func TestIncludedProductDiscount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	extras := f.store.addCategory("Extras", false, nil)
	ticket := f.store.addProduct(tickets, "Professional", "400.00", nil, time.Hour)
	shirt := f.store.addProduct(extras, "T-Shirt", "25.00", nil, time.Hour)

	f.store.addDiscount(&entity.Discount{
		Description:      "Free shirt with professional ticket",
		Kind:             enum.DiscountKindIncludedProduct,
		EnablingProducts: []entity.Product{{ID: ticket.ID}},
		ProductLines: []entity.DiscountProduct{
			{ProductID: shirt.ID, Percentage: decPtr("100"), Quantity: 1},
		},
	})

	// Without the ticket the shirt stays full price
	cart, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{shirt.ID: 1})
	require.NoError(t, err)
	assert.Empty(t, cart.DiscountItems)

	cart, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{
		ticket.ID: 1,
		shirt.ID:  1,
	})
	require.NoError(t, err)
	require.Len(t, cart.DiscountItems, 1)
	assert.Equal(t, shirt.ID, cart.DiscountItems[0].ProductID)
}

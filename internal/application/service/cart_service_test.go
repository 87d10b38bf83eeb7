package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/confreg/registration-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()

	cart, err := f.carts.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Equal(t, 1, cart.Revision)
	assert.Empty(t, cart.Items)

	again, err := f.carts.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestSetQuantitiesBumpsRevision(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)

	cart, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Revision)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	cart, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Revision)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	// Zero removes the item, and still counts as a mutation
	cart, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 0})
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Revision)
	assert.Empty(t, cart.Items)
}

func TestSetQuantitiesRejectsNegative(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: -1})
	require.Error(t, err)
}

func TestAddToCartAccumulates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	extras := f.store.addCategory("Extras", false, nil)
	shirt := f.store.addProduct(extras, "T-Shirt", "25.00", nil, time.Hour)

	_, err := f.carts.AddToCart(ctx, user.ID, shirt.ID, 1)
	require.NoError(t, err)
	cart, err := f.carts.AddToCart(ctx, user.ID, shirt.ID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestPerUserProductLimit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	extras := f.store.addCategory("Extras", false, nil)
	dinner := f.store.addProduct(extras, "Dinner Seat", "90.00", intPtr(2), time.Hour)

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{dinner.ID: 3})
	require.Error(t, err)

	_, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{dinner.ID: 2})
	require.NoError(t, err)

	_, err = f.carts.AddToCart(ctx, user.ID, dinner.ID, 1)
	require.Error(t, err)
}

func TestCeilingStopsOverselling(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tickets := f.store.addCategory("Tickets", false, nil)
	early := f.store.addProduct(tickets, "Early Bird", "80.00", nil, time.Hour)
	standard := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)
	f.store.addCeiling("Venue capacity", intPtr(5), early, standard)

	// Another attendee already reserves 3 of the shared pool
	other := f.store.addUser()
	_, err := f.carts.SetQuantities(ctx, other.ID, map[uuid.UUID]int{early.ID: 3})
	require.NoError(t, err)

	user := f.store.addUser()
	_, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{standard.ID: 3})
	require.Error(t, err, "only 2 seats remain under the ceiling")

	cart, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{standard.ID: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestLapsedReservationReturnsStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tickets := f.store.addCategory("Tickets", false, nil)
	// Reservations on this product only last a minute
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Minute)
	f.store.addCeiling("Venue capacity", intPtr(2), ticket)

	other := f.store.addUser()
	otherCart, err := f.carts.SetQuantities(ctx, other.ID, map[uuid.UUID]int{ticket.ID: 2})
	require.NoError(t, err)

	// Age the other cart past its reservation window
	f.store.carts[otherCart.ID].TimeLastUpdated = time.Now().Add(-10 * time.Minute)

	user := f.store.addUser()
	_, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 2})
	require.NoError(t, err)
}

func TestPaidCartReservesForever(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tickets := f.store.addCategory("Tickets", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Minute)
	f.store.addCeiling("Venue capacity", intPtr(2), ticket)

	other := f.store.addUser()
	otherCart, err := f.carts.SetQuantities(ctx, other.ID, map[uuid.UUID]int{ticket.ID: 2})
	require.NoError(t, err)
	f.store.carts[otherCart.ID].Status = enum.CartStatusPaid
	f.store.carts[otherCart.ID].TimeLastUpdated = time.Now().Add(-10 * time.Minute)

	user := f.store.addUser()
	_, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.Error(t, err)
}

func TestReservationWindowCoversWholeCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	extras := f.store.addCategory("Extras", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, 2*time.Hour)
	shirt := f.store.addProduct(extras, "T-Shirt", "25.00", nil, 30*time.Minute)

	cart, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{
		ticket.ID: 1,
		shirt.ID:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cart.ReservationDuration,
		"the longest product window protects everything in the cart")

	// Removing the ticket drops the window back to the t-shirt's
	cart, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 0})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cart.ReservationDuration)
}

func TestVoucherExtendsReservationWindow(t *testing.T) {
	f := newFixture() // fixture voucher window is one hour
	ctx := context.Background()
	user := f.store.addUser()
	extras := f.store.addCategory("Extras", false, nil)
	shirt := f.store.addProduct(extras, "T-Shirt", "25.00", nil, 30*time.Minute)
	f.store.addVoucher("SPEAKER", 5)

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{shirt.ID: 1})
	require.NoError(t, err)

	cart, err := f.carts.ApplyVoucher(ctx, user.ID, "speaker")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cart.ReservationDuration)
}

func TestApplyVoucher(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.addVoucher("EARLYBIRD", 1)

	t.Run("unknown code", func(t *testing.T) {
		user := f.store.addUser()
		_, err := f.carts.ApplyVoucher(ctx, user.ID, "NOSUCH")
		require.ErrorIs(t, err, apperror.ErrVoucherInvalid)
	})

	t.Run("codes are case-insensitive", func(t *testing.T) {
		user := f.store.addUser()
		cart, err := f.carts.ApplyVoucher(ctx, user.ID, "earlybird")
		require.NoError(t, err)
		require.Len(t, cart.Vouchers, 1)
		firstRevision := cart.Revision

		// Re-applying the same code is a no-op, not an error, and does
		// not stack the voucher or move the revision
		again, err := f.carts.ApplyVoucher(ctx, user.ID, "EARLYBIRD")
		require.NoError(t, err)
		require.Len(t, again.Vouchers, 1)
		assert.Equal(t, firstRevision, again.Revision)
	})

	t.Run("limit counts other reserved carts", func(t *testing.T) {
		// The voucher's single use is held by the previous subtest
		user := f.store.addUser()
		_, err := f.carts.ApplyVoucher(ctx, user.ID, "EARLYBIRD")
		require.ErrorIs(t, err, apperror.ErrVoucherExhausted)
	})
}

func TestVoucherLimitBlocksExtraHolders(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.addVoucher("TEAM", 3)

	for i := 0; i < 3; i++ {
		user := f.store.addUser()
		_, err := f.carts.ApplyVoucher(ctx, user.ID, "TEAM")
		require.NoError(t, err)
	}

	fourth := f.store.addUser()
	_, err := f.carts.ApplyVoucher(ctx, fourth.ID, "TEAM")
	require.ErrorIs(t, err, apperror.ErrVoucherExhausted)
}

func TestRemoveVoucher(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	voucher := f.store.addVoucher("SPONSOR", 1)

	_, err := f.carts.ApplyVoucher(ctx, user.ID, "SPONSOR")
	require.NoError(t, err)

	cart, err := f.carts.RemoveVoucher(ctx, user.ID, voucher.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Vouchers)

	// Freed up for someone else
	other := f.store.addUser()
	_, err = f.carts.ApplyVoucher(ctx, other.ID, "SPONSOR")
	require.NoError(t, err)
}

func TestValidateCartReportsRequiredCategory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	f.store.addCategory("Tickets", true, nil)
	extras := f.store.addCategory("Extras", false, nil)
	shirt := f.store.addProduct(extras, "T-Shirt", "25.00", nil, time.Hour)

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{shirt.ID: 1})
	require.NoError(t, err)

	failures, err := f.carts.ValidateCart(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Nil(t, failures[0].Product, "a missing category names no product")
	assert.Contains(t, failures[0].Reason, "Tickets")
}

func TestFixSimpleErrorsLowersQuantities(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tickets := f.store.addCategory("Tickets", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)
	f.store.addCeiling("Venue capacity", intPtr(5), ticket)

	user := f.store.addUser()
	cart, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 4})
	require.NoError(t, err)

	// The cart's reservation lapses, and someone else pays for 3 of the
	// seats, leaving only 2 for this cart
	f.store.carts[cart.ID].TimeLastUpdated = time.Now().Add(-2 * time.Hour)
	other := f.store.addUser()
	otherCart, err := f.carts.SetQuantities(ctx, other.ID, map[uuid.UUID]int{ticket.ID: 3})
	require.NoError(t, err)
	f.store.carts[otherCart.ID].Status = enum.CartStatusPaid

	failures, err := f.carts.ValidateCart(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, failures)

	cart, err = f.carts.FixSimpleErrors(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	failures, err = f.carts.ValidateCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, failures)
}

func TestDiscountsReallocatedOnMutation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)

	f.store.addDiscount(&entity.Discount{
		Description: "Launch special",
		Kind:        enum.DiscountKindTimeOrStock,
		ProductLines: []entity.DiscountProduct{
			{ProductID: ticket.ID, Percentage: decPtr("15"), Quantity: 10},
		},
	})

	cart, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 2})
	require.NoError(t, err)
	require.Len(t, cart.DiscountItems, 1)
	assert.Equal(t, 2, cart.DiscountItems[0].Quantity)

	cart, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 0})
	require.NoError(t, err)
	assert.Empty(t, cart.DiscountItems)
}

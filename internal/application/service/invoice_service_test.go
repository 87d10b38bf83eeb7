package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/confreg/registration-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkoutFixture seeds a user with a ticket in their cart
func checkoutFixture(t *testing.T) (*fixture, *entity.User, *entity.Product) {
	t.Helper()
	f := newFixture()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)
	return f, user, ticket
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()

	// No cart at all
	_, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.ErrorIs(t, err, apperror.ErrEmptyCart)

	// An empty cart is no better
	_, err = f.carts.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	_, err = f.invoices.InvoiceForCart(ctx, user.ID)
	require.ErrorIs(t, err, apperror.ErrEmptyCart)
}

func TestCheckoutIdempotentPerRevision(t *testing.T) {
	f, user, ticket := checkoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)

	first, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)
	second, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "an untouched cart yields the same invoice")
}

func TestInvoiceVoidedWhenCartMovesOn(t *testing.T) {
	f, user, ticket := checkoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	stale, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)

	// The cart mutates, so the captured invoice no longer reflects it
	_, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 2})
	require.NoError(t, err)

	refreshed, err := f.invoices.GetInvoice(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusVoid, refreshed.Status)

	// And checkout now produces a fresh invoice for the new revision
	fresh, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, stale.ID, fresh.ID)
	assert.True(t, fresh.Value.Equal(decimal.RequireFromString("200.00")))
}

func TestInvoiceValueReflectsDiscounts(t *testing.T) {
	f, user, ticket := checkoutFixture(t)
	ctx := context.Background()

	f.store.addDiscount(&entity.Discount{
		Description: "Early bird",
		Kind:        enum.DiscountKindTimeOrStock,
		ProductLines: []entity.DiscountProduct{
			{ProductID: ticket.ID, Percentage: decPtr("15"), Quantity: 10},
		},
	})

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)

	invoice, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, invoice.Value.Equal(decimal.RequireFromString("85")),
		"100.00 less 15%% should land at 85, got %s", invoice.Value)
	require.Len(t, invoice.LineItems, 2)
	assert.True(t, invoice.LineItems[1].Price.IsNegative(),
		"the discount renders as a negative line")
}

func TestPaymentStateMachine(t *testing.T) {
	f, user, ticket := checkoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	invoice, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)

	// A partial payment leaves the invoice unpaid
	invoice, err = f.invoices.RecordPayment(ctx, invoice.ID, "bank-1", decimal.RequireFromString("60.00"))
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusUnpaid, invoice.Status)

	// Overpaying settles it and returns the excess as a credit note
	invoice, err = f.invoices.RecordPayment(ctx, invoice.ID, "bank-2", decimal.RequireFromString("70.00"))
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPaid, invoice.Status)

	require.NotNil(t, invoice.CartID)
	assert.Equal(t, enum.CartStatusPaid, f.store.carts[*invoice.CartID].Status)

	notes, err := f.creditNotes.ListUserCreditNotes(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.True(t, notes[0].Value.Equal(decimal.RequireFromString("30.00")))

	// No more money can land on a settled invoice
	_, err = f.invoices.RecordPayment(ctx, invoice.ID, "bank-3", decimal.RequireFromString("5.00"))
	require.ErrorIs(t, err, apperror.ErrNotPayable)
}

func TestPaymentAmountMustBePositive(t *testing.T) {
	f, user, ticket := checkoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	invoice, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)

	// Money only moves backwards through a refund
	_, err = f.invoices.RecordPayment(ctx, invoice.ID, "bank-1", decimal.RequireFromString("-60.00"))
	require.Error(t, err)
	assert.Equal(t, 422, apperror.GetAppError(err).Code)

	_, err = f.invoices.RecordPayment(ctx, invoice.ID, "bank-2", decimal.Zero)
	require.Error(t, err)

	got, err := f.invoices.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusUnpaid, got.Status)
}

func TestPaymentRejectedAfterCartMutation(t *testing.T) {
	f, user, ticket := checkoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	invoice, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)

	_, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 2})
	require.NoError(t, err)

	_, err = f.invoices.RecordPayment(ctx, invoice.ID, "bank-1", decimal.RequireFromString("100.00"))
	require.ErrorIs(t, err, apperror.ErrNotPayable)
}

func TestRefundPaidInvoice(t *testing.T) {
	f, user, ticket := checkoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	invoice, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)
	invoice, err = f.invoices.RecordPayment(ctx, invoice.ID, "bank-1", decimal.RequireFromString("100.00"))
	require.NoError(t, err)
	require.Equal(t, enum.InvoiceStatusPaid, invoice.Status)

	invoice, err = f.invoices.Refund(ctx, invoice.ID, "chargeback-77")
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusRefunded, invoice.Status)

	// The captured money comes back as a credit note
	notes, err := f.creditNotes.ListUserCreditNotes(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.True(t, notes[0].Value.Equal(decimal.RequireFromString("100.00")))

	// The cart is released, so its items return to the pool
	require.NotNil(t, invoice.CartID)
	assert.Equal(t, enum.CartStatusReleased, f.store.carts[*invoice.CartID].Status)

	// A second reversal is rejected
	_, err = f.invoices.Refund(ctx, invoice.ID, "chargeback-78")
	require.Error(t, err)
}

func TestRefundUnpaidInvoiceVoids(t *testing.T) {
	f, user, ticket := checkoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	invoice, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)

	invoice, err = f.invoices.Refund(ctx, invoice.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusVoid, invoice.Status)

	// No money ever moved, so no credit note appears
	notes, err := f.creditNotes.ListUserCreditNotes(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestZeroValueInvoiceSettlesImmediately(t *testing.T) {
	f, user, ticket := checkoutFixture(t)
	ctx := context.Background()

	f.store.addDiscount(&entity.Discount{
		Description: "Comped",
		Kind:        enum.DiscountKindTimeOrStock,
		ProductLines: []entity.DiscountProduct{
			{ProductID: ticket.ID, Percentage: decPtr("100"), Quantity: 1},
		},
	})

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)

	invoice, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPaid, invoice.Status)
	assert.True(t, invoice.Value.IsZero())
	require.NotNil(t, invoice.CartID)
	assert.Equal(t, enum.CartStatusPaid, f.store.carts[*invoice.CartID].Status)
}

func TestApplyCreditNote(t *testing.T) {
	f, user, ticket := checkoutFixture(t)
	ctx := context.Background()

	// Seed an unclaimed note worth more than the invoice
	seed := &entity.CreditNote{
		ID:        uuid.New(),
		UserID:    user.ID,
		InvoiceID: uuid.New(),
		Value:     decimal.RequireFromString("130.00"),
		IssueTime: time.Now().Add(-time.Hour),
	}
	f.store.creditNotes[seed.ID] = seed

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	invoice, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)

	// The fresh invoice already consumed the note and settled
	assert.Equal(t, enum.InvoiceStatusPaid, invoice.Status)
	assert.True(t, seed.IsClaimed())

	// The residual 30.00 respawned as a new note
	notes, err := f.creditNotes.ListUserCreditNotes(ctx, user.ID)
	require.NoError(t, err)
	var residual *entity.CreditNote
	for i := range notes {
		if !notes[i].IsClaimed() {
			residual = &notes[i]
		}
	}
	require.NotNil(t, residual)
	assert.True(t, residual.Value.Equal(decimal.RequireFromString("30.00")))
}

func TestApplyCreditNoteExplicitly(t *testing.T) {
	f, user, ticket := checkoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	invoice, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)

	note := &entity.CreditNote{
		ID:        uuid.New(),
		UserID:    user.ID,
		InvoiceID: uuid.New(),
		Value:     decimal.RequireFromString("40.00"),
		IssueTime: time.Now(),
	}
	f.store.creditNotes[note.ID] = note

	invoice, err = f.invoices.ApplyCreditNote(ctx, note.ID, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusUnpaid, invoice.Status,
		"40.00 against 100.00 leaves a balance")
	assert.True(t, invoice.TotalPayments().Equal(decimal.RequireFromString("40.00")))

	// Notes are spent whole: a second application fails
	_, err = f.invoices.ApplyCreditNote(ctx, note.ID, invoice.ID)
	require.ErrorIs(t, err, apperror.ErrCreditNoteClaimed)
}

func TestApplyCreditNoteOwnership(t *testing.T) {
	f, user, ticket := checkoutFixture(t)
	ctx := context.Background()
	stranger := f.store.addUser()

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	invoice, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)

	note := &entity.CreditNote{
		ID:        uuid.New(),
		UserID:    stranger.ID,
		InvoiceID: uuid.New(),
		Value:     decimal.RequireFromString("40.00"),
		IssueTime: time.Now(),
	}
	f.store.creditNotes[note.ID] = note

	_, err = f.invoices.ApplyCreditNote(ctx, note.ID, invoice.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestCashOutCreditNote(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()

	note := &entity.CreditNote{
		ID:        uuid.New(),
		UserID:    user.ID,
		InvoiceID: uuid.New(),
		Value:     decimal.RequireFromString("25.00"),
		IssueTime: time.Now(),
	}
	f.store.creditNotes[note.ID] = note

	out, err := f.creditNotes.CashOut(ctx, note.ID, "bank transfer 991")
	require.NoError(t, err)
	require.NotNil(t, out.RefundedAt)
	assert.Equal(t, "bank transfer 991", *out.RefundReference)

	_, err = f.creditNotes.CashOut(ctx, note.ID, "again")
	require.ErrorIs(t, err, apperror.ErrCreditNoteClaimed)
}

func TestUnclaimedTotal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()

	for _, v := range []string{"10.00", "15.50"} {
		id := uuid.New()
		f.store.creditNotes[id] = &entity.CreditNote{
			ID: id, UserID: user.ID, InvoiceID: uuid.New(),
			Value: decimal.RequireFromString(v), IssueTime: time.Now(),
		}
	}
	claimedAt := time.Now()
	appliedTo := uuid.New()
	id := uuid.New()
	f.store.creditNotes[id] = &entity.CreditNote{
		ID: id, UserID: user.ID, InvoiceID: uuid.New(),
		Value: decimal.RequireFromString("99.00"), IssueTime: time.Now(),
		AppliedToInvoiceID: &appliedTo, AppliedAt: &claimedAt,
	}

	total, err := f.creditNotes.UnclaimedTotal(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("25.50")))
}

func TestListOverdue(t *testing.T) {
	f, user, ticket := checkoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	invoice, err := f.invoices.InvoiceForCart(ctx, user.ID)
	require.NoError(t, err)

	overdue, err := f.invoices.ListOverdue(ctx)
	require.NoError(t, err)
	assert.Empty(t, overdue)

	f.store.invoices[invoice.ID].DueTime = time.Now().Add(-time.Hour)
	overdue, err = f.invoices.ListOverdue(ctx)
	require.NoError(t, err)
	assert.Len(t, overdue, 1)
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/confreg/registration-api/internal/application/service"
	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visibleIDs(verdicts []service.ProductVerdict) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(verdicts))
	for _, v := range verdicts {
		if v.Product != nil {
			out[v.Product.ID] = true
		}
	}
	return out
}

func TestVisibleProductsWithoutConditions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	standard := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)
	student := f.store.addProduct(tickets, "Student", "40.00", nil, time.Hour)

	verdicts, err := f.availability.VisibleProducts(ctx, user.ID, tickets.ID, time.Now())
	require.NoError(t, err)
	ids := visibleIDs(verdicts)
	assert.True(t, ids[standard.ID])
	assert.True(t, ids[student.ID])
}

func TestMandatoryVoucherConditionHidesProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	standard := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)
	vip := f.store.addProduct(tickets, "VIP", "500.00", nil, time.Hour)
	voucher := f.store.addVoucher("GOLD", 5)

	f.store.addCondition(&entity.EnablingCondition{
		Description: "VIP invitations",
		Kind:        enum.ConditionKindVoucher,
		Mandatory:   true,
		VoucherID:   &voucher.ID,
		Products:    []entity.Product{{ID: vip.ID}},
	})

	verdicts, err := f.availability.VisibleProducts(ctx, user.ID, tickets.ID, time.Now())
	require.NoError(t, err)
	ids := visibleIDs(verdicts)
	assert.True(t, ids[standard.ID])
	assert.False(t, ids[vip.ID], "no voucher in the cart hides the product")

	// The voucher must sit in the active cart, then the product appears
	_, err = f.carts.ApplyVoucher(ctx, user.ID, "GOLD")
	require.NoError(t, err)

	verdicts, err = f.availability.VisibleProducts(ctx, user.ID, tickets.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, visibleIDs(verdicts)[vip.ID])
}

func TestOptionalConditionsNeedOneHolding(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	volunteerRole := entity.Role{ID: 3, Name: "volunteer"}
	volunteer := f.store.addUser(volunteerRole)
	attendee := f.store.addUser()

	extras := f.store.addCategory("Extras", false, nil)
	hoodie := f.store.addProduct(extras, "Crew Hoodie", "0.00", nil, time.Hour)
	voucher := f.store.addVoucher("CREW", 10)

	roleID := volunteerRole.ID
	f.store.addCondition(&entity.EnablingCondition{
		Description: "Crew by role",
		Kind:        enum.ConditionKindRole,
		RoleID:      &roleID,
		Products:    []entity.Product{{ID: hoodie.ID}},
	})
	f.store.addCondition(&entity.EnablingCondition{
		Description: "Crew by voucher",
		Kind:        enum.ConditionKindVoucher,
		VoucherID:   &voucher.ID,
		Products:    []entity.Product{{ID: hoodie.ID}},
	})

	verdicts, err := f.availability.VisibleProducts(ctx, volunteer.ID, extras.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, visibleIDs(verdicts)[hoodie.ID], "the role satisfies one optional condition")

	verdicts, err = f.availability.VisibleProducts(ctx, attendee.ID, extras.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, visibleIDs(verdicts)[hoodie.ID], "neither optional condition holds")
}

func TestProductConditionRequiresHolding(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	extras := f.store.addCategory("Extras", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)
	dinner := f.store.addProduct(extras, "Dinner Seat", "90.00", nil, time.Hour)

	f.store.addCondition(&entity.EnablingCondition{
		Description:      "Dinner needs a ticket",
		Kind:             enum.ConditionKindProduct,
		Mandatory:        true,
		EnablingProducts: []entity.Product{{ID: ticket.ID}},
		Products:         []entity.Product{{ID: dinner.ID}},
	})

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{dinner.ID: 1})
	require.Error(t, err, "cannot buy dinner without a ticket")

	_, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	_, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{dinner.ID: 1})
	require.NoError(t, err)
}

func TestCategoryConditionRequiresHolding(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	extras := f.store.addCategory("Extras", false, nil)
	ticket := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)
	shirt := f.store.addProduct(extras, "T-Shirt", "25.00", nil, time.Hour)

	f.store.addCondition(&entity.EnablingCondition{
		Description:        "Merch needs any ticket",
		Kind:               enum.ConditionKindCategory,
		Mandatory:          true,
		EnablingCategoryID: &tickets.ID,
		Categories:         []entity.Category{{ID: extras.ID}},
	})

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{shirt.ID: 1})
	require.Error(t, err)

	_, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{ticket.ID: 1})
	require.NoError(t, err)
	_, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{shirt.ID: 1})
	require.NoError(t, err)
}

func TestTimeOrStockConditionWindow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, nil)
	early := f.store.addProduct(tickets, "Early Bird", "80.00", nil, time.Hour)

	past := time.Now().Add(-time.Hour)
	f.store.addCondition(&entity.EnablingCondition{
		Description: "Early bird window",
		Kind:        enum.ConditionKindTimeOrStock,
		Mandatory:   true,
		EndTime:     &past,
		Products:    []entity.Product{{ID: early.ID}},
	})

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{early.ID: 1})
	require.Error(t, err, "the sale window closed an hour ago")
}

func TestTimeOrStockConditionLimit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tickets := f.store.addCategory("Tickets", false, nil)
	early := f.store.addProduct(tickets, "Early Bird", "80.00", nil, time.Hour)

	f.store.addCondition(&entity.EnablingCondition{
		Description: "First 2 early birds",
		Kind:        enum.ConditionKindTimeOrStock,
		Mandatory:   true,
		Limit:       intPtr(2),
		Products:    []entity.Product{{ID: early.ID}},
	})

	other := f.store.addUser()
	_, err := f.carts.SetQuantities(ctx, other.ID, map[uuid.UUID]int{early.ID: 2})
	require.NoError(t, err)

	user := f.store.addUser()
	_, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{early.ID: 1})
	require.Error(t, err, "the flash-sale pool is gone")
}

func TestCategoryLimitPerUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()
	tickets := f.store.addCategory("Tickets", false, intPtr(1))
	standard := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)
	student := f.store.addProduct(tickets, "Student", "40.00", nil, time.Hour)

	_, err := f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{standard.ID: 1})
	require.NoError(t, err)

	// One ticket per attendee, whichever kind
	_, err = f.carts.SetQuantities(ctx, user.ID, map[uuid.UUID]int{student.ID: 1})
	require.Error(t, err)
}

func categoryVerdictsByID(verdicts []service.CategoryVerdict) map[uuid.UUID]service.CategoryVerdict {
	out := make(map[uuid.UUID]service.CategoryVerdict, len(verdicts))
	for _, v := range verdicts {
		out[v.Category.ID] = v
	}
	return out
}

func TestVisibleCategoriesFilteredByConditions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.store.addUser()

	tickets := f.store.addCategory("Tickets", true, nil)
	f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)

	// Sponsor swag requires a voucher the user does not hold yet
	swag := f.store.addCategory("Sponsor Swag", false, nil)
	f.store.addProduct(swag, "Hoodie", "40.00", nil, time.Hour)
	voucher := f.store.addVoucher("SPONSOR", 5)
	f.store.addCondition(&entity.EnablingCondition{
		Description: "Sponsors only",
		Kind:        enum.ConditionKindVoucher,
		Mandatory:   true,
		VoucherID:   &voucher.ID,
		Categories:  []entity.Category{{ID: swag.ID}},
	})

	// A category with no products never shows
	f.store.addCategory("Workshops", false, nil)

	verdicts, err := f.availability.VisibleCategories(ctx, user.ID, time.Now())
	require.NoError(t, err)
	byID := categoryVerdictsByID(verdicts)
	require.Len(t, byID, 1)
	assert.True(t, byID[tickets.ID].Available)

	// Applying the voucher reveals the sponsor category
	_, err = f.carts.ApplyVoucher(ctx, user.ID, "SPONSOR")
	require.NoError(t, err)

	verdicts, err = f.availability.VisibleCategories(ctx, user.ID, time.Now())
	require.NoError(t, err)
	byID = categoryVerdictsByID(verdicts)
	require.Len(t, byID, 2)
	assert.True(t, byID[swag.ID].Available)
}

func TestVisibleCategoriesFlagSoldOut(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tickets := f.store.addCategory("Tickets", false, nil)
	standard := f.store.addProduct(tickets, "Standard", "100.00", nil, time.Hour)
	f.store.addCeiling("Venue", intPtr(1), standard)

	other := f.store.addUser()
	_, err := f.carts.SetQuantities(ctx, other.ID, map[uuid.UUID]int{standard.ID: 1})
	require.NoError(t, err)

	// The category stays listed for the next attendee, but nothing in
	// it can be added any more
	user := f.store.addUser()
	verdicts, err := f.availability.VisibleCategories(ctx, user.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.False(t, verdicts[0].Available)
}

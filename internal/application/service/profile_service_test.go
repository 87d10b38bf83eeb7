package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confreg/registration-api/internal/application/service"
)

func TestProfileCreatedOnFirstAccess(t *testing.T) {
	f := newFixture()
	profiles := service.NewProfileService(&fakeProfileRepo{s: f.store}, &fakeUserRepo{s: f.store})
	user := f.store.addUser()
	ctx := context.Background()

	profile, err := profiles.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.FirstName+" "+user.LastName, profile.BadgeName)
	assert.Len(t, profile.AccessCode, 6)
	assert.True(t, profile.EmailReceipts)

	again, err := profiles.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
	assert.Equal(t, profile.AccessCode, again.AccessCode)
}

func TestUpdateProfileBadgeDetails(t *testing.T) {
	f := newFixture()
	profiles := service.NewProfileService(&fakeProfileRepo{s: f.store}, &fakeUserRepo{s: f.store})
	user := f.store.addUser()
	ctx := context.Background()

	badge := "Grace H."
	pronouns := "she/her"
	dietary := "vegetarian"
	profile, err := profiles.UpdateProfile(ctx, &service.UpdateProfileInput{
		UserID:       user.ID,
		BadgeName:    &badge,
		Pronouns:     &pronouns,
		DietaryNotes: &dietary,
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace H.", profile.BadgeName)
	require.NotNil(t, profile.Pronouns)
	assert.Equal(t, "she/her", *profile.Pronouns)

	stored, err := profiles.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DietaryNotes)
	assert.Equal(t, "vegetarian", *stored.DietaryNotes)
}

// Account details (name, username) are separate from the attendee
// profile and flow through the auth service.
func TestUpdateAccountDetails(t *testing.T) {
	f := newFixture()
	auth := service.NewAuthService(&fakeUserRepo{s: f.store}, nil, nil, nil, nil, nil)
	user := f.store.addUser()
	ctx := context.Background()

	updated, err := auth.UpdateAccount(ctx, &service.UpdateAccountInput{
		UserID:    user.ID,
		FirstName: "Grace",
		Username:  "graceh",
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, "graceh", updated.Username)

	other := f.store.addUser()
	_, err = auth.UpdateAccount(ctx, &service.UpdateAccountInput{
		UserID:   other.ID,
		Username: "graceh",
	})
	require.Error(t, err)
}

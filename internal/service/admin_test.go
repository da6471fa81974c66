package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quicket/internal/memstore"
	"quicket/internal/model"
)

func TestAdminGates(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewAdminService(store.Users(), store.Stats())

	_, err := svc.BookingStats(ctx, userCaller("u"))
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.EventStats(ctx, userCaller("u"))
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.UserStats(ctx, userCaller("u"))
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ListUsers(ctx, userCaller("u"))
	assert.ErrorIs(t, err, ErrForbidden)
	err = svc.UpdateUserRole(ctx, userCaller("u"), "someone", "admin")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateUserRole(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	user := seedUser(t, store, "alice")
	svc := NewAdminService(store.Users(), store.Stats())

	require.NoError(t, svc.UpdateUserRole(ctx, adminCaller(), user.ID, "admin"))

	got, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)

	err = svc.UpdateUserRole(ctx, adminCaller(), user.ID, "overlord")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestAdminStats(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 100)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")

	_, err := store.Bookings().Create(ctx, alice.ID, event.ID, 2)
	require.NoError(t, err)
	_, err = store.Bookings().Create(ctx, alice.ID, event.ID, 1)
	require.NoError(t, err)
	_, err = store.Bookings().Create(ctx, bob.ID, event.ID, 4)
	require.NoError(t, err)

	svc := NewAdminService(store.Users(), store.Stats())

	bookingStats, err := svc.BookingStats(ctx, adminCaller())
	require.NoError(t, err)
	assert.Equal(t, 3, bookingStats.TotalBookings)
	assert.Equal(t, 3, bookingStats.StatusStats["confirmed"])
	require.NotEmpty(t, bookingStats.TopEvents)
	assert.Equal(t, event.ID, bookingStats.TopEvents[0].ID)
	assert.Equal(t, 3, bookingStats.TopEvents[0].BookingsCount)

	eventStats, err := svc.EventStats(ctx, adminCaller())
	require.NoError(t, err)
	assert.Equal(t, 1, eventStats.TotalEvents)
	assert.Equal(t, 1, eventStats.TypeStats["concert"])
	assert.Equal(t, 1, eventStats.StatusStats["upcoming"])

	userStats, err := svc.UserStats(ctx, adminCaller())
	require.NoError(t, err)
	assert.Equal(t, 2, userStats.TotalUsers)
	assert.Equal(t, 0, userStats.AdminCount)
	require.NotEmpty(t, userStats.TopUsers)
	assert.Equal(t, "alice", userStats.TopUsers[0].Username)

	users, err := svc.ListUsers(ctx, adminCaller())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

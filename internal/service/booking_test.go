package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quicket/internal/memstore"
	"quicket/internal/model"
	"quicket/internal/repository"
)

func TestBookingReducesAvailability(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 100)
	user := seedUser(t, store, "alice")

	svc := NewBookingService(store.Bookings())
	booking, err := svc.Create(ctx, userCaller(user.ID), model.CreateBookingRequest{EventID: event.ID, Seats: 10})
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, booking.Status)
	assert.Equal(t, 10, booking.Seats)

	available, err := store.Events().AvailableSeats(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, available)
}

func TestBookingInsufficientSeats(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 7)
	user := seedUser(t, store, "alice")

	svc := NewBookingService(store.Bookings())
	_, err := svc.Create(ctx, userCaller(user.ID), model.CreateBookingRequest{EventID: event.ID, Seats: 5})
	require.NoError(t, err)

	// 2 seats left; asking for 3 must fail and report the 2.
	_, err = svc.Create(ctx, userCaller(user.ID), model.CreateBookingRequest{EventID: event.ID, Seats: 3})
	var seatsErr *repository.InsufficientSeatsError
	require.ErrorAs(t, err, &seatsErr)
	assert.Equal(t, 2, seatsErr.Available)

	// The failed attempt must not have consumed anything.
	available, err := store.Events().AvailableSeats(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, available)
}

func TestBookingDefaultSeats(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 10)
	user := seedUser(t, store, "alice")

	svc := NewBookingService(store.Bookings())
	booking, err := svc.Create(ctx, userCaller(user.ID), model.CreateBookingRequest{EventID: event.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, booking.Seats)
}

func TestBookingValidation(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewBookingService(store.Bookings())

	var validationErr *ValidationError
	_, err := svc.Create(ctx, userCaller("u"), model.CreateBookingRequest{Seats: 1})
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.Create(ctx, userCaller("u"), model.CreateBookingRequest{EventID: "e", Seats: -2})
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.Create(ctx, userCaller("u"), model.CreateBookingRequest{EventID: "missing", Seats: 1})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBookingClosedEvent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	user := seedUser(t, store, "alice")
	svc := NewBookingService(store.Bookings())

	for _, status := range []model.EventStatus{model.EventStatusFinished, model.EventStatusCancelled} {
		event := seedEvent(t, store, venue.ID, 10)
		st := status
		require.NoError(t, store.Events().Update(ctx, event.ID, model.EventUpdate{Status: &st}))

		_, err := svc.Create(ctx, userCaller(user.ID), model.CreateBookingRequest{EventID: event.ID, Seats: 1})
		assert.ErrorIs(t, err, repository.ErrEventNotBookable, string(status))
	}
}

// With N seats and more than N concurrent single-seat requests, exactly
// N must succeed and the rest must fail with the capacity error.
func TestConcurrentBookingsNeverOversell(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	const totalSeats = 8
	const attempts = 30
	event := seedEvent(t, store, venue.ID, totalSeats)
	user := seedUser(t, store, "alice")

	svc := NewBookingService(store.Bookings())

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, userCaller(user.ID), model.CreateBookingRequest{EventID: event.ID, Seats: 1})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var seatsErr *repository.InsufficientSeatsError
		require.True(t, errors.As(err, &seatsErr), "unexpected error: %v", err)
	}
	assert.Equal(t, totalSeats, succeeded)

	available, err := store.Events().AvailableSeats(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}

func TestCancelBookingRestoresSeats(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 10)
	user := seedUser(t, store, "alice")

	svc := NewBookingService(store.Bookings())
	booking, err := svc.Create(ctx, userCaller(user.ID), model.CreateBookingRequest{EventID: event.ID, Seats: 4})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, userCaller(user.ID), booking.ID))

	available, err := store.Events().AvailableSeats(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, available)
}

func TestCancelBookingIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 10)
	user := seedUser(t, store, "alice")

	svc := NewBookingService(store.Bookings())
	booking, err := svc.Create(ctx, userCaller(user.ID), model.CreateBookingRequest{EventID: event.ID, Seats: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, userCaller(user.ID), booking.ID))
	before := len(userNotifications(t, store, user.ID))

	// Cancelling again succeeds but must not write another notification.
	require.NoError(t, svc.Cancel(ctx, userCaller(user.ID), booking.ID))
	assert.Equal(t, before, len(userNotifications(t, store, user.ID)))
}

func TestCancelBookingOwnership(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 10)
	owner := seedUser(t, store, "alice")
	other := seedUser(t, store, "bob")

	svc := NewBookingService(store.Bookings())
	booking, err := svc.Create(ctx, userCaller(owner.ID), model.CreateBookingRequest{EventID: event.ID, Seats: 1})
	require.NoError(t, err)

	err = svc.Cancel(ctx, userCaller(other.ID), booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := store.Bookings().GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, got.Status)

	// An admin may cancel anyone's booking.
	require.NoError(t, svc.Cancel(ctx, adminCaller(), booking.ID))
}

func TestListBookingsForUser(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 10)
	owner := seedUser(t, store, "alice")
	other := seedUser(t, store, "bob")

	svc := NewBookingService(store.Bookings())
	_, err := svc.Create(ctx, userCaller(owner.ID), model.CreateBookingRequest{EventID: event.ID, Seats: 3})
	require.NoError(t, err)

	views, err := svc.ListForUser(ctx, userCaller(owner.ID), owner.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Spring Concert", views[0].EventTitle)
	assert.Equal(t, "Main Hall", views[0].VenueName)
	assert.Equal(t, 75.0, views[0].TotalPrice)

	_, err = svc.ListForUser(ctx, userCaller(other.ID), owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	views, err = svc.ListForUser(ctx, adminCaller(), owner.ID)
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

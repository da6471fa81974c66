package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quicket/internal/memstore"
	"quicket/internal/model"
	"quicket/internal/repository"
)

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	svc := NewEventService(store.Events(), store.Venues())

	req := model.CreateEventRequest{
		Title:      "Autumn Gala",
		Type:       "concert",
		VenueID:    venue.ID,
		Date:       "2026-11-20",
		Time:       "20:00",
		TotalSeats: 300,
		Price:      49.50,
	}
	event, err := svc.Create(ctx, adminCaller(), req)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusUpcoming, event.Status)
	assert.Equal(t, 60, event.Duration) // default when omitted

	_, err = svc.Create(ctx, userCaller("u"), req)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateEventValidation(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	svc := NewEventService(store.Events(), store.Venues())

	valid := model.CreateEventRequest{
		Title:      "Autumn Gala",
		Type:       "concert",
		VenueID:    venue.ID,
		Date:       "2026-11-20",
		Time:       "20:00",
		TotalSeats: 300,
		Price:      10,
	}

	cases := []struct {
		name   string
		mutate func(*model.CreateEventRequest)
	}{
		{"missing title", func(r *model.CreateEventRequest) { r.Title = "  " }},
		{"unknown type", func(r *model.CreateEventRequest) { r.Type = "rave" }},
		{"missing venue", func(r *model.CreateEventRequest) { r.VenueID = "" }},
		{"bad date", func(r *model.CreateEventRequest) { r.Date = "20/11/2026" }},
		{"bad time", func(r *model.CreateEventRequest) { r.Time = "8pm" }},
		{"zero seats", func(r *model.CreateEventRequest) { r.TotalSeats = 0 }},
		{"negative price", func(r *model.CreateEventRequest) { r.Price = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := svc.Create(ctx, adminCaller(), req)
			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	// Unknown venue is a lookup failure, not a validation failure.
	req := valid
	req.VenueID = "nope"
	_, err := svc.Create(ctx, adminCaller(), req)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateEventCapacityFloor(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 100)
	user := seedUser(t, store, "alice")

	_, err := store.Bookings().Create(ctx, user.ID, event.ID, 30)
	require.NoError(t, err)

	svc := NewEventService(store.Events(), store.Venues())

	// Shrinking to 30 is fine, 29 is not.
	seats := 30
	require.NoError(t, svc.Update(ctx, adminCaller(), event.ID, model.UpdateEventRequest{TotalSeats: &seats}))

	seats = 29
	err = svc.Update(ctx, adminCaller(), event.ID, model.UpdateEventRequest{TotalSeats: &seats})
	var capacityErr *repository.CapacityError
	require.ErrorAs(t, err, &capacityErr)
	assert.Equal(t, 30, capacityErr.Booked)

	got, err := store.Events().GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.TotalSeats)
}

func TestUpdateEventStatusTransitions(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 50)
	svc := NewEventService(store.Events(), store.Venues())

	status := "ongoing"
	require.NoError(t, svc.Update(ctx, adminCaller(), event.ID, model.UpdateEventRequest{Status: &status}))

	status = "finished"
	require.NoError(t, svc.Update(ctx, adminCaller(), event.ID, model.UpdateEventRequest{Status: &status}))

	// Finished is terminal.
	status = "ongoing"
	err := svc.Update(ctx, adminCaller(), event.ID, model.UpdateEventRequest{Status: &status})
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)

	status = "sideways"
	err = svc.Update(ctx, adminCaller(), event.ID, model.UpdateEventRequest{Status: &status})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCancelEventCascades(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 100)
	svc := NewEventService(store.Events(), store.Venues())

	var bookingIDs []string
	for i := 0; i < 3; i++ {
		user := seedUser(t, store, fmt.Sprintf("guest%d", i))
		booking, err := store.Bookings().Create(ctx, user.ID, event.ID, 2)
		require.NoError(t, err)
		bookingIDs = append(bookingIDs, booking.ID)
	}

	status := "cancelled"
	require.NoError(t, svc.Update(ctx, adminCaller(), event.ID, model.UpdateEventRequest{Status: &status}))

	// Every confirmed booking flips to cancelled, each owner hears about it.
	for _, id := range bookingIDs {
		booking, err := store.Bookings().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.BookingCancelled, booking.Status)

		notifications := userNotifications(t, store, booking.UserID)
		require.NotEmpty(t, notifications)
		assert.Equal(t, "Event cancelled", notifications[0].Title)
		assert.Equal(t, model.NotificationEventCancelled, notifications[0].Type)
	}
}

func TestCancelEventFailureLeavesNoPartialState(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 100)
	user := seedUser(t, store, "alice")
	booking, err := store.Bookings().Create(ctx, user.ID, event.ID, 2)
	require.NoError(t, err)
	notificationsBefore := len(userNotifications(t, store, user.ID))

	svc := NewEventService(store.Events(), store.Venues())
	store.FailEventUpdate = errors.New("connection reset")

	status := "cancelled"
	err = svc.Update(ctx, adminCaller(), event.ID, model.UpdateEventRequest{Status: &status})
	require.Error(t, err)

	got, err := store.Events().GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusUpcoming, got.Status)

	gotBooking, err := store.Bookings().GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, gotBooking.Status)
	assert.Equal(t, notificationsBefore, len(userNotifications(t, store, user.ID)))
}

func TestUpdateEventNotifyUsers(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 100)
	user := seedUser(t, store, "alice")
	_, err := store.Bookings().Create(ctx, user.ID, event.ID, 2)
	require.NoError(t, err)

	svc := NewEventService(store.Events(), store.Venues())

	newTime := "21:00"
	require.NoError(t, svc.Update(ctx, adminCaller(), event.ID, model.UpdateEventRequest{
		Time:        &newTime,
		NotifyUsers: true,
	}))

	notifications := userNotifications(t, store, user.ID)
	require.NotEmpty(t, notifications)
	assert.Equal(t, "Event updated", notifications[0].Title)
	assert.Equal(t, model.NotificationEventUpdated, notifications[0].Type)

	// Without the flag, no notification is written.
	before := len(notifications)
	newTime = "22:00"
	require.NoError(t, svc.Update(ctx, adminCaller(), event.ID, model.UpdateEventRequest{Time: &newTime}))
	assert.Equal(t, before, len(userNotifications(t, store, user.ID)))
}

func TestDeleteEventWithoutBookings(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 100)
	svc := NewEventService(store.Events(), store.Venues())

	cancelled, err := svc.Delete(ctx, adminCaller(), event.ID)
	require.NoError(t, err)
	assert.False(t, cancelled)

	_, err = store.Events().GetByID(ctx, event.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteEventWithBookingsCancelsInstead(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, 100)
	user := seedUser(t, store, "alice")
	booking, err := store.Bookings().Create(ctx, user.ID, event.ID, 2)
	require.NoError(t, err)

	svc := NewEventService(store.Events(), store.Venues())
	cancelled, err := svc.Delete(ctx, adminCaller(), event.ID)
	require.NoError(t, err)
	assert.True(t, cancelled)

	got, err := store.Events().GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusCancelled, got.Status)

	gotBooking, err := store.Bookings().GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, gotBooking.Status)
}

func TestListEventsFilter(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	venue := seedVenue(t, store)
	seedEvent(t, store, venue.ID, 10)
	svc := NewEventService(store.Events(), store.Venues())

	events, err := svc.List(ctx, "concert", "", "", false)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	events, err = svc.List(ctx, "sport", "", "", false)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = svc.List(ctx, "", "", "spring", false)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	_, err = svc.List(ctx, "rave", "", "", false)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quicket/internal/auth"
	"quicket/internal/memstore"
	"quicket/internal/model"
)

func adminCaller() auth.Caller {
	return auth.Caller{UserID: "admin-1", Role: model.RoleAdmin}
}

func userCaller(id string) auth.Caller {
	return auth.Caller{UserID: id, Role: model.RoleUser}
}

func seedUser(t *testing.T, s *memstore.Store, username string) *model.User {
	t.Helper()
	user, err := s.Users().Create(context.Background(), username, username+"@example.com", "hash")
	require.NoError(t, err)
	return user
}

func seedVenue(t *testing.T, s *memstore.Store) *model.Venue {
	t.Helper()
	venue, err := s.Venues().Create(context.Background(), model.CreateVenueRequest{
		Name:     "Main Hall",
		Address:  "1 Main Street",
		Capacity: 500,
	})
	require.NoError(t, err)
	return venue
}

func seedEvent(t *testing.T, s *memstore.Store, venueID string, totalSeats int) *model.Event {
	t.Helper()
	event, err := s.Events().Create(context.Background(), model.Event{
		Title:      "Spring Concert",
		Type:       model.EventTypeConcert,
		Status:     model.EventStatusUpcoming,
		VenueID:    venueID,
		Date:       time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		Time:       "19:30",
		Duration:   120,
		TotalSeats: totalSeats,
		Price:      25,
	}, nil)
	require.NoError(t, err)
	return event
}

// userNotifications returns all inbox entries for a user, newest first.
func userNotifications(t *testing.T, s *memstore.Store, userID string) []model.Notification {
	t.Helper()
	notifications, _, err := s.Notifications().List(context.Background(), userID, model.NotificationQuery{PerPage: 100})
	require.NoError(t, err)
	return notifications
}

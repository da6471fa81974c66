package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quicket/internal/memstore"
	"quicket/internal/model"
)

// seedInbox books the same event repeatedly so the user accumulates a
// known number of notifications on top of the welcome entry.
func seedInbox(t *testing.T, store *memstore.Store, userID string, entries int) {
	t.Helper()
	ctx := context.Background()
	venue := seedVenue(t, store)
	event := seedEvent(t, store, venue.ID, entries*2)
	for i := 0; i < entries; i++ {
		_, err := store.Bookings().Create(ctx, userID, event.ID, 1)
		require.NoError(t, err)
	}
}

func TestNotificationListPaged(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	user := seedUser(t, store, "alice")
	seedInbox(t, store, user.ID, 11) // plus the welcome entry: 12 total

	svc := NewNotificationService(store.Notifications())

	page1, total, err := svc.List(ctx, userCaller(user.ID), user.ID, model.NotificationQuery{Page: 1, PerPage: 5})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, page1, 5)

	page3, total, err := svc.List(ctx, userCaller(user.ID), user.ID, model.NotificationQuery{Page: 3, PerPage: 5})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Len(t, page3, 2)

	// Newest first: the welcome entry is the oldest, so it comes last.
	assert.Equal(t, "Welcome to Quicket!", page3[len(page3)-1].Title)

	// Defaults: page 1, ten per page.
	defaults, _, err := svc.List(ctx, userCaller(user.ID), user.ID, model.NotificationQuery{})
	require.NoError(t, err)
	assert.Len(t, defaults, 10)
}

func TestNotificationListLimited(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	user := seedUser(t, store, "alice")
	seedInbox(t, store, user.ID, 6)

	svc := NewNotificationService(store.Notifications())

	entries, total, err := svc.List(ctx, userCaller(user.ID), user.ID, model.NotificationQuery{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, 3, total)

	_, _, err = svc.List(ctx, userCaller(user.ID), user.ID, model.NotificationQuery{Limit: -1})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestNotificationUnreadFlow(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	user := seedUser(t, store, "alice")
	seedInbox(t, store, user.ID, 3)

	svc := NewNotificationService(store.Notifications())

	count, err := svc.UnreadCount(ctx, userCaller(user.ID), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	entries, _, err := svc.List(ctx, userCaller(user.ID), user.ID, model.NotificationQuery{})
	require.NoError(t, err)
	require.NoError(t, svc.MarkRead(ctx, userCaller(user.ID), entries[0].ID))

	count, err = svc.UnreadCount(ctx, userCaller(user.ID), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	unread, _, err := svc.List(ctx, userCaller(user.ID), user.ID, model.NotificationQuery{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unread, 3)

	require.NoError(t, svc.MarkAllRead(ctx, userCaller(user.ID), user.ID))
	count, err = svc.UnreadCount(ctx, userCaller(user.ID), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNotificationDelete(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	user := seedUser(t, store, "alice")

	svc := NewNotificationService(store.Notifications())
	entries, _, err := svc.List(ctx, userCaller(user.ID), user.ID, model.NotificationQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, svc.Delete(ctx, userCaller(user.ID), entries[0].ID))

	entries, total, err := svc.List(ctx, userCaller(user.ID), user.ID, model.NotificationQuery{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 0, total)
}

func TestNotificationOwnership(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	owner := seedUser(t, store, "alice")
	other := seedUser(t, store, "bob")

	svc := NewNotificationService(store.Notifications())

	entries, _, err := svc.List(ctx, userCaller(owner.ID), owner.ID, model.NotificationQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	target := entries[0].ID

	for name, attempt := range map[string]func() error{
		"list": func() error {
			_, _, err := svc.List(ctx, userCaller(other.ID), owner.ID, model.NotificationQuery{})
			return err
		},
		"unread count": func() error {
			_, err := svc.UnreadCount(ctx, userCaller(other.ID), owner.ID)
			return err
		},
		"mark read": func() error { return svc.MarkRead(ctx, userCaller(other.ID), target) },
		"mark all":  func() error { return svc.MarkAllRead(ctx, userCaller(other.ID), owner.ID) },
		"delete":    func() error { return svc.Delete(ctx, userCaller(other.ID), target) },
	} {
		assert.ErrorIs(t, attempt(), ErrForbidden, fmt.Sprintf("%s by non-owner", name))
	}

	// Admins can manage anyone's inbox.
	assert.NoError(t, svc.MarkRead(ctx, adminCaller(), target))
}

package service

import (
	"context"

	"quicket/internal/auth"
	"quicket/internal/model"
)

// NotificationStore captures the inbox persistence operations the
// service needs. Writing entries is not exposed here: notifications are
// only ever appended by the booking and event repositories as a side
// effect of state transitions.
type NotificationStore interface {
	List(ctx context.Context, userID string, q model.NotificationQuery) ([]model.Notification, int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
}

// NotificationService exposes a user's inbox, gated by ownership.
type NotificationService struct {
	notifications NotificationStore
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(notifications NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// List returns a page of the user's notifications, newest first, and the
// total matching count.
func (s *NotificationService) List(ctx context.Context, caller auth.Caller, userID string, q model.NotificationQuery) ([]model.Notification, int, error) {
	if err := requireSelfOrAdmin(caller, userID); err != nil {
		return nil, 0, err
	}
	if q.Limit < 0 {
		return nil, 0, invalidf("limit cannot be negative")
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 10
	}
	return s.notifications.List(ctx, userID, q)
}

// UnreadCount returns how many unread notifications the user has.
func (s *NotificationService) UnreadCount(ctx context.Context, caller auth.Caller, userID string) (int, error) {
	if err := requireSelfOrAdmin(caller, userID); err != nil {
		return 0, err
	}
	return s.notifications.UnreadCount(ctx, userID)
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, caller auth.Caller, id string) error {
	notification, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireSelfOrAdmin(caller, notification.UserID); err != nil {
		return err
	}
	return s.notifications.MarkRead(ctx, id)
}

// MarkAllRead flags all of the user's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, caller auth.Caller, userID string) error {
	if err := requireSelfOrAdmin(caller, userID); err != nil {
		return err
	}
	return s.notifications.MarkAllRead(ctx, userID)
}

// Delete removes one notification.
func (s *NotificationService) Delete(ctx context.Context, caller auth.Caller, id string) error {
	notification, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireSelfOrAdmin(caller, notification.UserID); err != nil {
		return err
	}
	return s.notifications.Delete(ctx, id)
}

package service

import (
	"context"

	"quicket/internal/auth"
	"quicket/internal/model"
)

// StatsStore captures the aggregate queries behind the admin dashboard.
type StatsStore interface {
	BookingStats(ctx context.Context) (*model.BookingStats, error)
	EventStats(ctx context.Context) (*model.EventStats, error)
	UserStats(ctx context.Context) (*model.UserStats, error)
}

// AdminService exposes dashboard statistics and user management.
type AdminService struct {
	users UserStore
	stats StatsStore
}

// NewAdminService constructs an AdminService.
func NewAdminService(users UserStore, stats StatsStore) *AdminService {
	return &AdminService{users: users, stats: stats}
}

// BookingStats returns booking aggregates.
func (s *AdminService) BookingStats(ctx context.Context, caller auth.Caller) (*model.BookingStats, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.stats.BookingStats(ctx)
}

// EventStats returns event aggregates.
func (s *AdminService) EventStats(ctx context.Context, caller auth.Caller) (*model.EventStats, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.stats.EventStats(ctx)
}

// UserStats returns user aggregates.
func (s *AdminService) UserStats(ctx context.Context, caller auth.Caller) (*model.UserStats, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.stats.UserStats(ctx)
}

// ListUsers returns every registered user.
func (s *AdminService) ListUsers(ctx context.Context, caller auth.Caller) ([]model.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// UpdateUserRole changes a user's role. The change takes effect on the
// user's next login; existing tokens keep their embedded role until they
// expire.
func (s *AdminService) UpdateUserRole(ctx context.Context, caller auth.Caller, userID, roleStr string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	role, err := model.ParseRole(roleStr)
	if err != nil {
		return invalidf("%v", err)
	}
	return s.users.UpdateRole(ctx, userID, role)
}

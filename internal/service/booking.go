package service

import (
	"context"

	"quicket/internal/auth"
	"quicket/internal/model"
)

// BookingStore captures the booking persistence operations the service
// needs. Create must serialise the capacity check per event.
type BookingStore interface {
	Create(ctx context.Context, userID, eventID string, seats int) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (alreadyCancelled bool, err error)
	ListForUser(ctx context.Context, userID string) ([]model.BookingView, error)
}

// BookingService orchestrates seat reservations.
type BookingService struct {
	bookings BookingStore
}

// NewBookingService constructs a BookingService.
func NewBookingService(bookings BookingStore) *BookingService {
	return &BookingService{bookings: bookings}
}

// Create reserves seats for the caller on an event.
func (s *BookingService) Create(ctx context.Context, caller auth.Caller, req model.CreateBookingRequest) (*model.Booking, error) {
	if req.EventID == "" {
		return nil, invalidf("event_id is required")
	}
	if req.Seats == 0 {
		req.Seats = 1
	}
	if req.Seats < 1 {
		return nil, invalidf("seats must be a positive integer")
	}
	return s.bookings.Create(ctx, caller.UserID, req.EventID, req.Seats)
}

// Cancel cancels a booking owned by the caller (or any booking, for an
// admin). Re-cancelling an already-cancelled booking succeeds trivially.
func (s *BookingService) Cancel(ctx context.Context, caller auth.Caller, id string) error {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireSelfOrAdmin(caller, booking.UserID); err != nil {
		return err
	}
	_, err = s.bookings.Cancel(ctx, id)
	return err
}

// ListForUser returns a user's bookings with event and venue display
// data, for the user themselves or an admin.
func (s *BookingService) ListForUser(ctx context.Context, caller auth.Caller, userID string) ([]model.BookingView, error) {
	if err := requireSelfOrAdmin(caller, userID); err != nil {
		return nil, err
	}
	return s.bookings.ListForUser(ctx, userID)
}

// Package repository implements all database access for the booking system.
// It uses pgx directly (no ORM). Every mutation runs inside a transaction;
// capacity-sensitive mutations first take a row-level lock on the event so
// the read-check-write sequence is serialised per event.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUser is returned when a username or email is already taken.
var ErrDuplicateUser = errors.New("username or email already registered")

// ErrVenueInUse is returned when deleting a venue that still hosts events.
var ErrVenueInUse = errors.New("venue has events scheduled")

// ErrInvalidTransition is returned for a disallowed event status change.
var ErrInvalidTransition = errors.New("invalid event status transition")

// ErrEventNotBookable is returned when booking a finished or cancelled event.
var ErrEventNotBookable = errors.New("event is not open for booking")

// InsufficientSeatsError is returned when a booking asks for more seats
// than the event has left.
type InsufficientSeatsError struct {
	Available int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("not enough seats available: %d left", e.Available)
}

// CapacityError is returned when total_seats would drop below the number
// of seats already confirmed.
type CapacityError struct {
	Booked int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("total seats cannot be below the %d already booked", e.Booked)
}

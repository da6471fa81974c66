// Package model defines the core domain types for the ticket booking system.
package model

import "time"

// DateFormat is the wire format for event dates.
const DateFormat = "2006-01-02"

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Venue is a physical location that hosts events.
type Venue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	CreatedAt   time.Time `json:"created_at"`
}

// Event is a bookable event held at a venue.
//
// TotalSeats is the event's own capacity ceiling, independent of the
// venue's capacity. The number of available seats is never stored; it is
// derived as TotalSeats minus the seats of all confirmed bookings.
type Event struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	Type               EventType   `json:"type"`
	Status             EventStatus `json:"status"`
	VenueID            string      `json:"venue_id"`
	Date               time.Time   `json:"-"`
	Time               string      `json:"time"`     // HH:MM
	Duration           int         `json:"duration"` // minutes
	TotalSeats         int         `json:"total_seats"`
	Price              float64     `json:"price"`
	Description        string      `json:"description"`
	EventSubtype       *string     `json:"event_subtype"`
	ImageURL           *string     `json:"image_url"`
	BackgroundMusicURL *string     `json:"background_music_url"`
	Organizer          *string     `json:"organizer"`
	Featured           bool        `json:"featured"`
	CreatedAt          time.Time   `json:"created_at"`
}

// EventMedia is a media attachment (image, video, audio) owned by an event.
type EventMedia struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	MediaType   string    `json:"type"`
	MediaURL    string    `json:"url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"-"`
}

// Booking reserves a number of seats for one user at one event.
// Seats is immutable once created; only Status may change.
type Booking struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	EventID   string        `json:"event_id"`
	Seats     int           `json:"seats"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Notification is an entry in a user's in-app inbox. Entries are append
// only: nothing but the read flag changes after creation.
type Notification struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Type       NotificationType `json:"notification_type"`
	Read       bool             `json:"read"`
	RelatedID  *string          `json:"related_id"`
	ActionLink *string          `json:"action_link"`
	CreatedAt  time.Time        `json:"created_at"`
}

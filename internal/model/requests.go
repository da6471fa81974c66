package model

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for authenticating.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MediaInput describes one media attachment in a create/update request.
type MediaInput struct {
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title              string       `json:"title"`
	Type               string       `json:"type"`
	VenueID            string       `json:"venue_id"`
	Date               string       `json:"date"` // YYYY-MM-DD
	Time               string       `json:"time"` // HH:MM
	Duration           int          `json:"duration"`
	TotalSeats         int          `json:"total_seats"`
	Price              float64      `json:"price"`
	Description        string       `json:"description"`
	EventSubtype       *string      `json:"event_subtype"`
	ImageURL           *string      `json:"image_url"`
	BackgroundMusicURL *string      `json:"background_music_url"`
	Organizer          *string      `json:"organizer"`
	Featured           bool         `json:"featured"`
	Media              []MediaInput `json:"media"`
}

// UpdateEventRequest carries a partial event update: only non-nil fields
// are applied. NotifyUsers asks for a best-effort "event updated"
// notification to everyone with a confirmed booking.
type UpdateEventRequest struct {
	Title              *string      `json:"title"`
	Type               *string      `json:"type"`
	Status             *string      `json:"status"`
	VenueID            *string      `json:"venue_id"`
	Date               *string      `json:"date"`
	Time               *string      `json:"time"`
	Duration           *int         `json:"duration"`
	TotalSeats         *int         `json:"total_seats"`
	Price              *float64     `json:"price"`
	Description        *string      `json:"description"`
	EventSubtype       *string      `json:"event_subtype"`
	ImageURL           *string      `json:"image_url"`
	BackgroundMusicURL *string      `json:"background_music_url"`
	Organizer          *string      `json:"organizer"`
	Featured           *bool        `json:"featured"`
	Media              []MediaInput `json:"media"`
	DeleteAllMedia     bool         `json:"delete_all_media"`
	NotifyUsers        bool         `json:"notify_users"`
}

// CreateVenueRequest is the payload for creating a venue.
type CreateVenueRequest struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Capacity    int      `json:"capacity"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// UpdateVenueRequest carries a partial venue update.
type UpdateVenueRequest struct {
	Name        *string  `json:"name"`
	Address     *string  `json:"address"`
	Description *string  `json:"description"`
	Capacity    *int     `json:"capacity"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// CreateBookingRequest is the payload for reserving seats.
type CreateBookingRequest struct {
	EventID string `json:"event_id"`
	Seats   int    `json:"seats"`
}

// UpdateRoleRequest is the admin payload for changing a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// EventFilter narrows an event listing.
type EventFilter struct {
	Type     *EventType
	Status   *EventStatus
	Search   string
	Featured bool
}

// NotificationQuery selects one of two retrieval modes: a flat
// limit-bounded fetch when Limit > 0, otherwise page/per-page pagination.
type NotificationQuery struct {
	UnreadOnly bool
	Limit      int
	Page       int
	PerPage    int
}

// EventUpdate is the typed form of UpdateEventRequest after the service
// layer has parsed enums and dates. The repository applies it inside a
// single transaction holding the event row lock.
type EventUpdate struct {
	Title              *string
	Type               *EventType
	Status             *EventStatus
	VenueID            *string
	Date               *string // YYYY-MM-DD, already validated
	Time               *string
	Duration           *int
	TotalSeats         *int
	Price              *float64
	Description        *string
	EventSubtype       *string
	ImageURL           *string
	BackgroundMusicURL *string
	Organizer          *string
	Featured           *bool
	Media              []EventMedia
	DeleteAllMedia     bool
	NotifyUsers        bool
}

package model

// EventSummary is the list-view projection of an event: the row joined
// with its venue name and the derived seat availability.
type EventSummary struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Type           EventType   `json:"type"`
	Status         EventStatus `json:"status"`
	VenueID        string      `json:"venue_id"`
	VenueName      string      `json:"venue_name"`
	Date           string      `json:"date"`
	Time           string      `json:"time"`
	Duration       int         `json:"duration"`
	TotalSeats     int         `json:"total_seats"`
	AvailableSeats int         `json:"available_seats"`
	Price          float64     `json:"price"`
	Description    string      `json:"description"`
	EventSubtype   *string     `json:"event_subtype"`
	ImageURL       *string     `json:"image_url"`
	Organizer      *string     `json:"organizer"`
	Featured       bool        `json:"featured"`
}

// EventDetail extends the summary with venue location data and the
// event's media attachments.
type EventDetail struct {
	EventSummary
	VenueAddress       string       `json:"venue_address"`
	VenueLatitude      *float64     `json:"venue_latitude"`
	VenueLongitude     *float64     `json:"venue_longitude"`
	BackgroundMusicURL *string      `json:"background_music_url"`
	Media              []EventMedia `json:"media"`
}

// VenueDetail is a venue together with the events it hosts.
type VenueDetail struct {
	Venue
	Events []EventSummary `json:"events"`
}

// BookingView is a booking joined with event and venue display data.
type BookingView struct {
	ID         string        `json:"id"`
	EventID    string        `json:"event_id"`
	EventTitle string        `json:"event_title"`
	EventDate  string        `json:"event_date"`
	EventTime  string        `json:"event_time"`
	VenueName  string        `json:"venue_name"`
	Seats      int           `json:"seats"`
	Status     BookingStatus `json:"status"`
	TotalPrice float64       `json:"total_price"`
	EventImage *string       `json:"event_image"`
	CreatedAt  string        `json:"created_at"`
}

// EventCount pairs an event with its booking count for stats views.
type EventCount struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	BookingsCount int    `json:"bookings_count"`
}

// VenueCount pairs a venue with its event count for stats views.
type VenueCount struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EventsCount int    `json:"events_count"`
}

// UserCount pairs a user with their booking count for stats views.
type UserCount struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	BookingsCount int    `json:"bookings_count"`
}

// BookingStats aggregates booking figures for the admin dashboard.
type BookingStats struct {
	TotalBookings int            `json:"total_bookings"`
	StatusStats   map[string]int `json:"status_stats"`
	DailyStats    map[string]int `json:"daily_stats"`
	TopEvents     []EventCount   `json:"top_events"`
}

// EventStats aggregates event figures for the admin dashboard.
type EventStats struct {
	TotalEvents int            `json:"total_events"`
	TypeStats   map[string]int `json:"type_stats"`
	StatusStats map[string]int `json:"status_stats"`
	VenueStats  []VenueCount   `json:"venue_stats"`
}

// UserStats aggregates user figures for the admin dashboard.
type UserStats struct {
	TotalUsers   int            `json:"total_users"`
	AdminCount   int            `json:"admin_count"`
	TopUsers     []UserCount    `json:"top_users"`
	MonthlyStats map[string]int `json:"monthly_stats"`
}

package service

import (
	"context"
	"strings"
	"time"

	"quicket/internal/auth"
	"quicket/internal/model"
)

// EventStore captures the event persistence operations the service needs.
type EventStore interface {
	Create(ctx context.Context, event model.Event, media []model.EventMedia) (*model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetDetail(ctx context.Context, id string) (*model.EventDetail, error)
	List(ctx context.Context, f model.EventFilter) ([]model.EventSummary, error)
	Update(ctx context.Context, id string, upd model.EventUpdate) error
	Delete(ctx context.Context, id string) (cancelled bool, err error)
	AvailableSeats(ctx context.Context, id string) (int, error)
}

// VenueStore captures the venue persistence operations the services need.
type VenueStore interface {
	Create(ctx context.Context, req model.CreateVenueRequest) (*model.Venue, error)
	GetByID(ctx context.Context, id string) (*model.Venue, error)
	GetDetail(ctx context.Context, id string) (*model.VenueDetail, error)
	List(ctx context.Context) ([]model.Venue, error)
	Update(ctx context.Context, v model.Venue) error
	Delete(ctx context.Context, id string) error
}

// EventService orchestrates the event lifecycle.
type EventService struct {
	events EventStore
	venues VenueStore
}

// NewEventService constructs an EventService.
func NewEventService(events EventStore, venues VenueStore) *EventService {
	return &EventService{events: events, venues: venues}
}

// Create validates the request and inserts a new upcoming event. The
// initial status is always upcoming regardless of caller input.
func (s *EventService) Create(ctx context.Context, caller auth.Caller, req model.CreateEventRequest) (*model.Event, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, invalidf("title is required")
	}
	eventType, err := model.ParseEventType(req.Type)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	if req.VenueID == "" {
		return nil, invalidf("venue_id is required")
	}
	date, err := time.Parse(model.DateFormat, req.Date)
	if err != nil {
		return nil, invalidf("date must be in YYYY-MM-DD format")
	}
	if err := validateClock(req.Time); err != nil {
		return nil, err
	}
	if req.TotalSeats < 1 {
		return nil, invalidf("total_seats must be a positive integer")
	}
	if req.Price < 0 {
		return nil, invalidf("price cannot be negative")
	}
	duration := req.Duration
	if duration == 0 {
		duration = 60
	}
	if duration < 0 {
		return nil, invalidf("duration must be a positive number of minutes")
	}

	// The venue must exist before we hang an event off it.
	if _, err := s.venues.GetByID(ctx, req.VenueID); err != nil {
		return nil, err
	}

	event := model.Event{
		Title:              req.Title,
		Type:               eventType,
		Status:             model.EventStatusUpcoming,
		VenueID:            req.VenueID,
		Date:               date,
		Time:               req.Time,
		Duration:           duration,
		TotalSeats:         req.TotalSeats,
		Price:              req.Price,
		Description:        req.Description,
		EventSubtype:       req.EventSubtype,
		ImageURL:           req.ImageURL,
		BackgroundMusicURL: req.BackgroundMusicURL,
		Organizer:          req.Organizer,
		Featured:           req.Featured,
	}
	return s.events.Create(ctx, event, mediaFromInputs(req.Media))
}

// Update applies a partial update. Enum and format validation happens
// here; the capacity check and the cancellation cascade happen in the
// repository under the event row lock.
func (s *EventService) Update(ctx context.Context, caller auth.Caller, id string, req model.UpdateEventRequest) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	upd := model.EventUpdate{
		Title:              req.Title,
		VenueID:            req.VenueID,
		Date:               req.Date,
		Time:               req.Time,
		Duration:           req.Duration,
		TotalSeats:         req.TotalSeats,
		Price:              req.Price,
		Description:        req.Description,
		EventSubtype:       req.EventSubtype,
		ImageURL:           req.ImageURL,
		BackgroundMusicURL: req.BackgroundMusicURL,
		Organizer:          req.Organizer,
		Featured:           req.Featured,
		Media:              mediaFromInputs(req.Media),
		DeleteAllMedia:     req.DeleteAllMedia,
		NotifyUsers:        req.NotifyUsers,
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return invalidf("title cannot be empty")
	}
	if req.Type != nil {
		t, err := model.ParseEventType(*req.Type)
		if err != nil {
			return invalidf("%v", err)
		}
		upd.Type = &t
	}
	if req.Status != nil {
		st, err := model.ParseEventStatus(*req.Status)
		if err != nil {
			return invalidf("%v", err)
		}
		upd.Status = &st
	}
	if req.Date != nil {
		if _, err := time.Parse(model.DateFormat, *req.Date); err != nil {
			return invalidf("date must be in YYYY-MM-DD format")
		}
	}
	if req.Time != nil {
		if err := validateClock(*req.Time); err != nil {
			return err
		}
	}
	if req.TotalSeats != nil && *req.TotalSeats < 1 {
		return invalidf("total_seats must be a positive integer")
	}
	if req.Price != nil && *req.Price < 0 {
		return invalidf("price cannot be negative")
	}
	if req.Duration != nil && *req.Duration < 1 {
		return invalidf("duration must be a positive number of minutes")
	}
	if req.VenueID != nil {
		if _, err := s.venues.GetByID(ctx, *req.VenueID); err != nil {
			return err
		}
	}

	return s.events.Update(ctx, id, upd)
}

// Delete removes an event without confirmed bookings, or cancels it (with
// the full cascade) when confirmed bookings exist. The returned flag
// reports whether the event was cancelled rather than removed.
func (s *EventService) Delete(ctx context.Context, caller auth.Caller, id string) (bool, error) {
	if err := requireAdmin(caller); err != nil {
		return false, err
	}
	return s.events.Delete(ctx, id)
}

// List returns event summaries matching the given raw filter values.
func (s *EventService) List(ctx context.Context, typeStr, statusStr, search string, featured bool) ([]model.EventSummary, error) {
	var filter model.EventFilter
	if typeStr != "" {
		t, err := model.ParseEventType(typeStr)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		filter.Type = &t
	}
	if statusStr != "" {
		st, err := model.ParseEventStatus(statusStr)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		filter.Status = &st
	}
	filter.Search = strings.TrimSpace(search)
	filter.Featured = featured

	return s.events.List(ctx, filter)
}

// Get returns one event with venue and media detail.
func (s *EventService) Get(ctx context.Context, id string) (*model.EventDetail, error) {
	return s.events.GetDetail(ctx, id)
}

// AvailableSeats returns the event's remaining capacity.
func (s *EventService) AvailableSeats(ctx context.Context, id string) (int, error) {
	return s.events.AvailableSeats(ctx, id)
}

func mediaFromInputs(inputs []model.MediaInput) []model.EventMedia {
	media := make([]model.EventMedia, 0, len(inputs))
	for _, in := range inputs {
		if in.Type == "" || in.URL == "" {
			continue
		}
		media = append(media, model.EventMedia{
			MediaType:   in.Type,
			MediaURL:    in.URL,
			Description: in.Description,
		})
	}
	return media
}

// validateClock checks the HH:MM time-of-day format.
func validateClock(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return invalidf("time must be in HH:MM format")
	}
	return nil
}

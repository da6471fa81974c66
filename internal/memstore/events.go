package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"quicket/internal/model"
	"quicket/internal/repository"
)

// Events implements service.EventStore with the same transactional
// semantics as the SQL repository: capacity checks, transition rules and
// cancellation cascades all happen atomically under the store mutex.
type Events struct{ s *Store }

func (e *Events) Create(ctx context.Context, event model.Event, media []model.EventMedia) (*model.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	event.ID = uuid.NewString()
	event.CreatedAt = e.s.tick()
	e.s.events[event.ID] = &event
	e.s.attachMedia(event.ID, media)
	out := event
	return &out, nil
}

func (e *Events) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	event, ok := e.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *event
	return &out, nil
}

func (e *Events) GetDetail(ctx context.Context, id string) (*model.EventDetail, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	event, ok := e.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	detail := &model.EventDetail{
		EventSummary:       e.s.summarize(event),
		BackgroundMusicURL: event.BackgroundMusicURL,
		Media:              append([]model.EventMedia{}, e.s.media[id]...),
	}
	if venue, ok := e.s.venues[event.VenueID]; ok {
		detail.VenueAddress = venue.Address
		detail.VenueLatitude = venue.Latitude
		detail.VenueLongitude = venue.Longitude
	}
	return detail, nil
}

func (e *Events) List(ctx context.Context, f model.EventFilter) ([]model.EventSummary, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	summaries := []model.EventSummary{}
	for _, event := range e.s.events {
		if summary := e.s.summarize(event); matchesFilter(summary, f) {
			summaries = append(summaries, summary)
		}
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Date != summaries[j].Date {
			return summaries[i].Date < summaries[j].Date
		}
		return summaries[i].Time < summaries[j].Time
	})
	return summaries, nil
}

func (e *Events) AvailableSeats(ctx context.Context, id string) (int, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	event, ok := e.s.events[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return event.TotalSeats - e.s.confirmedSeats(id), nil
}

func (e *Events) Update(ctx context.Context, id string, upd model.EventUpdate) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	if err := e.s.FailEventUpdate; err != nil {
		e.s.FailEventUpdate = nil
		return err
	}

	stored, ok := e.s.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	event := *stored

	booked := e.s.confirmedSeats(id)
	if upd.TotalSeats != nil && *upd.TotalSeats < booked {
		return &repository.CapacityError{Booked: booked}
	}
	cancelling := false
	if upd.Status != nil {
		if !event.Status.CanTransition(*upd.Status) {
			return fmt.Errorf("%w: %s to %s", repository.ErrInvalidTransition, event.Status, *upd.Status)
		}
		cancelling = event.Status != model.EventStatusCancelled && *upd.Status == model.EventStatusCancelled
		event.Status = *upd.Status
	}

	if upd.Title != nil {
		event.Title = *upd.Title
	}
	if upd.Type != nil {
		event.Type = *upd.Type
	}
	if upd.VenueID != nil {
		event.VenueID = *upd.VenueID
	}
	if upd.Date != nil {
		date, err := time.Parse(model.DateFormat, *upd.Date)
		if err != nil {
			return err
		}
		event.Date = date
	}
	if upd.Time != nil {
		event.Time = *upd.Time
	}
	if upd.Duration != nil {
		event.Duration = *upd.Duration
	}
	if upd.TotalSeats != nil {
		event.TotalSeats = *upd.TotalSeats
	}
	if upd.Price != nil {
		event.Price = *upd.Price
	}
	if upd.Description != nil {
		event.Description = *upd.Description
	}
	if upd.EventSubtype != nil {
		event.EventSubtype = upd.EventSubtype
	}
	if upd.ImageURL != nil {
		event.ImageURL = upd.ImageURL
	}
	if upd.BackgroundMusicURL != nil {
		event.BackgroundMusicURL = upd.BackgroundMusicURL
	}
	if upd.Organizer != nil {
		event.Organizer = upd.Organizer
	}
	if upd.Featured != nil {
		event.Featured = *upd.Featured
	}

	*stored = event
	if upd.DeleteAllMedia {
		delete(e.s.media, id)
	}
	e.s.attachMedia(id, upd.Media)

	switch {
	case cancelling:
		e.s.cancelEventBookings(stored)
	case upd.NotifyUsers:
		e.s.notifyBookers(stored, model.NotificationEventUpdated,
			"Event updated",
			fmt.Sprintf("The event '%s' has been updated. Please check your booking details.", event.Title))
	}
	return nil
}

func (e *Events) Delete(ctx context.Context, id string) (bool, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	event, ok := e.s.events[id]
	if !ok {
		return false, repository.ErrNotFound
	}

	confirmed := 0
	for _, b := range e.s.bookings {
		if b.EventID == id && b.Status == model.BookingConfirmed {
			confirmed++
		}
	}
	if confirmed > 0 {
		event.Status = model.EventStatusCancelled
		e.s.cancelEventBookings(event)
		return true, nil
	}

	delete(e.s.media, id)
	for bookingID, b := range e.s.bookings {
		if b.EventID == id {
			delete(e.s.bookings, bookingID)
		}
	}
	delete(e.s.events, id)
	return false, nil
}

func (s *Store) attachMedia(eventID string, media []model.EventMedia) {
	for _, m := range media {
		m.ID = uuid.NewString()
		m.EventID = eventID
		m.CreatedAt = s.tick()
		s.media[eventID] = append(s.media[eventID], m)
	}
}

// cancelEventBookings mirrors the SQL cascade: every confirmed booking
// flips to cancelled and its owner gets one event_cancelled entry.
// Caller must hold the mutex.
func (s *Store) cancelEventBookings(event *model.Event) {
	message := fmt.Sprintf("The event '%s' has been cancelled. Your booking has been cancelled automatically.", event.Title)
	ids := make([]string, 0, len(s.bookings))
	for id := range s.bookings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		b := s.bookings[id]
		if b.EventID != event.ID || b.Status != model.BookingConfirmed {
			continue
		}
		b.Status = model.BookingCancelled
		s.addNotification(model.Notification{
			UserID:    b.UserID,
			Title:     "Event cancelled",
			Message:   message,
			Type:      model.NotificationEventCancelled,
			RelatedID: &event.ID,
		})
	}
}

// notifyBookers writes one entry per distinct user holding a confirmed
// booking. Caller must hold the mutex.
func (s *Store) notifyBookers(event *model.Event, typ model.NotificationType, title, message string) {
	seen := map[string]bool{}
	for _, b := range s.bookings {
		if b.EventID == event.ID && b.Status == model.BookingConfirmed {
			seen[b.UserID] = true
		}
	}
	userIDs := make([]string, 0, len(seen))
	for id := range seen {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)
	link := "/events/" + event.ID
	for _, userID := range userIDs {
		s.addNotification(model.Notification{
			UserID:     userID,
			Title:      title,
			Message:    message,
			Type:       typ,
			RelatedID:  &event.ID,
			ActionLink: &link,
		})
	}
}

// Bookings implements service.BookingStore.
type Bookings struct{ s *Store }

func (b *Bookings) Create(ctx context.Context, userID, eventID string, seats int) (*model.Booking, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	event, ok := b.s.events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if event.Status != model.EventStatusUpcoming && event.Status != model.EventStatusOngoing {
		return nil, repository.ErrEventNotBookable
	}
	if available := event.TotalSeats - b.s.confirmedSeats(eventID); seats > available {
		return nil, &repository.InsufficientSeatsError{Available: available}
	}

	booking := &model.Booking{
		ID:        uuid.NewString(),
		UserID:    userID,
		EventID:   eventID,
		Seats:     seats,
		Status:    model.BookingConfirmed,
		CreatedAt: b.s.tick(),
	}
	b.s.bookings[booking.ID] = booking

	link := "/bookings"
	b.s.addNotification(model.Notification{
		UserID:     userID,
		Title:      "Booking confirmed",
		Message:    fmt.Sprintf("You have booked %d seat(s) for '%s'.", seats, event.Title),
		Type:       model.NotificationBookingCreated,
		RelatedID:  &booking.ID,
		ActionLink: &link,
	})
	out := *booking
	return &out, nil
}

func (b *Bookings) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	booking, ok := b.s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *booking
	return &out, nil
}

func (b *Bookings) Cancel(ctx context.Context, id string) (bool, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	booking, ok := b.s.bookings[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if booking.Status == model.BookingCancelled {
		return true, nil
	}
	booking.Status = model.BookingCancelled

	title := ""
	if event, ok := b.s.events[booking.EventID]; ok {
		title = event.Title
	}
	b.s.addNotification(model.Notification{
		UserID:    booking.UserID,
		Title:     "Booking cancelled",
		Message:   fmt.Sprintf("Your booking for '%s' has been cancelled.", title),
		Type:      model.NotificationBookingCancelled,
		RelatedID: &booking.ID,
	})
	return false, nil
}

func (b *Bookings) ListForUser(ctx context.Context, userID string) ([]model.BookingView, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	views := []model.BookingView{}
	for _, booking := range b.s.bookings {
		if booking.UserID != userID {
			continue
		}
		view := model.BookingView{
			ID:        booking.ID,
			EventID:   booking.EventID,
			Seats:     booking.Seats,
			Status:    booking.Status,
			CreatedAt: booking.CreatedAt.Format(time.DateTime),
		}
		if event, ok := b.s.events[booking.EventID]; ok {
			view.EventTitle = event.Title
			view.EventDate = event.Date.Format(model.DateFormat)
			view.EventTime = event.Time
			view.TotalPrice = float64(booking.Seats) * event.Price
			view.EventImage = event.ImageURL
			if venue, ok := b.s.venues[event.VenueID]; ok {
				view.VenueName = venue.Name
			}
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].EventDate != views[j].EventDate {
			return views[i].EventDate < views[j].EventDate
		}
		return views[i].EventTime < views[j].EventTime
	})
	return views, nil
}

// Notifications implements service.NotificationStore.
type Notifications struct{ s *Store }

func (n *Notifications) List(ctx context.Context, userID string, q model.NotificationQuery) ([]model.Notification, int, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	matching := []model.Notification{}
	for _, entry := range n.s.notifications {
		if entry.UserID != userID {
			continue
		}
		if q.UnreadOnly && entry.Read {
			continue
		}
		matching = append(matching, entry)
	}
	sort.Slice(matching, func(i, j int) bool {
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})

	total := len(matching)
	if q.Limit > 0 {
		if len(matching) > q.Limit {
			matching = matching[:q.Limit]
		}
		return matching, len(matching), nil
	}

	page, perPage := q.Page, q.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	start := (page - 1) * perPage
	if start > len(matching) {
		start = len(matching)
	}
	end := start + perPage
	if end > len(matching) {
		end = len(matching)
	}
	return matching[start:end], total, nil
}

func (n *Notifications) UnreadCount(ctx context.Context, userID string) (int, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	count := 0
	for _, entry := range n.s.notifications {
		if entry.UserID == userID && !entry.Read {
			count++
		}
	}
	return count, nil
}

func (n *Notifications) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	for _, entry := range n.s.notifications {
		if entry.ID == id {
			out := entry
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (n *Notifications) MarkRead(ctx context.Context, id string) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	for i := range n.s.notifications {
		if n.s.notifications[i].ID == id {
			n.s.notifications[i].Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (n *Notifications) MarkAllRead(ctx context.Context, userID string) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	for i := range n.s.notifications {
		if n.s.notifications[i].UserID == userID {
			n.s.notifications[i].Read = true
		}
	}
	return nil
}

func (n *Notifications) Delete(ctx context.Context, id string) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	for i := range n.s.notifications {
		if n.s.notifications[i].ID == id {
			n.s.notifications = append(n.s.notifications[:i], n.s.notifications[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// Stats implements service.StatsStore.
type Stats struct{ s *Store }

func (st *Stats) BookingStats(ctx context.Context) (*model.BookingStats, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	stats := &model.BookingStats{
		StatusStats: map[string]int{},
		DailyStats:  map[string]int{},
	}
	perEvent := map[string]int{}
	for _, b := range st.s.bookings {
		stats.TotalBookings++
		stats.StatusStats[string(b.Status)]++
		stats.DailyStats[b.CreatedAt.Format(model.DateFormat)]++
		perEvent[b.EventID]++
	}
	for eventID, count := range perEvent {
		if event, ok := st.s.events[eventID]; ok {
			stats.TopEvents = append(stats.TopEvents, model.EventCount{
				ID: eventID, Title: event.Title, BookingsCount: count,
			})
		}
	}
	sort.Slice(stats.TopEvents, func(i, j int) bool {
		return stats.TopEvents[i].BookingsCount > stats.TopEvents[j].BookingsCount
	})
	if len(stats.TopEvents) > 5 {
		stats.TopEvents = stats.TopEvents[:5]
	}
	return stats, nil
}

func (st *Stats) EventStats(ctx context.Context) (*model.EventStats, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	stats := &model.EventStats{
		TypeStats:   map[string]int{},
		StatusStats: map[string]int{},
	}
	perVenue := map[string]int{}
	for _, e := range st.s.events {
		stats.TotalEvents++
		stats.TypeStats[string(e.Type)]++
		stats.StatusStats[string(e.Status)]++
		perVenue[e.VenueID]++
	}
	for venueID, count := range perVenue {
		if venue, ok := st.s.venues[venueID]; ok {
			stats.VenueStats = append(stats.VenueStats, model.VenueCount{
				ID: venueID, Name: venue.Name, EventsCount: count,
			})
		}
	}
	sort.Slice(stats.VenueStats, func(i, j int) bool {
		return stats.VenueStats[i].EventsCount > stats.VenueStats[j].EventsCount
	})
	if len(stats.VenueStats) > 5 {
		stats.VenueStats = stats.VenueStats[:5]
	}
	return stats, nil
}

func (st *Stats) UserStats(ctx context.Context) (*model.UserStats, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	stats := &model.UserStats{
		MonthlyStats: map[string]int{},
	}
	for _, u := range st.s.users {
		stats.TotalUsers++
		if u.Role == model.RoleAdmin {
			stats.AdminCount++
		}
		stats.MonthlyStats[u.CreatedAt.Format("2006-01")]++
	}
	perUser := map[string]int{}
	for _, b := range st.s.bookings {
		perUser[b.UserID]++
	}
	for userID, count := range perUser {
		if user, ok := st.s.users[userID]; ok {
			stats.TopUsers = append(stats.TopUsers, model.UserCount{
				ID: userID, Username: user.Username, BookingsCount: count,
			})
		}
	}
	sort.Slice(stats.TopUsers, func(i, j int) bool {
		return stats.TopUsers[i].BookingsCount > stats.TopUsers[j].BookingsCount
	})
	if len(stats.TopUsers) > 5 {
		stats.TopUsers = stats.TopUsers[:5]
	}
	return stats, nil
}

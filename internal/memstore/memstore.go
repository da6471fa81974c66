// Package memstore provides an in-memory implementation of the service
// layer's store interfaces. It mirrors the transactional semantics of
// the SQL repositories (capacity checks, cancellation cascades, inbox
// writes) under a single mutex, and exists for tests that need the full
// behavior without a database.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quicket/internal/model"
	"quicket/internal/repository"
)

// Store holds all state behind one mutex. Access it through the typed
// views returned by Users, Venues, Events, Bookings, Notifications and
// Stats, which implement the corresponding service store interfaces.
type Store struct {
	mu            sync.Mutex
	users         map[string]*model.User
	venues        map[string]*model.Venue
	events        map[string]*model.Event
	media         map[string][]model.EventMedia
	bookings      map[string]*model.Booking
	notifications []model.Notification

	clock time.Time

	// FailEventUpdate, when set, makes the next Events().Update return
	// this error before touching any state. Used to verify that a failed
	// update leaves no partial mutation behind.
	FailEventUpdate error
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[string]*model.User),
		venues:   make(map[string]*model.Venue),
		events:   make(map[string]*model.Event),
		media:    make(map[string][]model.EventMedia),
		bookings: make(map[string]*model.Booking),
		clock:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *Store) Users() *Users                 { return &Users{s} }
func (s *Store) Venues() *Venues               { return &Venues{s} }
func (s *Store) Events() *Events               { return &Events{s} }
func (s *Store) Bookings() *Bookings           { return &Bookings{s} }
func (s *Store) Notifications() *Notifications { return &Notifications{s} }
func (s *Store) Stats() *Stats                 { return &Stats{s} }

// tick returns a strictly increasing timestamp so creation order is
// always recoverable.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *Store) addNotification(n model.Notification) {
	n.ID = uuid.NewString()
	n.CreatedAt = s.tick()
	s.notifications = append(s.notifications, n)
}

// confirmedSeats sums the seats of all confirmed bookings for an event.
// Caller must hold the mutex.
func (s *Store) confirmedSeats(eventID string) int {
	total := 0
	for _, b := range s.bookings {
		if b.EventID == eventID && b.Status == model.BookingConfirmed {
			total += b.Seats
		}
	}
	return total
}

// Users implements service.UserStore.
type Users struct{ s *Store }

func (u *Users) Create(ctx context.Context, username, email, passwordHash string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if existing.Username == username || existing.Email == email {
			return nil, repository.ErrDuplicateUser
		}
	}
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleUser,
		CreatedAt:    u.s.tick(),
	}
	u.s.users[user.ID] = user
	u.s.addNotification(model.Notification{
		UserID:  user.ID,
		Title:   "Welcome to Quicket!",
		Message: "Thanks for signing up. You can now book tickets for any of our events.",
		Type:    model.NotificationSystemMessage,
	})
	out := *user
	return &out, nil
}

func (u *Users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, user := range u.s.users {
		if user.Username == username {
			out := *user
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u *Users) GetByID(ctx context.Context, id string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (u *Users) List(ctx context.Context) ([]model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	users := make([]model.User, 0, len(u.s.users))
	for _, user := range u.s.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (u *Users) UpdateRole(ctx context.Context, id string, role model.Role) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Role = role
	return nil
}

// Venues implements service.VenueStore.
type Venues struct{ s *Store }

func (v *Venues) Create(ctx context.Context, req model.CreateVenueRequest) (*model.Venue, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	venue := &model.Venue{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Capacity:    req.Capacity,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		CreatedAt:   v.s.tick(),
	}
	v.s.venues[venue.ID] = venue
	out := *venue
	return &out, nil
}

func (v *Venues) GetByID(ctx context.Context, id string) (*model.Venue, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	venue, ok := v.s.venues[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *venue
	return &out, nil
}

func (v *Venues) GetDetail(ctx context.Context, id string) (*model.VenueDetail, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	venue, ok := v.s.venues[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	detail := &model.VenueDetail{Venue: *venue, Events: []model.EventSummary{}}
	for _, e := range v.s.events {
		if e.VenueID == id {
			detail.Events = append(detail.Events, v.s.summarize(e))
		}
	}
	sort.Slice(detail.Events, func(i, j int) bool { return detail.Events[i].Date < detail.Events[j].Date })
	return detail, nil
}

func (v *Venues) List(ctx context.Context) ([]model.Venue, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	venues := make([]model.Venue, 0, len(v.s.venues))
	for _, venue := range v.s.venues {
		venues = append(venues, *venue)
	}
	sort.Slice(venues, func(i, j int) bool { return venues[i].Name < venues[j].Name })
	return venues, nil
}

func (v *Venues) Update(ctx context.Context, venue model.Venue) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	existing, ok := v.s.venues[venue.ID]
	if !ok {
		return repository.ErrNotFound
	}
	venue.CreatedAt = existing.CreatedAt
	*existing = venue
	return nil
}

func (v *Venues) Delete(ctx context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.venues[id]; !ok {
		return repository.ErrNotFound
	}
	for _, e := range v.s.events {
		if e.VenueID == id {
			return repository.ErrVenueInUse
		}
	}
	delete(v.s.venues, id)
	return nil
}

// summarize builds the list-view projection of an event. Caller must
// hold the mutex.
func (s *Store) summarize(e *model.Event) model.EventSummary {
	venueName := ""
	if venue, ok := s.venues[e.VenueID]; ok {
		venueName = venue.Name
	}
	imageURL := e.ImageURL
	if imageURL == nil {
		for _, m := range s.media[e.ID] {
			if m.MediaType == "image" {
				url := m.MediaURL
				imageURL = &url
				break
			}
		}
	}
	return model.EventSummary{
		ID:             e.ID,
		Title:          e.Title,
		Type:           e.Type,
		Status:         e.Status,
		VenueID:        e.VenueID,
		VenueName:      venueName,
		Date:           e.Date.Format(model.DateFormat),
		Time:           e.Time,
		Duration:       e.Duration,
		TotalSeats:     e.TotalSeats,
		AvailableSeats: e.TotalSeats - s.confirmedSeats(e.ID),
		Price:          e.Price,
		Description:    e.Description,
		EventSubtype:   e.EventSubtype,
		ImageURL:       imageURL,
		Organizer:      e.Organizer,
		Featured:       e.Featured,
	}
}

func matchesFilter(summary model.EventSummary, f model.EventFilter) bool {
	if f.Type != nil && summary.Type != *f.Type {
		return false
	}
	if f.Status != nil && summary.Status != *f.Status {
		return false
	}
	if f.Featured && !summary.Featured {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(summary.Title), needle) &&
			!strings.Contains(strings.ToLower(summary.VenueName), needle) {
			return false
		}
	}
	return true
}

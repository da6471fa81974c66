package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quicket/internal/model"
)

// EventRepository handles persistence for events and their media.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// queryRower is satisfied by both the pool and a transaction.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// confirmedSeats sums the seats of all confirmed bookings for an event.
func confirmedSeats(ctx context.Context, q queryRower, eventID string) (int, error) {
	var seats int
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(seats), 0) FROM bookings WHERE event_id = $1 AND status = 'confirmed'`,
		eventID,
	).Scan(&seats)
	if err != nil {
		return 0, fmt.Errorf("sum confirmed seats: %w", err)
	}
	return seats, nil
}

const eventColumns = `id, title, type, status, venue_id, date, time, duration, total_seats, price,
	description, event_subtype, image_url, background_music_url, organizer, featured, created_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Type, &e.Status, &e.VenueID, &e.Date, &e.Time,
		&e.Duration, &e.TotalSeats, &e.Price, &e.Description, &e.EventSubtype,
		&e.ImageURL, &e.BackgroundMusicURL, &e.Organizer, &e.Featured, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

// Create inserts a new event and its media attachments in one transaction.
func (r *EventRepository) Create(ctx context.Context, event model.Event, media []model.EventMedia) (ev *model.Event, err error) {
	event.ID = uuid.New().String()
	event.CreatedAt = time.Now().UTC()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO events (id, title, type, status, venue_id, date, time, duration, total_seats, price,
		                     description, event_subtype, image_url, background_music_url, organizer, featured, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		event.ID, event.Title, event.Type, event.Status, event.VenueID, event.Date, event.Time,
		event.Duration, event.TotalSeats, event.Price, event.Description, event.EventSubtype,
		event.ImageURL, event.BackgroundMusicURL, event.Organizer, event.Featured, event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	if err = insertMedia(ctx, tx, event.ID, media); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &event, nil
}

func insertMedia(ctx context.Context, tx pgx.Tx, eventID string, media []model.EventMedia) error {
	for _, m := range media {
		_, err := tx.Exec(ctx,
			`INSERT INTO event_media (id, event_id, media_type, media_url, description, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New().String(), eventID, m.MediaType, m.MediaURL, m.Description, time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert event media: %w", err)
		}
	}
	return nil
}

// GetByID returns the raw event row or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

// List returns event summaries joined with venue names and derived seat
// availability, ordered by date and time. The filter narrows by type,
// status, featured flag, and a case-insensitive title/venue search.
func (r *EventRepository) List(ctx context.Context, f model.EventFilter) ([]model.EventSummary, error) {
	query := `
	SELECT e.id, e.title, e.type, e.status, e.venue_id, v.name, e.date, e.time, e.duration,
	       e.total_seats,
	       e.total_seats - COALESCE(SUM(b.seats) FILTER (WHERE b.status = 'confirmed'), 0),
	       e.price, e.description, e.event_subtype,
	       COALESCE(e.image_url, (SELECT m.media_url FROM event_media m
	                              WHERE m.event_id = e.id AND m.media_type = 'image'
	                              ORDER BY m.created_at LIMIT 1)),
	       e.organizer, e.featured
	FROM events e
	JOIN venues v ON v.id = e.venue_id
	LEFT JOIN bookings b ON b.event_id = e.id
	WHERE 1=1`

	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Type != nil {
		query += ` AND e.type = ` + arg(*f.Type)
	}
	if f.Status != nil {
		query += ` AND e.status = ` + arg(*f.Status)
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		query += ` AND (e.title ILIKE ` + p + ` OR v.name ILIKE ` + p + `)`
	}
	if f.Featured {
		query += ` AND e.featured = true`
	}
	query += ` GROUP BY e.id, v.name ORDER BY e.date, e.time`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.EventSummary
	for rows.Next() {
		var (
			s    model.EventSummary
			date time.Time
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Type, &s.Status, &s.VenueID, &s.VenueName,
			&date, &s.Time, &s.Duration, &s.TotalSeats, &s.AvailableSeats, &s.Price,
			&s.Description, &s.EventSubtype, &s.ImageURL, &s.Organizer, &s.Featured); err != nil {
			return nil, fmt.Errorf("scan event summary: %w", err)
		}
		s.Date = date.Format(model.DateFormat)
		events = append(events, s)
	}
	return events, rows.Err()
}

// GetDetail returns one event with venue location data and all media.
func (r *EventRepository) GetDetail(ctx context.Context, id string) (*model.EventDetail, error) {
	var (
		d    model.EventDetail
		date time.Time
	)
	err := r.db.QueryRow(ctx, `
	SELECT e.id, e.title, e.type, e.status, e.venue_id, v.name, v.address, v.latitude, v.longitude,
	       e.date, e.time, e.duration, e.total_seats,
	       e.total_seats - COALESCE(SUM(b.seats) FILTER (WHERE b.status = 'confirmed'), 0),
	       e.price, e.description, e.event_subtype, e.image_url, e.background_music_url,
	       e.organizer, e.featured
	FROM events e
	JOIN venues v ON v.id = e.venue_id
	LEFT JOIN bookings b ON b.event_id = e.id
	WHERE e.id = $1
	GROUP BY e.id, v.id`,
		id,
	).Scan(&d.ID, &d.Title, &d.Type, &d.Status, &d.VenueID, &d.VenueName, &d.VenueAddress,
		&d.VenueLatitude, &d.VenueLongitude, &date, &d.Time, &d.Duration, &d.TotalSeats,
		&d.AvailableSeats, &d.Price, &d.Description, &d.EventSubtype, &d.ImageURL,
		&d.BackgroundMusicURL, &d.Organizer, &d.Featured)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event detail: %w", err)
	}
	d.Date = date.Format(model.DateFormat)

	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, media_type, media_url, description
		 FROM event_media WHERE event_id = $1 ORDER BY created_at`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list event media: %w", err)
	}
	defer rows.Close()

	d.Media = []model.EventMedia{}
	for rows.Next() {
		var m model.EventMedia
		if err := rows.Scan(&m.ID, &m.EventID, &m.MediaType, &m.MediaURL, &m.Description); err != nil {
			return nil, fmt.Errorf("scan event media: %w", err)
		}
		d.Media = append(d.Media, m)
	}
	return &d, rows.Err()
}

// AvailableSeats returns total_seats minus the confirmed seat sum.
func (r *EventRepository) AvailableSeats(ctx context.Context, id string) (int, error) {
	event, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	booked, err := confirmedSeats(ctx, r.db, id)
	if err != nil {
		return 0, err
	}
	return event.TotalSeats - booked, nil
}

// Update applies a partial update inside one transaction.
//
// The event row is locked first, so the total_seats check against the
// confirmed seat sum cannot race with concurrent bookings. A status
// change to cancelled cancels every confirmed booking and notifies each
// affected user atomically with the status write.
func (r *EventRepository) Update(ctx context.Context, id string, upd model.EventUpdate) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	event, err := scanEvent(tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return err
	}

	if upd.TotalSeats != nil {
		booked, serr := confirmedSeats(ctx, tx, id)
		if serr != nil {
			return serr
		}
		if *upd.TotalSeats < booked {
			return &CapacityError{Booked: booked}
		}
		event.TotalSeats = *upd.TotalSeats
	}

	cancelling := false
	if upd.Status != nil && *upd.Status != event.Status {
		if !event.Status.CanTransition(*upd.Status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, event.Status, *upd.Status)
		}
		cancelling = *upd.Status == model.EventStatusCancelled
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
		event.Date, err = time.Parse(model.DateFormat, *upd.Date)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
	}
	if upd.Time != nil {
		event.Time = *upd.Time
	}
	if upd.Duration != nil {
		event.Duration = *upd.Duration
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

	_, err = tx.Exec(ctx,
		`UPDATE events SET title = $2, type = $3, status = $4, venue_id = $5, date = $6, time = $7,
		        duration = $8, total_seats = $9, price = $10, description = $11, event_subtype = $12,
		        image_url = $13, background_music_url = $14, organizer = $15, featured = $16
		 WHERE id = $1`,
		event.ID, event.Title, event.Type, event.Status, event.VenueID, event.Date, event.Time,
		event.Duration, event.TotalSeats, event.Price, event.Description, event.EventSubtype,
		event.ImageURL, event.BackgroundMusicURL, event.Organizer, event.Featured,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	if upd.DeleteAllMedia {
		if _, err = tx.Exec(ctx, `DELETE FROM event_media WHERE event_id = $1`, id); err != nil {
			return fmt.Errorf("delete event media: %w", err)
		}
	}
	if err = insertMedia(ctx, tx, id, upd.Media); err != nil {
		return err
	}

	switch {
	case cancelling:
		if err = cancelEventBookings(ctx, tx, event); err != nil {
			return err
		}
	case upd.NotifyUsers:
		if err = notifyBookers(ctx, tx, event, model.NotificationEventUpdated,
			"Event updated",
			fmt.Sprintf("The event '%s' has been updated. Please check your booking details.", event.Title),
		); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Delete removes an event with no confirmed bookings. An event that still
// has confirmed bookings is cancelled instead, with the full cascade, so
// a paying user's booking is never silently orphaned. The returned flag
// reports which of the two happened.
func (r *EventRepository) Delete(ctx context.Context, id string) (cancelled bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	event, err := scanEvent(tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return false, err
	}

	var confirmed int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND status = 'confirmed'`, id,
	).Scan(&confirmed)
	if err != nil {
		return false, fmt.Errorf("count confirmed bookings: %w", err)
	}

	if confirmed > 0 {
		event.Status = model.EventStatusCancelled
		if _, err = tx.Exec(ctx,
			`UPDATE events SET status = $2 WHERE id = $1`, id, event.Status); err != nil {
			return false, fmt.Errorf("cancel event: %w", err)
		}
		if err = cancelEventBookings(ctx, tx, event); err != nil {
			return false, err
		}
		cancelled = true
	} else {
		// Explicit cascade: media and stale cancelled bookings go with the row.
		if _, err = tx.Exec(ctx, `DELETE FROM event_media WHERE event_id = $1`, id); err != nil {
			return false, fmt.Errorf("delete event media: %w", err)
		}
		if _, err = tx.Exec(ctx, `DELETE FROM bookings WHERE event_id = $1`, id); err != nil {
			return false, fmt.Errorf("delete event bookings: %w", err)
		}
		if _, err = tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
			return false, fmt.Errorf("delete event: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return cancelled, nil
}

// cancelEventBookings marks every confirmed booking for the event as
// cancelled and writes one event_cancelled notification per affected
// user, all within the caller's transaction.
func cancelEventBookings(ctx context.Context, tx pgx.Tx, event *model.Event) error {
	rows, err := tx.Query(ctx,
		`UPDATE bookings SET status = 'cancelled'
		 WHERE event_id = $1 AND status = 'confirmed'
		 RETURNING user_id`,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("cancel event bookings: %w", err)
	}
	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			rows.Close()
			return fmt.Errorf("scan cancelled booking: %w", err)
		}
		userIDs = append(userIDs, userID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	message := fmt.Sprintf("The event '%s' has been cancelled. Your booking has been cancelled automatically.", event.Title)
	for _, userID := range userIDs {
		err := insertNotification(ctx, tx, model.Notification{
			UserID:    userID,
			Title:     "Event cancelled",
			Message:   message,
			Type:      model.NotificationEventCancelled,
			RelatedID: &event.ID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// notifyBookers writes one notification per user holding a confirmed
// booking for the event.
func notifyBookers(ctx context.Context, tx pgx.Tx, event *model.Event, typ model.NotificationType, title, message string) error {
	rows, err := tx.Query(ctx,
		`SELECT DISTINCT user_id FROM bookings WHERE event_id = $1 AND status = 'confirmed'`,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("list bookers: %w", err)
	}
	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			rows.Close()
			return fmt.Errorf("scan booker: %w", err)
		}
		userIDs = append(userIDs, userID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	link := "/events/" + event.ID
	for _, userID := range userIDs {
		err := insertNotification(ctx, tx, model.Notification{
			UserID:     userID,
			Title:      title,
			Message:    message,
			Type:       typ,
			RelatedID:  &event.ID,
			ActionLink: &link,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

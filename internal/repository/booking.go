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

// BookingRepository handles persistence for bookings. It is the sole
// writer of seat consumption state.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create reserves seats inside a serialised transaction.
//
// SELECT ... FOR UPDATE takes a row-level lock on the event, so two
// concurrent bookings cannot both pass the capacity check when only one
// fits: the second transaction blocks on the lock and re-reads after the
// first commits. The booking insert and its notification commit together.
func (r *BookingRepository) Create(ctx context.Context, userID, eventID string, seats int) (booking *model.Booking, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var (
		title      string
		status     model.EventStatus
		totalSeats int
	)
	err = tx.QueryRow(ctx,
		`SELECT title, status, total_seats FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&title, &status, &totalSeats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	if status != model.EventStatusUpcoming && status != model.EventStatusOngoing {
		return nil, ErrEventNotBookable
	}

	booked, err := confirmedSeats(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if available := totalSeats - booked; seats > available {
		return nil, &InsufficientSeatsError{Available: available}
	}

	booking = &model.Booking{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventID:   eventID,
		Seats:     seats,
		Status:    model.BookingConfirmed,
		CreatedAt: time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO bookings (id, user_id, event_id, seats, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		booking.ID, booking.UserID, booking.EventID, booking.Seats, booking.Status, booking.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	link := "/bookings"
	err = insertNotification(ctx, tx, model.Notification{
		UserID:     userID,
		Title:      "Booking confirmed",
		Message:    fmt.Sprintf("You have booked %d seat(s) for '%s'.", seats, title),
		Type:       model.NotificationBookingCreated,
		RelatedID:  &booking.ID,
		ActionLink: &link,
	})
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return booking, nil
}

// GetByID returns a single booking or ErrNotFound.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, event_id, seats, status, created_at FROM bookings WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.UserID, &b.EventID, &b.Seats, &b.Status, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

// Cancel marks a booking as cancelled and notifies its owner, both in
// one transaction. Cancelling an already-cancelled booking is a no-op;
// the returned flag reports that case.
func (r *BookingRepository) Cancel(ctx context.Context, id string) (alreadyCancelled bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var (
		b     model.Booking
		title string
	)
	err = tx.QueryRow(ctx,
		`SELECT b.id, b.user_id, b.event_id, b.seats, b.status, e.title
		 FROM bookings b
		 JOIN events e ON e.id = b.event_id
		 WHERE b.id = $1
		 FOR UPDATE OF b`,
		id,
	).Scan(&b.ID, &b.UserID, &b.EventID, &b.Seats, &b.Status, &title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("lock booking row: %w", err)
	}

	if b.Status == model.BookingCancelled {
		return true, tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx,
		`UPDATE bookings SET status = 'cancelled' WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("cancel booking: %w", err)
	}

	err = insertNotification(ctx, tx, model.Notification{
		UserID:    b.UserID,
		Title:     "Booking cancelled",
		Message:   fmt.Sprintf("Your booking for '%s' has been cancelled.", title),
		Type:      model.NotificationBookingCancelled,
		RelatedID: &b.ID,
	})
	if err != nil {
		return false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return false, nil
}

// ListForUser returns a user's bookings joined with event and venue
// display data, ordered by event date and time ascending.
func (r *BookingRepository) ListForUser(ctx context.Context, userID string) ([]model.BookingView, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.event_id, e.title, e.date, e.time, v.name, b.seats, b.status,
		        b.seats * e.price, e.image_url, b.created_at
		 FROM bookings b
		 JOIN events e ON e.id = b.event_id
		 JOIN venues v ON v.id = e.venue_id
		 WHERE b.user_id = $1
		 ORDER BY e.date, e.time`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var views []model.BookingView
	for rows.Next() {
		var (
			view      model.BookingView
			date      time.Time
			createdAt time.Time
		)
		if err := rows.Scan(&view.ID, &view.EventID, &view.EventTitle, &date, &view.EventTime,
			&view.VenueName, &view.Seats, &view.Status, &view.TotalPrice, &view.EventImage, &createdAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		view.EventDate = date.Format(model.DateFormat)
		view.CreatedAt = createdAt.Format(time.DateTime)
		views = append(views, view)
	}
	return views, rows.Err()
}

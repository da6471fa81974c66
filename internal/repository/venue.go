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

// VenueRepository handles persistence for venues.
type VenueRepository struct {
	db *pgxpool.Pool
}

// NewVenueRepository constructs a VenueRepository.
func NewVenueRepository(db *pgxpool.Pool) *VenueRepository {
	return &VenueRepository{db: db}
}

// Create inserts a new venue and returns it with a generated UUID.
func (r *VenueRepository) Create(ctx context.Context, req model.CreateVenueRequest) (*model.Venue, error) {
	venue := &model.Venue{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Capacity:    req.Capacity,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO venues (id, name, address, description, capacity, latitude, longitude, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		venue.ID, venue.Name, venue.Address, venue.Description, venue.Capacity,
		venue.Latitude, venue.Longitude, venue.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert venue: %w", err)
	}
	return venue, nil
}

const venueColumns = `id, name, address, description, capacity, latitude, longitude, created_at`

// GetByID returns a single venue or ErrNotFound.
func (r *VenueRepository) GetByID(ctx context.Context, id string) (*model.Venue, error) {
	var v model.Venue
	err := r.db.QueryRow(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE id = $1`, id,
	).Scan(&v.ID, &v.Name, &v.Address, &v.Description, &v.Capacity, &v.Latitude, &v.Longitude, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return &v, nil
}

// GetDetail returns a venue together with the events it hosts and their
// seat availability.
func (r *VenueRepository) GetDetail(ctx context.Context, id string) (*model.VenueDetail, error) {
	venue, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT e.id, e.title, e.type, e.status, e.date, e.time, e.total_seats, e.price,
		        e.total_seats - COALESCE(SUM(b.seats) FILTER (WHERE b.status = 'confirmed'), 0)
		 FROM events e
		 LEFT JOIN bookings b ON b.event_id = e.id
		 WHERE e.venue_id = $1
		 GROUP BY e.id
		 ORDER BY e.date, e.time`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list venue events: %w", err)
	}
	defer rows.Close()

	detail := &model.VenueDetail{Venue: *venue, Events: []model.EventSummary{}}
	for rows.Next() {
		var (
			s    model.EventSummary
			date time.Time
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Type, &s.Status, &date, &s.Time, &s.TotalSeats, &s.Price, &s.AvailableSeats); err != nil {
			return nil, fmt.Errorf("scan venue event: %w", err)
		}
		s.Date = date.Format(model.DateFormat)
		s.VenueID = venue.ID
		s.VenueName = venue.Name
		detail.Events = append(detail.Events, s)
	}
	return detail, rows.Err()
}

// List returns all venues ordered by name.
func (r *VenueRepository) List(ctx context.Context) ([]model.Venue, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+venueColumns+` FROM venues ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var venues []model.Venue
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.Description, &v.Capacity, &v.Latitude, &v.Longitude, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

// Update writes back a full venue row.
func (r *VenueRepository) Update(ctx context.Context, v model.Venue) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE venues SET name = $2, address = $3, description = $4, capacity = $5, latitude = $6, longitude = $7
		 WHERE id = $1`,
		v.ID, v.Name, v.Address, v.Description, v.Capacity, v.Latitude, v.Longitude,
	)
	if err != nil {
		return fmt.Errorf("update venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a venue. It fails with ErrVenueInUse while any event
// still references the venue, so events are never orphaned implicitly.
func (r *VenueRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var eventCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM events WHERE venue_id = $1`, id,
	).Scan(&eventCount)
	if err != nil {
		return fmt.Errorf("count venue events: %w", err)
	}
	if eventCount > 0 {
		return ErrVenueInUse
	}

	tag, err := tx.Exec(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

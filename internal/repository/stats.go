package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"quicket/internal/model"
)

// StatsRepository runs the aggregate queries behind the admin dashboard.
type StatsRepository struct {
	db *pgxpool.Pool
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) countBy(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("stats query: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

// BookingStats aggregates totals, per-status and per-day counts for the
// last 30 days, and the five most-booked events.
func (r *StatsRepository) BookingStats(ctx context.Context) (*model.BookingStats, error) {
	stats := &model.BookingStats{TopEvents: []model.EventCount{}}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&stats.TotalBookings); err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	var err error
	stats.StatusStats, err = r.countBy(ctx,
		`SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, err
	}

	stats.DailyStats, err = r.countBy(ctx,
		`SELECT to_char(created_at, 'YYYY-MM-DD'), COUNT(*)
		 FROM bookings
		 WHERE created_at >= now() - interval '30 days'
		 GROUP BY 1`)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT e.id, e.title, COUNT(b.id) AS bookings_count
		 FROM events e
		 JOIN bookings b ON b.event_id = e.id
		 GROUP BY e.id, e.title
		 ORDER BY bookings_count DESC
		 LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("top events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ec model.EventCount
		if err := rows.Scan(&ec.ID, &ec.Title, &ec.BookingsCount); err != nil {
			return nil, fmt.Errorf("scan top event: %w", err)
		}
		stats.TopEvents = append(stats.TopEvents, ec)
	}
	return stats, rows.Err()
}

// EventStats aggregates totals, per-type and per-status counts, and the
// five busiest venues.
func (r *StatsRepository) EventStats(ctx context.Context) (*model.EventStats, error) {
	stats := &model.EventStats{VenueStats: []model.VenueCount{}}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&stats.TotalEvents); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	var err error
	stats.TypeStats, err = r.countBy(ctx,
		`SELECT type, COUNT(*) FROM events GROUP BY type`)
	if err != nil {
		return nil, err
	}
	stats.StatusStats, err = r.countBy(ctx,
		`SELECT status, COUNT(*) FROM events GROUP BY status`)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT v.id, v.name, COUNT(e.id) AS events_count
		 FROM venues v
		 JOIN events e ON e.venue_id = v.id
		 GROUP BY v.id, v.name
		 ORDER BY events_count DESC
		 LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("top venues: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var vc model.VenueCount
		if err := rows.Scan(&vc.ID, &vc.Name, &vc.EventsCount); err != nil {
			return nil, fmt.Errorf("scan top venue: %w", err)
		}
		stats.VenueStats = append(stats.VenueStats, vc)
	}
	return stats, rows.Err()
}

// UserStats aggregates totals, admin count, the five most active bookers,
// and registrations per month.
func (r *StatsRepository) UserStats(ctx context.Context) (*model.UserStats, error) {
	stats := &model.UserStats{TopUsers: []model.UserCount{}}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&stats.AdminCount); err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}

	var err error
	stats.MonthlyStats, err = r.countBy(ctx,
		`SELECT to_char(created_at, 'YYYY-MM'), COUNT(*) FROM users GROUP BY 1`)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.username, COUNT(b.id) AS bookings_count
		 FROM users u
		 JOIN bookings b ON b.user_id = u.id
		 GROUP BY u.id, u.username
		 ORDER BY bookings_count DESC
		 LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var uc model.UserCount
		if err := rows.Scan(&uc.ID, &uc.Username, &uc.BookingsCount); err != nil {
			return nil, fmt.Errorf("scan top user: %w", err)
		}
		stats.TopUsers = append(stats.TopUsers, uc)
	}
	return stats, rows.Err()
}

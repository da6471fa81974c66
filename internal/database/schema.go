package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema lists the DDL statements applied at startup. Statements are
// idempotent so a restart against an existing database is a no-op.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS venues (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		capacity INT NOT NULL,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'upcoming',
		venue_id UUID NOT NULL REFERENCES venues(id),
		date DATE NOT NULL,
		time TEXT NOT NULL,
		duration INT NOT NULL DEFAULT 60,
		total_seats INT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		event_subtype TEXT,
		image_url TEXT,
		background_music_url TEXT,
		organizer TEXT,
		featured BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS event_media (
		id UUID PRIMARY KEY,
		event_id UUID NOT NULL REFERENCES events(id),
		media_type TEXT NOT NULL,
		media_url TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		event_id UUID NOT NULL REFERENCES events(id),
		seats INT NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'confirmed',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		notification_type TEXT NOT NULL,
		read BOOLEAN NOT NULL DEFAULT false,
		related_id UUID,
		action_link TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_venue ON events (venue_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_event ON bookings (event_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, read)`,
}

// EnsureSchema creates all tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

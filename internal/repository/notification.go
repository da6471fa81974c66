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

// NotificationRepository handles persistence for the per-user inbox.
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// insertNotification appends one inbox entry within an existing transaction.
// All notification writes triggered by booking or event state changes go
// through here so they commit or roll back with the triggering mutation.
func insertNotification(ctx context.Context, tx pgx.Tx, n model.Notification) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO notifications (id, user_id, title, message, notification_type, read, related_id, action_link, created_at)
		 VALUES ($1, $2, $3, $4, $5, false, $6, $7, $8)`,
		uuid.New().String(), n.UserID, n.Title, n.Message, n.Type, n.RelatedID, n.ActionLink, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

const notificationColumns = `id, user_id, title, message, notification_type, read, related_id, action_link, created_at`

func scanNotification(row pgx.Row) (*model.Notification, error) {
	var n model.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.RelatedID, &n.ActionLink, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	return &n, nil
}

// GetByID returns a single notification or ErrNotFound.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	return scanNotification(row)
}

// List returns a page of a user's notifications, newest first, plus the
// total count matching the filter. When q.Limit > 0 a flat limit-bounded
// fetch is used; otherwise page/per-page pagination applies.
func (r *NotificationRepository) List(ctx context.Context, userID string, q model.NotificationQuery) ([]model.Notification, int, error) {
	where := `WHERE user_id = $1`
	if q.UnreadOnly {
		where += ` AND read = false`
	}

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications `+where, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications ` + where +
		` ORDER BY created_at DESC`
	args := []any{userID}
	if q.Limit > 0 {
		query += ` LIMIT $2`
		args = append(args, q.Limit)
		if total > q.Limit {
			total = q.Limit
		}
	} else {
		page, perPage := q.Page, q.PerPage
		if page < 1 {
			page = 1
		}
		if perPage < 1 {
			perPage = 10
		}
		query += ` OFFSET $2 LIMIT $3`
		args = append(args, (page-1)*perPage, perPage)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.RelatedID, &n.ActionLink, &n.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

// UnreadCount returns how many unread notifications a user has.
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flags one notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of a user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`, userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// Delete removes a notification.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

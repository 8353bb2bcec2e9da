package notification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles notification data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new notification repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new notification into the database
func (r *Repository) Create(ctx context.Context, receiptID uuid.UUID, kind Kind, message string) (*Notification, error) {
	query := `
		INSERT INTO notifications (receipt_id, kind, message)
		VALUES ($1, $2, $3)
		RETURNING id, receipt_id, kind, message, is_read, created_at
	`

	notification := &Notification{}
	err := r.db.QueryRowContext(ctx, query, receiptID, string(kind), message).Scan(
		&notification.ID,
		&notification.ReceiptID,
		&notification.Kind,
		&notification.Message,
		&notification.IsRead,
		&notification.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return notification, nil
}

// GetByID retrieves a notification by its ID. Returns nil when it does not
// exist.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Notification, error) {
	query := `
		SELECT id, receipt_id, kind, message, is_read, created_at
		FROM notifications
		WHERE id = $1
	`

	notification := &Notification{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&notification.ID,
		&notification.ReceiptID,
		&notification.Kind,
		&notification.Message,
		&notification.IsRead,
		&notification.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return notification, nil
}

// ListByReceiptID retrieves notifications for a receipt, newest first
func (r *Repository) ListByReceiptID(ctx context.Context, receiptID uuid.UUID, unreadOnly bool) ([]*Notification, error) {
	query := `
		SELECT id, receipt_id, kind, message, is_read, created_at
		FROM notifications
		WHERE receipt_id = $1
	`
	if unreadOnly {
		query += ` AND is_read = false`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		notification := &Notification{}
		if err := rows.Scan(
			&notification.ID,
			&notification.ReceiptID,
			&notification.Kind,
			&notification.Message,
			&notification.IsRead,
			&notification.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}

	return notifications, nil
}

// HasUnread reports whether an unread notification of the given kind already
// exists for the receipt
func (r *Repository) HasUnread(ctx context.Context, receiptID uuid.UUID, kind Kind) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE receipt_id = $1 AND kind = $2 AND is_read = false
	`
	if err := r.db.QueryRowContext(ctx, query, receiptID, string(kind)).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count > 0, nil
}

// MarkAsRead marks a notification as read
func (r *Repository) MarkAsRead(ctx context.Context, id int64) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// Store is the persistence surface the service needs
type Store interface {
	Create(ctx context.Context, receiptID uuid.UUID, kind Kind, message string) (*Notification, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListByReceiptID(ctx context.Context, receiptID uuid.UUID, unreadOnly bool) ([]*Notification, error)
	HasUnread(ctx context.Context, receiptID uuid.UUID, kind Kind) (bool, error)
	MarkAsRead(ctx context.Context, id int64) error
}

// Service handles notification business logic
type Service struct {
	store Store
}

// NewService creates a new notification service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ReceiptFullyAssigned records the fully-assigned notification for a receipt.
// Repeated completeness checks must not spam the owner, so nothing is created
// while an unread notification of the same kind is still pending.
func (s *Service) ReceiptFullyAssigned(ctx context.Context, receiptID uuid.UUID) error {
	pending, err := s.store.HasUnread(ctx, receiptID, KindFullyAssigned)
	if err != nil {
		return err
	}
	if pending {
		return nil
	}

	_, err = s.store.Create(ctx, receiptID, KindFullyAssigned,
		"Every item on your receipt has been claimed")
	return err
}

// ListByReceiptID retrieves notifications for a receipt
func (s *Service) ListByReceiptID(ctx context.Context, receiptID uuid.UUID, unreadOnly bool) ([]*Notification, error) {
	return s.store.ListByReceiptID(ctx, receiptID, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id int64) error {
	notification, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	return s.store.MarkAsRead(ctx, id)
}

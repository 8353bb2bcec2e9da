package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification tells the receipt owner something happened on their receipt
type Notification struct {
	ID        int64     `json:"id"`
	ReceiptID uuid.UUID `json:"receipt_id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Kind classifies a notification
type Kind string

const (
	// KindFullyAssigned fires when the owner marked assignment complete and
	// every item's claimed quantity covers its total.
	KindFullyAssigned Kind = "RECEIPT_FULLY_ASSIGNED"
)

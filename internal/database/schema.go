package database

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Receipts
CREATE TABLE IF NOT EXISTS receipts (
    id UUID PRIMARY KEY,
    title TEXT NOT NULL,
    marked_complete BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

-- Line items, ordered by index within their receipt
CREATE TABLE IF NOT EXISTS receipt_items (
    receipt_id UUID NOT NULL REFERENCES receipts(id) ON DELETE CASCADE,
    idx INTEGER NOT NULL,
    quantity INTEGER NOT NULL,
    label TEXT NOT NULL,
    unit_price NUMERIC(12, 4) NOT NULL,
    PRIMARY KEY (receipt_id, idx)
);

-- Receipt-level charges (tax, tip, subtotal, total)
CREATE TABLE IF NOT EXISTS receipt_charges (
    receipt_id UUID NOT NULL REFERENCES receipts(id) ON DELETE CASCADE,
    idx INTEGER NOT NULL,
    kind TEXT NOT NULL,
    amount NUMERIC(12, 4) NOT NULL,
    PRIMARY KEY (receipt_id, idx)
);

-- Contributor claims against line items
CREATE TABLE IF NOT EXISTS contributions (
    receipt_id UUID NOT NULL REFERENCES receipts(id) ON DELETE CASCADE,
    item_index INTEGER NOT NULL,
    position INTEGER NOT NULL,
    contributor TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    PRIMARY KEY (receipt_id, item_index, position)
);

CREATE INDEX IF NOT EXISTS idx_contributions_receipt ON contributions(receipt_id);

-- Notifications
CREATE TABLE IF NOT EXISTS notifications (
    id BIGSERIAL PRIMARY KEY,
    receipt_id UUID NOT NULL REFERENCES receipts(id) ON DELETE CASCADE,
    kind TEXT NOT NULL,
    message TEXT NOT NULL,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notifications_receipt ON notifications(receipt_id);
`

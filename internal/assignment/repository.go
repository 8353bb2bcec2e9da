package assignment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository persists contribution snapshots per receipt
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new assignment repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Load reads all contributions for a receipt, grouped by item index in
// insertion order
func (r *Repository) Load(ctx context.Context, receiptID uuid.UUID) ([][]Contribution, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT item_index, contributor, quantity
		FROM contributions
		WHERE receipt_id = $1
		ORDER BY item_index, position
	`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contributions: %w", err)
	}
	defer rows.Close()

	var claims [][]Contribution
	for rows.Next() {
		var itemIndex int
		var c Contribution
		if err := rows.Scan(&itemIndex, &c.Contributor, &c.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		for len(claims) <= itemIndex {
			claims = append(claims, nil)
		}
		claims[itemIndex] = append(claims[itemIndex], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read contributions: %w", err)
	}

	return claims, nil
}

// Save replaces the receipt's contributions with the given snapshot in one
// transaction, so readers see either the old table or the new one, never a
// half-applied mutation.
func (r *Repository) Save(ctx context.Context, receiptID uuid.UUID, claims [][]Contribution) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM contributions WHERE receipt_id = $1
	`, receiptID); err != nil {
		return fmt.Errorf("failed to clear contributions: %w", err)
	}

	for itemIndex, cs := range claims {
		for position, c := range cs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO contributions (receipt_id, item_index, position, contributor, quantity)
				VALUES ($1, $2, $3, $4, $5)
			`, receiptID, itemIndex, position, c.Contributor, c.Quantity); err != nil {
				return fmt.Errorf("failed to save contribution: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit contributions: %w", err)
	}
	return nil
}

var _ Store = (*Repository)(nil)

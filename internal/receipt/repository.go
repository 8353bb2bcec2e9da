package receipt

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ameliang/tabsplit/internal/assignment/split"
)

// Repository handles receipt, line item and summary charge persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new receipt repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a receipt with its items and charges in one transaction
func (r *Repository) Create(ctx context.Context, title string, items []split.Item, charges []split.Charge) (*Receipt, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	receipt := &Receipt{Title: title, Items: items, Charges: charges}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO receipts (id, title)
		VALUES ($1, $2)
		RETURNING id, title, marked_complete, created_at
	`, uuid.New(), title).Scan(
		&receipt.ID,
		&receipt.Title,
		&receipt.MarkedComplete,
		&receipt.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt: %w", err)
	}

	for i, item := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO receipt_items (receipt_id, idx, quantity, label, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, receipt.ID, i, item.Quantity, item.Label, item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to create line item %d: %w", i, err)
		}
	}

	for i, charge := range charges {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO receipt_charges (receipt_id, idx, kind, amount)
			VALUES ($1, $2, $3, $4)
		`, receipt.ID, i, string(charge.Kind), charge.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to create charge %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit receipt: %w", err)
	}

	return receipt, nil
}

// GetByID retrieves a receipt with its items and charges. Returns nil when the
// receipt does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Receipt, error) {
	receipt := &Receipt{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, marked_complete, created_at
		FROM receipts
		WHERE id = $1
	`, id).Scan(
		&receipt.ID,
		&receipt.Title,
		&receipt.MarkedComplete,
		&receipt.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT quantity, label, unit_price
		FROM receipt_items
		WHERE receipt_id = $1
		ORDER BY idx
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item split.Item
		if err := rows.Scan(&item.Quantity, &item.Label, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		receipt.Items = append(receipt.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read line items: %w", err)
	}

	chargeRows, err := r.db.QueryContext(ctx, `
		SELECT kind, amount
		FROM receipt_charges
		WHERE receipt_id = $1
		ORDER BY idx
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get charges: %w", err)
	}
	defer chargeRows.Close()

	for chargeRows.Next() {
		var charge split.Charge
		var kind string
		if err := chargeRows.Scan(&kind, &charge.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan charge: %w", err)
		}
		charge.Kind = split.ChargeKind(kind)
		receipt.Charges = append(receipt.Charges, charge)
	}
	if err := chargeRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read charges: %w", err)
	}

	return receipt, nil
}

// List retrieves receipt headers (no items or charges), newest first
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Receipt, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count receipts: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, marked_complete, created_at
		FROM receipts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*Receipt
	for rows.Next() {
		receipt := &Receipt{}
		if err := rows.Scan(
			&receipt.ID,
			&receipt.Title,
			&receipt.MarkedComplete,
			&receipt.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, receipt)
	}

	return receipts, total, nil
}

// SetMarkedComplete flips the external assignments-complete flag. Returns
// false when the receipt does not exist.
func (r *Repository) SetMarkedComplete(ctx context.Context, id uuid.UUID, complete bool) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE receipts SET marked_complete = $2 WHERE id = $1
	`, id, complete)
	if err != nil {
		return false, fmt.Errorf("failed to update receipt: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check update: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a receipt; items, charges and contributions cascade. Returns
// false when the receipt does not exist.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete receipt: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete: %w", err)
	}
	return affected > 0, nil
}

package receipt

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ameliang/tabsplit/internal/assignment/split"
	"github.com/ameliang/tabsplit/internal/receipt/parse"
)

// Common errors
var (
	ErrReceiptNotFound   = errors.New("receipt not found")
	ErrNoLineItems       = errors.New("receipt must have at least one line item")
	ErrInvalidQuantity   = errors.New("line item quantity must be positive")
	ErrNegativePrice     = errors.New("line item unit price cannot be negative")
	ErrInvalidChargeKind = errors.New("unknown summary charge kind")
	ErrNegativeCharge    = errors.New("summary charge amount cannot be negative")
)

// Store is the persistence surface the service needs
type Store interface {
	Create(ctx context.Context, title string, items []split.Item, charges []split.Charge) (*Receipt, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Receipt, error)
	List(ctx context.Context, limit, offset int) ([]*Receipt, int, error)
	SetMarkedComplete(ctx context.Context, id uuid.UUID, complete bool) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service handles receipt business logic. It is the boundary where loosely
// shaped input (raw text, request JSON) becomes validated typed data; nothing
// downstream re-validates prices or quantities.
type Service struct {
	store Store
}

// NewService creates a new receipt service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create builds a receipt from the request, parsing raw text when provided
func (s *Service) Create(ctx context.Context, req *CreateReceiptRequest) (*Receipt, error) {
	var items []split.Item
	var charges []split.Charge

	if req.RawText != "" {
		var err error
		items, charges, err = parse.Receipt(req.RawText)
		if err != nil {
			return nil, err
		}
	} else {
		items = make([]split.Item, len(req.Items))
		for i, in := range req.Items {
			items[i] = split.Item{Quantity: in.Quantity, Label: in.Label, UnitPrice: in.UnitPrice}
		}
		charges = make([]split.Charge, len(req.Charges))
		for i, in := range req.Charges {
			charges[i] = split.Charge{Kind: in.Kind, Amount: in.Amount}
		}
	}

	if err := validateLedger(items, charges); err != nil {
		return nil, err
	}

	return s.store.Create(ctx, req.Title, items, charges)
}

// GetByID retrieves a receipt with its items and charges
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Receipt, error) {
	receipt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, ErrReceiptNotFound
	}
	return receipt, nil
}

// List retrieves receipt headers with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Receipt, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.List(ctx, perPage, offset)
}

// MarkComplete records the owner's claim that assignment is finished. Whether
// that claim holds up against the actual coverage is the completeness check's
// business, not this flag's.
func (s *Service) MarkComplete(ctx context.Context, id uuid.UUID) (*Receipt, error) {
	found, err := s.store.SetMarkedComplete(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrReceiptNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes a receipt and everything hanging off it
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrReceiptNotFound
	}
	return nil
}

// Ledger returns the calculator-facing view of a receipt: its items, charges
// and the external assignments-complete flag.
func (s *Service) Ledger(ctx context.Context, id uuid.UUID) ([]split.Item, []split.Charge, bool, error) {
	receipt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, false, err
	}
	return receipt.Items, receipt.Charges, receipt.MarkedComplete, nil
}

// validateLedger enforces the boundary invariants: positive quantities,
// non-negative decimals, known charge kinds.
func validateLedger(items []split.Item, charges []split.Charge) error {
	if len(items) == 0 {
		return ErrNoLineItems
	}
	for i, item := range items {
		if item.Quantity < 1 {
			return fmt.Errorf("item %d (%q): %w", i, item.Label, ErrInvalidQuantity)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("item %d (%q): %w", i, item.Label, ErrNegativePrice)
		}
	}
	for i, charge := range charges {
		if !ValidChargeKinds[charge.Kind] {
			return fmt.Errorf("charge %d (%s): %w", i, charge.Kind, ErrInvalidChargeKind)
		}
		if charge.Amount.IsNegative() {
			return fmt.Errorf("charge %d (%s): %w", i, charge.Kind, ErrNegativeCharge)
		}
	}
	return nil
}

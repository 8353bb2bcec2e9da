package receipt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ameliang/tabsplit/internal/assignment/split"
)

// fakeStore is an in-memory Store for service tests
type fakeStore struct {
	receipts map[uuid.UUID]*Receipt
}

func newFakeStore() *fakeStore {
	return &fakeStore{receipts: make(map[uuid.UUID]*Receipt)}
}

func (f *fakeStore) Create(_ context.Context, title string, items []split.Item, charges []split.Charge) (*Receipt, error) {
	receipt := &Receipt{
		ID:        uuid.New(),
		Title:     title,
		Items:     items,
		Charges:   charges,
		CreatedAt: time.Now(),
	}
	f.receipts[receipt.ID] = receipt
	return receipt, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*Receipt, error) {
	return f.receipts[id], nil
}

func (f *fakeStore) List(_ context.Context, limit, offset int) ([]*Receipt, int, error) {
	var all []*Receipt
	for _, r := range f.receipts {
		all = append(all, r)
	}
	return all, len(all), nil
}

func (f *fakeStore) SetMarkedComplete(_ context.Context, id uuid.UUID, complete bool) (bool, error) {
	r, ok := f.receipts[id]
	if !ok {
		return false, nil
	}
	r.MarkedComplete = complete
	return true, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.receipts[id]; !ok {
		return false, nil
	}
	delete(f.receipts, id)
	return true, nil
}

func TestCreateValidatesAtTheBoundary(t *testing.T) {
	price := decimal.NewFromFloat(2.50)

	tests := []struct {
		name    string
		req     CreateReceiptRequest
		wantErr error
	}{
		{
			name:    "no items",
			req:     CreateReceiptRequest{Title: "Lunch"},
			wantErr: ErrNoLineItems,
		},
		{
			name: "zero quantity",
			req: CreateReceiptRequest{
				Title: "Lunch",
				Items: []LineItemInput{{Quantity: 0, Label: "Coffee", UnitPrice: price}},
			},
			wantErr: ErrInvalidQuantity,
		},
		{
			name: "negative price",
			req: CreateReceiptRequest{
				Title: "Lunch",
				Items: []LineItemInput{{Quantity: 1, Label: "Refund", UnitPrice: decimal.NewFromFloat(-1)}},
			},
			wantErr: ErrNegativePrice,
		},
		{
			name: "unknown charge kind",
			req: CreateReceiptRequest{
				Title:   "Lunch",
				Items:   []LineItemInput{{Quantity: 1, Label: "Coffee", UnitPrice: price}},
				Charges: []ChargeInput{{Kind: "SURCHARGE", Amount: price}},
			},
			wantErr: ErrInvalidChargeKind,
		},
		{
			name: "negative charge",
			req: CreateReceiptRequest{
				Title:   "Lunch",
				Items:   []LineItemInput{{Quantity: 1, Label: "Coffee", UnitPrice: price}},
				Charges: []ChargeInput{{Kind: split.ChargeKindTax, Amount: decimal.NewFromFloat(-0.5)}},
			},
			wantErr: ErrNegativeCharge,
		},
	}

	svc := NewService(newFakeStore())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateFromRawText(t *testing.T) {
	svc := NewService(newFakeStore())

	receipt, err := svc.Create(context.Background(), &CreateReceiptRequest{
		Title:   "Cafe run",
		RawText: "2 Coffee $2.50\nSandwich $5.00\nTax $0.75\n",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(receipt.Items) != 2 {
		t.Errorf("got %d items, want 2", len(receipt.Items))
	}
	if len(receipt.Charges) != 1 || receipt.Charges[0].Kind != split.ChargeKindTax {
		t.Errorf("got charges %+v, want a single tax charge", receipt.Charges)
	}
}

func TestMarkComplete(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), &CreateReceiptRequest{
		Title: "Lunch",
		Items: []LineItemInput{{Quantity: 1, Label: "Coffee", UnitPrice: decimal.NewFromFloat(2.50)}},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.MarkComplete(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("MarkComplete() error = %v", err)
	}
	if !got.MarkedComplete {
		t.Error("receipt not marked complete")
	}

	if _, err := svc.MarkComplete(context.Background(), uuid.New()); !errors.Is(err, ErrReceiptNotFound) {
		t.Errorf("MarkComplete(unknown) error = %v, want ErrReceiptNotFound", err)
	}
}

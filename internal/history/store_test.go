package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ameliang/tabsplit/internal/assignment/split"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleBreakdown() *split.Breakdown {
	return &split.Breakdown{
		Contributors: []split.ContributorShare{
			{
				Contributor: "Alice",
				Lines: []split.Line{
					{
						ItemLabel:       "Coffee",
						ClaimedQuantity: 1,
						BaseCost:        decimal.RequireFromString("2.50"),
						TaxShare:        decimal.RequireFromString("0.1875"),
						TipShare:        decimal.RequireFromString("0.25"),
					},
				},
				TotalOwed: decimal.RequireFromString("2.9375"),
			},
		},
		Basis:    decimal.RequireFromString("10.00"),
		TaxTotal: decimal.RequireFromString("0.75"),
		TipTotal: decimal.RequireFromString("1.00"),
	}
}

func TestSaveAndGetSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	receiptID := uuid.New()

	snapshotID, err := store.SaveBreakdown(ctx, receiptID, sampleBreakdown())
	if err != nil {
		t.Fatalf("SaveBreakdown() error = %v", err)
	}

	got, err := store.Get(ctx, receiptID, snapshotID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	// Stored verbatim: the exact figures come back, not re-derived ones.
	if got.ReceiptID != receiptID {
		t.Errorf("ReceiptID = %s, want %s", got.ReceiptID, receiptID)
	}
	alice := got.Breakdown.Contributors[0]
	if alice.Contributor != "Alice" {
		t.Errorf("contributor = %q, want Alice", alice.Contributor)
	}
	if !alice.TotalOwed.Equal(decimal.RequireFromString("2.9375")) {
		t.Errorf("TotalOwed = %s, want 2.9375 at full precision", alice.TotalOwed)
	}
	if !alice.Lines[0].TaxShare.Equal(decimal.RequireFromString("0.1875")) {
		t.Errorf("TaxShare = %s, want 0.1875 at full precision", alice.Lines[0].TaxShare)
	}
}

func TestGetMissingSnapshot(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("Get() error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestListByReceipt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	receiptID := uuid.New()
	otherID := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := store.SaveBreakdown(ctx, receiptID, sampleBreakdown()); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.SaveBreakdown(ctx, otherID, sampleBreakdown()); err != nil {
		t.Fatal(err)
	}

	snapshots, err := store.ListByReceipt(ctx, receiptID)
	if err != nil {
		t.Fatalf("ListByReceipt() error = %v", err)
	}
	if len(snapshots) != 3 {
		t.Errorf("got %d snapshots, want 3", len(snapshots))
	}
	for _, s := range snapshots {
		if s.ReceiptID != receiptID {
			t.Errorf("snapshot %s belongs to %s, want %s", s.ID, s.ReceiptID, receiptID)
		}
	}
}

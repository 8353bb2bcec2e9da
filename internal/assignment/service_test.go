package assignment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ameliang/tabsplit/internal/assignment/split"
)

type fakeStore struct {
	claims map[uuid.UUID][][]Contribution
}

func newFakeStore() *fakeStore {
	return &fakeStore{claims: make(map[uuid.UUID][][]Contribution)}
}

func (f *fakeStore) Load(_ context.Context, receiptID uuid.UUID) ([][]Contribution, error) {
	return f.claims[receiptID], nil
}

func (f *fakeStore) Save(_ context.Context, receiptID uuid.UUID, claims [][]Contribution) error {
	f.claims[receiptID] = claims
	return nil
}

type fakeLedger struct {
	items   []split.Item
	charges []split.Charge
	marked  bool
	err     error
}

func (f *fakeLedger) Ledger(_ context.Context, _ uuid.UUID) ([]split.Item, []split.Charge, bool, error) {
	if f.err != nil {
		return nil, nil, false, f.err
	}
	return f.items, f.charges, f.marked, nil
}

type fakeHistory struct {
	saved []*split.Breakdown
}

func (f *fakeHistory) SaveBreakdown(_ context.Context, _ uuid.UUID, b *split.Breakdown) (uuid.UUID, error) {
	f.saved = append(f.saved, b)
	return uuid.New(), nil
}

type fakeNotifier struct {
	fired int
}

func (f *fakeNotifier) ReceiptFullyAssigned(_ context.Context, _ uuid.UUID) error {
	f.fired++
	return nil
}

func ledgerItems() []split.Item {
	return []split.Item{
		{Quantity: 2, Label: "Coffee", UnitPrice: decimal.NewFromFloat(2.50)},
		{Quantity: 1, Label: "Sandwich", UnitPrice: decimal.NewFromFloat(5.00)},
	}
}

func TestServiceAddPersistsSnapshot(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeLedger{items: ledgerItems()}, nil, nil)
	receiptID := uuid.New()

	claims, err := svc.Add(context.Background(), receiptID, 0, "Alice", 1)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(claims[0]) != 1 || claims[0][0].Contributor != "Alice" {
		t.Errorf("returned snapshot = %+v, want Alice's claim on item 0", claims)
	}

	stored := store.claims[receiptID]
	if len(stored) == 0 || len(stored[0]) != 1 {
		t.Errorf("stored snapshot = %+v, want Alice's claim persisted", stored)
	}
}

func TestServiceAddRejectionDoesNotPersist(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeLedger{items: ledgerItems()}, nil, nil)
	receiptID := uuid.New()

	if _, err := svc.Add(context.Background(), receiptID, 1, "Alice", 1); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Add(context.Background(), receiptID, 1, "Bob", 1)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Add() error = %v, want *ValidationError", err)
	}

	stored := store.claims[receiptID]
	if len(stored[1]) != 1 || stored[1][0].Contributor != "Alice" {
		t.Errorf("stored snapshot after rejection = %+v, want only Alice's claim", stored[1])
	}
}

func TestServiceUpdateMergesPartialFields(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeLedger{items: ledgerItems()}, nil, nil)
	receiptID := uuid.New()

	if _, err := svc.Add(context.Background(), receiptID, 0, "Alice", 1); err != nil {
		t.Fatal(err)
	}

	quantity := 2
	claims, err := svc.Update(context.Background(), receiptID, 0, 0, nil, &quantity)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got := claims[0][0]
	if got.Contributor != "Alice" || got.Quantity != 2 {
		t.Errorf("after quantity-only update = %+v, want Alice/2", got)
	}
}

func TestServicePropagatesLedgerErrors(t *testing.T) {
	ledgerErr := errors.New("receipt not found")
	svc := NewService(newFakeStore(), &fakeLedger{err: ledgerErr}, nil, nil)

	if _, err := svc.Add(context.Background(), uuid.New(), 0, "Alice", 1); !errors.Is(err, ledgerErr) {
		t.Errorf("Add() error = %v, want ledger error", err)
	}
}

func TestServiceFullyAssignedPolicies(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeLedger{items: ledgerItems()}, nil, nil)
	receiptID := uuid.New()

	// One claim per item, but the coffee's second unit stays unclaimed.
	svc.Add(context.Background(), receiptID, 0, "Alice", 1)
	svc.Add(context.Background(), receiptID, 1, "Bob", 1)

	anyClaim, policy, err := svc.FullyAssigned(context.Background(), receiptID, "")
	if err != nil {
		t.Fatalf("FullyAssigned() error = %v", err)
	}
	if !anyClaim || policy != PolicyAnyClaim {
		t.Errorf("default policy: assigned = %v policy = %s, want true/%s", anyClaim, policy, PolicyAnyClaim)
	}

	exact, policy, err := svc.FullyAssigned(context.Background(), receiptID, string(PolicyExactQuantity))
	if err != nil {
		t.Fatalf("FullyAssigned(exact) error = %v", err)
	}
	if exact || policy != PolicyExactQuantity {
		t.Errorf("exact policy: assigned = %v, want false with an unclaimed unit", exact)
	}

	if _, _, err := svc.FullyAssigned(context.Background(), receiptID, "NONSENSE"); err == nil {
		t.Error("FullyAssigned(NONSENSE) succeeded, want error")
	}
}

func TestServiceBreakdownSavesSnapshot(t *testing.T) {
	store := newFakeStore()
	history := &fakeHistory{}
	ledger := &fakeLedger{
		items: ledgerItems(),
		charges: []split.Charge{
			{Kind: split.ChargeKindTax, Amount: decimal.NewFromFloat(0.75)},
			{Kind: split.ChargeKindTip, Amount: decimal.NewFromFloat(1.00)},
		},
	}
	svc := NewService(store, ledger, history, nil)
	receiptID := uuid.New()

	svc.Add(context.Background(), receiptID, 0, "Alice", 1)
	svc.Add(context.Background(), receiptID, 0, "Bob", 1)
	svc.Add(context.Background(), receiptID, 1, "Alice", 1)

	breakdown, snapshotID, err := svc.Breakdown(context.Background(), receiptID)
	if err != nil {
		t.Fatalf("Breakdown() error = %v", err)
	}
	if snapshotID == uuid.Nil {
		t.Error("snapshot id is nil although a history store is wired")
	}
	if len(history.saved) != 1 {
		t.Fatalf("history has %d snapshots, want 1", len(history.saved))
	}

	if got := breakdown.Contributors[0].TotalOwed.Round(2); !got.Equal(decimal.NewFromFloat(8.81)) {
		t.Errorf("Alice owes %s, want 8.81", got)
	}
}

// slowStore widens the window between loading a snapshot and saving the
// mutated one, the interleaving concurrent HTTP requests produce.
type slowStore struct {
	*fakeStore
}

func (s *slowStore) Load(ctx context.Context, receiptID uuid.UUID) ([][]Contribution, error) {
	claims, err := s.fakeStore.Load(ctx, receiptID)
	time.Sleep(time.Millisecond)
	return claims, err
}

func TestServiceConcurrentAddsAgainstOneReceipt(t *testing.T) {
	// Many requests race claims for the single unit of one item. Without
	// cross-request serialization each one validates against the same
	// pre-mutation snapshot: all are acknowledged and all but the last saved
	// claim vanish. Exactly one may succeed; the rest get ValidationError.
	store := &slowStore{fakeStore: newFakeStore()}
	items := []split.Item{{Quantity: 1, Label: "Pie", UnitPrice: decimal.NewFromFloat(4.00)}}
	svc := NewService(store, &fakeLedger{items: items}, nil, nil)
	receiptID := uuid.New()

	contributors := []string{"Alice", "Bob", "Cara", "Dan"}
	var wg sync.WaitGroup
	accepted := make(chan string, len(contributors))
	for _, name := range contributors {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := svc.Add(context.Background(), receiptID, 0, name, 1)
			if err == nil {
				accepted <- name
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("%s: Add() error = %v, want *ValidationError", name, err)
			}
		}(name)
	}
	wg.Wait()
	close(accepted)

	wins := 0
	for range accepted {
		wins++
	}
	if wins != 1 {
		t.Errorf("accepted %d concurrent claims, want exactly 1", wins)
	}

	stored := store.claims[receiptID]
	total := 0
	for _, c := range stored[0] {
		total += c.Quantity
	}
	if total != 1 {
		t.Errorf("stored claimed total = %d, want 1", total)
	}
}

func TestServiceNotifiesOnceCoverageReached(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	ledger := &fakeLedger{items: ledgerItems(), marked: true}
	svc := NewService(store, ledger, nil, notifier)
	receiptID := uuid.New()

	svc.Add(context.Background(), receiptID, 0, "Alice", 2)
	if notifier.fired != 0 {
		t.Errorf("notified with an uncovered item, fired = %d", notifier.fired)
	}

	svc.Add(context.Background(), receiptID, 1, "Bob", 1)
	if notifier.fired != 1 {
		t.Errorf("fired = %d after full coverage, want 1", notifier.fired)
	}
}

func TestServiceNotifyIfCompleteRespectsFlag(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	ledger := &fakeLedger{items: ledgerItems(), marked: false}
	svc := NewService(store, ledger, nil, notifier)
	receiptID := uuid.New()

	svc.Add(context.Background(), receiptID, 0, "Alice", 2)
	svc.Add(context.Background(), receiptID, 1, "Bob", 1)

	if err := svc.NotifyIfComplete(context.Background(), receiptID); err != nil {
		t.Fatalf("NotifyIfComplete() error = %v", err)
	}
	if notifier.fired != 0 {
		t.Errorf("fired = %d without the external complete flag, want 0", notifier.fired)
	}
}

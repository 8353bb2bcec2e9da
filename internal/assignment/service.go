package assignment

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ameliang/tabsplit/internal/assignment/split"
)

// Store is the persistence surface for contribution snapshots
type Store interface {
	Load(ctx context.Context, receiptID uuid.UUID) ([][]Contribution, error)
	Save(ctx context.Context, receiptID uuid.UUID, claims [][]Contribution) error
}

// Ledger supplies the receipt side of an assignment round: its items, its
// summary charges and the external assignments-complete flag.
type Ledger interface {
	Ledger(ctx context.Context, receiptID uuid.UUID) ([]split.Item, []split.Charge, bool, error)
}

// SnapshotSaver stores a computed breakdown verbatim for later redisplay
type SnapshotSaver interface {
	SaveBreakdown(ctx context.Context, receiptID uuid.UUID, b *split.Breakdown) (uuid.UUID, error)
}

// Notifier alerts the receipt owner that assignment has finished
type Notifier interface {
	ReceiptFullyAssigned(ctx context.Context, receiptID uuid.UUID) error
}

// Service handles assignment business logic. Each request loads the receipt's
// table, applies the mutation in memory where the invariant is enforced, and
// persists the whole snapshot atomically.
type Service struct {
	store    Store
	ledger   Ledger
	history  SnapshotSaver
	notifier Notifier
	policy   CoveragePolicy

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewService creates a new assignment service with dependencies injected.
// history and notifier may be nil; the corresponding side effects are skipped.
func NewService(store Store, ledger Ledger, history SnapshotSaver, notifier Notifier) *Service {
	return &Service{
		store:    store,
		ledger:   ledger,
		history:  history,
		notifier: notifier,
		policy:   AnyClaimPolicy{},
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// lock returns the mutex serializing mutations against one receipt. The Table
// mutex only covers a single request's in-memory snapshot; the load, mutate
// and save steps of concurrent requests against the same receipt must not
// interleave, or claims validated against a stale snapshot overwrite each
// other in storage.
func (s *Service) lock(receiptID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[receiptID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[receiptID] = l
	}
	return l
}

// table loads one receipt's assignment table
func (s *Service) table(ctx context.Context, receiptID uuid.UUID) (*Table, bool, error) {
	items, _, marked, err := s.ledger.Ledger(ctx, receiptID)
	if err != nil {
		return nil, false, err
	}
	claims, err := s.store.Load(ctx, receiptID)
	if err != nil {
		return nil, false, err
	}

	t := NewTableWithPolicy(items, s.policy)
	if err := t.Restore(claims); err != nil {
		return nil, false, err
	}
	return t, marked, nil
}

// Get returns the receipt's current contributions grouped by item
func (s *Service) Get(ctx context.Context, receiptID uuid.UUID) ([][]Contribution, error) {
	t, _, err := s.table(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	return t.Contributions(), nil
}

// Add appends a claim and returns the updated table snapshot
func (s *Service) Add(ctx context.Context, receiptID uuid.UUID, itemIndex int, contributor string, quantity int) ([][]Contribution, error) {
	l := s.lock(receiptID)
	l.Lock()
	defer l.Unlock()

	t, marked, err := s.table(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if err := t.AddContribution(itemIndex, contributor, quantity); err != nil {
		return nil, err
	}
	return s.persist(ctx, receiptID, t, marked)
}

// Update changes an existing claim. Nil fields keep their current value, so a
// caller can change just the quantity or just the contributor.
func (s *Service) Update(ctx context.Context, receiptID uuid.UUID, itemIndex, contribIndex int, contributor *string, quantity *int) ([][]Contribution, error) {
	l := s.lock(receiptID)
	l.Lock()
	defer l.Unlock()

	t, marked, err := s.table(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	current := t.Contributions()
	if itemIndex < 0 || itemIndex >= len(current) {
		return nil, &NotFoundError{What: "item", Index: itemIndex}
	}
	if contribIndex < 0 || contribIndex >= len(current[itemIndex]) {
		return nil, &NotFoundError{What: "contribution", Index: contribIndex}
	}

	next := current[itemIndex][contribIndex]
	if contributor != nil {
		next.Contributor = *contributor
	}
	if quantity != nil {
		next.Quantity = *quantity
	}

	if err := t.UpdateContribution(itemIndex, contribIndex, next.Contributor, next.Quantity); err != nil {
		return nil, err
	}
	return s.persist(ctx, receiptID, t, marked)
}

// Remove deletes a claim and returns the updated table snapshot
func (s *Service) Remove(ctx context.Context, receiptID uuid.UUID, itemIndex, contribIndex int) ([][]Contribution, error) {
	l := s.lock(receiptID)
	l.Lock()
	defer l.Unlock()

	t, marked, err := s.table(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if err := t.RemoveContribution(itemIndex, contribIndex); err != nil {
		return nil, err
	}
	return s.persist(ctx, receiptID, t, marked)
}

// persist saves the mutated table and, when the owner has already marked the
// round complete, re-runs the completeness check so the notification can fire
// as soon as coverage is reached.
func (s *Service) persist(ctx context.Context, receiptID uuid.UUID, t *Table, marked bool) ([][]Contribution, error) {
	snapshot := t.Contributions()
	if err := s.store.Save(ctx, receiptID, snapshot); err != nil {
		return nil, err
	}

	if marked {
		if err := s.NotifyIfComplete(ctx, receiptID); err != nil {
			slog.Warn("completeness check failed", "receipt_id", receiptID, "error", err)
		}
	}
	return snapshot, nil
}

// FullyAssigned evaluates the table against the named coverage policy. An
// empty policy name selects the default any-claim policy.
func (s *Service) FullyAssigned(ctx context.Context, receiptID uuid.UUID, policyName string) (bool, PolicyName, error) {
	policy, err := PolicyFromString(policyName)
	if err != nil {
		return false, "", err
	}

	items, _, _, err := s.ledger.Ledger(ctx, receiptID)
	if err != nil {
		return false, "", err
	}
	claims, err := s.store.Load(ctx, receiptID)
	if err != nil {
		return false, "", err
	}

	t := NewTableWithPolicy(items, policy)
	if err := t.Restore(claims); err != nil {
		return false, "", err
	}
	return t.IsFullyAssigned(), policy.Name(), nil
}

// Breakdown computes the per-contributor bill and stores it verbatim in the
// history so it can be redisplayed without being re-derived. The returned id
// identifies the stored snapshot; it is uuid.Nil when no history store is
// wired.
func (s *Service) Breakdown(ctx context.Context, receiptID uuid.UUID) (*split.Breakdown, uuid.UUID, error) {
	items, charges, _, err := s.ledger.Ledger(ctx, receiptID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	claims, err := s.store.Load(ctx, receiptID)
	if err != nil {
		return nil, uuid.Nil, err
	}

	t := NewTable(items)
	if err := t.Restore(claims); err != nil {
		return nil, uuid.Nil, err
	}

	breakdown, err := split.ComputeBreakdown(items, charges, t.Claims())
	if err != nil {
		return nil, uuid.Nil, err
	}

	snapshotID := uuid.Nil
	if s.history != nil {
		snapshotID, err = s.history.SaveBreakdown(ctx, receiptID, breakdown)
		if err != nil {
			return nil, uuid.Nil, err
		}
	}

	return breakdown, snapshotID, nil
}

// NotifyIfComplete fires the fully-assigned notification when the owner has
// marked the round complete and every item's claimed total covers its
// quantity. It is safe to call against a drifted item list.
func (s *Service) NotifyIfComplete(ctx context.Context, receiptID uuid.UUID) error {
	if s.notifier == nil {
		return nil
	}

	items, _, marked, err := s.ledger.Ledger(ctx, receiptID)
	if err != nil {
		return err
	}
	claims, err := s.store.Load(ctx, receiptID)
	if err != nil {
		return err
	}

	if !ReadyToNotify(items, claims, marked) {
		return nil
	}
	return s.notifier.ReceiptFullyAssigned(ctx, receiptID)
}

package assignment

import (
	"sync"

	"github.com/ameliang/tabsplit/internal/assignment/split"
)

// Contribution records one contributor's claim on units of a line item
type Contribution struct {
	Contributor string `json:"contributor"`
	Quantity    int    `json:"quantity"`
}

// Table tracks contributor claims per line item under the quantity-conservation
// invariant: for every item, the sum of claimed quantities never exceeds the
// item's quantity. Items are fixed for the lifetime of a table; editing an item
// means starting a new assignment round with a fresh table.
//
// All mutations are serialized on one mutex so concurrent claims against the
// same item cannot race past the invariant, and readers never observe a
// half-applied mutation.
type Table struct {
	mu     sync.Mutex
	items  []split.Item
	claims [][]Contribution // claims[i] belongs to items[i], insertion order
	policy CoveragePolicy
}

// NewTable creates an empty table for one assignment round over the given
// items, using the default any-claim coverage policy.
func NewTable(items []split.Item) *Table {
	return NewTableWithPolicy(items, AnyClaimPolicy{})
}

// NewTableWithPolicy creates an empty table with an explicit coverage policy
func NewTableWithPolicy(items []split.Item, policy CoveragePolicy) *Table {
	return &Table{
		items:  items,
		claims: make([][]Contribution, len(items)),
		policy: policy,
	}
}

// Restore seeds the table with previously captured contributions, e.g. rows
// loaded from storage. Contributions for item indices that no longer exist are
// dropped; the invariant is re-checked so a drifted snapshot cannot smuggle an
// overflow back in.
func (t *Table) Restore(claims [][]Contribution) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	restored := make([][]Contribution, len(t.items))
	for i := range t.items {
		if i >= len(claims) {
			break
		}
		total := 0
		for _, c := range claims[i] {
			total += c.Quantity
		}
		if total > t.items[i].Quantity {
			return &ValidationError{
				ItemIndex: i,
				Capacity:  t.items[i].Quantity,
				Attempted: total,
				Reason:    "stored claims exceed item quantity",
			}
		}
		restored[i] = append(restored[i], claims[i]...)
	}
	t.claims = restored
	return nil
}

// AddContribution appends a claim for the item at itemIndex. The claim is
// rejected atomically, leaving the table unchanged, if the quantity is below
// one or would push the item's claimed total past its quantity.
func (t *Table) AddContribution(itemIndex int, contributor string, quantity int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if itemIndex < 0 || itemIndex >= len(t.items) {
		return &NotFoundError{What: "item", Index: itemIndex}
	}
	if err := t.validate(itemIndex, -1, contributor, quantity); err != nil {
		return err
	}

	t.claims[itemIndex] = append(t.claims[itemIndex], Contribution{
		Contributor: contributor,
		Quantity:    quantity,
	})
	return nil
}

// UpdateContribution replaces the contributor and quantity of an existing
// claim. Validation matches AddContribution; on rejection the prior value is
// retained unchanged.
func (t *Table) UpdateContribution(itemIndex, contribIndex int, contributor string, quantity int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if itemIndex < 0 || itemIndex >= len(t.items) {
		return &NotFoundError{What: "item", Index: itemIndex}
	}
	if contribIndex < 0 || contribIndex >= len(t.claims[itemIndex]) {
		return &NotFoundError{What: "contribution", Index: contribIndex}
	}
	if err := t.validate(itemIndex, contribIndex, contributor, quantity); err != nil {
		return err
	}

	t.claims[itemIndex][contribIndex] = Contribution{
		Contributor: contributor,
		Quantity:    quantity,
	}
	return nil
}

// RemoveContribution deletes a claim, preserving the order of the rest
func (t *Table) RemoveContribution(itemIndex, contribIndex int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if itemIndex < 0 || itemIndex >= len(t.items) {
		return &NotFoundError{What: "item", Index: itemIndex}
	}
	if contribIndex < 0 || contribIndex >= len(t.claims[itemIndex]) {
		return &NotFoundError{What: "contribution", Index: contribIndex}
	}

	t.claims[itemIndex] = append(
		t.claims[itemIndex][:contribIndex],
		t.claims[itemIndex][contribIndex+1:]...,
	)
	return nil
}

// validate enforces the quantity-conservation invariant. skipIndex excludes an
// existing contribution from the claimed total (for updates); pass -1 for adds.
// Caller holds the mutex.
func (t *Table) validate(itemIndex, skipIndex int, contributor string, quantity int) error {
	if contributor == "" {
		return &ValidationError{ItemIndex: itemIndex, Reason: "contributor name must not be empty"}
	}
	if quantity < 1 {
		return &ValidationError{ItemIndex: itemIndex, Reason: "claimed quantity must be at least 1"}
	}

	total := quantity
	for i, c := range t.claims[itemIndex] {
		if i == skipIndex {
			continue
		}
		total += c.Quantity
	}

	capacity := t.items[itemIndex].Quantity
	if total > capacity {
		return &ValidationError{
			ItemIndex: itemIndex,
			Capacity:  capacity,
			Attempted: total,
			Reason:    "claimed quantities exceed item quantity",
		}
	}
	return nil
}

// IsFullyAssigned reports whether every item counts as assigned under the
// table's coverage policy.
func (t *Table) IsFullyAssigned() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, item := range t.items {
		claimed := 0
		for _, c := range t.claims[i] {
			claimed += c.Quantity
		}
		if !t.policy.Covered(claimed, item.Quantity) {
			return false
		}
	}
	return true
}

// Claims returns a snapshot of the table's contributions as calculator input.
// The snapshot is a deep copy; later mutations do not leak into it.
func (t *Table) Claims() [][]split.Claim {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([][]split.Claim, len(t.claims))
	for i, cs := range t.claims {
		out[i] = make([]split.Claim, len(cs))
		for j, c := range cs {
			out[i][j] = split.Claim{Contributor: c.Contributor, Quantity: c.Quantity}
		}
	}
	return out
}

// Contributions returns a snapshot in storage form
func (t *Table) Contributions() [][]Contribution {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([][]Contribution, len(t.claims))
	for i, cs := range t.claims {
		out[i] = append([]Contribution(nil), cs...)
	}
	return out
}

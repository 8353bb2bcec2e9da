package assignment

import "fmt"

// ValidationError reports a claim the table refused to apply. When the refusal
// is a capacity overflow, Capacity and Attempted let the caller offer a
// corrective value (the largest claim that would still fit is
// Capacity - (Attempted - rejected claim)).
type ValidationError struct {
	ItemIndex int
	Capacity  int    // the item's total quantity
	Attempted int    // claimed sum the mutation would have produced
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.Attempted > e.Capacity {
		return fmt.Sprintf("item %d: %s (capacity %d, attempted %d)",
			e.ItemIndex, e.Reason, e.Capacity, e.Attempted)
	}
	return fmt.Sprintf("item %d: %s", e.ItemIndex, e.Reason)
}

// NotFoundError reports a reference to an item or contribution index that does
// not exist. The caller should refresh its view of the table.
type NotFoundError struct {
	What  string // "item" or "contribution"
	Index int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.What, e.Index)
}

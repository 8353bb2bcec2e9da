package assignment

import "github.com/ameliang/tabsplit/internal/assignment/split"

// ReadyToNotify decides whether it is safe to tell the receipt owner that
// assignment is finished: the owner must have marked the round complete AND
// every item's claimed total must cover its quantity.
//
// It runs as an independent consistency check decoupled from the mutation
// path, so it tolerates an item list that has drifted since the claims were
// captured (items added, quantities edited). Drift makes it answer false, never
// panic.
func ReadyToNotify(items []split.Item, claims [][]Contribution, markedComplete bool) bool {
	if !markedComplete {
		return false
	}

	for i, item := range items {
		claimed := 0
		if i < len(claims) {
			for _, c := range claims[i] {
				claimed += c.Quantity
			}
		}
		if claimed < item.Quantity {
			return false
		}
	}
	return true
}

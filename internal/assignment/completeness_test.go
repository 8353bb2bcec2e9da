package assignment

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ameliang/tabsplit/internal/assignment/split"
)

func TestReadyToNotify(t *testing.T) {
	items := []split.Item{
		{Quantity: 2, Label: "Coffee", UnitPrice: decimal.NewFromFloat(2.50)},
		{Quantity: 1, Label: "Sandwich", UnitPrice: decimal.NewFromFloat(5.00)},
	}
	covered := [][]Contribution{
		{{Contributor: "Alice", Quantity: 1}, {Contributor: "Bob", Quantity: 1}},
		{{Contributor: "Alice", Quantity: 1}},
	}
	partial := [][]Contribution{
		{{Contributor: "Alice", Quantity: 1}},
		{{Contributor: "Alice", Quantity: 1}},
	}

	tests := []struct {
		name           string
		items          []split.Item
		claims         [][]Contribution
		markedComplete bool
		want           bool
	}{
		{name: "complete and covered", items: items, claims: covered, markedComplete: true, want: true},
		{name: "covered but not marked complete", items: items, claims: covered, markedComplete: false, want: false},
		{name: "marked complete but undercovered", items: items, claims: partial, markedComplete: true, want: false},
		{name: "no items at all", items: nil, claims: nil, markedComplete: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadyToNotify(tt.items, tt.claims, tt.markedComplete); got != tt.want {
				t.Errorf("ReadyToNotify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadyToNotifyToleratesDriftedItems(t *testing.T) {
	// Claims were captured against a two-item receipt; the receipt has since
	// grown a third item and the first item's quantity was raised. Both kinds
	// of drift must read as false, not panic.
	claims := [][]Contribution{
		{{Contributor: "Alice", Quantity: 2}},
		{{Contributor: "Bob", Quantity: 1}},
	}

	grown := []split.Item{
		{Quantity: 2, Label: "Coffee", UnitPrice: decimal.NewFromFloat(2.50)},
		{Quantity: 1, Label: "Sandwich", UnitPrice: decimal.NewFromFloat(5.00)},
		{Quantity: 1, Label: "Cake", UnitPrice: decimal.NewFromFloat(6.00)},
	}
	if ReadyToNotify(grown, claims, true) {
		t.Error("ReadyToNotify() = true for receipt with a new unclaimed item")
	}

	raised := []split.Item{
		{Quantity: 3, Label: "Coffee", UnitPrice: decimal.NewFromFloat(2.50)},
		{Quantity: 1, Label: "Sandwich", UnitPrice: decimal.NewFromFloat(5.00)},
	}
	if ReadyToNotify(raised, claims, true) {
		t.Error("ReadyToNotify() = true after item quantity was raised past the claims")
	}
}

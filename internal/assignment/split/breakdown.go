package split

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InputError reports malformed line-item data reaching the calculator.
// It signals a data-integrity bug in the receipt source rather than a bad
// user request, so callers surface it separately from validation failures.
type InputError struct {
	ItemIndex int
	Reason    string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid line item %d: %s", e.ItemIndex, e.Reason)
}

// ComputeBreakdown prices every contributor's claims and allocates tax and tip
// proportionally to each claim's base cost.
//
// The proportional base is the sum of quantity x unit price over ALL items,
// assigned or not, so shares track the receipt's full basis even when some
// items remain unclaimed. claims[i] holds the claims against items[i]; indices
// past either slice are ignored.
//
// When the basis is zero (every item free) tax and tip shares are zero for
// every line. That is a defined degenerate policy, not an error.
//
// Inputs are never mutated.
func ComputeBreakdown(items []Item, charges []Charge, claims [][]Claim) (*Breakdown, error) {
	for i, item := range items {
		if item.Quantity < 0 {
			return nil, &InputError{ItemIndex: i, Reason: fmt.Sprintf("negative quantity %d", item.Quantity)}
		}
		if item.UnitPrice.IsNegative() {
			return nil, &InputError{ItemIndex: i, Reason: fmt.Sprintf("negative unit price %s", item.UnitPrice)}
		}
	}

	basis := decimal.Zero
	for _, item := range items {
		basis = basis.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	taxTotal := firstChargeOfKind(charges, ChargeKindTax)
	tipTotal := firstChargeOfKind(charges, ChargeKindTip)

	// One record per distinct contributor, in order of first appearance.
	shares := make(map[string]*ContributorShare)
	var order []string

	for i, item := range items {
		if i >= len(claims) {
			break
		}
		for _, claim := range claims[i] {
			// Malformed claims are a no-op, not a failure; the table manager
			// should have rejected them already.
			if claim.Quantity <= 0 || claim.Contributor == "" {
				continue
			}

			baseCost := item.UnitPrice.Mul(decimal.NewFromInt(int64(claim.Quantity)))

			taxShare := decimal.Zero
			tipShare := decimal.Zero
			if basis.IsPositive() {
				ratio := baseCost.Div(basis)
				taxShare = ratio.Mul(taxTotal)
				tipShare = ratio.Mul(tipTotal)
			}

			share, ok := shares[claim.Contributor]
			if !ok {
				share = &ContributorShare{Contributor: claim.Contributor}
				shares[claim.Contributor] = share
				order = append(order, claim.Contributor)
			}

			share.Lines = append(share.Lines, Line{
				ItemLabel:       item.Label,
				ClaimedQuantity: claim.Quantity,
				BaseCost:        baseCost,
				TaxShare:        taxShare,
				TipShare:        tipShare,
			})
			share.TotalOwed = share.TotalOwed.Add(baseCost).Add(taxShare).Add(tipShare)
		}
	}

	breakdown := &Breakdown{
		Contributors: make([]ContributorShare, 0, len(order)),
		Basis:        basis,
		TaxTotal:     taxTotal,
		TipTotal:     tipTotal,
	}
	for _, name := range order {
		breakdown.Contributors = append(breakdown.Contributors, *shares[name])
	}

	return breakdown, nil
}

// firstChargeOfKind returns the amount of the first charge of the given kind,
// or zero if absent.
func firstChargeOfKind(charges []Charge, kind ChargeKind) decimal.Decimal {
	for _, c := range charges {
		if c.Kind == kind {
			return c.Amount
		}
	}
	return decimal.Zero
}

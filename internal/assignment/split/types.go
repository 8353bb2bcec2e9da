package split

import "github.com/shopspring/decimal"

// ChargeKind classifies a receipt-level summary charge
type ChargeKind string

const (
	ChargeKindTax      ChargeKind = "TAX"
	ChargeKindTip      ChargeKind = "TIP"
	ChargeKindSubtotal ChargeKind = "SUBTOTAL"
	ChargeKindTotal    ChargeKind = "TOTAL"
	ChargeKindOther    ChargeKind = "OTHER"
)

// Item is a single priced, quantified entry on a receipt
type Item struct {
	Quantity  int             `json:"quantity"`
	Label     string          `json:"label"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Charge is a receipt-level charge not tied to a specific item.
// Only TAX and TIP participate in allocation; SUBTOTAL and TOTAL are informational.
type Charge struct {
	Kind   ChargeKind      `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
}

// Claim is one contributor's claim on some quantity of a specific item
type Claim struct {
	Contributor string `json:"contributor"`
	Quantity    int    `json:"quantity"`
}

// Line is one contribution priced out: base cost plus proportional tax/tip shares
type Line struct {
	ItemLabel       string          `json:"item_label"`
	ClaimedQuantity int             `json:"claimed_quantity"`
	BaseCost        decimal.Decimal `json:"base_cost"`
	TaxShare        decimal.Decimal `json:"tax_share"`
	TipShare        decimal.Decimal `json:"tip_share"`
}

// ContributorShare aggregates everything one contributor owes across the receipt
type ContributorShare struct {
	Contributor string          `json:"contributor"`
	Lines       []Line          `json:"lines"`
	TotalOwed   decimal.Decimal `json:"total_owed"`
}

// Breakdown is the final per-contributor cost report. It is derived entirely
// from its inputs and holds no independent state. Amounts are kept at full
// precision; rounding to cents happens at display time.
type Breakdown struct {
	Contributors []ContributorShare `json:"contributors"`
	Basis        decimal.Decimal    `json:"basis"` // sum of quantity x unit price over all items
	TaxTotal     decimal.Decimal    `json:"tax_total"`
	TipTotal     decimal.Decimal    `json:"tip_total"`
}

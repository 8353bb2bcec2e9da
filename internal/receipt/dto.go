package receipt

import (
	"github.com/shopspring/decimal"

	"github.com/ameliang/tabsplit/internal/assignment/split"
)

// LineItemInput is one priced item in a create request
type LineItemInput struct {
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	Label     string          `json:"label" validate:"required,min=1,max=255"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

// ChargeInput is one summary charge in a create request
type ChargeInput struct {
	Kind   split.ChargeKind `json:"kind" validate:"required,oneof=TAX TIP SUBTOTAL TOTAL OTHER"`
	Amount decimal.Decimal  `json:"amount" validate:"required"`
}

// CreateReceiptRequest creates a receipt either from typed items and charges
// or from raw pasted receipt text. When RawText is set the items and charges
// fields are ignored and the parser decides.
type CreateReceiptRequest struct {
	Title   string          `json:"title" validate:"required,min=1,max=255"`
	Items   []LineItemInput `json:"items,omitempty"`
	Charges []ChargeInput   `json:"charges,omitempty"`
	RawText string          `json:"raw_text,omitempty"`
}

// ReceiptResponse is the API shape of a receipt
type ReceiptResponse struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Items          []ItemResponse `json:"items"`
	Charges        []split.Charge `json:"charges"`
	MarkedComplete bool           `json:"marked_complete"`
	CreatedAt      string         `json:"created_at"`
}

// ItemResponse is the API shape of a line item, with its index made explicit
// since assignment operations address items by position
type ItemResponse struct {
	Index     int    `json:"index"`
	Quantity  int    `json:"quantity"`
	Label     string `json:"label"`
	UnitPrice string `json:"unit_price"`
}

// ToResponse converts a Receipt model to its API representation
func (r *Receipt) ToResponse() *ReceiptResponse {
	items := make([]ItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = ItemResponse{
			Index:     i,
			Quantity:  item.Quantity,
			Label:     item.Label,
			UnitPrice: item.UnitPrice.StringFixed(2),
		}
	}
	return &ReceiptResponse{
		ID:             r.ID.String(),
		Title:          r.Title,
		Items:          items,
		Charges:        r.Charges,
		MarkedComplete: r.MarkedComplete,
		CreatedAt:      r.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

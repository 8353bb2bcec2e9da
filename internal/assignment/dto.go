package assignment

import (
	"github.com/google/uuid"

	"github.com/ameliang/tabsplit/internal/assignment/split"
)

// AddContributionRequest claims units of a line item for a contributor. When
// Contributor is empty the identity from the request context is used.
type AddContributionRequest struct {
	Contributor string `json:"contributor,omitempty"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

// UpdateContributionRequest edits an existing claim. Omitted fields keep
// their current value.
type UpdateContributionRequest struct {
	Contributor *string `json:"contributor,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
}

// ContributionResponse is one claim in the table view
type ContributionResponse struct {
	Index       int    `json:"index"`
	Contributor string `json:"contributor"`
	Quantity    int    `json:"quantity"`
}

// ItemClaimsResponse groups the claims recorded against one line item
type ItemClaimsResponse struct {
	ItemIndex     int                    `json:"item_index"`
	Contributions []ContributionResponse `json:"contributions"`
}

// TableResponse is the API shape of a receipt's assignment table
type TableResponse struct {
	ReceiptID string               `json:"receipt_id"`
	Items     []ItemClaimsResponse `json:"items"`
}

// FullyAssignedResponse answers the fully-assigned query under a named policy
type FullyAssignedResponse struct {
	FullyAssigned bool   `json:"fully_assigned"`
	Policy        string `json:"policy"`
}

// LineResponse is one priced claim in a breakdown, rounded to cents for display
type LineResponse struct {
	ItemLabel       string `json:"item_label"`
	ClaimedQuantity int    `json:"claimed_quantity"`
	BaseCost        string `json:"base_cost"`
	TaxShare        string `json:"tax_share"`
	TipShare        string `json:"tip_share"`
}

// ContributorShareResponse is one contributor's aggregated bill
type ContributorShareResponse struct {
	Contributor string         `json:"contributor"`
	Lines       []LineResponse `json:"lines"`
	TotalOwed   string         `json:"total_owed"`
}

// BreakdownResponse is the API shape of a computed breakdown. SnapshotID
// points at the stored history record.
type BreakdownResponse struct {
	ReceiptID    string                     `json:"receipt_id"`
	SnapshotID   string                     `json:"snapshot_id,omitempty"`
	Contributors []ContributorShareResponse `json:"contributors"`
	TaxTotal     string                     `json:"tax_total"`
	TipTotal     string                     `json:"tip_total"`
}

// toTableResponse converts a contributions snapshot to its API shape
func toTableResponse(receiptID uuid.UUID, claims [][]Contribution) *TableResponse {
	items := make([]ItemClaimsResponse, len(claims))
	for i, cs := range claims {
		contributions := make([]ContributionResponse, len(cs))
		for j, c := range cs {
			contributions[j] = ContributionResponse{
				Index:       j,
				Contributor: c.Contributor,
				Quantity:    c.Quantity,
			}
		}
		items[i] = ItemClaimsResponse{ItemIndex: i, Contributions: contributions}
	}
	return &TableResponse{ReceiptID: receiptID.String(), Items: items}
}

// toBreakdownResponse rounds a breakdown to cents for display. Full precision
// is kept all the way here so rounding error never compounds across
// contributors.
func toBreakdownResponse(receiptID, snapshotID uuid.UUID, b *split.Breakdown) *BreakdownResponse {
	contributors := make([]ContributorShareResponse, len(b.Contributors))
	for i, c := range b.Contributors {
		lines := make([]LineResponse, len(c.Lines))
		for j, l := range c.Lines {
			lines[j] = LineResponse{
				ItemLabel:       l.ItemLabel,
				ClaimedQuantity: l.ClaimedQuantity,
				BaseCost:        l.BaseCost.StringFixed(2),
				TaxShare:        l.TaxShare.StringFixed(2),
				TipShare:        l.TipShare.StringFixed(2),
			}
		}
		contributors[i] = ContributorShareResponse{
			Contributor: c.Contributor,
			Lines:       lines,
			TotalOwed:   c.TotalOwed.StringFixed(2),
		}
	}

	resp := &BreakdownResponse{
		ReceiptID:    receiptID.String(),
		Contributors: contributors,
		TaxTotal:     b.TaxTotal.StringFixed(2),
		TipTotal:     b.TipTotal.StringFixed(2),
	}
	if snapshotID != uuid.Nil {
		resp.SnapshotID = snapshotID.String()
	}
	return resp
}

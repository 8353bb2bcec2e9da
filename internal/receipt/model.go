package receipt

import (
	"time"

	"github.com/google/uuid"

	"github.com/ameliang/tabsplit/internal/assignment/split"
)

// Receipt is a parsed or hand-entered receipt: the priced line items plus the
// receipt-level summary charges. Items are identified by their position within
// the receipt; once an assignment round is open against a receipt its items
// are treated as immutable.
type Receipt struct {
	ID             uuid.UUID      `json:"id"`
	Title          string         `json:"title"`
	Items          []split.Item   `json:"items"`
	Charges        []split.Charge `json:"charges"`
	MarkedComplete bool           `json:"marked_complete"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ValidChargeKinds lists the accepted summary charge classifications
var ValidChargeKinds = map[split.ChargeKind]bool{
	split.ChargeKindTax:      true,
	split.ChargeKindTip:      true,
	split.ChargeKindSubtotal: true,
	split.ChargeKindTotal:    true,
	split.ChargeKindOther:    true,
}

// Package parse turns pasted receipt text into typed line items and summary
// charges. It is a boundary-layer concern: everything downstream of it
// operates on validated decimals and integers only.
package parse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ameliang/tabsplit/internal/assignment/split"
)

// ErrNoItems is returned when no line of the input could be read as a priced
// item or summary charge.
var ErrNoItems = errors.New("no line items found in receipt text")

// priceRe matches a trailing currency amount, with or without a dollar sign
var priceRe = regexp.MustCompile(`\$?\s*(\d+(?:\.\d{1,2})?)\s*$`)

// quantityRe matches a leading count like "2", "2x" or "2 x"
var quantityRe = regexp.MustCompile(`^(\d+)\s*[xX]?\s+`)

// summaryKeywords maps label substrings to charge kinds. Order matters:
// "subtotal" must win before the bare "total" check. The match is a plain
// substring test, so an item literally named "Total Wine" is misfiled as a
// summary charge; that fragility is inherited from the upstream parser and
// deliberately not papered over here.
var summaryKeywords = []struct {
	substr string
	kind   split.ChargeKind
}{
	{"subtotal", split.ChargeKindSubtotal},
	{"sub-total", split.ChargeKindSubtotal},
	{"sub total", split.ChargeKindSubtotal},
	{"total", split.ChargeKindTotal},
	{"tax", split.ChargeKindTax},
	{"tip", split.ChargeKindTip},
	{"gratuity", split.ChargeKindTip},
}

// Receipt parses receipt text, one entry per line. Lines that cannot be read
// as a priced entry are skipped; OCR output is noisy and a dropped garbage
// line beats a failed upload. It fails only when nothing at all was parsed.
func Receipt(text string) ([]split.Item, []split.Charge, error) {
	var items []split.Item
	var charges []split.Charge

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		priceMatch := priceRe.FindStringSubmatchIndex(line)
		if priceMatch == nil {
			continue
		}
		amount, err := decimal.NewFromString(line[priceMatch[2]:priceMatch[3]])
		if err != nil {
			continue
		}

		label := strings.TrimSpace(line[:priceMatch[0]])
		if label == "" {
			continue
		}

		if kind, ok := classifySummary(label); ok {
			charges = append(charges, split.Charge{Kind: kind, Amount: amount})
			continue
		}

		quantity := 1
		if m := quantityRe.FindStringSubmatch(label); m != nil {
			if q, err := strconv.Atoi(m[1]); err == nil && q > 0 {
				quantity = q
				label = strings.TrimSpace(label[len(m[0]):])
			}
		}
		if label == "" {
			continue
		}

		items = append(items, split.Item{
			Quantity:  quantity,
			Label:     label,
			UnitPrice: amount,
		})
	}

	if len(items) == 0 && len(charges) == 0 {
		return nil, nil, ErrNoItems
	}
	return items, charges, nil
}

// classifySummary decides whether a label names a receipt-level charge rather
// than a purchasable item.
func classifySummary(label string) (split.ChargeKind, bool) {
	lower := strings.ToLower(label)
	for _, kw := range summaryKeywords {
		if strings.Contains(lower, kw.substr) {
			return kw.kind, true
		}
	}
	return "", false
}

package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	dec "github.com/rezonia/invoice-extractor/internal/decimal"
	"github.com/rezonia/invoice-extractor/internal/model"
)

// Legacy fuel lines carry a description and three numbers in no guaranteed
// order. The search is unanchored, unlike the stricter layouts.
var legacyPattern = regexp.MustCompile(`([A-Z\s:]+)\s+([\d,]+\.?\d*)\s+([\d,]+\.?\d*)\s+([\d,]+\.?\d*)`)

var legacyTolerancePct = decimal.NewFromInt(1)

var fuelKeywords = []string{"DIESEL", "PETROL", "PARAFFIN", "EL"}

// LegacyMatcher is the fallback for older fuel invoice layouts. Once the
// keyword gate passes it always produces an item, so it must run last.
type LegacyMatcher struct{}

// NewLegacyMatcher creates a new legacy fallback matcher
func NewLegacyMatcher() *LegacyMatcher {
	return &LegacyMatcher{}
}

// Layout returns the layout this matcher handles
func (m *LegacyMatcher) Layout() model.Layout {
	return model.LayoutLegacy
}

// Match claims any keyword-gated line. The three numeric fields are assigned
// by testing candidate orderings against total = quantity * price; when none
// holds, the (quantity, price, total) ordering is assumed.
func (m *LegacyMatcher) Match(line string) *model.LineItem {
	groups := legacyPattern.FindStringSubmatch(line)
	if groups == nil {
		return nil
	}

	desc := strings.TrimSpace(groups[1])
	if !isFuelProduct(desc) {
		return nil
	}

	val1, err := dec.ParseAmount(groups[2])
	if err != nil {
		return nil
	}
	val2, err := dec.ParseAmount(groups[3])
	if err != nil {
		return nil
	}
	val3, err := dec.ParseAmount(groups[4])
	if err != nil {
		return nil
	}

	qty, price, total := resolveFieldOrder(val1, val2, val3)

	return &model.LineItem{
		Description: desc,
		Quantity:    qty,
		UnitPrice:   price,
		Tax:         dec.Zero,
		Total:       total,
	}
}

func isFuelProduct(desc string) bool {
	upper := strings.ToUpper(desc)
	for _, kw := range fuelKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// resolveFieldOrder tests candidate orderings in priority order:
// (v1,v2 -> v3), then (v2,v3 -> v1), then (v1,v3 -> v2). When no ordering
// satisfies the identity within 1%, the first is used anyway.
func resolveFieldOrder(v1, v2, v3 decimal.Decimal) (qty, price, total decimal.Decimal) {
	switch {
	case dec.WithinPercent(v1.Mul(v2), v3, legacyTolerancePct):
		return v1, v2, v3
	case dec.WithinPercent(v2.Mul(v3), v1, legacyTolerancePct):
		return v2, v3, v1
	case dec.WithinPercent(v1.Mul(v3), v2, legacyTolerancePct):
		return v1, v3, v2
	default:
		// Unvalidated default. Kept for compatibility with known corpora;
		// tightening this needs a reference corpus to test against.
		return v1, v2, v3
	}
}

package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	dec "github.com/rezonia/invoice-extractor/internal/decimal"
	"github.com/rezonia/invoice-extractor/internal/model"
)

// Express fuel layouts have no tax column, so the arithmetic check is tight:
// within 1% of the printed total, floored at one cent.
var expressTolerancePct = decimal.NewFromInt(1)

// Primary layout: "LSD : EL LOW SULPHUR DIESEL : EL 20,049.00 24.1264 483,710.19"
// Structure: ItemCode Description Quantity Price Total
var expressPattern = regexp.MustCompile(`^([A-Z]+\s*:\s*EL)\s+([A-Z\s:]+)\s+([\d,]+\.?\d*)\s+([\d,]+\.?\d*)\s+([\d,]+\.?\d*)$`)

// Alternate layout: "LSD : EL 84215 14,874.00 23.7297 352,955.56"
// Structure: ItemCode ItemNumbers Quantity Price Total; the description is
// synthesized from the code since the line carries item numbers instead.
var expressAltPattern = regexp.MustCompile(`^([A-Z]+\s*:\s*E[L]?)\s+([A-Z0-9,]+)\s+([\d,]+\.?\d*)\s+([\d,]+\.?\d*)\s+([\d,]+\.?\d*)$`)

// ExpressMatcher parses the primary Express fuel layout
type ExpressMatcher struct{}

// NewExpressMatcher creates a new primary Express layout matcher
func NewExpressMatcher() *ExpressMatcher {
	return &ExpressMatcher{}
}

// Layout returns the layout this matcher handles
func (m *ExpressMatcher) Layout() model.Layout {
	return model.LayoutExpress
}

// Match claims a line when the code/description/three-numbers shape matches
// and quantity * price agrees with the printed total.
func (m *ExpressMatcher) Match(line string) *model.LineItem {
	groups := expressPattern.FindStringSubmatch(line)
	if groups == nil {
		return nil
	}

	qty, price, total, ok := parseExpressAmounts(groups[3], groups[4], groups[5])
	if !ok {
		return nil
	}

	return &model.LineItem{
		Code:        strings.TrimSpace(groups[1]),
		Description: strings.TrimSpace(groups[2]),
		Quantity:    qty,
		UnitPrice:   price,
		Tax:         dec.Zero,
		Total:       total,
	}
}

// ExpressAltMatcher parses the alternate Express fuel layout
type ExpressAltMatcher struct{}

// NewExpressAltMatcher creates a new alternate Express layout matcher
func NewExpressAltMatcher() *ExpressAltMatcher {
	return &ExpressAltMatcher{}
}

// Layout returns the layout this matcher handles
func (m *ExpressAltMatcher) Layout() model.Layout {
	return model.LayoutExpressAlt
}

// Match claims a line with the item-numbers shape, synthesizing the
// description from the item code.
func (m *ExpressAltMatcher) Match(line string) *model.LineItem {
	groups := expressAltPattern.FindStringSubmatch(line)
	if groups == nil {
		return nil
	}

	qty, price, total, ok := parseExpressAmounts(groups[3], groups[4], groups[5])
	if !ok {
		return nil
	}

	code := strings.TrimSpace(groups[1])

	return &model.LineItem{
		Code:        code,
		Description: describeFuelCode(code),
		Quantity:    qty,
		UnitPrice:   price,
		Tax:         dec.Zero,
		Total:       total,
	}
}

func parseExpressAmounts(qtyStr, priceStr, totalStr string) (qty, price, total decimal.Decimal, ok bool) {
	var err error
	if qty, err = dec.ParseAmount(qtyStr); err != nil {
		return
	}
	if price, err = dec.ParseAmount(priceStr); err != nil {
		return
	}
	if total, err = dec.ParseAmount(totalStr); err != nil {
		return
	}
	ok = dec.WithinPercentOrCent(qty.Mul(price), total, expressTolerancePct)
	return
}

// describeFuelCode maps known fuel product codes to their full descriptions.
// Unrecognized codes pass through verbatim.
func describeFuelCode(code string) string {
	switch {
	case strings.Contains(code, "LSD"):
		return "LOW SULPHUR DIESEL : EL"
	case strings.Contains(code, "PETROL"):
		return "PETROL : EL"
	default:
		return code
	}
}

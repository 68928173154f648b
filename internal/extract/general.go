package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	dec "github.com/rezonia/invoice-extractor/internal/decimal"
	"github.com/rezonia/invoice-extractor/internal/model"
)

// General tabular layout: Code Description Quantity Price Tax Total.
// The description is captured lazily so it can contain internal whitespace.
var generalPattern = regexp.MustCompile(`^(\S+)\s+(.+?)\s+([\d,]+\.?\d*)\s+([\d,]+\.?\d*)\s+([\d,]+\.?\d*)\s+([\d,]+\.?\d*)$`)

// Tolerance is loose because the total column includes tax in many layouts.
var generalTolerancePct = decimal.NewFromInt(10)

// GeneralMatcher parses the general six-column tabular layout
type GeneralMatcher struct{}

// NewGeneralMatcher creates a new general layout matcher
func NewGeneralMatcher() *GeneralMatcher {
	return &GeneralMatcher{}
}

// Layout returns the layout this matcher handles
func (m *GeneralMatcher) Layout() model.Layout {
	return model.LayoutGeneral
}

// Match claims a line when the six-column shape matches and the total is
// within 10% of quantity * price.
func (m *GeneralMatcher) Match(line string) *model.LineItem {
	groups := generalPattern.FindStringSubmatch(line)
	if groups == nil {
		return nil
	}

	qty, err := dec.ParseAmount(groups[3])
	if err != nil {
		return nil
	}
	price, err := dec.ParseAmount(groups[4])
	if err != nil {
		return nil
	}
	tax, err := dec.ParseAmount(groups[5])
	if err != nil {
		return nil
	}
	total, err := dec.ParseAmount(groups[6])
	if err != nil {
		return nil
	}

	expected := qty.Mul(price)
	if !dec.WithinPercent(total, expected, generalTolerancePct) {
		return nil
	}

	return &model.LineItem{
		Code:        groups[1],
		Description: strings.TrimSpace(groups[2]),
		Quantity:    qty,
		UnitPrice:   price,
		Tax:         tax,
		Total:       total,
	}
}

package extract

import (
	"regexp"

	"github.com/shopspring/decimal"

	dec "github.com/rezonia/invoice-extractor/internal/decimal"
)

// Header anchors. These are fixed patterns over the full document text;
// a missing anchor yields an empty/zero field, never an error.
var (
	datePattern      = regexp.MustCompile(`(\d{2}-\d{2}-\d{4})`)
	referencePattern = regexp.MustCompile(`INV(\d+)`)
	totalExclPattern = regexp.MustCompile(`Total \(Excl\)\s+([\d,]+\.?\d*)`)
	totalInclPattern = regexp.MustCompile(`Total \(Incl\)\s+([\d,]+\.?\d*)`)
)

// Header holds the scalar fields pulled from the document text
type Header struct {
	Date      string
	Reference string
	TotalExcl decimal.Decimal
	TotalIncl decimal.Decimal
}

// ParseHeader extracts header fields from the full document text.
// Each field takes the first match of its anchor pattern.
func ParseHeader(text string) Header {
	h := Header{
		TotalExcl: dec.Zero,
		TotalIncl: dec.Zero,
	}

	if m := datePattern.FindStringSubmatch(text); m != nil {
		h.Date = m[1]
	}

	if m := referencePattern.FindStringSubmatch(text); m != nil {
		h.Reference = "INV" + m[1]
	}

	h.TotalExcl = findAmount(totalExclPattern, text)
	h.TotalIncl = findAmount(totalInclPattern, text)

	return h
}

func findAmount(pattern *regexp.Regexp, text string) decimal.Decimal {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return dec.Zero
	}
	amount, err := dec.ParseAmount(m[1])
	if err != nil {
		return dec.Zero
	}
	return amount
}

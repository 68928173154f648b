// Package reconcile compares extracted line totals against the document-level
// declared total, producing per-invoice discrepancy reports and batch summaries.
package reconcile

import (
	"github.com/shopspring/decimal"

	dec "github.com/rezonia/invoice-extractor/internal/decimal"
	"github.com/rezonia/invoice-extractor/internal/model"
)

// DefaultHighDiscrepancyPct flags invoices whose extraction disagrees with the
// declared total by more than this percentage.
var DefaultHighDiscrepancyPct = decimal.NewFromInt(5)

// Report is the per-invoice discrepancy report. It is derived on demand from
// an invoice record and never stored on it.
type Report struct {
	SourceID           string           `json:"filename"`
	Date               string           `json:"date,omitempty"`
	Reference          string           `json:"reference,omitempty"`
	TotalIncl          decimal.Decimal  `json:"total_incl"`
	TotalExpected      decimal.Decimal  `json:"total_expected"`
	Discrepancy        decimal.Decimal  `json:"discrepancy"`
	DiscrepancyPercent decimal.Decimal  `json:"discrepancy_percent"`
	ItemsFound         int              `json:"items_found"`
	Items              []model.LineItem `json:"items"`
}

// Reconcile computes the discrepancy report for one invoice.
// Pure function of the record; the record is not mutated.
func Reconcile(inv *model.Invoice) *Report {
	expected := inv.ExpectedTotal()
	discrepancy := expected.Sub(inv.TotalIncl).Abs()

	percent := dec.Zero
	if inv.TotalIncl.GreaterThan(dec.Zero) {
		percent = discrepancy.Div(inv.TotalIncl).Mul(decimal.NewFromInt(100))
	}

	return &Report{
		SourceID:           inv.SourceID,
		Date:               inv.Date,
		Reference:          inv.Reference,
		TotalIncl:          inv.TotalIncl,
		TotalExpected:      expected,
		Discrepancy:        discrepancy,
		DiscrepancyPercent: percent,
		ItemsFound:         len(inv.Items),
		Items:              inv.Items,
	}
}

// Summary aggregates discrepancy reports over a batch
type Summary struct {
	TotalInvoices        int             `json:"total_invoices"`
	TotalValueExpected   decimal.Decimal `json:"total_value_expected"`
	TotalValueIncl       decimal.Decimal `json:"total_value_incl"`
	HighDiscrepancyCount int             `json:"high_discrepancy_count"`
}

// Summarize builds a batch summary. Reports above thresholdPct count as high
// discrepancy; pass a zero-value decimal to use DefaultHighDiscrepancyPct.
func Summarize(reports []*Report, thresholdPct decimal.Decimal) Summary {
	if thresholdPct.IsZero() {
		thresholdPct = DefaultHighDiscrepancyPct
	}

	s := Summary{
		TotalInvoices:      len(reports),
		TotalValueExpected: dec.Zero,
		TotalValueIncl:     dec.Zero,
	}

	for _, r := range reports {
		s.TotalValueExpected = s.TotalValueExpected.Add(r.TotalExpected)
		s.TotalValueIncl = s.TotalValueIncl.Add(r.TotalIncl)
		if r.DiscrepancyPercent.GreaterThan(thresholdPct) {
			s.HighDiscrepancyCount++
		}
	}

	return s
}

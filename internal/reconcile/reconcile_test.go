package reconcile_test

import (
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/reconcile"
)

func invoiceWith(totalIncl string, items ...model.LineItem) *model.Invoice {
	return &model.Invoice{
		SourceID:  "test.txt",
		Date:      "15-03-2024",
		Reference: "INV00987",
		TotalIncl: dec.RequireFromString(totalIncl),
		Items:     items,
	}
}

func item(total, tax string) model.LineItem {
	return model.LineItem{
		Total: dec.RequireFromString(total),
		Tax:   dec.RequireFromString(tax),
	}
}

func TestReconcile(t *testing.T) {
	inv := invoiceWith("600.00", item("500.00", "50.00"))

	report := reconcile.Reconcile(inv)
	require.NotNil(t, report)

	assert.Equal(t, "test.txt", report.SourceID)
	assert.Equal(t, "INV00987", report.Reference)
	assert.Equal(t, 1, report.ItemsFound)
	assert.True(t, report.TotalExpected.Equal(dec.RequireFromString("550.00")))
	assert.True(t, report.Discrepancy.Equal(dec.RequireFromString("50.00")))

	// 50 / 600 * 100 ≈ 8.33%
	pct, _ := report.DiscrepancyPercent.Round(2).Float64()
	assert.InDelta(t, 8.33, pct, 0.01)
}

func TestReconcile_ExactMatch(t *testing.T) {
	inv := invoiceWith("550.00", item("500.00", "50.00"))

	report := reconcile.Reconcile(inv)

	assert.True(t, report.Discrepancy.IsZero())
	assert.True(t, report.DiscrepancyPercent.IsZero())
}

func TestReconcile_MultipleItems(t *testing.T) {
	inv := invoiceWith("330.00",
		item("100.00", "10.00"),
		item("200.00", "20.00"),
	)

	report := reconcile.Reconcile(inv)

	assert.Equal(t, 2, report.ItemsFound)
	assert.True(t, report.TotalExpected.Equal(dec.RequireFromString("330.00")))
	assert.True(t, report.Discrepancy.IsZero())
}

func TestReconcile_ZeroDeclaredTotal(t *testing.T) {
	// A missing or zero declared total yields zero percent, not a division
	// blowup and not a spurious 100%.
	inv := invoiceWith("0", item("500.00", "50.00"))

	report := reconcile.Reconcile(inv)

	assert.True(t, report.TotalExpected.Equal(dec.RequireFromString("550.00")))
	assert.True(t, report.Discrepancy.Equal(dec.RequireFromString("550.00")))
	assert.True(t, report.DiscrepancyPercent.IsZero())
}

func TestReconcile_NoItems(t *testing.T) {
	inv := invoiceWith("600.00")

	report := reconcile.Reconcile(inv)

	assert.Equal(t, 0, report.ItemsFound)
	assert.True(t, report.TotalExpected.IsZero())
	assert.True(t, report.Discrepancy.Equal(dec.RequireFromString("600.00")))

	pct, _ := report.DiscrepancyPercent.Float64()
	assert.InDelta(t, 100.0, pct, 0.001)
}

func TestSummarize(t *testing.T) {
	reports := []*reconcile.Report{
		reconcile.Reconcile(invoiceWith("550.00", item("500.00", "50.00"))), // exact
		reconcile.Reconcile(invoiceWith("600.00", item("500.00", "50.00"))), // ~8.33%
		reconcile.Reconcile(invoiceWith("556.00", item("500.00", "50.00"))), // ~1.08%
	}

	summary := reconcile.Summarize(reports, dec.Decimal{})

	assert.Equal(t, 3, summary.TotalInvoices)
	assert.Equal(t, 1, summary.HighDiscrepancyCount)
	assert.True(t, summary.TotalValueExpected.Equal(dec.RequireFromString("1650.00")))
	assert.True(t, summary.TotalValueIncl.Equal(dec.RequireFromString("1706.00")))
}

func TestSummarize_CustomThreshold(t *testing.T) {
	reports := []*reconcile.Report{
		reconcile.Reconcile(invoiceWith("600.00", item("500.00", "50.00"))), // ~8.33%
	}

	summary := reconcile.Summarize(reports, dec.NewFromInt(10))
	assert.Equal(t, 0, summary.HighDiscrepancyCount)

	summary = reconcile.Summarize(reports, dec.NewFromInt(5))
	assert.Equal(t, 1, summary.HighDiscrepancyCount)
}

func TestSummarize_Empty(t *testing.T) {
	summary := reconcile.Summarize(nil, dec.Decimal{})

	assert.Equal(t, 0, summary.TotalInvoices)
	assert.True(t, summary.TotalValueExpected.IsZero())
	assert.True(t, summary.TotalValueIncl.IsZero())
}

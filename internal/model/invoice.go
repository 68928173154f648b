package model

import (
	"github.com/shopspring/decimal"
)

// Layout identifies which line layout matched a piece of invoice text
type Layout string

const (
	LayoutGeneral    Layout = "GENERAL"
	LayoutExpress    Layout = "EXPRESS"
	LayoutExpressAlt Layout = "EXPRESS_ALT"
	LayoutLegacy     Layout = "LEGACY"
	LayoutUnknown    Layout = "UNKNOWN"
)

// Invoice is one extracted invoice record.
// Header fields come from anchor patterns over the full document text;
// Items come from the line matcher chain, in document order.
type Invoice struct {
	SourceID  string          `json:"source_id"`
	Date      string          `json:"date,omitempty"`
	Reference string          `json:"reference,omitempty"`
	TotalExcl decimal.Decimal `json:"total_excl"`
	TotalIncl decimal.Decimal `json:"total_incl"`
	Items     []LineItem      `json:"items"`
}

// LineItem is one extracted invoice line.
// Quantity * UnitPrice is within the matching layout's tolerance of Total
// at creation time; it is not re-checked afterwards.
type LineItem struct {
	Code        string          `json:"item_code,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
	UnitPrice   decimal.Decimal `json:"price"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	Layout      Layout          `json:"layout,omitempty"`
}

// ExpectedTotal sums line totals plus tax over all items.
// This is the figure reconciled against the declared TotalIncl.
func (inv *Invoice) ExpectedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range inv.Items {
		total = total.Add(item.Total).Add(item.Tax)
	}
	return total
}

// ItemCount returns the full item sequence length (not capped by export slots)
func (inv *Invoice) ItemCount() int {
	return len(inv.Items)
}

// Package export projects invoice records onto a fixed-width tabular schema.
//
// The schema denormalizes a variable-length item list into ItemSlots fixed
// slots per row; items beyond the last slot are dropped from the projection
// (reconciliation still sees them). Empty slots render as empty strings so
// the exported table keeps a uniform layout.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// ItemSlots is the number of item slots per export row
const ItemSlots = 3

var slotColumns = []string{"Code", "Description", "Quantity", "Unit", "Price (Ex)", "Tax", "Total Rand"}

// Slot holds one projected item. All fields are pre-rendered strings so an
// unpopulated slot is empty strings rather than zeros.
type Slot struct {
	Code        string
	Description string
	Quantity    string
	Unit        string
	Price       string
	Tax         string
	Total       string
}

// Row is one invoice projected onto the fixed export schema
type Row struct {
	Filename      string
	Date          string
	OurReference  string
	TotalExpected decimal.Decimal
	TotalIncl     decimal.Decimal
	Slots         [ItemSlots]Slot
}

// Project maps one invoice record onto an export row. Slot i takes item i
// when present; remaining slots stay empty.
func Project(inv *model.Invoice) Row {
	row := Row{
		Filename:      inv.SourceID,
		Date:          inv.Date,
		OurReference:  inv.Reference,
		TotalExpected: inv.ExpectedTotal(),
		TotalIncl:     inv.TotalIncl,
	}

	for i := 0; i < ItemSlots && i < len(inv.Items); i++ {
		item := inv.Items[i]
		row.Slots[i] = Slot{
			Code:        item.Code,
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			Unit:        item.Unit,
			Price:       item.UnitPrice.String(),
			Tax:         item.Tax.String(),
			Total:       item.Total.String(),
		}
	}

	return row
}

// ProjectAll projects a batch of invoices in order
func ProjectAll(invoices []*model.Invoice) []Row {
	rows := make([]Row, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, Project(inv))
	}
	return rows
}

// Header returns the export column names in order
func Header() []string {
	columns := []string{"Filename", "Date", "Our Reference", "Total Expected", "Total (Incl)"}
	for i := 1; i <= ItemSlots; i++ {
		for _, col := range slotColumns {
			columns = append(columns, fmt.Sprintf("Item %d %s", i, col))
		}
	}
	return columns
}

// Record returns the row values in Header order
func (r Row) Record() []string {
	record := []string{
		r.Filename,
		r.Date,
		r.OurReference,
		r.TotalExpected.String(),
		r.TotalIncl.String(),
	}
	for _, slot := range r.Slots {
		record = append(record,
			slot.Code,
			slot.Description,
			slot.Quantity,
			slot.Unit,
			slot.Price,
			slot.Tax,
			slot.Total,
		)
	}
	return record
}

// MarshalJSON renders the row as a flat object keyed by the export column names
func (r Row) MarshalJSON() ([]byte, error) {
	obj := make(map[string]interface{}, len(Header()))
	obj["Filename"] = r.Filename
	obj["Date"] = r.Date
	obj["Our Reference"] = r.OurReference
	obj["Total Expected"] = r.TotalExpected
	obj["Total (Incl)"] = r.TotalIncl

	for i, slot := range r.Slots {
		n := i + 1
		obj[fmt.Sprintf("Item %d Code", n)] = slot.Code
		obj[fmt.Sprintf("Item %d Description", n)] = slot.Description
		obj[fmt.Sprintf("Item %d Quantity", n)] = slot.Quantity
		obj[fmt.Sprintf("Item %d Unit", n)] = slot.Unit
		obj[fmt.Sprintf("Item %d Price (Ex)", n)] = slot.Price
		obj[fmt.Sprintf("Item %d Tax", n)] = slot.Tax
		obj[fmt.Sprintf("Item %d Total Rand", n)] = slot.Total
	}

	return json.Marshal(obj)
}

// WriteCSV writes the header row plus one record per row
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("failed to write row %s: %w", row.Filename, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename returns a timestamped export file name
func Filename(now time.Time) string {
	return fmt.Sprintf("invoice_data_%s.csv", now.Format("20060102_150405"))
}

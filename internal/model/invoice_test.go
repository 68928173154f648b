package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-extractor/internal/model"
)

func TestExpectedTotal(t *testing.T) {
	inv := &model.Invoice{
		Items: []model.LineItem{
			{Total: dec.RequireFromString("100.00"), Tax: dec.RequireFromString("15.00")},
			{Total: dec.RequireFromString("200.00"), Tax: dec.RequireFromString("30.00")},
		},
	}

	assert.True(t, inv.ExpectedTotal().Equal(dec.RequireFromString("345.00")))
}

func TestExpectedTotal_NoItems(t *testing.T) {
	inv := &model.Invoice{}
	assert.True(t, inv.ExpectedTotal().IsZero())
}

func TestItemCount(t *testing.T) {
	inv := &model.Invoice{
		Items: make([]model.LineItem, 5),
	}
	assert.Equal(t, 5, inv.ItemCount())
}

func TestInvoiceJSON(t *testing.T) {
	inv := &model.Invoice{
		SourceID:  "invoice.pdf",
		Date:      "15-03-2024",
		Reference: "INV00987",
		TotalIncl: dec.RequireFromString("51.50"),
		Items: []model.LineItem{
			{
				Code:      "A100",
				Quantity:  dec.NewFromInt(10),
				UnitPrice: dec.RequireFromString("5.00"),
				Layout:    model.LayoutGeneral,
			},
		},
	}

	data, err := json.Marshal(inv)
	require.NoError(t, err)

	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &obj))

	assert.Equal(t, "invoice.pdf", obj["source_id"])
	assert.Equal(t, "INV00987", obj["reference"])

	items, ok := obj["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)

	item := items[0].(map[string]interface{})
	assert.Equal(t, "A100", item["item_code"])
	assert.Equal(t, "GENERAL", item["layout"])
}

func TestParseError(t *testing.T) {
	err := model.NewParseError(model.LayoutGeneral, "quantity", "not a number", nil)
	assert.Contains(t, err.Error(), "GENERAL")
	assert.Contains(t, err.Error(), "quantity")
	assert.Nil(t, err.Unwrap())
}

func TestParseError_WithCause(t *testing.T) {
	cause := errors.New("bad digit")
	err := model.NewParseError(model.LayoutLegacy, "total", "parse failed", cause)

	assert.Contains(t, err.Error(), "bad digit")
	assert.ErrorIs(t, err, cause)
}

func TestExtractionError(t *testing.T) {
	cause := errors.New("malformed xref table")
	err := model.NewExtractionError("pdf", "source unreadable", cause)

	assert.Contains(t, err.Error(), "pdf")
	assert.Contains(t, err.Error(), "source unreadable")
	assert.ErrorIs(t, err, cause)

	bare := model.NewExtractionError("llm_text", "no response", nil)
	assert.Contains(t, bare.Error(), "llm_text")
	assert.Nil(t, bare.Unwrap())
}

// Package extractlib provides a public API for recovering structured invoice
// records from unstructured document text.
//
// This package exposes the core types and interfaces for extracting,
// reconciling and exporting invoice data from raw text or PDF sources.
//
// Example usage:
//
//	proc := extractlib.NewDefaultProcessor()
//	result, err := proc.ProcessText(ctx, "invoice.pdf", text)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report.DiscrepancyPercent)
package extractlib

import (
	"github.com/rezonia/invoice-extractor/internal/export"
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/reconcile"
)

// Re-export core types for public API
type (
	Invoice  = model.Invoice
	LineItem = model.LineItem
	Layout   = model.Layout
	Report   = reconcile.Report
	Summary  = reconcile.Summary
	Row      = export.Row
)

// Re-export layout constants
const (
	LayoutGeneral    = model.LayoutGeneral
	LayoutExpress    = model.LayoutExpress
	LayoutExpressAlt = model.LayoutExpressAlt
	LayoutLegacy     = model.LayoutLegacy
	LayoutUnknown    = model.LayoutUnknown
)

// ItemSlots is the fixed number of item slots in an export row
const ItemSlots = export.ItemSlots

// Re-export error types
type (
	ParseError      = model.ParseError
	ExtractionError = model.ExtractionError
)

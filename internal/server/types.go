package server

import (
	"github.com/rezonia/invoice-extractor/internal/export"
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/reconcile"
)

// ExtractResponse is the response for single-document extract endpoints
type ExtractResponse struct {
	Invoice    *model.Invoice    `json:"invoice"`
	Method     string            `json:"method"`
	Confidence float64           `json:"confidence"`
	Warnings   []string          `json:"warnings,omitempty"`
	Report     *reconcile.Report `json:"report"`
}

// ExportResponse is the response for the batch export endpoint
type ExportResponse struct {
	FilesProcessed   int               `json:"files_processed"`
	RecordsExtracted int               `json:"records_extracted"`
	Rows             []export.Row      `json:"rows"`
	Summary          reconcile.Summary `json:"summary"`
	Failures         []FileFailure     `json:"failures,omitempty"`
}

// ReconcileResponse is the response for the batch reconcile endpoint
type ReconcileResponse struct {
	Reports  []*reconcile.Report `json:"reports"`
	Summary  reconcile.Summary   `json:"summary"`
	Failures []FileFailure       `json:"failures,omitempty"`
}

// FileFailure reports a source file that could not be processed
type FileFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error    string   `json:"error"`
	Details  string   `json:"details,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

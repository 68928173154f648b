package extractlib

import (
	"context"
	"io"
)

// Document is one input to batch processing. ID must be unique within a
// batch if the caller keys results by it.
type Document struct {
	ID   string
	Data []byte
}

// ExtractionResult represents an extraction result with metadata
type ExtractionResult struct {
	Invoice     *Invoice
	Report      *Report
	Method      string
	Confidence  float64
	Warnings    []string
	NeedsReview bool
}

// Pipeline processes documents through the extraction chain
type Pipeline interface {
	// Process auto-detects the input format and processes it
	Process(ctx context.Context, sourceID string, r io.Reader) (*ExtractionResult, error)

	// ProcessBatch processes multiple documents concurrently
	ProcessBatch(ctx context.Context, docs []Document) ([]*ExtractionResult, error)
}

// Options configures pipeline behavior
type Options struct {
	// ReviewThreshold flags results below this confidence for review
	ReviewThreshold float64

	// HighDiscrepancyPercent marks reports above this discrepancy as high
	HighDiscrepancyPercent float64

	// LLM configuration (used only when EnableLLM is set)
	LLMAPIKey  string // API key (env: LLM_API_KEY)
	LLMBaseURL string // Base URL (env: LLM_BASE_URL)
	LLMModel   string // Text extraction model (env: LLM_MODEL)

	// EnableLLM turns on the LLM fallback for documents the pattern
	// chain extracts nothing from
	EnableLLM bool
}

// DefaultOptions returns default pipeline options
func DefaultOptions() Options {
	return Options{
		ReviewThreshold:        0.70,
		HighDiscrepancyPercent: 5,
		EnableLLM:              true,
		LLMBaseURL:             "https://openrouter.ai/api/v1",
		LLMModel:               "anthropic/claude-3.5-sonnet",
	}
}

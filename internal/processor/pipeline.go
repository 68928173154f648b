package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rezonia/invoice-extractor/internal/extract"
	"github.com/rezonia/invoice-extractor/internal/llm"
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/parser/pdf"
	"github.com/rezonia/invoice-extractor/internal/reconcile"
)

// ExtractionMethod indicates how the invoice was extracted
type ExtractionMethod string

const (
	MethodPattern ExtractionMethod = "pattern"
	MethodLLMText ExtractionMethod = "llm_text"
)

// Result represents the extraction result with metadata.
// Confidence is self-reported from the reconciliation discrepancy: agreement
// between extracted line totals and the declared total.
type Result struct {
	Invoice    *model.Invoice   `json:"invoice"`
	Method     ExtractionMethod `json:"method"`
	Confidence float64          `json:"confidence"`
	Warnings   []string         `json:"warnings,omitempty"`
	Error      error            `json:"-"`
}

// Pipeline orchestrates text extraction and the pattern chain, with an
// optional LLM fallback for documents the chain gets nothing from
type Pipeline struct {
	extractor    *extract.Extractor
	pdfExtractor *pdf.Extractor
	llmExtractor *llm.Extractor
}

// PipelineOption configures the pipeline
type PipelineOption func(*Pipeline)

// WithLLMExtractor sets the LLM extractor used as a fallback
func WithLLMExtractor(extractor *llm.Extractor) PipelineOption {
	return func(p *Pipeline) {
		p.llmExtractor = extractor
	}
}

// NewPipeline creates a new extraction pipeline
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		extractor:    extract.NewExtractor(),
		pdfExtractor: pdf.NewExtractor(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process reads document text from r and processes it
func (p *Pipeline) Process(ctx context.Context, sourceID string, r io.Reader) *Result {
	data, err := io.ReadAll(r)
	if err != nil {
		return &Result{
			Error: fmt.Errorf("failed to read input: %w", err),
		}
	}
	return p.ProcessText(ctx, sourceID, string(data))
}

// ProcessText runs the pattern engine over document text. The engine itself
// never fails; empty or unmatched text yields an empty record. When the chain
// finds no items and an LLM extractor is configured, the LLM gets one attempt.
func (p *Pipeline) ProcessText(ctx context.Context, sourceID, text string) *Result {
	inv := p.extractor.Extract(sourceID, text)

	var warnings []string
	if strings.TrimSpace(text) == "" {
		warnings = append(warnings, "document text is empty")
	}

	if len(inv.Items) == 0 && p.llmExtractor != nil && strings.TrimSpace(text) != "" {
		if llmResult := p.tryLLMExtraction(ctx, sourceID, text); llmResult != nil {
			return llmResult
		}
		warnings = append(warnings, "pattern chain found no line items; LLM fallback failed")
	}

	return &Result{
		Invoice:    inv,
		Method:     MethodPattern,
		Confidence: patternConfidence(inv),
		Warnings:   warnings,
	}
}

// ProcessPDF extracts text from PDF bytes, then runs the pattern engine.
// An unreadable source is an error at this boundary; a readable PDF with no
// text degrades to an empty record with a warning.
func (p *Pipeline) ProcessPDF(ctx context.Context, sourceID string, data []byte) *Result {
	extracted, err := p.pdfExtractor.ExtractBytes(ctx, data)
	if err != nil {
		return &Result{
			Error:    err,
			Warnings: []string{fmt.Sprintf("PDF text extraction failed: %v", err)},
		}
	}

	result := p.ProcessText(ctx, sourceID, extracted.RawText)
	if extracted.RawText == "" {
		result.Warnings = append(result.Warnings, "PDF contains no extractable text")
	}
	return result
}

func (p *Pipeline) tryLLMExtraction(ctx context.Context, sourceID, text string) *Result {
	inv, err := p.llmExtractor.ExtractFromText(ctx, text)
	if err != nil {
		return nil
	}

	inv.SourceID = sourceID
	return &Result{
		Invoice:    inv,
		Method:     MethodLLMText,
		Confidence: 0.80, // LLM output is not arithmetically validated
		Warnings:   []string{"pattern chain found no line items; used LLM fallback"},
	}
}

// patternConfidence scores extraction quality as agreement between the
// expected total and the declared total.
func patternConfidence(inv *model.Invoice) float64 {
	if len(inv.Items) == 0 {
		return 0
	}

	report := reconcile.Reconcile(inv)
	if !inv.TotalIncl.IsPositive() {
		// Items found but nothing declared to check them against
		return 0.5
	}

	pct, _ := report.DiscrepancyPercent.Float64()
	confidence := 1 - pct/100
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// Format represents the source document format
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// DetectFormat detects the source format from file content
func DetectFormat(data []byte) Format {
	if len(data) == 0 {
		return FormatUnknown
	}

	// PDF magic number
	if len(data) >= 4 && string(data[:4]) == "%PDF" {
		return FormatPDF
	}

	// Plain text: valid UTF-8 with no NUL bytes in the leading window
	window := data
	if len(window) > 512 {
		window = window[:512]
	}
	if bytes.IndexByte(window, 0) == -1 && utf8.Valid(window) {
		return FormatText
	}

	return FormatUnknown
}

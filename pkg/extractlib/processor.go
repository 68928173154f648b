package extractlib

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-extractor/internal/export"
	"github.com/rezonia/invoice-extractor/internal/llm"
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/processor"
	"github.com/rezonia/invoice-extractor/internal/reconcile"
)

// Processor implements Pipeline using the internal extraction pipeline
type Processor struct {
	pipeline *processor.Pipeline
	options  Options
}

// NewProcessor creates a new processor with the given options
func NewProcessor(opts Options) *Processor {
	var llmExtractor *llm.Extractor
	if opts.EnableLLM && opts.LLMAPIKey != "" {
		var clientOpts []llm.ClientOption
		if opts.LLMBaseURL != "" {
			clientOpts = append(clientOpts, llm.WithBaseURL(opts.LLMBaseURL))
		}

		client := llm.NewClient(opts.LLMAPIKey, clientOpts...)

		var extractorOpts []llm.ExtractorOption
		if opts.LLMModel != "" {
			extractorOpts = append(extractorOpts, llm.WithModel(opts.LLMModel))
		}

		llmExtractor = llm.NewExtractor(client, extractorOpts...)
	}

	pipeline := processor.NewPipeline(
		processor.WithLLMExtractor(llmExtractor),
	)

	return &Processor{
		pipeline: pipeline,
		options:  opts,
	}
}

// NewDefaultProcessor creates a processor with default options
func NewDefaultProcessor() *Processor {
	return NewProcessor(DefaultOptions())
}

// Process auto-detects the input format and returns the extraction result
func (p *Processor) Process(ctx context.Context, sourceID string, r io.Reader) (*ExtractionResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewExtractionError("input", "failed to read input", err)
	}
	return p.ProcessBytes(ctx, sourceID, data)
}

// ProcessBytes auto-detects the format of data and processes it
func (p *Processor) ProcessBytes(ctx context.Context, sourceID string, data []byte) (*ExtractionResult, error) {
	switch processor.DetectFormat(data) {
	case processor.FormatPDF:
		return p.ProcessPDF(ctx, sourceID, data)
	case processor.FormatText:
		return p.ProcessText(ctx, sourceID, string(data))
	default:
		return nil, model.NewExtractionError("input", "unsupported file format", nil)
	}
}

// ProcessText runs the pattern engine over document text
func (p *Processor) ProcessText(ctx context.Context, sourceID, text string) (*ExtractionResult, error) {
	return p.wrap(p.pipeline.ProcessText(ctx, sourceID, text))
}

// ProcessPDF extracts text from PDF bytes and processes it
func (p *Processor) ProcessPDF(ctx context.Context, sourceID string, data []byte) (*ExtractionResult, error) {
	return p.wrap(p.pipeline.ProcessPDF(ctx, sourceID, data))
}

// ProcessBatch processes multiple documents concurrently. Document
// extraction is independent per document, so each runs in its own
// goroutine with results collected by index.
func (p *Processor) ProcessBatch(ctx context.Context, docs []Document) ([]*ExtractionResult, error) {
	results := make([]*ExtractionResult, len(docs))
	errCh := make(chan error, len(docs))

	for i, doc := range docs {
		go func(idx int, doc Document) {
			result, err := p.ProcessBytes(ctx, doc.ID, doc.Data)
			if err != nil {
				errCh <- err
				return
			}
			results[idx] = result
			errCh <- nil
		}(i, doc)
	}

	// Wait for all goroutines
	var firstErr error
	for range docs {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return results, firstErr
}

// ExportRows projects batch results onto the fixed export schema,
// skipping failed (nil) results.
func ExportRows(results []*ExtractionResult) []Row {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		if r == nil || r.Invoice == nil {
			continue
		}
		rows = append(rows, export.Project(r.Invoice))
	}
	return rows
}

// Summarize aggregates the reports of batch results
func (p *Processor) Summarize(results []*ExtractionResult) Summary {
	reports := make([]*reconcile.Report, 0, len(results))
	for _, r := range results {
		if r == nil || r.Report == nil {
			continue
		}
		reports = append(reports, r.Report)
	}
	return reconcile.Summarize(reports, decimal.NewFromFloat(p.options.HighDiscrepancyPercent))
}

func (p *Processor) wrap(result *processor.Result) (*ExtractionResult, error) {
	if result.Error != nil {
		return nil, result.Error
	}

	return &ExtractionResult{
		Invoice:     result.Invoice,
		Report:      reconcile.Reconcile(result.Invoice),
		Method:      string(result.Method),
		Confidence:  result.Confidence,
		Warnings:    result.Warnings,
		NeedsReview: result.Confidence < p.options.ReviewThreshold,
	}, nil
}

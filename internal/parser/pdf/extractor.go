// Package pdf turns a source PDF into raw document text.
//
// This is the text-producing collaborator in front of the pattern engine:
// an unreadable source is reported here, while a readable PDF with no
// extractable text passes empty text through to the core.
package pdf

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// Extracted holds the result of text extraction from one document
type Extracted struct {
	RawText string
	Pages   int
}

// Extractor extracts raw text from PDF documents
type Extractor struct{}

// NewExtractor creates a new PDF text extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads a PDF from r and extracts its text
func (e *Extractor) Extract(ctx context.Context, r io.Reader) (*Extracted, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewExtractionError("pdf", "failed to read source", err)
	}
	return e.ExtractBytes(ctx, data)
}

// ExtractBytes extracts text from PDF bytes, page by page in row order.
// Pages that fail individually are skipped; only an unreadable document
// is an error.
func (e *Extractor) ExtractBytes(ctx context.Context, data []byte) (*Extracted, error) {
	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, model.NewExtractionError("pdf", "source unreadable", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, model.NewExtractionError("pdf", "failed to open PDF", err)
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, model.NewExtractionError("pdf", "extraction cancelled", err)
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			text.WriteString(strings.Join(words, " "))
			text.WriteString("\n")
		}
	}

	return &Extracted{
		RawText: text.String(),
		Pages:   pages,
	}, nil
}

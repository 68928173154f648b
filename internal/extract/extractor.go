// Package extract recovers structured invoice records from unstructured text.
//
// Header fields come from fixed anchor patterns over the whole document;
// line items come from a chain of layout matchers applied per line, ordered
// from most structured to least. Extraction is best-effort: malformed input
// degrades to empty fields and dropped lines, never an error.
package extract

import (
	"strings"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// Extractor drives header parsing and the line matcher chain
type Extractor struct {
	chain *Chain
}

// NewExtractor creates an extractor with the default matcher chain
func NewExtractor() *Extractor {
	return &Extractor{chain: NewChain()}
}

// Chain exposes the matcher chain, mainly so callers can register
// custom matchers ahead of the built-in layouts.
func (e *Extractor) Chain() *Chain {
	return e.chain
}

// Items extracts line items from the document text, one pass per line in
// original order. Layout header lines and blanks are skipped; a line no
// matcher claims contributes nothing.
func (e *Extractor) Items(text string) []model.LineItem {
	var items []model.LineItem

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isLayoutHeader(line) {
			continue
		}

		if item := e.chain.Match(line); item != nil {
			items = append(items, *item)
		}
	}

	return items
}

// Extract assembles one invoice record from document text. Assembly never
// fails: empty text produces a record with empty header fields and no items,
// which is indistinguishable here from text that genuinely contained nothing.
func (e *Extractor) Extract(sourceID, text string) *model.Invoice {
	header := ParseHeader(text)

	return &model.Invoice{
		SourceID:  sourceID,
		Date:      header.Date,
		Reference: header.Reference,
		TotalExcl: header.TotalExcl,
		TotalIncl: header.TotalIncl,
		Items:     e.Items(text),
	}
}

func isLayoutHeader(line string) bool {
	return strings.Contains(line, "Item Code") || strings.Contains(line, "Item Description")
}

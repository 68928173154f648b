package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// Extractor uses an LLM to extract invoice data from text the pattern
// chain could not handle
type Extractor struct {
	client    *Client
	textModel string
}

// ExtractorOption configures the extractor
type ExtractorOption func(*Extractor)

// WithModel sets the model to use for text extraction
func WithModel(model string) ExtractorOption {
	return func(e *Extractor) {
		e.textModel = model
	}
}

// NewExtractor creates a new LLM-based extractor
func NewExtractor(client *Client, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		client:    client,
		textModel: ModelClaude35Sonnet,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ExtractFromText extracts invoice data from document text
func (e *Extractor) ExtractFromText(ctx context.Context, text string) (*model.Invoice, error) {
	prompt := fmt.Sprintf(UserPromptTextExtraction, text)

	response, err := e.client.ChatText(ctx, e.textModel, SystemPromptInvoiceExtractor, prompt)
	if err != nil {
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}

	return e.parseResponse(response)
}

// ExtractFromNoisyText extracts invoice data from text with likely OCR damage
func (e *Extractor) ExtractFromNoisyText(ctx context.Context, text string) (*model.Invoice, error) {
	prompt := fmt.Sprintf(UserPromptOCRCorrection, text)

	response, err := e.client.ChatText(ctx, e.textModel, SystemPromptInvoiceExtractor, prompt)
	if err != nil {
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}

	return e.parseResponse(response)
}

// LLMResponse represents the JSON structure returned by the LLM
type LLMResponse struct {
	Date      string        `json:"date"`
	Reference string        `json:"reference"`
	TotalExcl json.Number   `json:"total_excl"`
	TotalIncl json.Number   `json:"total_incl"`
	Items     []LLMLineItem `json:"items"`
}

// LLMLineItem represents a line item in the LLM response
type LLMLineItem struct {
	Code        string      `json:"item_code"`
	Description string      `json:"description"`
	Quantity    json.Number `json:"quantity"`
	Unit        string      `json:"unit"`
	Price       json.Number `json:"price"`
	Tax         json.Number `json:"tax"`
	Total       json.Number `json:"total"`
}

func (e *Extractor) parseResponse(response string) (*model.Invoice, error) {
	jsonStr := ExtractJSON(response)

	var llmResp LLMResponse
	if err := json.Unmarshal([]byte(jsonStr), &llmResp); err != nil {
		return nil, model.NewParseError(model.LayoutUnknown, "response", "LLM returned malformed JSON", err)
	}

	return ConvertResponse(&llmResp), nil
}

// ConvertResponse maps a parsed LLM response onto an invoice record.
// Amounts that fail to parse degrade to zero rather than erroring.
func ConvertResponse(resp *LLMResponse) *model.Invoice {
	inv := &model.Invoice{
		Date:      strings.TrimSpace(resp.Date),
		Reference: strings.TrimSpace(resp.Reference),
		TotalExcl: parseDecimal(resp.TotalExcl),
		TotalIncl: parseDecimal(resp.TotalIncl),
	}

	for _, item := range resp.Items {
		inv.Items = append(inv.Items, model.LineItem{
			Code:        item.Code,
			Description: item.Description,
			Quantity:    parseDecimal(item.Quantity),
			Unit:        item.Unit,
			UnitPrice:   parseDecimal(item.Price),
			Tax:         parseDecimal(item.Tax),
			Total:       parseDecimal(item.Total),
			Layout:      model.LayoutUnknown,
		})
	}

	return inv
}

func parseDecimal(n json.Number) decimal.Decimal {
	if n == "" {
		return decimal.Zero
	}

	// Tolerate thousands separators in model output
	s := strings.ReplaceAll(string(n), ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}

	return d
}

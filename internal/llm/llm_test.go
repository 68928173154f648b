package llm_test

import (
	"encoding/json"
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-extractor/internal/llm"
)

func TestNewClient(t *testing.T) {
	client := llm.NewClient("test-api-key")
	require.NotNil(t, client)
}

func TestNewClient_WithOptions(t *testing.T) {
	client := llm.NewClient("test-api-key",
		llm.WithBaseURL("https://custom.api.com/v1"),
		llm.WithDefaultModel(llm.ModelGPT4o),
	)
	require.NotNil(t, client)
}

func TestNewExtractor(t *testing.T) {
	client := llm.NewClient("test-api-key")
	extractor := llm.NewExtractor(client)
	require.NotNil(t, extractor)
}

func TestNewExtractor_WithModel(t *testing.T) {
	client := llm.NewClient("test-api-key")
	extractor := llm.NewExtractor(client, llm.WithModel(llm.ModelGPT4oMini))
	require.NotNil(t, extractor)
}

func TestExtractJSON_CodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "Here is the invoice data:\n```json\n{\"reference\": \"INV001\"}\n```",
			expected: `{"reference": "INV001"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"reference\": \"INV002\"}\n```",
			expected: `{"reference": "INV002"}`,
		},
		{
			name:     "raw json object",
			input:    `{"reference": "INV003"}`,
			expected: `{"reference": "INV003"}`,
		},
		{
			name:     "raw json array",
			input:    `[{"id": 1}, {"id": 2}]`,
			expected: `[{"id": 1}, {"id": 2}]`,
		},
		{
			name:     "json with explanation",
			input:    "I found the following data:\n```json\n{\"total_incl\": 1407.40}\n```\nThis represents the total amount.",
			expected: `{"total_incl": 1407.40}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := llm.ExtractJSON(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestModelConstants(t *testing.T) {
	models := []string{
		llm.ModelClaude35Sonnet,
		llm.ModelClaude3Haiku,
		llm.ModelGPT4oMini,
		llm.ModelGPT4o,
		llm.ModelGeminiFlash,
	}

	for _, m := range models {
		assert.NotEmpty(t, m)
		assert.Contains(t, m, "/") // All models have provider/model format
	}
}

func TestLLMResponse_Parsing(t *testing.T) {
	jsonResp := `{
		"date": "15-03-2024",
		"reference": "INV00987",
		"total_excl": 1234.56,
		"total_incl": 1407.40,
		"items": [
			{
				"item_code": "LSD : EL",
				"description": "LOW SULPHUR DIESEL : EL",
				"quantity": 20049.00,
				"unit": "",
				"price": 24.1264,
				"tax": 0,
				"total": 483710.19
			}
		]
	}`

	var resp llm.LLMResponse
	err := json.Unmarshal([]byte(jsonResp), &resp)
	require.NoError(t, err)

	assert.Equal(t, "15-03-2024", resp.Date)
	assert.Equal(t, "INV00987", resp.Reference)
	assert.Equal(t, "1234.56", resp.TotalExcl.String())
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "LSD : EL", resp.Items[0].Code)
	assert.Equal(t, "LOW SULPHUR DIESEL : EL", resp.Items[0].Description)
}

func TestLLMResponse_MissingFields(t *testing.T) {
	var resp llm.LLMResponse
	err := json.Unmarshal([]byte(`{"reference": "INV00987"}`), &resp)
	require.NoError(t, err)

	inv := llm.ConvertResponse(&resp)
	assert.Equal(t, "INV00987", inv.Reference)
	assert.True(t, inv.TotalExcl.IsZero())
	assert.True(t, inv.TotalIncl.IsZero())
	assert.Empty(t, inv.Items)
}

func TestConvertResponse(t *testing.T) {
	resp := &llm.LLMResponse{
		Date:      " 15-03-2024 ",
		Reference: "INV00987",
		TotalIncl: "1,407.40",
		Items: []llm.LLMLineItem{
			{
				Code:     "A100",
				Quantity: "10",
				Price:    "5.00",
				Tax:      "1.50",
				Total:    "51.50",
			},
		},
	}

	inv := llm.ConvertResponse(resp)
	require.NotNil(t, inv)

	assert.Equal(t, "15-03-2024", inv.Date)
	assert.True(t, inv.TotalIncl.Equal(dec.RequireFromString("1407.40")))
	require.Len(t, inv.Items, 1)
	assert.True(t, inv.Items[0].Total.Equal(dec.RequireFromString("51.50")))
	assert.True(t, inv.Items[0].Tax.Equal(dec.RequireFromString("1.50")))
}

func TestPromptTemplates(t *testing.T) {
	// Verify prompt templates are not empty
	assert.NotEmpty(t, llm.SystemPromptInvoiceExtractor)
	assert.NotEmpty(t, llm.UserPromptTextExtraction)
	assert.NotEmpty(t, llm.UserPromptOCRCorrection)

	// Verify templates describe the expected output
	assert.Contains(t, llm.SystemPromptInvoiceExtractor, "invoice")
	assert.Contains(t, llm.SystemPromptInvoiceExtractor, "Rand")
	assert.Contains(t, llm.UserPromptTextExtraction, "JSON")
	assert.Contains(t, llm.UserPromptTextExtraction, "total_incl")
}

func TestDefaultBaseURL(t *testing.T) {
	assert.Equal(t, "https://openrouter.ai/api/v1", llm.DefaultBaseURL)
}

// Benchmark tests

func BenchmarkExtractJSON(b *testing.B) {
	input := "Here is the data:\n```json\n{\"reference\": \"INV001\", \"total_incl\": 1407.40}\n```"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		llm.ExtractJSON(input)
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	apiKey       string
	llmBaseURL   string
	llmModel     string
)

var rootCmd = &cobra.Command{
	Use:   "invoice-extractor",
	Short: "Extract structured records from invoice documents",
	Long: `Invoice Extractor recovers structured financial records from invoice
documents: header fields (date, reference, declared totals) and itemized
line entries, reconciled against the document-level total.

Supports:
  - PDF invoices: text extraction plus the layout matcher chain
  - Plain text: already-extracted document text
  - Layouts: general tabular, Express fuel (two variants), legacy fallback
  - Optional LLM fallback for documents no layout matches

Examples:
  # Process a single PDF
  invoice-extractor process invoice.pdf

  # Process a folder and export CSV
  invoice-extractor process invoices/ -f csv -o invoice_data.csv

  # Show discrepancy reports
  invoice-extractor reconcile invoices/ --threshold 5`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, csv, table)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for LLM fallback (env: LLM_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&llmBaseURL, "llm-base-url", "", "LLM API base URL (env: LLM_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&llmModel, "llm-model", "", "LLM model for text extraction (env: LLM_MODEL)")

	// Load from environment variables if not set via flags
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// API key
	if apiKey == "" {
		apiKey = os.Getenv("LLM_API_KEY")
	}
	// Base URL
	if llmBaseURL == "" {
		llmBaseURL = os.Getenv("LLM_BASE_URL")
	}
	// Text model
	if llmModel == "" {
		llmModel = os.Getenv("LLM_MODEL")
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

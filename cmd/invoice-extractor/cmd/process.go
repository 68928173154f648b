package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/export"
	"github.com/rezonia/invoice-extractor/internal/llm"
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/processor"
	"github.com/rezonia/invoice-extractor/internal/reconcile"
)

var (
	outputFile string
	timeout    time.Duration
)

var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Process invoice files",
	Long: `Process one or more invoice files and extract structured records.

Supported formats:
  - PDF: .pdf (text is extracted first)
  - Text: .txt (treated as already-extracted document text)

Extraction is best-effort: lines no layout matches are dropped, missing
header anchors yield empty fields, and each record carries a discrepancy
report comparing extracted line totals against the declared total.

Examples:
  invoice-extractor process invoice.pdf
  invoice-extractor process invoices/ -f table
  invoice-extractor process *.pdf -f csv -o invoice_data.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	processCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Processing timeout per file")
}

func runProcess(cmd *cobra.Command, args []string) error {
	// Collect all files to process
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found to process")
	}

	printVerbose("Found %d files to process\n", len(files))

	pipeline := newPipeline()

	// Process files
	results := make([]*ProcessResult, 0, len(files))
	for _, file := range files {
		printVerbose("Processing: %s\n", file)

		result := processFile(pipeline, file)
		results = append(results, result)

		if result.Error != "" {
			printVerbose("  Error: %s\n", result.Error)
		} else {
			printVerbose("  Method: %s, Items: %d, Confidence: %.2f\n",
				result.Method, result.Report.ItemsFound, result.Confidence)
		}
	}

	// Output results
	return outputResults(results)
}

// newPipeline builds the extraction pipeline, with the LLM fallback wired
// in when an API key is configured
func newPipeline() *processor.Pipeline {
	var llmExtractor *llm.Extractor
	if apiKey != "" {
		var clientOpts []llm.ClientOption
		if llmBaseURL != "" {
			clientOpts = append(clientOpts, llm.WithBaseURL(llmBaseURL))
		}

		client := llm.NewClient(apiKey, clientOpts...)

		var extractorOpts []llm.ExtractorOption
		if llmModel != "" {
			extractorOpts = append(extractorOpts, llm.WithModel(llmModel))
		}

		llmExtractor = llm.NewExtractor(client, extractorOpts...)
		printVerbose("LLM fallback enabled (model: %s)\n", llmModel)
	}

	return processor.NewPipeline(
		processor.WithLLMExtractor(llmExtractor),
	)
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		// Check if it's a glob pattern
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			// Check if it's a directory
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}

			if info.IsDir() {
				// Walk directory
				err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return err
					}
					if !info.IsDir() && isSupportedFile(path) {
						files = append(files, path)
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
			} else {
				files = append(files, arg)
			}
		} else {
			for _, match := range matches {
				info, err := os.Stat(match)
				if err != nil {
					continue
				}
				if !info.IsDir() && isSupportedFile(match) {
					files = append(files, match)
				}
			}
		}
	}

	return files, nil
}

func isSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf", ".txt":
		return true
	default:
		return false
	}
}

func processFile(pipeline *processor.Pipeline, filePath string) *ProcessResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result := &ProcessResult{
		File: filePath,
	}

	// Read file
	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read file: %v", err)
		return result
	}

	sourceID := filepath.Base(filePath)

	// Detect format, falling back to the extension
	format := processor.DetectFormat(data)
	if format == processor.FormatUnknown {
		switch strings.ToLower(filepath.Ext(filePath)) {
		case ".pdf":
			format = processor.FormatPDF
		case ".txt":
			format = processor.FormatText
		}
	}

	// Process based on format
	var pipelineResult *processor.Result
	switch format {
	case processor.FormatPDF:
		pipelineResult = pipeline.ProcessPDF(ctx, sourceID, data)

	case processor.FormatText:
		pipelineResult = pipeline.ProcessText(ctx, sourceID, string(data))

	default:
		result.Error = "unsupported file format"
		return result
	}

	// Convert result
	if pipelineResult.Error != nil {
		result.Error = pipelineResult.Error.Error()
		return result
	}

	result.Invoice = pipelineResult.Invoice
	result.Report = reconcile.Reconcile(pipelineResult.Invoice)
	result.Method = string(pipelineResult.Method)
	result.Confidence = pipelineResult.Confidence
	result.Warnings = pipelineResult.Warnings

	return result
}

func outputResults(results []*ProcessResult) error {
	var writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	switch outputFormat {
	case "json":
		return outputJSON(writer, results)
	case "table":
		return outputTable(writer, results)
	case "csv":
		return outputCSV(writer, results)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputJSON(w *os.File, results []*ProcessResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func outputTable(w *os.File, results []*ProcessResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tREFERENCE\tDATE\tITEMS\tTOTAL (INCL)\tEXPECTED\tDISC %\tMETHOD")
	fmt.Fprintln(tw, "----\t---------\t----\t-----\t------------\t--------\t------\t------")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\t\t\t\n", r.File, r.Error)
			continue
		}

		if r.Invoice != nil {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
				r.File,
				r.Invoice.Reference,
				r.Invoice.Date,
				r.Report.ItemsFound,
				r.Invoice.TotalIncl.StringFixed(2),
				r.Report.TotalExpected.StringFixed(2),
				r.Report.DiscrepancyPercent.StringFixed(2),
				r.Method,
			)
		}
	}

	return tw.Flush()
}

// outputCSV writes the fixed-width export schema (3 item slots per row)
func outputCSV(w *os.File, results []*ProcessResult) error {
	invoices := make([]*model.Invoice, 0, len(results))
	for _, r := range results {
		if r.Error == "" && r.Invoice != nil {
			invoices = append(invoices, r.Invoice)
		}
	}
	return export.WriteCSV(w, export.ProjectAll(invoices))
}

// ProcessResult holds the result of processing a single file
type ProcessResult struct {
	File       string            `json:"file"`
	Invoice    *model.Invoice    `json:"invoice,omitempty"`
	Report     *reconcile.Report `json:"report,omitempty"`
	Method     string            `json:"method,omitempty"`
	Confidence float64           `json:"confidence,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
	Error      string            `json:"error,omitempty"`
}

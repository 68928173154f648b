package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/export"
	"github.com/rezonia/invoice-extractor/internal/model"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export [files...]",
	Short: "Batch extract and write a timestamped CSV",
	Long: `Process invoice files and write one CSV with a fixed schema: header
fields plus three item slots per document. Documents with more than
three items keep only the first three in the export; the extra items
still count toward the expected total.

The output file is named invoice_data_<timestamp>.csv.

Examples:
  invoice-extractor export invoices/
  invoice-extractor export *.pdf --dir /tmp/exports`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "Directory to write the CSV into")
}

func runExport(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found to export")
	}

	pipeline := newPipeline()

	invoices := make([]*model.Invoice, 0, len(files))
	failed := 0

	for _, file := range files {
		result := processFile(pipeline, file)
		if result.Error != "" {
			printVerbose("skipping %s: %s\n", file, result.Error)
			failed++
			continue
		}
		invoices = append(invoices, result.Invoice)
	}

	if len(invoices) == 0 {
		return fmt.Errorf("no files processed successfully")
	}

	outPath := filepath.Join(exportDir, export.Filename(time.Now()))
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := export.WriteCSV(f, export.ProjectAll(invoices)); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	fmt.Printf("Wrote %d records to %s", len(invoices), outPath)
	if failed > 0 {
		fmt.Printf(" (%d files failed)", failed)
	}
	fmt.Println()

	return nil
}

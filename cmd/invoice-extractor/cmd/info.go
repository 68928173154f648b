package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/extract"
	"github.com/rezonia/invoice-extractor/internal/model"
	"github.com/rezonia/invoice-extractor/internal/processor"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show information about invoice files",
	Long: `Display information about invoice files without full processing.

Shows:
  - Detected file format (PDF, Text)
  - Which line layouts match the document (text files only)
  - Header anchors found (date, reference, totals)
  - File metadata

Examples:
  invoice-extractor info invoice.txt
  invoice-extractor info *.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found")
	}

	for _, file := range files {
		printFileInfo(file)
		fmt.Println()
	}

	return nil
}

func printFileInfo(filePath string) {
	fmt.Printf("File: %s\n", filePath)

	// Get file info
	info, err := os.Stat(filePath)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}

	fmt.Printf("  Size: %d bytes\n", info.Size())
	fmt.Printf("  Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))

	// Read file content
	data, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Printf("  Error reading file: %v\n", err)
		return
	}

	// Detect format
	format := processor.DetectFormat(data)
	fmt.Printf("  Format: %s\n", formatName(format))

	if format == processor.FormatPDF {
		if pages, err := api.PageCount(bytes.NewReader(data), nil); err == nil {
			fmt.Printf("  Pages: %d\n", pages)
		}
	}

	// For text files, show header anchors and matched layouts
	if format == processor.FormatText {
		text := string(data)

		header := extract.ParseHeader(text)
		fmt.Printf("  Date: %s\n", orNone(header.Date))
		fmt.Printf("  Reference: %s\n", orNone(header.Reference))

		layouts := detectLayouts(text)
		fmt.Printf("  Layouts: %s\n", layoutNames(layouts))

		preview := getPreview(text, 200)
		if preview != "" {
			fmt.Printf("  Preview: %s\n", preview)
		}
	}
}

func formatName(f processor.Format) string {
	switch f {
	case processor.FormatPDF:
		return "PDF"
	case processor.FormatText:
		return "Text"
	default:
		return "Unknown"
	}
}

// detectLayouts runs the matcher chain over the document and collects the
// distinct layouts that claimed at least one line
func detectLayouts(text string) []model.Layout {
	extractor := extract.NewExtractor()
	seen := make(map[model.Layout]bool)
	var layouts []model.Layout

	for _, item := range extractor.Items(text) {
		if !seen[item.Layout] {
			seen[item.Layout] = true
			layouts = append(layouts, item.Layout)
		}
	}

	return layouts
}

func layoutNames(layouts []model.Layout) string {
	if len(layouts) == 0 {
		return "none matched"
	}

	names := make([]string, len(layouts))
	for i, l := range layouts {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "(not found)"
	}
	return s
}

func getPreview(content string, maxLen int) string {
	// Clean up whitespace
	content = strings.TrimSpace(content)
	content = strings.ReplaceAll(content, "\n", " ")
	content = strings.ReplaceAll(content, "\t", " ")

	// Collapse multiple spaces
	for strings.Contains(content, "  ") {
		content = strings.ReplaceAll(content, "  ", " ")
	}

	if len(content) > maxLen {
		content = content[:maxLen] + "..."
	}

	return content
}

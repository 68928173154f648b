package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/reconcile"
)

var (
	discrepancyThreshold float64
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [files...]",
	Short: "Reconcile extracted items against declared totals",
	Long: `Process invoice files and report on the discrepancy between the sum of
extracted line items (total + tax per item) and the document's declared
inclusive total.

A discrepancy above the threshold flags the document for review: either
the extraction missed line items or the document itself is inconsistent.
Documents whose declared total is zero or missing report zero discrepancy.

Examples:
  invoice-extractor reconcile invoice.pdf
  invoice-extractor reconcile invoices/ --threshold 5
  invoice-extractor reconcile *.txt -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().Float64Var(&discrepancyThreshold, "threshold", reconcile.DefaultHighDiscrepancyPct.InexactFloat64(), "Discrepancy percentage above which a document is flagged")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found to reconcile")
	}

	pipeline := newPipeline()
	threshold := decimal.NewFromFloat(discrepancyThreshold)

	reports := make([]*reconcile.Report, 0, len(files))
	failures := make([]string, 0)

	for _, file := range files {
		result := processFile(pipeline, file)
		if result.Error != "" {
			failures = append(failures, fmt.Sprintf("%s: %s", file, result.Error))
			continue
		}
		reports = append(reports, result.Report)
	}

	summary := reconcile.Summarize(reports, threshold)

	// Output
	if outputFormat == "json" {
		out := struct {
			Reports  []*reconcile.Report `json:"reports"`
			Summary  reconcile.Summary   `json:"summary"`
			Failures []string            `json:"failures,omitempty"`
		}{reports, summary, failures}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	// Table output
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tREFERENCE\tITEMS\tEXPECTED\tDECLARED\tDISC %\tFLAG")
	fmt.Fprintln(tw, "----\t---------\t-----\t--------\t--------\t------\t----")

	for _, r := range reports {
		flag := ""
		if r.DiscrepancyPercent.GreaterThan(threshold) {
			flag = "REVIEW"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			r.SourceID,
			r.Reference,
			r.ItemsFound,
			r.TotalExpected.StringFixed(2),
			r.TotalIncl.StringFixed(2),
			r.DiscrepancyPercent.StringFixed(2),
			flag,
		)
	}
	tw.Flush()

	fmt.Println()
	fmt.Printf("Documents: %d  Expected value: %s  Declared value: %s  Flagged: %d\n",
		summary.TotalInvoices,
		summary.TotalValueExpected.StringFixed(2),
		summary.TotalValueIncl.StringFixed(2),
		summary.HighDiscrepancyCount,
	)

	for _, f := range failures {
		fmt.Printf("  ✗ %s\n", f)
	}

	if summary.HighDiscrepancyCount > 0 {
		return fmt.Errorf("%d documents above discrepancy threshold", summary.HighDiscrepancyCount)
	}

	return nil
}

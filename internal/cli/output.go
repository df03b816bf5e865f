// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayComparison], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult], [FormatProgress].
//
//   - Write* functions write data to files on the filesystem.
//     They handle file creation, directory setup, and error handling.
//     Examples: [WriteReport], [WriteXLSXReport].

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agbru/billcheck/internal/assessment"
	"github.com/agbru/billcheck/internal/billing"
	"github.com/agbru/billcheck/internal/format"
	"github.com/agbru/billcheck/internal/orchestration"
	"github.com/agbru/billcheck/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the report path; empty disables file output. A .xlsx
	// extension selects a spreadsheet, anything else plain text.
	OutputFile string
	// Quiet prints a single tab-separated line instead of the full report.
	Quiet bool
	// Details lists reference pricing under each line item.
	Details bool
}

// Report is everything a saved report contains. Sweep is empty for a
// single-hospital check.
type Report struct {
	Result    billing.ComparisonResult
	Items     []billing.LineItem
	Sweep     []orchestration.SweepResult
	Generated time.Time
}

// IsXLSX reports whether path names a spreadsheet report.
func IsXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// WriteReport saves report to path, creating parent directories as needed.
func WriteReport(report Report, path string) error {
	if path == "" {
		return nil
	}
	if report.Generated.IsZero() {
		report.Generated = time.Now()
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if IsXLSX(path) {
		return WriteXLSXReport(report, path)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeTextReport(report, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// writeTextReport renders report without colors.
func writeTextReport(report Report, w io.Writer) error {
	r := report.Result
	sum := assessment.Summarize(r)
	var b strings.Builder

	fmt.Fprintf(&b, "# Hospital Bill Assessment\n")
	fmt.Fprintf(&b, "# Generated: %s\n", report.Generated.Format(time.RFC3339))
	fmt.Fprintf(&b, "# Hospital: %s (%s)\n", r.HospitalName, r.HospitalID)
	fmt.Fprintf(&b, "# Assessment: %s\n\n", sum.Verdict.Message)
	fmt.Fprintf(&b, "Total billed:      %s\n", format.Currency(sum.TotalBilled))
	fmt.Fprintf(&b, "Fair value:        %s\n", optional(sum.TotalFairValue))
	fmt.Fprintf(&b, "Potential savings: %s\n", optional(sum.TotalPotentialSavings))
	fmt.Fprintf(&b, "Flagged items:     %d of %d\n\n", sum.Flagged, len(r.LineItems))

	for i, li := range r.LineItems {
		code := ""
		if li.Code != nil {
			code = *li.Code
		}
		fmt.Fprintf(&b, "%d. %s [%s] qty %d\n", i+1, li.Description, code, li.Quantity)
		fmt.Fprintf(&b, "   billed %s, negotiated %s, variance %s, status %s\n",
			format.Currency(li.BilledAmount),
			format.OptionalCurrency(li.HospitalNegotiatedRate, notAvail),
			format.OptionalPercent(li.VariancePercent, notAvail),
			StatusLabel(li.Status))
	}

	if len(report.Sweep) > 0 {
		fmt.Fprintf(&b, "\n# Hospitals compared\n")
		for _, s := range report.Sweep {
			if s.Err != nil {
				fmt.Fprintf(&b, "%s: failed (%v)\n", s.Facility.Name, s.Err)
				continue
			}
			fmt.Fprintf(&b, "%s: fair value %s, savings %s, %s\n", s.Facility.Name,
				optional(s.Summary.TotalFairValue), optional(s.Summary.TotalPotentialSavings), s.Summary.Verdict.Message)
		}
	}
	if len(r.DataSources) > 0 {
		fmt.Fprintf(&b, "\nData sources: %s\n", strings.Join(r.DataSources, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// DisplayResultWithConfig prints result according to config and saves the
// report when an output file is set.
func DisplayResultWithConfig(out io.Writer, report Report, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(report.Result, out)
	} else {
		DisplayComparison(report.Result, report.Items, config.Details, out)
	}

	if config.OutputFile != "" {
		if err := WriteReport(report, config.OutputFile); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Report saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
		}
	}
	return nil
}

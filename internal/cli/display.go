package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/agbru/billcheck/internal/api"
	"github.com/agbru/billcheck/internal/assessment"
	"github.com/agbru/billcheck/internal/billing"
	"github.com/agbru/billcheck/internal/format"
	"github.com/agbru/billcheck/internal/ui"
	"github.com/agbru/billcheck/internal/workflow"
)

const (
	descWidth = 32
	notAvail  = "N/A"
)

// DisplayItems prints the line items as a numbered table followed by the
// running total.
func DisplayItems(items []billing.LineItem, out io.Writer) {
	if len(items) == 0 {
		fmt.Fprintf(out, "%sNo line items.%s\n", ui.ColorDim(), ui.ColorReset())
		return
	}
	fmt.Fprintf(out, "%s%3s  %-10s  %-*s  %4s  %12s%s\n", ui.ColorUnderline(),
		"#", "Code", descWidth, "Description", "Qty", "Amount", ui.ColorReset())
	for i, it := range items {
		fmt.Fprintf(out, "%3d  %-10s  %-*s  %4d  %12s\n", i+1,
			format.Truncate(it.CodeOrEmpty(), 10), descWidth, format.Truncate(it.Description, descWidth),
			it.Quantity, format.Currency(it.Amount))
	}
	fmt.Fprintf(out, "%s%*s  %12s%s\n", ui.ColorBold(), 3+2+10+2+descWidth+2+4, "Total",
		format.Currency(assessment.RunningTotal(items)), ui.ColorReset())
}

// DisplayDetection prints what the extractor found about the issuing
// facility: the automatic selection, or the hint when none was made.
func DisplayDetection(s workflow.State, out io.Writer) {
	switch {
	case s.Selected != nil && s.AutoSelected:
		fmt.Fprintf(out, "Detected hospital: %s%s%s %s(auto-selected)%s\n",
			ui.ColorCyan(), s.Selected.Name, ui.ColorReset(), ui.ColorDim(), ui.ColorReset())
	case s.Selected != nil:
		fmt.Fprintf(out, "Selected hospital: %s%s%s\n", ui.ColorCyan(), s.Selected.Name, ui.ColorReset())
	case s.Hint != nil:
		fmt.Fprintf(out, "Bill appears to be from %s%s%s %s(%s confidence, please confirm)%s\n",
			ui.ColorYellow(), s.Hint.Name, ui.ColorReset(), ui.ColorDim(), s.Hint.Confidence, ui.ColorReset())
	case s.PendingResolve():
		fmt.Fprintf(out, "%sMatching detected hospital once the facility list loads...%s\n", ui.ColorDim(), ui.ColorReset())
	default:
		fmt.Fprintf(out, "%sNo hospital detected on the bill.%s\n", ui.ColorDim(), ui.ColorReset())
	}
}

// DisplayFacilities prints the facility list, marking selectedID.
func DisplayFacilities(facilities []billing.Facility, selectedID string, out io.Writer) {
	if len(facilities) == 0 {
		fmt.Fprintf(out, "%sNo hospitals match.%s\n", ui.ColorDim(), ui.ColorReset())
		return
	}
	for _, f := range facilities {
		marker := " "
		color := ""
		if f.ID == selectedID {
			marker, color = "*", ui.ColorGreen()
		}
		loc := strings.Trim(strings.Join([]string{f.City, f.State}, ", "), ", ")
		fmt.Fprintf(out, "%s %s%-16s%s %s %s%s%s\n", marker, ui.ColorBlue(), f.ID, ui.ColorReset(),
			color+f.Name+ui.ColorReset(), ui.ColorDim(), loc, ui.ColorReset())
	}
}

// DisplayHealth prints the backend probe outcome.
func DisplayHealth(status api.HealthStatus, err error, out io.Writer) {
	if err != nil {
		fmt.Fprintf(out, "%sBackend unreachable: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	color := ui.ColorGreen()
	if !status.Healthy() {
		color = ui.ColorYellow()
	}
	fmt.Fprintf(out, "Backend status: %s%s%s", color, status.Status, ui.ColorReset())
	if status.Version != "" {
		fmt.Fprintf(out, " (version %s)", status.Version)
	}
	fmt.Fprintln(out)
}

// DisplayComparison prints the verdict, the totals and one row per priced
// line item. With details, reference pricing is listed under each row.
// items are the line items as currently edited and are used only to warn
// when the local total no longer matches the server's.
func DisplayComparison(result billing.ComparisonResult, items []billing.LineItem, details bool, out io.Writer) {
	sum := assessment.Summarize(result)

	fmt.Fprintf(out, "\n--- Assessment: %s%s%s ---\n", ui.ColorBold(), result.HospitalName, ui.ColorReset())
	fmt.Fprintf(out, "%s%s%s\n\n", ui.ColorLevel(sum.Verdict.Severity), sum.Verdict.Message, ui.ColorReset())
	displaySummary(sum, len(result.LineItems), out)

	if len(result.LineItems) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s%-*s  %12s  %12s  %9s  %-10s%s\n", ui.ColorUnderline(),
			descWidth, "Description", "Billed", "Negotiated", "Variance", "Status", ui.ColorReset())
		for _, li := range result.LineItems {
			sev := assessment.ClassifyStatus(li.Status)
			fmt.Fprintf(out, "%-*s  %12s  %12s  %9s  %s%-10s%s\n",
				descWidth, format.Truncate(li.Description, descWidth),
				format.Currency(li.BilledAmount),
				format.OptionalCurrency(li.HospitalNegotiatedRate, notAvail),
				format.OptionalPercent(li.VariancePercent, notAvail),
				ui.ColorSeverity(sev), StatusLabel(li.Status), ui.ColorReset())
			if details {
				displayLineDetails(li, out)
			}
		}
	}

	if len(result.DataSources) > 0 {
		fmt.Fprintf(out, "\n%sData sources: %s%s\n", ui.ColorDim(), strings.Join(result.DataSources, ", "), ui.ColorReset())
	}
	if items != nil {
		if drift := assessment.Drift(items, result); math.Abs(drift) >= 0.005 {
			fmt.Fprintf(out, "%sNote: the current items total %s, which differs from the compared total by %s.%s\n",
				ui.ColorYellow(), format.Currency(assessment.RunningTotal(items)), format.Currency(drift), ui.ColorReset())
		}
	}
}

func displaySummary(sum assessment.Summary, lines int, out io.Writer) {
	fmt.Fprintf(out, "  Total billed:       %s%s%s\n", ui.ColorBold(), format.Currency(sum.TotalBilled), ui.ColorReset())
	fmt.Fprintf(out, "  Fair value:         %s\n", optional(sum.TotalFairValue))
	fmt.Fprintf(out, "  Potential savings:  %s%s%s\n", ui.ColorGreen(), optional(sum.TotalPotentialSavings), ui.ColorReset())
	if sum.LineSavingsDiffer() {
		fmt.Fprintf(out, "  Line-item savings:  %s\n", optional(sum.LineSavings))
	}
	fmt.Fprintf(out, "  Flagged items:      %d of %d\n", sum.Flagged, lines)
}

func displayLineDetails(li billing.LineItemComparison, out io.Writer) {
	const indent = "      "
	if code := li.Code; code != nil && *code != "" {
		fmt.Fprintf(out, "%s%sCode %s%s\n", indent, ui.ColorDim(), *code, ui.ColorReset())
	}
	if cms := li.CMSData; cms != nil {
		fmt.Fprintf(out, "%sMedicare avg %s (min %s, max %s)\n", indent,
			format.OptionalCurrency(cms.MedicareAvgPayment, notAvail),
			format.OptionalCurrency(cms.MedicareMinPayment, notAvail),
			format.OptionalCurrency(cms.MedicareMaxPayment, notAvail))
		if cms.MatchWarning != nil && *cms.MatchWarning != "" {
			fmt.Fprintf(out, "%s%s! %s%s\n", indent, ui.ColorYellow(), *cms.MatchWarning, ui.ColorReset())
		}
	}
	if rs := li.RegionalStats; rs != nil {
		fmt.Fprintf(out, "%sRegion: median %s, range %s to %s across %d hospitals\n", indent,
			format.Currency(rs.Median), format.Currency(rs.Min), format.Currency(rs.Max), rs.Count)
	}
	if li.PotentialSavings != nil {
		fmt.Fprintf(out, "%sPotential savings %s%s%s\n", indent, ui.ColorGreen(), format.Currency(*li.PotentialSavings), ui.ColorReset())
	}
	for _, p := range li.OtherHospitals {
		fmt.Fprintf(out, "%s  %s: %s negotiated\n", indent, p.HospitalName, format.Currency(p.NegotiatedRate))
	}
}

func optional(v assessment.Optional) string {
	if !v.Set {
		return notAvail
	}
	return format.Currency(v.Value)
}

// StatusLabel renders a line status for display, e.g. "very_high" as
// "VERY HIGH". An empty status reads as unknown.
func StatusLabel(s billing.Status) string {
	if s == "" {
		s = billing.StatusUnknown
	}
	return strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}

// FormatQuietResult formats a result as a single line for scripts:
// assessment, billed, fair value and savings separated by tabs.
func FormatQuietResult(result billing.ComparisonResult) string {
	sum := assessment.Summarize(result)
	assess := string(result.OverallAssessment)
	if assess == "" {
		assess = string(billing.AssessmentInsufficientData)
	}
	return strings.Join([]string{
		assess,
		fmt.Sprintf("%.2f", sum.TotalBilled),
		quietOptional(sum.TotalFairValue),
		quietOptional(sum.TotalPotentialSavings),
	}, "\t")
}

func quietOptional(v assessment.Optional) string {
	if !v.Set {
		return "-"
	}
	return fmt.Sprintf("%.2f", v.Value)
}

// DisplayQuietResult prints FormatQuietResult followed by a newline.
func DisplayQuietResult(result billing.ComparisonResult, out io.Writer) {
	fmt.Fprintln(out, FormatQuietResult(result))
}

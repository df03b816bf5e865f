package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/agbru/billcheck/internal/assessment"
	"github.com/agbru/billcheck/internal/billing"
	"github.com/agbru/billcheck/internal/cli"
	"github.com/agbru/billcheck/internal/format"
	"github.com/agbru/billcheck/internal/workflow"
)

func (m Model) uploadView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Upload a hospital bill"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("PDF file"))
	b.WriteString("\n")
	if m.mode == inputFile {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(labelStyle.Render("press enter to choose a file"))
	}
	b.WriteString("\n\n")

	s := m.state
	switch {
	case s.Upload != workflow.UploadIdle:
		fmt.Fprintf(&b, "%s %s\n", busyStyle.Render(stageLabel(s.Upload)), s.PendingFile)
	case s.UploadErr != nil:
		b.WriteString(errorStyle.Render("Upload failed: " + s.UploadErr.Error()))
		b.WriteString("\n")
	}
	if !s.FacilitiesLoaded {
		if s.SearchErr != nil {
			b.WriteString(errorStyle.Render("Could not load hospitals: " + s.SearchErr.Error()))
		} else {
			b.WriteString(labelStyle.Render("Loading hospitals..."))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// stageLabel renders an upload stage as "Uploading..." or "Extracting...".
func stageLabel(u workflow.UploadStatus) string {
	name := u.String()
	return strings.ToUpper(name[:1]) + name[1:] + "..."
}

func (m Model) reviewView() string {
	s := m.state
	var b strings.Builder
	title := fmt.Sprintf("Review %d line items", len(s.Items))
	if s.Edited {
		title += " (edited)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.detectionLine())
	b.WriteString("\n\n")

	rows := m.bodyHeight() - 6
	start, end := window(m.itemCursor, len(s.Items), rows)
	for i := start; i < end; i++ {
		it := s.Items[i]
		desc := it.Description
		if code := it.CodeOrEmpty(); code != "" {
			desc += " [" + code + "]"
		}
		line := fmt.Sprintf("%3d. %-44s x%-3d %12s", i+1, format.Truncate(desc, 44), it.Quantity, format.Currency(it.Amount))
		b.WriteString(m.cursorLine(i == m.itemCursor && m.mode == inputNone, line))
		b.WriteString("\n")
	}
	if len(s.Items) == 0 {
		b.WriteString(labelStyle.Render("No line items. Press r to start over."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Running total: "))
	b.WriteString(valueStyle.Render(format.Currency(assessment.RunningTotal(s.Items))))
	if m.mode == inputAmount {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("Item %d: ", m.itemCursor+1)))
		b.WriteString(m.input.View())
	}
	return b.String()
}

// detectionLine describes what the bill says about its hospital.
func (m Model) detectionLine() string {
	s := m.state
	switch {
	case s.Selected != nil && s.AutoSelected:
		return successStyle.Render("Hospital detected: " + s.Selected.Name)
	case s.Selected != nil:
		return successStyle.Render("Hospital: " + s.Selected.Name)
	case s.Hint != nil:
		return hintStyle.Render(fmt.Sprintf("Bill mentions %s (%s confidence, please confirm)", s.Hint.Name, s.Hint.Confidence))
	case s.PendingResolve():
		return labelStyle.Render("Matching the detected hospital...")
	default:
		return labelStyle.Render("No hospital detected")
	}
}

func (m Model) hospitalView() string {
	s := m.state
	var b strings.Builder
	b.WriteString(titleStyle.Render("Choose the hospital"))
	b.WriteString("\n")
	if m.mode == inputSearch {
		b.WriteString(m.input.View())
	} else {
		query := s.Query
		if query == "" {
			query = "all"
		}
		b.WriteString(labelStyle.Render("Search: " + query))
	}
	switch {
	case s.Searching:
		b.WriteString(busyStyle.Render("  searching..."))
	case s.SearchErr != nil:
		b.WriteString(errorStyle.Render("  search failed: " + s.SearchErr.Error()))
	}
	b.WriteString("\n")
	if s.Hint != nil && s.Selected == nil {
		b.WriteString(hintStyle.Render(fmt.Sprintf("Bill mentions %s (%s confidence)", s.Hint.Name, s.Hint.Confidence)))
	}
	b.WriteString("\n")

	n := s.Facilities.Len()
	rows := m.bodyHeight() - 6
	start, end := window(m.facilityCursor, n, rows)
	for i := start; i < end; i++ {
		f := s.Facilities.At(i)
		mark := "  "
		if s.Selected != nil && s.Selected.ID == f.ID {
			mark = selectedStyle.Render("✓ ")
		}
		line := mark + fmt.Sprintf("%-40s %s", format.Truncate(f.Name, 40), cityState(f))
		b.WriteString(m.cursorLine(i == m.facilityCursor && m.mode == inputNone, line))
		b.WriteString("\n")
	}
	if n == 0 && s.FacilitiesLoaded {
		b.WriteString(labelStyle.Render("No hospitals match."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case s.Comparing:
		b.WriteString(busyStyle.Render("Comparing..."))
	case s.CompareErr != nil:
		b.WriteString(errorStyle.Render("Comparison failed: " + s.CompareErr.Error()))
	case s.Selected != nil:
		b.WriteString(labelStyle.Render("Selected: "))
		b.WriteString(valueStyle.Render(s.Selected.Name))
	}
	return b.String()
}

func cityState(f billing.Facility) string {
	switch {
	case f.City != "" && f.State != "":
		return f.City + ", " + f.State
	case f.City != "":
		return f.City
	default:
		return f.State
	}
}

func (m Model) resultsView() string {
	s := m.state
	if s.Result == nil {
		return labelStyle.Render("No results.")
	}
	res := *s.Result
	sum := assessment.Summarize(res)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Assessment: " + res.HospitalName))
	b.WriteString("\n")
	b.WriteString(levelStyle(sum.Verdict.Severity).Render(sum.Verdict.Message))
	b.WriteString("\n\n")

	metric := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-20s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	metric("Total billed", format.Currency(sum.TotalBilled))
	metric("Fair value", optionalCurrency(sum.TotalFairValue))
	metric("Potential savings", optionalCurrency(sum.TotalPotentialSavings))
	metric("Flagged items", fmt.Sprintf("%d of %d", sum.Flagged, len(res.LineItems)))
	if d := assessment.Drift(s.Items, res); math.Abs(d) >= 0.005 {
		b.WriteString(hintStyle.Render(fmt.Sprintf("Running total %s differs from the compared total", format.Currency(assessment.RunningTotal(s.Items)))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	rows := m.bodyHeight() - 10
	for i, li := range res.LineItems {
		if i >= rows && rows > 0 {
			b.WriteString(labelStyle.Render(fmt.Sprintf("... %d more", len(res.LineItems)-i)))
			b.WriteString("\n")
			break
		}
		status := severityStyle(assessment.ClassifyStatus(li.Status)).Render(fmt.Sprintf("%-10s", cli.StatusLabel(li.Status)))
		fmt.Fprintf(&b, "%-40s %12s  %s %10s\n",
			format.Truncate(li.Description, 40),
			format.Currency(li.BilledAmount),
			status,
			format.OptionalPercent(li.VariancePercent, "-"))
	}
	if len(res.DataSources) > 0 {
		b.WriteString(labelStyle.Render("Data sources: " + strings.Join(res.DataSources, ", ")))
	}
	return b.String()
}

func optionalCurrency(v assessment.Optional) string {
	if !v.Set {
		return "n/a"
	}
	return format.Currency(v.Value)
}

func (m Model) cursorLine(active bool, line string) string {
	if active {
		return cursorStyle.Render("> ") + line
	}
	return "  " + line
}

// window returns the visible slice [start, end) of n rows that keeps cursor
// on screen.
func window(cursor, n, rows int) (int, int) {
	if rows < 1 {
		rows = 1
	}
	if n <= rows {
		return 0, n
	}
	start := cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return errorStyle.Render(" " + m.err.Error())
	case m.notice != "":
		return successStyle.Render(" " + m.notice)
	case m.state.Busy():
		return busyStyle.Render(" Working...")
	}
	return ""
}

// stepBindings lists the keys shown in the footer for the current screen.
func (m Model) stepBindings() []key.Binding {
	k := m.keymap
	if m.mode != inputNone {
		return []key.Binding{k.Enter, k.Cancel}
	}
	switch m.state.Step {
	case workflow.StepUpload:
		return []key.Binding{k.Enter, k.Health, k.Quit}
	case workflow.StepReview:
		return []key.Binding{k.Up, k.Edit, k.Remove, k.Enter, k.Reset, k.Quit}
	case workflow.StepHospital:
		if !m.state.CanCompare() {
			return []key.Binding{k.Up, k.Search, k.Enter, k.Back, k.Reset, k.Quit}
		}
		return []key.Binding{k.Up, k.Search, k.Enter, k.Compare, k.Back, k.Reset, k.Quit}
	default:
		return []key.Binding{k.Save, k.Reset, k.Quit}
	}
}

func (m Model) footerView() string {
	bindings := m.stepBindings()
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, footerKeyStyle.Render(h.Key)+" "+footerDescStyle.Render(h.Desc))
	}
	return " " + strings.Join(parts, footerDescStyle.Render("  ·  "))
}

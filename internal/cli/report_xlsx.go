package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/agbru/billcheck/internal/assessment"
	"github.com/agbru/billcheck/internal/billing"
	"github.com/agbru/billcheck/internal/orchestration"
)

// Sheet names of a spreadsheet report.
const (
	SheetSummary   = "Summary"
	SheetLineItems = "Line items"
	SheetHospitals = "Hospitals"
)

// WriteXLSXReport saves report as a workbook with a summary sheet, one row
// per priced line item and, for sweeps, one row per hospital. Amounts are
// written as numbers with a currency format; absent values are left blank.
func WriteXLSXReport(report Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newReportStyles(f)
	if err != nil {
		return err
	}
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := writeSummarySheet(f, styles, report); err != nil {
		return err
	}
	if err := writeLineItemsSheet(f, styles, report.Result.LineItems); err != nil {
		return err
	}
	if len(report.Sweep) > 0 {
		if err := writeHospitalsSheet(f, styles, report.Sweep); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

type reportStyles struct {
	header   int
	currency int
	percent  int
}

func newReportStyles(f *excelize.File) (reportStyles, error) {
	var s reportStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	}); err != nil {
		return s, fmt.Errorf("xlsx style: %w", err)
	}
	currencyFmt := `"$"#,##0.00`
	if s.currency, err = f.NewStyle(&excelize.Style{CustomNumFmt: &currencyFmt}); err != nil {
		return s, fmt.Errorf("xlsx style: %w", err)
	}
	percentFmt := `0.0"%"`
	if s.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &percentFmt}); err != nil {
		return s, fmt.Errorf("xlsx style: %w", err)
	}
	return s, nil
}

func writeSummarySheet(f *excelize.File, st reportStyles, report Report) error {
	r := report.Result
	sum := assessment.Summarize(r)
	rows := [][]any{
		{"Hospital", r.HospitalName},
		{"Hospital id", r.HospitalID},
		{"Assessment", sum.Verdict.Message},
		{"Total billed", sum.TotalBilled},
		{"Fair value", optionalCell(sum.TotalFairValue)},
		{"Potential savings", optionalCell(sum.TotalPotentialSavings)},
		{"Flagged items", sum.Flagged},
		{"Line items", len(r.LineItems)},
		{"Data sources", strings.Join(r.DataSources, ", ")},
		{"Generated", report.Generated.Format(time.RFC3339)},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return fmt.Errorf("xlsx summary: %w", err)
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(rows)), st.header); err != nil {
		return fmt.Errorf("xlsx summary: %w", err)
	}
	if err := f.SetCellStyle(SheetSummary, "B4", "B6", st.currency); err != nil {
		return fmt.Errorf("xlsx summary: %w", err)
	}
	return f.SetColWidth(SheetSummary, "A", "B", 28)
}

var lineItemHeader = []any{
	"Code", "Description", "Quantity", "Billed", "Negotiated", "Gross charge",
	"Medicare avg", "Regional median", "Variance %", "Potential savings", "Status",
}

func writeLineItemsSheet(f *excelize.File, st reportStyles, items []billing.LineItemComparison) error {
	if _, err := f.NewSheet(SheetLineItems); err != nil {
		return fmt.Errorf("xlsx line items: %w", err)
	}
	if err := writeHeader(f, st, SheetLineItems, lineItemHeader); err != nil {
		return err
	}
	for i, li := range items {
		var medicare, median any
		if li.CMSData != nil {
			medicare = ptrCell(li.CMSData.MedicareAvgPayment)
		}
		if li.RegionalStats != nil {
			median = li.RegionalStats.Median
		}
		row := []any{
			ptrString(li.Code), li.Description, li.Quantity, li.BilledAmount,
			ptrCell(li.HospitalNegotiatedRate), ptrCell(li.HospitalGrossCharge),
			medicare, median, ptrCell(li.VariancePercent), ptrCell(li.PotentialSavings),
			StatusLabel(li.Status),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetLineItems, cell, &row); err != nil {
			return fmt.Errorf("xlsx line items: %w", err)
		}
	}
	if n := len(items); n > 0 {
		last := n + 1
		if err := f.SetCellStyle(SheetLineItems, "D2", fmt.Sprintf("H%d", last), st.currency); err != nil {
			return fmt.Errorf("xlsx line items: %w", err)
		}
		if err := f.SetCellStyle(SheetLineItems, "I2", fmt.Sprintf("I%d", last), st.percent); err != nil {
			return fmt.Errorf("xlsx line items: %w", err)
		}
		if err := f.SetCellStyle(SheetLineItems, "J2", fmt.Sprintf("J%d", last), st.currency); err != nil {
			return fmt.Errorf("xlsx line items: %w", err)
		}
	}
	return f.SetColWidth(SheetLineItems, "B", "B", 40)
}

var hospitalHeader = []any{"Hospital id", "Hospital", "Fair value", "Potential savings", "Assessment", "Error"}

func writeHospitalsSheet(f *excelize.File, st reportStyles, results []orchestration.SweepResult) error {
	if _, err := f.NewSheet(SheetHospitals); err != nil {
		return fmt.Errorf("xlsx hospitals: %w", err)
	}
	if err := writeHeader(f, st, SheetHospitals, hospitalHeader); err != nil {
		return err
	}
	for i, r := range results {
		row := []any{r.Facility.ID, r.Facility.Name, nil, nil, nil, nil}
		if r.Err != nil {
			row[5] = r.Err.Error()
		} else {
			row[2] = optionalCell(r.Summary.TotalFairValue)
			row[3] = optionalCell(r.Summary.TotalPotentialSavings)
			row[4] = r.Summary.Verdict.Message
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetHospitals, cell, &row); err != nil {
			return fmt.Errorf("xlsx hospitals: %w", err)
		}
	}
	if err := f.SetCellStyle(SheetHospitals, "C2", fmt.Sprintf("D%d", len(results)+1), st.currency); err != nil {
		return fmt.Errorf("xlsx hospitals: %w", err)
	}
	return f.SetColWidth(SheetHospitals, "B", "B", 36)
}

func writeHeader(f *excelize.File, st reportStyles, sheet string, header []any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx %s: %w", sheet, err)
	}
	end, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", end, st.header); err != nil {
		return fmt.Errorf("xlsx %s: %w", sheet, err)
	}
	return nil
}

// ptrCell returns *p, or nil so the cell stays blank.
func ptrCell(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptrString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func optionalCell(v assessment.Optional) any {
	if !v.Set {
		return nil
	}
	return v.Value
}

package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestWriteReportText(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "dir", "report.txt")
	report := Report{Result: sampleResult(), Sweep: sweepResults(), Generated: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	if err := WriteReport(report, path); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	got := string(content)
	for _, want := range []string{
		"# Generated: 2026-03-01T12:00:00Z",
		"# Hospital: Duke University Hospital (duke_main)",
		"Potential savings: $266.00",
		"1. Office visit [99213] qty 1",
		"status VERY HIGH",
		"# Hospitals compared",
		"UNC Rex Hospital: failed",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\x1b[") {
		t.Error("text report contains escape codes")
	}
}

func TestWriteReportEmptyPath(t *testing.T) {
	t.Parallel()
	if err := WriteReport(Report{}, ""); err != nil {
		t.Errorf("WriteReport(\"\") = %v", err)
	}
}

func TestWriteReportUnwritable(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := WriteReport(Report{Result: sampleResult()}, filepath.Join(blocker, "report.txt")); err == nil {
		t.Error("expected an error writing below a regular file")
	}
}

func TestWriteXLSXReport(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "report.XLSX")
	if !IsXLSX(path) {
		t.Fatal("IsXLSX should ignore case")
	}
	if err := WriteReport(Report{Result: sampleResult(), Sweep: sweepResults()}, path); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); strings.Join(got, ",") != strings.Join([]string{SheetSummary, SheetLineItems, SheetHospitals}, ",") {
		t.Errorf("sheets = %v", got)
	}

	hospital, err := f.GetCellValue(SheetSummary, "B1")
	if err != nil || hospital != "Duke University Hospital" {
		t.Errorf("summary B1 = %q, %v", hospital, err)
	}
	billed, err := f.GetCellValue(SheetSummary, "B4", excelize.Options{RawCellValue: true})
	if err != nil || billed != "510" {
		t.Errorf("total billed cell = %q, %v", billed, err)
	}

	rows, err := f.GetRows(SheetLineItems)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("line item rows = %d, want header + 2", len(rows))
	}
	if rows[1][0] != "99213" || rows[1][len(rows[1])-1] != "VERY HIGH" {
		t.Errorf("first line row = %v", rows[1])
	}
	// Absent negotiated rate stays blank.
	if neg, _ := f.GetCellValue(SheetLineItems, "E3"); neg != "" {
		t.Errorf("absent negotiated rate = %q", neg)
	}

	hrows, err := f.GetRows(SheetHospitals)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(hrows) != 4 || hrows[3][0] != "unc_rex" || !strings.Contains(hrows[3][len(hrows[3])-1], "HTTP 503") {
		t.Errorf("hospital rows = %v", hrows)
	}
}

func TestWriteXLSXReportSingleHospital(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteXLSXReport(Report{Result: sampleResult()}, path); err != nil {
		t.Fatalf("WriteXLSXReport: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if idx, _ := f.GetSheetIndex(SheetHospitals); idx != -1 {
		t.Error("single-hospital report should not have a hospitals sheet")
	}
}

func TestDisplayResultWithConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tests := []struct {
		name     string
		config   OutputConfig
		contains []string
		absent   []string
	}{
		{
			name:     "full",
			config:   OutputConfig{},
			contains: []string{"--- Assessment:", "Total billed"},
		},
		{
			name:     "quiet",
			config:   OutputConfig{Quiet: true, OutputFile: filepath.Join(dir, "quiet.txt")},
			contains: []string{"significantly_overcharged\t510.00"},
			absent:   []string{"Report saved", "Assessment"},
		},
		{
			name:     "saved",
			config:   OutputConfig{OutputFile: filepath.Join(dir, "saved.xlsx")},
			contains: []string{"Report saved to:"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			if err := DisplayResultWithConfig(&out, Report{Result: sampleResult()}, tt.config); err != nil {
				t.Fatalf("DisplayResultWithConfig: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out.String(), want) {
					t.Errorf("missing %q:\n%s", want, out.String())
				}
			}
			for _, bad := range tt.absent {
				if strings.Contains(out.String(), bad) {
					t.Errorf("unexpected %q:\n%s", bad, out.String())
				}
			}
			if tt.config.OutputFile != "" {
				if _, err := os.Stat(tt.config.OutputFile); errors.Is(err, os.ErrNotExist) {
					t.Error("report file not written")
				}
			}
		})
	}
}

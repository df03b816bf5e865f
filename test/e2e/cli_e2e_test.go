package e2e

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/agbru/billcheck/internal/api/apitest"
)

// TestCLI_E2E builds the binary and runs it against an in-process fake
// backend.
func TestCLI_E2E(t *testing.T) {
	tmpDir := t.TempDir()
	binName := "billcheck"
	if runtime.GOOS == "windows" {
		binName = "billcheck.exe"
	}
	binPath := filepath.Join(tmpDir, binName)

	// go test runs with the package directory as CWD; build from the module root.
	rootDir := "../.."

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/billcheck")
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build billcheck: %v", err)
	}

	backend := apitest.New()
	srv := backend.Start()
	t.Cleanup(srv.Close)

	bill := filepath.Join(tmpDir, "bill.pdf")
	if err := os.WriteFile(bill, []byte("%PDF-1.4 test bill"), 0o600); err != nil {
		t.Fatal(err)
	}
	notPDF := filepath.Join(tmpDir, "bill.txt")
	if err := os.WriteFile(notPDF, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	xlsx := filepath.Join(tmpDir, "reports", "check.xlsx")
	sweepReport := filepath.Join(tmpDir, "reports", "sweep.txt")

	base := []string{"--base-url", srv.URL}
	with := func(args ...string) []string { return append(append([]string{}, base...), args...) }

	tests := []struct {
		name     string
		args     []string
		wantOut  string // substring match (case-insensitive)
		wantCode int
		wantFile string
	}{
		{
			name:     "Check",
			args:     with("--mode", "check", "--file", bill),
			wantOut:  "Assessment: Duke University Hospital",
			wantCode: 0,
		},
		{
			name:     "Check Positional File With Report",
			args:     with("--mode", "check", "--output", xlsx, bill),
			wantOut:  "Report saved to",
			wantCode: 0,
			wantFile: xlsx,
		},
		{
			name:     "Check Quiet",
			args:     with("--mode", "check", "--quiet", "--file", bill),
			wantOut:  "overcharged",
			wantCode: 0,
		},
		{
			name:     "Check Hospital Override",
			args:     with("--mode", "check", "--hospital", "wakemed_north", "--file", bill),
			wantOut:  "Assessment: WakeMed North Hospital",
			wantCode: 0,
		},
		{
			name:     "Check Rejects Non-PDF",
			args:     with("--mode", "check", "--file", notPDF),
			wantOut:  "only PDF files",
			wantCode: 3,
		},
		{
			name:     "Check Requires File",
			args:     with("--mode", "check"),
			wantOut:  "requires --file",
			wantCode: 4,
		},
		{
			name:     "Sweep",
			args:     with("--mode", "sweep", "--hospitals", "duke_main,wakemed_north", "--output", sweepReport, "--file", bill),
			wantOut:  "Lowest fair value: WakeMed North Hospital",
			wantCode: 0,
			wantFile: sweepReport,
		},
		{
			name:     "Sweep Unknown Hospital",
			args:     with("--mode", "sweep", "--hospitals", "nowhere", "--file", bill),
			wantOut:  "unknown hospital id(s): nowhere",
			wantCode: 3,
		},
		{
			name:     "Search",
			args:     with("--mode", "search", "--query", "wake"),
			wantOut:  "wakemed_north",
			wantCode: 0,
		},
		{
			name:     "Health",
			args:     with("--mode", "health"),
			wantOut:  "Backend status: healthy",
			wantCode: 0,
		},
		{
			name:     "Health Unreachable",
			args:     []string{"--mode", "health", "--base-url", "http://127.0.0.1:1", "--timeout", "2s"},
			wantOut:  "Backend unreachable",
			wantCode: 2,
		},
		{
			name:     "Unknown Mode",
			args:     with("--mode", "fax"),
			wantOut:  "unknown --mode",
			wantCode: 4,
		},
		{
			name:     "Help",
			args:     []string{"--help"},
			wantOut:  "usage",
			wantCode: 0,
		},
		{
			name:     "Completion",
			args:     []string{"--completion", "bash"},
			wantOut:  "complete -o filenames",
			wantCode: 0,
		},
		{
			name:     "Version Flag",
			args:     []string{"--version"},
			wantOut:  "billcheck",
			wantCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binPath, tt.args...)
			cmd.Env = append(os.Environ(), "NO_COLOR=1")
			output, err := cmd.CombinedOutput()
			outStr := string(output)

			code := 0
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nOutput:\n%s", code, tt.wantCode, outStr)
			}
			if !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)) {
				t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
			}
			if tt.wantFile != "" {
				if _, err := os.Stat(tt.wantFile); err != nil {
					t.Errorf("report not written: %v", err)
				}
			}
		})
	}
}

// Package cli provides the terminal front ends that do not take over the
// screen: the interactive REPL, the batch bill check, sweep presentation,
// report export and shell completion.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/billcheck/internal/billing"
	"github.com/agbru/billcheck/internal/ui"
	"github.com/agbru/billcheck/internal/workflow"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Timeout bounds each command's remote calls.
	Timeout     time.Duration
	RadiusMiles *float64
	UseCMSData  *bool
	// Details lists reference pricing under each compared line.
	Details bool
}

// REPL is an interactive, line-oriented session over a workflow controller.
type REPL struct {
	config   REPLConfig
	ctrl     *workflow.Controller
	in       io.Reader
	out      io.Writer
	readFile func(string) ([]byte, error)
}

// NewREPL creates a REPL driving ctrl.
func NewREPL(ctrl *workflow.Controller, config REPLConfig) *REPL {
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}
	return &REPL{
		config:   config,
		ctrl:     ctrl,
		in:       os.Stdin,
		out:      os.Stdout,
		readFile: os.ReadFile,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start loads the facility list, then reads and executes commands until
// the user quits, input ends or ctx is canceled.
func (r *REPL) Start(ctx context.Context) {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	startCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	if err := r.ctrl.Start(startCtx); err != nil {
		fmt.Fprintf(r.out, "%sCould not load hospitals: %v%s\n", ui.ColorYellow(), err, ui.ColorReset())
	}
	cancel()

	reader := bufio.NewReader(r.in)
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(r.out, "%sbillcheck[%s]> %s", ui.ColorGreen(), r.ctrl.State().Step, ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !r.processCommand(ctx, input) {
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s        %sHospital Bill Check - Interactive Mode%s            %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

var replCommands = []struct{ usage, help string }{
	{"upload <path>", "Upload a bill PDF and extract its line items"},
	{"items", "List the extracted line items"},
	{"edit <n> <amount> [qty]", "Change the amount (and quantity) of item n"},
	{"add <amount> <description>", "Add a line item"},
	{"rm <n>", "Remove item n"},
	{"next", "Continue to hospital selection"},
	{"back", "Return to the line items"},
	{"search [query]", "Search hospitals (empty lists all)"},
	{"select <id>|none", "Choose (or clear) the hospital to compare against"},
	{"compare", "Compare the bill against the selected hospital"},
	{"results", "Show the last comparison"},
	{"save <path>", "Save the results (.xlsx or text)"},
	{"reset", "Start over with a new bill"},
	{"status", "Show the current workflow state"},
	{"health", "Check the backend"},
	{"help", "Display this help"},
	{"quit", "Exit interactive mode"},
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, c := range replCommands {
		fmt.Fprintf(r.out, "  %s%-28s%s - %s\n", ui.ColorYellow(), c.usage, ui.ColorReset(), c.help)
	}
}

// processCommand parses and executes a user command.
// Returns false if the REPL should exit.
func (r *REPL) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	switch cmd {
	case "upload", "u":
		r.cmdUpload(ctx, args)
	case "items", "ls":
		DisplayItems(r.ctrl.State().Items, r.out)
	case "edit", "e":
		r.cmdEdit(ctx, args)
	case "add":
		r.cmdAdd(ctx, args)
	case "rm", "remove":
		r.cmdRemove(ctx, args)
	case "next", "n":
		r.cmdNext(ctx)
	case "back", "b":
		r.report(r.ctrl.Back(ctx))
	case "search", "s":
		r.cmdSearch(ctx, strings.Join(args, " "))
	case "select", "sel":
		r.cmdSelect(ctx, args)
	case "compare", "c":
		r.cmdCompare(ctx)
	case "results", "r":
		r.cmdResults()
	case "save":
		r.cmdSave(args)
	case "reset":
		if s, err := r.ctrl.Reset(ctx); r.report(s, err) {
			fmt.Fprintf(r.out, "Workflow reset. Upload a new bill to start again.\n")
		}
	case "status", "st":
		r.cmdStatus()
	case "health":
		s, err := r.ctrl.Health(ctx)
		DisplayHealth(s.Backend.Status, err, r.out)
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
	}
	return true
}

// report prints err, if any, and returns whether the command succeeded.
func (r *REPL) report(_ workflow.State, err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, workflow.ErrStaleResponse) {
		fmt.Fprintf(r.out, "%sA newer request superseded this one.%s\n", ui.ColorDim(), ui.ColorReset())
		return false
	}
	fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	return false
}

func (r *REPL) usage(u string) {
	fmt.Fprintf(r.out, "%sUsage: %s%s\n", ui.ColorRed(), u, ui.ColorReset())
}

func (r *REPL) cmdUpload(ctx context.Context, args []string) {
	if len(args) == 0 {
		r.usage("upload <path>")
		return
	}
	path := strings.Join(args, " ")
	data, err := r.readFile(path)
	if err != nil {
		fmt.Fprintf(r.out, "%sCannot read %s: %v%s\n", ui.ColorRed(), path, err, ui.ColorReset())
		return
	}
	fmt.Fprintf(r.out, "Uploading %s%s%s...\n", ui.ColorCyan(), filepath.Base(path), ui.ColorReset())
	s, err := r.ctrl.Submit(ctx, filepath.Base(path), data)
	if !r.report(s, err) {
		return
	}
	fmt.Fprintf(r.out, "Extracted %d line items.\n", len(s.Items))
	DisplayItems(s.Items, r.out)
	DisplayDetection(s, r.out)
}

// parseIndex converts a 1-based item number to an index.
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid item number: %s", arg)
	}
	return n - 1, nil
}

func (r *REPL) cmdEdit(ctx context.Context, args []string) {
	if len(args) < 2 {
		r.usage("edit <n> <amount> [qty]")
		return
	}
	idx, err := parseIndex(args[0])
	if err != nil {
		r.report(workflow.State{}, err)
		return
	}
	items := r.ctrl.State().Items
	if idx >= len(items) {
		fmt.Fprintf(r.out, "%sNo item %d (there are %d).%s\n", ui.ColorRed(), idx+1, len(items), ui.ColorReset())
		return
	}
	item := items[idx]
	if item.Amount, err = strconv.ParseFloat(args[1], 64); err != nil {
		fmt.Fprintf(r.out, "%sInvalid amount: %s%s\n", ui.ColorRed(), args[1], ui.ColorReset())
		return
	}
	if len(args) > 2 {
		if item.Quantity, err = strconv.Atoi(args[2]); err != nil {
			fmt.Fprintf(r.out, "%sInvalid quantity: %s%s\n", ui.ColorRed(), args[2], ui.ColorReset())
			return
		}
	}
	if s, err := r.ctrl.EditItem(ctx, idx, item); r.report(s, err) {
		DisplayItems(s.Items, r.out)
	}
}

func (r *REPL) cmdAdd(ctx context.Context, args []string) {
	if len(args) < 2 {
		r.usage("add <amount> <description>")
		return
	}
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid amount: %s%s\n", ui.ColorRed(), args[0], ui.ColorReset())
		return
	}
	item := billing.LineItem{Description: strings.Join(args[1:], " "), Quantity: 1, Amount: amount}
	if s, err := r.ctrl.AddItem(ctx, item); r.report(s, err) {
		DisplayItems(s.Items, r.out)
	}
}

func (r *REPL) cmdRemove(ctx context.Context, args []string) {
	if len(args) != 1 {
		r.usage("rm <n>")
		return
	}
	idx, err := parseIndex(args[0])
	if err != nil {
		r.report(workflow.State{}, err)
		return
	}
	if s, err := r.ctrl.RemoveItem(ctx, idx); r.report(s, err) {
		DisplayItems(s.Items, r.out)
	}
}

func (r *REPL) cmdNext(ctx context.Context) {
	s, err := r.ctrl.Advance(ctx)
	if !r.report(s, err) {
		return
	}
	DisplayDetection(s, r.out)
	r.showFacilities(s)
}

func (r *REPL) showFacilities(s workflow.State) {
	selected := ""
	if s.Selected != nil {
		selected = s.Selected.ID
	}
	if s.SearchErr != nil {
		fmt.Fprintf(r.out, "%sSearch failed: %v%s\n", ui.ColorYellow(), s.SearchErr, ui.ColorReset())
	}
	DisplayFacilities(s.Facilities.Facilities(), selected, r.out)
}

func (r *REPL) cmdSearch(ctx context.Context, query string) {
	s, err := r.ctrl.Search(ctx, query)
	if errors.Is(err, workflow.ErrStaleResponse) {
		r.report(s, err)
		return
	}
	r.showFacilities(s)
}

func (r *REPL) cmdSelect(ctx context.Context, args []string) {
	if len(args) != 1 {
		r.usage("select <id>|none")
		return
	}
	if args[0] == "none" {
		if s, err := r.ctrl.ClearSelection(ctx); r.report(s, err) {
			fmt.Fprintln(r.out, "Selection cleared.")
		}
		return
	}
	if s, err := r.ctrl.Select(ctx, args[0]); r.report(s, err) {
		fmt.Fprintf(r.out, "Selected %s%s%s.\n", ui.ColorCyan(), s.Selected.Name, ui.ColorReset())
	}
}

func (r *REPL) cmdCompare(ctx context.Context) {
	fmt.Fprintf(r.out, "Comparing...\n")
	s, err := r.ctrl.Compare(ctx, workflow.CompareRequested{
		RadiusMiles: r.config.RadiusMiles,
		UseCMSData:  r.config.UseCMSData,
	})
	if !r.report(s, err) {
		return
	}
	if s.Result != nil {
		DisplayComparison(*s.Result, s.Items, r.config.Details, r.out)
	}
}

func (r *REPL) cmdResults() {
	s := r.ctrl.State()
	if s.Result == nil {
		fmt.Fprintf(r.out, "%sNo results yet. Use compare first.%s\n", ui.ColorDim(), ui.ColorReset())
		return
	}
	DisplayComparison(*s.Result, s.Items, r.config.Details, r.out)
}

func (r *REPL) cmdSave(args []string) {
	if len(args) == 0 {
		r.usage("save <path>")
		return
	}
	s := r.ctrl.State()
	if s.Result == nil {
		fmt.Fprintf(r.out, "%sNothing to save. Use compare first.%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	path := strings.Join(args, " ")
	if err := WriteReport(Report{Result: *s.Result, Items: s.Items}, path); err != nil {
		r.report(s, err)
		return
	}
	fmt.Fprintf(r.out, "%s✓ Report saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), path, ui.ColorReset())
}

func (r *REPL) cmdStatus() {
	s := r.ctrl.State()
	fmt.Fprintf(r.out, "\n%sCurrent state:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Step:        %s%s%s\n", ui.ColorCyan(), s.Step, ui.ColorReset())
	edited := ""
	if s.Edited {
		edited = " (edited)"
	}
	fmt.Fprintf(r.out, "  Line items:  %s%d%s%s\n", ui.ColorCyan(), len(s.Items), ui.ColorReset(), edited)
	hospital := "none"
	if s.Selected != nil {
		hospital = s.Selected.Name
	}
	fmt.Fprintf(r.out, "  Hospital:    %s%s%s\n", ui.ColorCyan(), hospital, ui.ColorReset())
	fmt.Fprintf(r.out, "  Hospitals:   %s%d%s loaded\n", ui.ColorCyan(), s.Facilities.Len(), ui.ColorReset())
	result := "no"
	if s.Result != nil {
		result = "yes"
	}
	fmt.Fprintf(r.out, "  Results:     %s%s%s\n", ui.ColorCyan(), result, ui.ColorReset())
	if s.Backend.Checked {
		backend := s.Backend.Status.Status
		if s.Backend.Err != nil {
			backend = "unreachable"
		}
		fmt.Fprintf(r.out, "  Backend:     %s%s%s\n", ui.ColorCyan(), backend, ui.ColorReset())
	}
	fmt.Fprintln(r.out)
}

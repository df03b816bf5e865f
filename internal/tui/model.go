package tui

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/billcheck/internal/api"
	"github.com/agbru/billcheck/internal/billing"
	"github.com/agbru/billcheck/internal/cli"
	"github.com/agbru/billcheck/internal/config"
	apperrors "github.com/agbru/billcheck/internal/errors"
	"github.com/agbru/billcheck/internal/logging"
	"github.com/agbru/billcheck/internal/metrics"
	"github.com/agbru/billcheck/internal/workflow"
)

// Layout and timing constants.
const (
	headerHeight  = 1
	footerHeight  = 1
	statusHeight  = 1
	minBodyHeight = 6

	// SearchDebounce is how long typing must pause before a search is sent.
	SearchDebounce = 300 * time.Millisecond
	// DefaultReportPath is used by the save key when --output is not set.
	DefaultReportPath = "billcheck-report.xlsx"

	tickInterval = time.Second
)

// inputMode says what the text input is collecting, if anything.
type inputMode int

const (
	inputNone inputMode = iota
	inputFile
	inputSearch
	inputAmount
)

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
}

// bodyHeight returns the rows available inside the main panel.
func (l LayoutManager) bodyHeight() int {
	h := l.height - headerHeight - footerHeight - statusHeight - 2
	if h < minBodyHeight {
		h = minBodyHeight
	}
	return h
}

// Options configures a Model.
type Options struct {
	Client  api.Client
	Config  config.AppConfig
	Version string
	Logger  logging.Logger
	Metrics *metrics.Recorder
}

// Model is the root bubbletea model. It owns a workflow.State and advances
// it with workflow.Apply; remote calls run as commands whose responses come
// back as eventMsg.
type Model struct {
	header HeaderModel
	input  textinput.Model
	mode   inputMode
	keymap KeyMap

	LayoutManager

	state   workflow.State
	startup []workflow.Effect

	ctx      context.Context
	cancel   context.CancelFunc
	client   api.Client
	config   config.AppConfig
	logger   logging.Logger
	metrics  *metrics.Recorder
	readFile func(string) ([]byte, error)

	itemCursor     int
	facilityCursor int
	searchTag      int

	notice   string
	err      error
	exitCode int
}

// NewModel creates a model and queues the startup health probe and
// facility load.
func NewModel(parentCtx context.Context, opts Options) Model {
	ctx, cancel := context.WithCancel(parentCtx)

	in := textinput.New()
	in.Prompt = "› "
	in.CharLimit = 512

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	m := Model{
		header:   NewHeaderModel(opts.Version),
		input:    in,
		keymap:   DefaultKeyMap(),
		state:    workflow.New(),
		ctx:      ctx,
		cancel:   cancel,
		client:   opts.Client,
		config:   opts.Config,
		logger:   logger,
		metrics:  opts.Metrics,
		readFile: os.ReadFile,
		exitCode: apperrors.ExitSuccess,
	}

	for _, ev := range []workflow.Event{workflow.HealthRequested{}, workflow.SearchRequested{}} {
		next, eff, _ := workflow.Apply(m.state, ev)
		m.state = next
		if eff != nil {
			m.startup = append(m.startup, eff)
		}
	}
	m.focusInput(inputFile, "path/to/bill.pdf", "")
	return m
}

// State returns the current workflow snapshot.
func (m Model) State() workflow.State { return m.state }

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, tickCmd(), watchContextCmd(m.ctx)}
	for _, eff := range m.startup {
		cmds = append(cmds, m.execute(eff))
	}
	return tea.Batch(cmds...)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(m.width)
		m.input.Width = m.width - 8
		return m, nil

	case eventMsg:
		return m.dispatch(msg.Event)

	case fileReadMsg:
		if msg.Err != nil {
			m.err = apperrors.ValidationError{Field: "file", Message: msg.Err.Error()}
			return m, nil
		}
		return m.dispatch(workflow.FileSubmitted{Name: msg.Name, Data: msg.Data})

	case searchDebounceMsg:
		if msg.Tag != m.searchTag {
			return m, nil
		}
		return m.dispatch(workflow.SearchRequested{Query: strings.TrimSpace(m.input.Value())})

	case reportSavedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.notice = "Report saved to " + msg.Path
		return m, nil

	case TickMsg:
		return m, tickCmd()

	case ContextCancelledMsg:
		m.exitCode = apperrors.ExitCodeFor(msg.Err)
		return m, tea.Quit
	}

	if m.mode != inputNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// dispatch applies ev and schedules the remote call it requests.
func (m Model) dispatch(ev workflow.Event) (Model, tea.Cmd) {
	prev := m.state
	next, eff, err := workflow.Apply(prev, ev)
	if errors.Is(err, workflow.ErrStaleResponse) {
		class := workflow.ResponseClass(ev)
		m.logger.Debug("discarded stale response", logging.String("class", class))
		m.metrics.StaleDiscarded(class)
		return m, nil
	}
	m.state = next
	if isUserEvent(ev) {
		m.err = err
		m.notice = ""
	} else if err != nil && !apperrors.IsContextError(err) {
		m.logger.Warn("backend call failed", logging.Err(err))
	}
	if next.Step != prev.Step {
		m.metrics.Transition(next.Step.String())
		m.logger.Debug("workflow step changed",
			logging.String("from", prev.Step.String()),
			logging.String("to", next.Step.String()))
		m.enterStep(next.Step)
	}
	m.header.SetState(next)
	m.clampCursors()
	return m, m.execute(eff)
}

// isUserEvent reports whether ev came from a key press rather than a
// backend response.
func isUserEvent(ev workflow.Event) bool {
	switch ev.(type) {
	case workflow.Uploaded, workflow.Extracted, workflow.SearchCompleted,
		workflow.Compared, workflow.HealthChecked:
		return false
	}
	return true
}

// execute wraps eff in a command that runs it and returns the response.
func (m Model) execute(eff workflow.Effect) tea.Cmd {
	if eff == nil {
		return nil
	}
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		return eventMsg{Event: workflow.Execute(ctx, client, eff)}
	}
}

func (m *Model) enterStep(step workflow.Step) {
	m.blurInput()
	switch step {
	case workflow.StepUpload:
		m.focusInput(inputFile, "path/to/bill.pdf", "")
	case workflow.StepReview:
		m.itemCursor = 0
	case workflow.StepHospital:
		m.facilityCursor = m.selectedIndex()
	}
}

func (m *Model) focusInput(mode inputMode, placeholder, value string) {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) blurInput() {
	m.mode = inputNone
	m.input.Blur()
	m.input.Reset()
}

// selectedIndex returns the position of the selection in the facility
// list, or 0.
func (m Model) selectedIndex() int {
	if m.state.Selected == nil {
		return 0
	}
	for i, f := range m.state.Facilities.Facilities() {
		if f.ID == m.state.Selected.ID {
			return i
		}
	}
	return 0
}

func (m *Model) clampCursors() {
	m.itemCursor = clamp(m.itemCursor, len(m.state.Items))
	m.facilityCursor = clamp(m.facilityCursor, m.state.Facilities.Len())
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.mode != inputNone {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Reset):
		return m.dispatch(workflow.ResetRequested{})

	case key.Matches(msg, m.keymap.Health):
		return m.dispatch(workflow.HealthRequested{})
	}

	switch m.state.Step {
	case workflow.StepUpload:
		if key.Matches(msg, m.keymap.Enter) {
			m.focusInput(inputFile, "path/to/bill.pdf", "")
		}
		return m, nil
	case workflow.StepReview:
		return m.handleReviewKey(msg)
	case workflow.StepHospital:
		return m.handleHospitalKey(msg)
	case workflow.StepResults:
		return m.handleResultsKey(msg)
	}
	return m, nil
}

func (m Model) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.itemCursor = clamp(m.itemCursor-1, len(m.state.Items))
	case key.Matches(msg, m.keymap.Down):
		m.itemCursor = clamp(m.itemCursor+1, len(m.state.Items))
	case key.Matches(msg, m.keymap.Edit):
		if len(m.state.Items) > 0 {
			it := m.state.Items[m.itemCursor]
			value := strconv.FormatFloat(it.Amount, 'f', 2, 64) + " " + strconv.Itoa(it.Quantity)
			m.focusInput(inputAmount, "amount [quantity]", value)
		}
	case key.Matches(msg, m.keymap.Remove):
		return m.dispatch(workflow.ItemRemoved{Index: m.itemCursor})
	case key.Matches(msg, m.keymap.Enter):
		return m.dispatch(workflow.Advanced{})
	}
	return m, nil
}

func (m Model) handleHospitalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.state.Facilities.Len()
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.facilityCursor = clamp(m.facilityCursor-1, n)
	case key.Matches(msg, m.keymap.Down):
		m.facilityCursor = clamp(m.facilityCursor+1, n)
	case key.Matches(msg, m.keymap.Search):
		m.focusInput(inputSearch, "name, city or address", m.state.Query)
	case key.Matches(msg, m.keymap.Enter):
		if n == 0 {
			return m, nil
		}
		f := m.state.Facilities.At(m.facilityCursor)
		if m.state.Selected != nil && m.state.Selected.ID == f.ID {
			return m.dispatch(workflow.SelectionCleared{})
		}
		return m.dispatch(workflow.FacilitySelected{Facility: f})
	case key.Matches(msg, m.keymap.Compare):
		return m.dispatch(workflow.CompareRequested{
			RadiusMiles: m.config.Radius(),
			UseCMSData:  m.config.UseCMSData(),
		})
	case key.Matches(msg, m.keymap.Back):
		return m.dispatch(workflow.WentBack{})
	}
	return m, nil
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.Save) && m.state.Result != nil {
		path := m.config.OutputFile
		if path == "" {
			path = DefaultReportPath
		}
		m.notice = "Saving report..."
		return m, saveReportCmd(cli.Report{
			Result:    *m.state.Result,
			Items:     billing.CloneItems(m.state.Items),
			Generated: time.Now(),
		}, path)
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Cancel):
		mode := m.mode
		m.blurInput()
		if mode == inputSearch {
			m.searchTag++
		}
		return m, nil

	case key.Matches(msg, m.keymap.Enter):
		return m.submitInput()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == inputSearch && m.input.Value() != before {
		m.searchTag++
		return m, tea.Batch(cmd, debounceCmd(m.searchTag))
	}
	return m, cmd
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	switch m.mode {
	case inputFile:
		if err := workflow.ValidateFileName(value); err != nil {
			m.err = err
			return m, nil
		}
		m.blurInput()
		m.err = nil
		return m, readFileCmd(m.readFile, value)

	case inputSearch:
		m.blurInput()
		m.searchTag++
		return m.dispatch(workflow.SearchRequested{Query: value})

	case inputAmount:
		item, err := parseAmount(value, m.state.Items[m.itemCursor])
		if err != nil {
			m.err = err
			return m, nil
		}
		m.blurInput()
		return m.dispatch(workflow.ItemEdited{Index: m.itemCursor, Item: item})
	}
	return m, nil
}

// parseAmount reads "amount [quantity]" into a copy of item.
func parseAmount(value string, item billing.LineItem) (billing.LineItem, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 || len(fields) > 2 {
		return item, apperrors.ValidationError{Field: "amount", Message: "expected: amount [quantity]"}
	}
	amount, err := strconv.ParseFloat(strings.TrimPrefix(fields[0], "$"), 64)
	if err != nil {
		return item, apperrors.ValidationError{Field: "amount", Message: "not a number: " + fields[0]}
	}
	item.Amount = amount
	if len(fields) == 2 {
		qty, err := strconv.Atoi(fields[1])
		if err != nil {
			return item, apperrors.ValidationError{Field: "quantity", Message: "not a whole number: " + fields[1]}
		}
		item.Quantity = qty
	}
	return item, nil
}

// View renders the whole screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var body string
	switch m.state.Step {
	case workflow.StepUpload:
		body = m.uploadView()
	case workflow.StepReview:
		body = m.reviewView()
	case workflow.StepHospital:
		body = m.hospitalView()
	case workflow.StepResults:
		body = m.resultsView()
	}
	panel := panelStyle.Width(m.width - 2).Height(m.bodyHeight()).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), panel, m.statusLine(), m.footerView())
}

// Run is the public entry point for the TUI mode.
// It creates the bubbletea program, runs it, and returns the exit code.
func Run(ctx context.Context, opts Options) int {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	model := NewModel(ctx, opts)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		model.logger.Error("tui failed", err)
		return apperrors.ExitErrorGeneric
	}

	if m, ok := finalModel.(Model); ok {
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// readFileCmd reads the bill off the UI goroutine.
func readFileCmd(readFile func(string) ([]byte, error), path string) tea.Cmd {
	return func() tea.Msg {
		data, err := readFile(path)
		return fileReadMsg{Name: path, Data: data, Err: err}
	}
}

// saveReportCmd writes the report off the UI goroutine.
func saveReportCmd(report cli.Report, path string) tea.Cmd {
	return func() tea.Msg {
		return reportSavedMsg{Path: path, Err: cli.WriteReport(report, path)}
	}
}

// debounceCmd fires a searchDebounceMsg for tag after SearchDebounce.
func debounceCmd(tag int) tea.Cmd {
	return tea.Tick(SearchDebounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{Tag: tag}
	})
}

// tickCmd returns a command that sends a TickMsg after a second.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// watchContextCmd waits for context cancellation and sends a message.
func watchContextCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err()}
	}
}

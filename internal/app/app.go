package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/agbru/billcheck/internal/api"
	"github.com/agbru/billcheck/internal/cli"
	"github.com/agbru/billcheck/internal/config"
	apperrors "github.com/agbru/billcheck/internal/errors"
	"github.com/agbru/billcheck/internal/logging"
	"github.com/agbru/billcheck/internal/metrics"
	"github.com/agbru/billcheck/internal/server"
	"github.com/agbru/billcheck/internal/tui"
	"github.com/agbru/billcheck/internal/ui"
	"github.com/agbru/billcheck/internal/workflow"
)

// shutdownTimeout bounds the metrics server's graceful stop.
const shutdownTimeout = 2 * time.Second

// Application represents the billcheck application instance.
type Application struct {
	Config    config.AppConfig
	Client    api.Client
	ErrWriter io.Writer

	logger  logging.Logger
	metrics *metrics.Recorder
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithClient replaces the HTTP backend client, mainly for tests.
func WithClient(c api.Client) AppOption {
	return func(a *Application) { a.Client = c }
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "billcheck"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)
	if !a.Config.NoColor && a.Config.Theme != "" && a.Config.Theme != config.DefaultTheme {
		ui.SetTheme(a.Config.Theme)
	}

	closeLog, err := a.setupLogging()
	if err != nil {
		return cli.HandleError(err, a.ErrWriter)
	}
	defer closeLog()

	a.metrics = metrics.NewRecorder()
	if a.Config.MetricsAddr != "" {
		srv := server.New(a.Config.MetricsAddr, a.metrics, a.logger)
		if _, err := srv.Start(); err != nil {
			return cli.HandleError(apperrors.NewConfigError("cannot serve metrics on %s: %v", a.Config.MetricsAddr, err), a.ErrWriter)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	if a.Client == nil {
		a.Client = api.NewClient(
			api.WithBaseURL(a.Config.BaseURL),
			api.WithTimeout(a.Config.Timeout),
			api.WithRateLimit(a.Config.RateLimit, a.Config.RateBurst),
			api.WithLogger(a.logger),
			api.WithMetrics(a.metrics),
			api.WithTracer(otel.Tracer("github.com/agbru/billcheck")),
		)
	}
	a.logger.Debug("starting",
		logging.String("mode", a.Config.Mode),
		logging.String("base_url", a.Config.BaseURL),
		logging.String("version", Version))

	switch a.Config.Mode {
	case config.ModeREPL:
		return a.runREPL(ctx, out)
	case config.ModeCheck:
		return a.runCheck(ctx, out)
	case config.ModeSweep:
		return a.runSweep(ctx, out)
	case config.ModeSearch:
		return a.runSearch(ctx, out)
	case config.ModeHealth:
		return a.runHealth(ctx, out)
	default:
		return a.runTUI(ctx, out)
	}
}

// setupLogging builds the application logger. Logs go to --log-file when
// set; otherwise to the error writer, except in TUI mode where they would
// corrupt the screen and are discarded.
func (a *Application) setupLogging() (func(), error) {
	level := logging.ParseLevel(a.Config.LogLevel)
	zerolog.SetGlobalLevel(level)

	if a.Config.LogFile != "" {
		f, err := os.OpenFile(a.Config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return func() {}, apperrors.NewConfigError("cannot open log file: %v", err)
		}
		a.logger = logging.NewLogger(f, "billcheck").WithLevel(level)
		return func() { _ = f.Close() }, nil
	}
	if a.Config.Mode == config.ModeTUI {
		a.logger = logging.Nop()
		return func() {}, nil
	}
	a.logger = logging.NewLogger(zerolog.ConsoleWriter{Out: a.ErrWriter, NoColor: a.Config.NoColor}, "billcheck").WithLevel(level)
	return func() {}, nil
}

// lifecycle applies the overall timeout and stops on SIGINT/SIGTERM.
func (a *Application) lifecycle(ctx context.Context) (context.Context, func()) {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, func() {
		stopSignals()
		cancelTimeout()
	}
}

func (a *Application) newController() *workflow.Controller {
	return workflow.NewController(a.Client,
		workflow.WithControllerLogger(a.logger),
		workflow.WithControllerMetrics(a.metrics))
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, config.Modes); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runTUI launches the interactive workflow screens. The session has no
// overall deadline.
func (a *Application) runTUI(ctx context.Context, _ io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	return tui.Run(ctx, tui.Options{
		Client:  a.Client,
		Config:  a.Config,
		Version: Version,
		Logger:  a.logger,
		Metrics: a.metrics,
	})
}

// runREPL starts the line-oriented session. Each command gets its own
// deadline, so the session itself has none.
func (a *Application) runREPL(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	repl := cli.NewREPL(a.newController(), cli.REPLConfig{
		Timeout:     a.Config.Timeout,
		RadiusMiles: a.Config.Radius(),
		UseCMSData:  a.Config.UseCMSData(),
		Details:     a.Config.Details,
	})
	repl.SetOutput(out)
	repl.Start(ctx)
	if errors.Is(ctx.Err(), context.Canceled) {
		return apperrors.ExitErrorCanceled
	}
	return apperrors.ExitSuccess
}

// runCheck runs the whole workflow once for --file.
func (a *Application) runCheck(ctx context.Context, out io.Writer) int {
	ctx, stop := a.lifecycle(ctx)
	defer stop()

	if !a.Config.Quiet {
		cli.PrintCheckConfig(a.Config, out)
	}
	_, err := cli.RunCheck(ctx, a.newController(), cli.CheckOptions{
		File:        a.Config.File,
		HospitalID:  a.Config.Hospital,
		RadiusMiles: a.Config.Radius(),
		UseCMSData:  a.Config.UseCMSData(),
		Output: cli.OutputConfig{
			OutputFile: a.Config.OutputFile,
			Quiet:      a.Config.Quiet,
			Details:    a.Config.Details,
		},
	}, out)
	if err != nil {
		return cli.HandleError(err, out)
	}
	return apperrors.ExitSuccess
}

// runSearch prints the facilities matching --query.
func (a *Application) runSearch(ctx context.Context, out io.Writer) int {
	ctx, stop := a.lifecycle(ctx)
	defer stop()

	list, err := a.Client.SearchHospitals(ctx, a.Config.Query)
	if err != nil {
		return cli.HandleError(apperrors.SearchError{Query: a.Config.Query, Cause: err}, out)
	}
	cli.DisplayFacilities(list, "", out)
	return apperrors.ExitSuccess
}

// runHealth probes the backend.
func (a *Application) runHealth(ctx context.Context, out io.Writer) int {
	ctx, stop := a.lifecycle(ctx)
	defer stop()

	status, err := a.Client.Health(ctx)
	cli.DisplayHealth(status, err, out)
	if err != nil {
		return apperrors.ExitCodeFor(err)
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return config.IsHelp(err)
}

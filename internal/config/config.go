// Package config parses the command line, the environment and an optional
// .env file into an AppConfig.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/agbru/billcheck/internal/errors"
)

// EnvPrefix is prepended to every environment variable name read by the
// configuration layer.
const EnvPrefix = "BILLCHECK_"

// Run modes.
const (
	ModeTUI    = "tui"
	ModeREPL   = "repl"
	ModeCheck  = "check"
	ModeSweep  = "sweep"
	ModeSearch = "search"
	ModeHealth = "health"
)

// Modes lists every accepted --mode value.
var Modes = []string{ModeTUI, ModeREPL, ModeCheck, ModeSweep, ModeSearch, ModeHealth}

// Defaults.
const (
	DefaultBaseURL     = "http://localhost:8000"
	DefaultTimeout     = 2 * time.Minute
	DefaultRateLimit   = 10.0
	DefaultRateBurst   = 5
	DefaultConcurrency = 4
	DefaultEnvFile     = ".env"
	DefaultTheme       = "dark"
)

// AppConfig holds the resolved application settings.
type AppConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int

	Mode      string
	File      string
	Hospital  string
	Hospitals string
	Query     string

	// RadiusMiles is sent with comparisons when positive.
	RadiusMiles float64
	NoCMS       bool
	Concurrency int

	OutputFile  string
	LogFile     string
	LogLevel    string
	MetricsAddr string
	EnvFile     string

	// Theme is the color scheme: dark, light or none.
	Theme      string
	NoColor    bool
	Quiet      bool
	Details    bool
	Completion string
}

// HospitalIDs splits the comma-separated sweep list, dropping blanks.
func (c AppConfig) HospitalIDs() []string {
	var ids []string
	for _, id := range strings.Split(c.Hospitals, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// UseCMSData returns the comparison's CMS toggle, or nil to let the server
// decide.
func (c AppConfig) UseCMSData() *bool {
	if !c.NoCMS {
		return nil
	}
	off := false
	return &off
}

// Radius returns the comparison radius, or nil when unset.
func (c AppConfig) Radius() *float64 {
	if c.RadiusMiles <= 0 {
		return nil
	}
	r := c.RadiusMiles
	return &r
}

// ParseConfig parses args (without the program name) into an AppConfig.
// Values come from, in decreasing priority: flags, BILLCHECK_* environment
// variables, the .env file, and defaults.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	return parseConfig(programName, args, errWriter, osEnv{})
}

// newFlagSet binds every command-line flag to config.
func newFlagSet(programName string, errWriter io.Writer, config *AppConfig) *flag.FlagSet {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	fs.StringVar(&config.BaseURL, "base-url", DefaultBaseURL, "Backend base URL.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Overall timeout for batch modes (e.g. 30s, 2m).")
	fs.Float64Var(&config.RateLimit, "rate-limit", DefaultRateLimit, "Maximum backend requests per second (0 disables throttling).")
	fs.IntVar(&config.RateBurst, "rate-burst", DefaultRateBurst, "Burst size for the request limiter.")
	fs.StringVar(&config.Mode, "mode", ModeTUI, "Run mode: "+strings.Join(Modes, ", ")+".")
	fs.StringVar(&config.File, "file", "", "Bill PDF to check (check and sweep modes).")
	fs.StringVar(&config.File, "f", "", "Shorthand for --file.")
	fs.StringVar(&config.Hospital, "hospital", "", "Hospital id to compare against when none is detected.")
	fs.StringVar(&config.Hospitals, "hospitals", "", "Comma-separated hospital ids for sweep mode (default: all).")
	fs.StringVar(&config.Query, "query", "", "Hospital search query (search mode).")
	fs.Float64Var(&config.RadiusMiles, "radius", 0, "Regional comparison radius in miles (0 lets the server decide).")
	fs.BoolVar(&config.NoCMS, "no-cms", false, "Compare without Medicare reference data.")
	fs.IntVar(&config.Concurrency, "concurrency", DefaultConcurrency, "Parallel comparisons in sweep mode.")
	fs.StringVar(&config.OutputFile, "output", "", "Write the report to this file (.xlsx or text).")
	fs.StringVar(&config.OutputFile, "o", "", "Shorthand for --output.")
	fs.StringVar(&config.LogFile, "log-file", "", "Write logs to this file instead of stderr.")
	fs.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error, disabled.")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090).")
	fs.StringVar(&config.EnvFile, "env-file", DefaultEnvFile, "Optional dotenv file with BILLCHECK_* settings.")
	fs.StringVar(&config.Theme, "theme", DefaultTheme, "Color scheme: dark, light or none.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the verdict.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&config.Details, "details", false, "Show reference pricing under each line item.")
	fs.BoolVar(&config.Details, "d", false, "Shorthand for --details.")
	fs.StringVar(&config.Completion, "completion", "", "Print a completion script for bash, zsh, fish or powershell.")
	return fs
}

// FlagNames lists the names of all command-line flags, in lexical order.
func FlagNames() []string {
	var names []string
	newFlagSet("", io.Discard, &AppConfig{}).VisitAll(func(f *flag.Flag) {
		names = append(names, f.Name)
	})
	return names
}

func parseConfig(programName string, args []string, errWriter io.Writer, env lookupEnv) (AppConfig, error) {
	config := AppConfig{}
	fs := newFlagSet(programName, errWriter, &config)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 && config.File == "" {
		config.File = fs.Arg(0)
	}

	envFile := config.EnvFile
	if !isFlagSet(fs, "env-file") {
		if v, ok := env.Lookup(EnvPrefix + "ENV_FILE"); ok && v != "" {
			envFile = v
		}
	}
	dotenv, err := readDotenv(envFile, isFlagSet(fs, "env-file") || envFile != DefaultEnvFile)
	if err != nil {
		return AppConfig{}, err
	}
	applyEnvOverrides(&config, fs, layeredEnv{env, dotenv})

	config.Mode = strings.ToLower(strings.TrimSpace(config.Mode))
	config.BaseURL = strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	config.Theme = strings.ToLower(strings.TrimSpace(config.Theme))

	if err := config.Validate(); err != nil {
		fmt.Fprintln(errWriter, "Error:", err)
		return AppConfig{}, err
	}
	return config, nil
}

// Validate checks semantic constraints that flag parsing cannot express.
func (c AppConfig) Validate() error {
	if c.Completion != "" {
		return nil
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.NewConfigError("invalid --base-url %q: expected http(s)://host[:port]", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("--timeout must be positive")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return apperrors.NewConfigError("--rate-limit and --rate-burst must not be negative")
	}
	if c.RadiusMiles < 0 {
		return apperrors.NewConfigError("--radius must not be negative")
	}
	if c.Concurrency < 1 {
		return apperrors.NewConfigError("--concurrency must be at least 1")
	}
	if !validMode(c.Mode) {
		return apperrors.NewConfigError("unknown --mode %q (valid: %s)", c.Mode, strings.Join(Modes, ", "))
	}
	if (c.Mode == ModeCheck || c.Mode == ModeSweep) && strings.TrimSpace(c.File) == "" {
		return apperrors.NewConfigError("--mode %s requires --file", c.Mode)
	}
	switch c.Theme {
	case "", "dark", "light", "none":
	default:
		return apperrors.NewConfigError("unknown --theme %q (valid: dark, light, none)", c.Theme)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error", "disabled", "off":
	default:
		return apperrors.NewConfigError("unknown --log-level %q", c.LogLevel)
	}
	return nil
}

func validMode(m string) bool {
	for _, v := range Modes {
		if m == v {
			return true
		}
	}
	return false
}

// IsHelp reports whether err came from -h or --help.
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

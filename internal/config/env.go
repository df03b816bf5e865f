// This file contains environment and dotenv utilities for configuration override.

package config

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/agbru/billcheck/internal/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Sources
// ─────────────────────────────────────────────────────────────────────────────

// lookupEnv resolves a fully prefixed variable name.
type lookupEnv interface {
	Lookup(key string) (string, bool)
}

type osEnv struct{}

func (osEnv) Lookup(key string) (string, bool) { return os.LookupEnv(key) }

// mapEnv serves variables from a map, as read from a dotenv file.
type mapEnv map[string]string

func (m mapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// layeredEnv consults the process environment before the dotenv values.
type layeredEnv struct {
	primary, fallback lookupEnv
}

func (l layeredEnv) Lookup(key string) (string, bool) {
	if v, ok := l.primary.Lookup(key); ok && v != "" {
		return v, true
	}
	if l.fallback == nil {
		return "", false
	}
	return l.fallback.Lookup(key)
}

// readDotenv parses path without touching the process environment. A missing
// file is an error only when it was requested explicitly.
func readDotenv(path string, required bool) (mapEnv, error) {
	if path == "" {
		return mapEnv{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return mapEnv{}, nil
		}
		return nil, apperrors.NewConfigError("reading env file %s: %v", path, err)
	}
	return mapEnv(values), nil
}

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the BILLCHECK_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	// Backend
	{"BASE_URL", []string{"base-url"}, func(c *AppConfig, v string) {
		c.BaseURL = v
	}},
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},
	{"RATE_LIMIT", []string{"rate-limit"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit = parsed
		}
	}},
	{"RATE_BURST", []string{"rate-burst"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.RateBurst = parsed
		}
	}},

	// Workflow
	{"MODE", []string{"mode"}, func(c *AppConfig, v string) {
		c.Mode = v
	}},
	{"HOSPITAL", []string{"hospital"}, func(c *AppConfig, v string) {
		c.Hospital = v
	}},
	{"HOSPITALS", []string{"hospitals"}, func(c *AppConfig, v string) {
		c.Hospitals = v
	}},
	{"RADIUS", []string{"radius"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.RadiusMiles = parsed
		}
	}},
	{"NO_CMS", []string{"no-cms"}, func(c *AppConfig, v string) {
		c.NoCMS = parseBoolEnv(v, c.NoCMS)
	}},
	{"CONCURRENCY", []string{"concurrency"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Concurrency = parsed
		}
	}},

	// Output
	{"OUTPUT", []string{"output", "o"}, func(c *AppConfig, v string) {
		c.OutputFile = v
	}},
	{"LOG_FILE", []string{"log-file"}, func(c *AppConfig, v string) {
		c.LogFile = v
	}},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) {
		c.LogLevel = v
	}},
	{"METRICS_ADDR", []string{"metrics-addr"}, func(c *AppConfig, v string) {
		c.MetricsAddr = v
	}},
	{"THEME", []string{"theme"}, func(c *AppConfig, v string) {
		c.Theme = v
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) {
		c.NoColor = parseBoolEnv(v, c.NoColor)
	}},
	{"QUIET", []string{"quiet", "q"}, func(c *AppConfig, v string) {
		c.Quiet = parseBoolEnv(v, c.Quiet)
	}},
	{"DETAILS", []string{"details", "d"}, func(c *AppConfig, v string) {
		c.Details = parseBoolEnv(v, c.Details)
	}},
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > environment > .env > defaults.
//
// The conventional NO_COLOR variable is honored as well.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet, env lookupEnv) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val, ok := env.Lookup(EnvPrefix + o.envKey); ok && val != "" {
			o.apply(config, val)
		}
	}
	if !isFlagSet(fs, "no-color") {
		if v, ok := env.Lookup("NO_COLOR"); ok && v != "" {
			config.NoColor = true
		}
	}
}

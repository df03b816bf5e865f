// Package logging provides the structured logging interface used by the
// workflow drivers, the API client and the command-line modes, backed by
// zerolog.
package logging

// Package logging builds slog loggers for scribe with console and JSON
// output formats, plus helpers for attaching standardized attributes and
// deriving component loggers from pipeline context.
package logging

// Package logging builds the slog loggers used by the daemon and CLI.
//
// It supports console and JSON formats, multi-destination output (stdout plus
// a log file under the configured log directory), and shared attribute
// helpers so components tag records consistently. Obtain loggers through this
// package rather than constructing slog handlers inline.
package logging

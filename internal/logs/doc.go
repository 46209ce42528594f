// Package logs reads the daemon log file for the CLI's logs command,
// supporting tail-from-end and follow semantics without holding the file
// open.
package logs

// Package daemon coordinates the long-running bard services and enforces
// single-instance execution via a lock file under the log directory.
package daemon

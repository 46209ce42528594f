// Command bard is the CLI for the bard daemon: it launches and stops the
// daemon, drives listening sessions, commands the audio engine, and manages
// the media catalog and trigger vocabulary over the daemon's Unix socket.
package main

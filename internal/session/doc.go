// Package session orchestrates a play session: capture frames feed the
// detection pipeline, detection outcomes drive the audio engine or produce
// suggestions, and everything of note lands in the catalog's session history.
package session

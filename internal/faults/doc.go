// Package faults defines the error taxonomy shared across the detection
// pipeline and audio engine.
//
// Errors are tagged with sentinel markers (device, model, data, state) so
// callers can decide between aborting session startup, degrading fail-open,
// skipping a classifier for one segment, or rejecting an operation outright.
// Use Wrap to attach component context while preserving the marker for
// errors.Is checks.
package faults

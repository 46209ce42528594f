// Package vad implements per-frame voice-activity detection.
//
// The detector is a classical energy gate: frame RMS against a configurable
// threshold, with a hysteresis flag so segment start and end edges fire
// exactly once each. Confidence is the normalized frame energy, which keeps
// the detector cheap enough to run on every captured frame.
package vad

// Package emotion classifies speech segments into one of seven moods using
// acoustic prosody features.
//
// No model file is involved. Segments are reduced to energy, zero-crossing
// rate, autocorrelation pitch and energy variance, then scored with fixed
// linear weights and normalized into a distribution that sums to one.
package emotion

// Package dsp provides the small signal-processing helpers shared by the
// voice-activity detector, the emotion feature extractor, and audio capture:
// energy measures, zero-crossing rate, normalization, resampling, and channel
// downmix. Everything operates on normalized float32 samples in [-1, 1].
package dsp

package vad

import (
	"bard/internal/dsp"
)

// Result is the outcome of classifying a single audio frame.
//
// StartMS is set on the frame where speech begins. When speech ends, StartMS
// and EndMS are both set and bracket the segment that just concluded.
type Result struct {
	IsSpeech   bool
	Confidence float32
	StartMS    *uint64
	EndMS      *uint64
}

// Detector classifies frames as speech or silence using RMS energy with a
// hysteresis flag, so each speech segment produces exactly one start edge and
// one end edge.
type Detector struct {
	threshold     float32
	speaking      bool
	speechStartMS uint64
}

// New returns a Detector with the given energy threshold, clamped to [0, 1].
func New(threshold float32) *Detector {
	d := &Detector{}
	d.SetThreshold(threshold)
	return d
}

// SetThreshold updates the energy threshold, clamped to [0, 1].
func (d *Detector) SetThreshold(threshold float32) {
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}
	d.threshold = threshold
}

// ProcessFrame classifies one frame of normalized samples. Empty or
// near-empty frames classify as silence with zero confidence; no input is an
// error.
func (d *Detector) ProcessFrame(samples []float32, timestampMS uint64) Result {
	energy := dsp.RMS(samples)
	if energy > 1 {
		energy = 1
	}
	isSpeech := len(samples) > 0 && energy > d.threshold

	switch {
	case isSpeech && !d.speaking:
		d.speaking = true
		d.speechStartMS = timestampMS
		start := timestampMS
		return Result{IsSpeech: true, Confidence: energy, StartMS: &start}
	case !isSpeech && d.speaking:
		d.speaking = false
		start := d.speechStartMS
		end := timestampMS
		return Result{IsSpeech: false, Confidence: 1 - energy, StartMS: &start, EndMS: &end}
	default:
		return Result{IsSpeech: isSpeech, Confidence: energy}
	}
}

// Speaking reports whether the detector is currently inside a speech segment.
func (d *Detector) Speaking() bool {
	return d.speaking
}

// Reset clears the hysteresis state without reporting an end edge.
func (d *Detector) Reset() {
	d.speaking = false
	d.speechStartMS = 0
}

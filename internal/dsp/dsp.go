package dsp

import "math"

// RMS returns the root mean square energy of samples.
func RMS(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(samples))))
}

// Decibels converts sample energy to dBFS. Silence maps to -96 dB.
func Decibels(samples []float32) float32 {
	rms := RMS(samples)
	if rms <= 0 {
		return -96.0
	}
	return float32(20 * math.Log10(float64(rms)))
}

// ZeroCrossingRate returns the fraction of adjacent sample pairs that change
// sign.
func ZeroCrossingRate(samples []float32) float32 {
	if len(samples) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			crossings++
		}
	}
	return float32(crossings) / float32(len(samples)-1)
}

// Normalize scales samples in place so the peak amplitude equals targetPeak.
// All-zero input is left untouched.
func Normalize(samples []float32, targetPeak float32) {
	if len(samples) == 0 {
		return
	}
	var peak float32
	for _, s := range samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}
	if peak <= 0 {
		return
	}
	scale := targetPeak / peak
	for i := range samples {
		samples[i] *= scale
	}
}

// RemoveDCOffset subtracts the mean from samples in place.
func RemoveDCOffset(samples []float32) {
	if len(samples) == 0 {
		return
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean := float32(sum / float64(len(samples)))
	for i := range samples {
		samples[i] -= mean
	}
}

// NoiseGate zeroes samples whose magnitude falls below threshold.
func NoiseGate(samples []float32, threshold float32) {
	for i, s := range samples {
		if float32(math.Abs(float64(s))) < threshold {
			samples[i] = 0
		}
	}
}

// Resample converts samples from fromRate to toRate using linear
// interpolation. Classifier inputs do not need anything fancier.
func Resample(samples []float32, fromRate, toRate int) []float32 {
	if fromRate == toRate {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out
	}
	if len(samples) == 0 || fromRate <= 0 || toRate <= 0 {
		return nil
	}

	ratio := float64(toRate) / float64(fromRate)
	outLen := int(math.Ceil(float64(len(samples)) * ratio))
	out := make([]float32, 0, outLen)

	for i := 0; i < outLen; i++ {
		src := float64(i) / ratio
		idx := int(src)
		if idx >= len(samples)-1 {
			break
		}
		frac := float32(src - float64(idx))
		out = append(out, samples[idx]*(1-frac)+samples[idx+1]*frac)
	}
	return out
}

// DownmixMono averages interleaved multi-channel samples into one channel.
func DownmixMono(samples []float32, channels int) []float32 {
	if channels < 2 || len(samples) < channels {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out
	}
	frames := len(samples) / channels
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += samples[i*channels+ch]
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}

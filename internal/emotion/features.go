package emotion

import (
	"math"

	"bard/internal/dsp"
)

// Features are the acoustic measurements a segment is classified on.
type Features struct {
	RMS            float32
	ZCR            float32
	PitchHz        float32
	EnergyVariance float32
	Duration       float32
	SampleRate     int
}

// pitchCorrFloor is the minimum normalized autocorrelation for a lag to count
// as voiced pitch. Below it the segment reports 0 Hz.
const pitchCorrFloor = 0.3

// ExtractFeatures measures a mono segment. Pitch uses autocorrelation over a
// 30ms window restricted to the 50-400Hz speaking range; energy variance is
// the standard deviation of 50ms chunk energies.
func ExtractFeatures(samples []float32, sampleRate int) Features {
	var duration float32
	if sampleRate > 0 {
		duration = float32(len(samples)) / float32(sampleRate)
	}
	return Features{
		RMS:            dsp.RMS(samples),
		ZCR:            dsp.ZeroCrossingRate(samples),
		PitchHz:        estimatePitch(samples, sampleRate),
		EnergyVariance: energyVariance(samples, sampleRate),
		Duration:       duration,
		SampleRate:     sampleRate,
	}
}

func estimatePitch(samples []float32, sampleRate int) float32 {
	if len(samples) < 256 || sampleRate <= 0 {
		return 0
	}

	windowSize := int(float32(sampleRate) * 0.03)
	windowSize = min(windowSize, len(samples))
	windowSize = max(windowSize, 64)

	minLag := sampleRate / 400
	maxLag := min(sampleRate/50, windowSize/2)

	bestLag := 0
	var bestCorr float32

	for lag := minLag; lag < maxLag; lag++ {
		var correlation, norm1, norm2 float32
		limit := windowSize - lag
		for i := 0; i < limit; i++ {
			correlation += samples[i] * samples[i+lag]
			norm1 += samples[i] * samples[i]
			norm2 += samples[i+lag] * samples[i+lag]
		}
		var corr float32
		if norm1 > 0 && norm2 > 0 {
			corr = correlation / float32(math.Sqrt(float64(norm1)*float64(norm2)))
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	if bestCorr > pitchCorrFloor && bestLag > 0 {
		return float32(sampleRate) / float32(bestLag)
	}
	return 0
}

func energyVariance(samples []float32, sampleRate int) float32 {
	if sampleRate <= 0 {
		return 0
	}
	chunkSize := int(float32(sampleRate) * 0.05)
	if chunkSize == 0 || len(samples) < chunkSize*2 {
		return 0
	}

	var energies []float32
	for start := 0; start < len(samples); start += chunkSize {
		end := min(start+chunkSize, len(samples))
		energies = append(energies, dsp.RMS(samples[start:end]))
	}

	var mean float32
	for _, e := range energies {
		mean += e
	}
	mean /= float32(len(energies))

	var variance float32
	for _, e := range energies {
		d := e - mean
		variance += d * d
	}
	variance /= float32(len(energies))

	return float32(math.Sqrt(float64(variance)))
}

package dsp

import (
	"math"
	"testing"
)

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %v, want 0", got)
	}
	// Alternating full-scale square wave has RMS 1.
	samples := []float32{1, -1, 1, -1}
	if got := RMS(samples); math.Abs(float64(got)-1.0) > 1e-6 {
		t.Fatalf("RMS = %v, want 1.0", got)
	}
}

func TestRMSSine(t *testing.T) {
	samples := make([]float32, 1600)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * float64(i) / 100))
	}
	got := float64(RMS(samples))
	want := 1 / math.Sqrt2
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("sine RMS = %v, want ~%v", got, want)
	}
}

func TestZeroCrossingRate(t *testing.T) {
	square := make([]float32, 1000)
	for i := range square {
		if i%2 == 0 {
			square[i] = 1
		} else {
			square[i] = -1
		}
	}
	if got := ZeroCrossingRate(square); got < 0.9 {
		t.Fatalf("square wave ZCR = %v, want > 0.9", got)
	}
	if got := ZeroCrossingRate([]float32{0.5}); got != 0 {
		t.Fatalf("single sample ZCR = %v, want 0", got)
	}
}

func TestNormalize(t *testing.T) {
	samples := []float32{0.1, 0.5, 1.0, -0.5, -1.0}
	Normalize(samples, 0.5)
	if math.Abs(float64(samples[4])+0.5) > 1e-4 {
		t.Fatalf("normalized trough = %v, want -0.5", samples[4])
	}

	zeros := []float32{0, 0, 0}
	Normalize(zeros, 1.0)
	for _, s := range zeros {
		if s != 0 {
			t.Fatal("all-zero input must stay zero")
		}
	}
}

func TestRemoveDCOffset(t *testing.T) {
	samples := []float32{1.5, 0.5, 1.5, 0.5}
	RemoveDCOffset(samples)
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	if math.Abs(sum) > 1e-5 {
		t.Fatalf("mean after removal = %v, want 0", sum/4)
	}
}

func TestResampleDoublesRate(t *testing.T) {
	samples := []float32{1, 2, 3, 4}
	out := Resample(samples, 4000, 8000)
	// Last source index cannot interpolate forward, so output stops early.
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}
	if math.Abs(float64(out[1])-1.5) > 1e-5 {
		t.Fatalf("out[1] = %v, want 1.5", out[1])
	}
}

func TestResampleIdentity(t *testing.T) {
	samples := []float32{0.1, 0.2, 0.3}
	out := Resample(samples, 16000, 16000)
	if len(out) != 3 || out[2] != 0.3 {
		t.Fatalf("identity resample mangled data: %v", out)
	}
}

func TestDownmixMono(t *testing.T) {
	stereo := []float32{1, 0, 0.5, 0.5, -1, 1}
	mono := DownmixMono(stereo, 2)
	want := []float32{0.5, 0.5, 0}
	if len(mono) != len(want) {
		t.Fatalf("len = %d, want %d", len(mono), len(want))
	}
	for i := range want {
		if math.Abs(float64(mono[i]-want[i])) > 1e-6 {
			t.Fatalf("mono[%d] = %v, want %v", i, mono[i], want[i])
		}
	}
}

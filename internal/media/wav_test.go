package media

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeWAV produces a minimal RIFF file with the given PCM16 payload.
func writeWAV(t *testing.T, path string, sampleRate, channels int, samples []int16) {
	t.Helper()
	var data bytes.Buffer
	for _, s := range samples {
		binary.Write(&data, binary.LittleEndian, s)
	}

	var buf bytes.Buffer
	dataLen := uint32(data.Len())
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(data.Bytes())

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpenWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	pcm := []int16{0, 16384, -16384, 32767, -32768, 0}
	writeWAV(t, path, 16000, 1, pcm)

	src, err := OpenWAV(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.SampleRate() != 16000 || src.Channels() != 1 {
		t.Fatalf("format = %d Hz %d ch", src.SampleRate(), src.Channels())
	}

	out := make([]float32, 16)
	n, err := src.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(pcm) {
		t.Fatalf("read %d samples, want %d", n, len(pcm))
	}
	for i, raw := range pcm {
		want := float32(raw) / 32768
		if math.Abs(float64(out[i]-want)) > 1e-6 {
			t.Fatalf("sample %d = %v, want %v", i, out[i], want)
		}
	}

	if _, err := src.Read(out); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestOpenWAVRejectsNonPCM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "float.wav")
	writeWAV(t, path, 16000, 1, []int16{0, 0})

	// Corrupt the format tag to IEEE float.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	raw[20] = 3
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := OpenWAV(path); err == nil {
		t.Fatal("expected error for non-PCM wav")
	}
}

func TestOpenLoopRestartsAtEOF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.wav")
	writeWAV(t, path, 16000, 1, []int16{1000, 2000, 3000})

	src, err := OpenLoop(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	// Read more than one pass worth of samples; the loop must refill.
	out := make([]float32, 4)
	total := 0
	for total < 7 {
		n, err := src.Read(out)
		if err != nil {
			t.Fatalf("loop source errored after %d samples: %v", total, err)
		}
		if n == 0 {
			t.Fatal("loop source returned zero samples")
		}
		total += n
	}
}

func TestOpenUnsupportedExtension(t *testing.T) {
	if _, err := Open("/tmp/track.ogg"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

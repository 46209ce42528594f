package transcribe

import (
	"context"
	"errors"
	"testing"

	"bard/internal/faults"
)

func TestNoopProducesEmptyText(t *testing.T) {
	res, err := Noop{}.Transcribe(context.Background(), make([]float32, 1600), 16000)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "" {
		t.Fatalf("noop text = %q", res.Text)
	}
}

func TestNewWhisperMissingModel(t *testing.T) {
	_, err := NewWhisper(WhisperConfig{
		EncoderPath: "/nonexistent/encoder.onnx",
		DecoderPath: "/nonexistent/decoder.onnx",
		TokensPath:  "/nonexistent/tokens.txt",
	})
	if err == nil {
		t.Fatal("expected error for missing model files")
	}
	if !errors.Is(err, faults.ErrModel) {
		t.Fatalf("error kind = %s, want model", faults.Kind(err))
	}
}

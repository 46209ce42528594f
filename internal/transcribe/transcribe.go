package transcribe

import "context"

// Result is a finished transcription of one segment.
type Result struct {
	Text       string
	Language   string
	Confidence float32
}

// Transcriber converts a mono segment into text. Implementations must be safe
// to call repeatedly from a single worker; they need not be safe for
// concurrent calls.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int) (Result, error)
}

// Noop is used when no speech model is configured. Every segment transcribes
// to the empty string, which downstream treats as "no lexical signal".
type Noop struct{}

func (Noop) Transcribe(context.Context, []float32, int) (Result, error) {
	return Result{}, nil
}

package speaker

import (
	"os"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"

	"bard/internal/faults"
)

// OnnxExtractor computes voiceprints with a sherpa-onnx speaker embedding
// model. Extraction is serialized by the caller; the pipeline runs it from a
// single worker goroutine.
type OnnxExtractor struct {
	extractor *sherpa.SpeakerEmbeddingExtractor
}

// NewOnnxExtractor loads the embedding model at modelPath.
func NewOnnxExtractor(modelPath string, numThreads int) (*OnnxExtractor, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, faults.Wrap(faults.ErrModel, "speaker", "load", "embedding model not found", err)
	}
	if numThreads <= 0 {
		numThreads = 1
	}

	config := sherpa.SpeakerEmbeddingExtractorConfig{
		Model:      modelPath,
		NumThreads: numThreads,
		Provider:   "cpu",
	}
	extractor := sherpa.NewSpeakerEmbeddingExtractor(&config)
	if extractor == nil {
		return nil, faults.Wrap(faults.ErrModel, "speaker", "load", "embedding extractor init failed", nil)
	}
	return &OnnxExtractor{extractor: extractor}, nil
}

// Dim returns the embedding dimension of the loaded model.
func (e *OnnxExtractor) Dim() int {
	return e.extractor.Dim()
}

// Extract computes the voiceprint for a mono segment.
func (e *OnnxExtractor) Extract(samples []float32, sampleRate int) (Embedding, error) {
	if len(samples) == 0 {
		return nil, faults.Wrap(faults.ErrData, "speaker", "extract", "empty segment", nil)
	}

	stream := e.extractor.CreateStream()
	defer sherpa.DeleteOnlineStream(stream)

	stream.AcceptWaveform(sampleRate, samples)
	stream.InputFinished()

	if !e.extractor.IsReady(stream) {
		return nil, faults.Wrap(faults.ErrData, "speaker", "extract", "segment too short for embedding", nil)
	}
	return Embedding(e.extractor.Compute(stream)), nil
}

// Close releases the underlying model.
func (e *OnnxExtractor) Close() {
	if e.extractor != nil {
		sherpa.DeleteSpeakerEmbeddingExtractor(e.extractor)
		e.extractor = nil
	}
}

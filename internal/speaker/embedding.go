package speaker

import "math"

// Embedding is a speaker voiceprint vector, typically 256 to 512 dimensions
// depending on the extractor model.
type Embedding []float32

// CosineSimilarity returns the cosine of the angle between two embeddings.
// Empty, mismatched-length and zero-norm inputs all score 0 so a broken
// extractor can never verify anyone.
func CosineSimilarity(a, b Embedding) float32 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / float32(math.Sqrt(float64(normA))*math.Sqrt(float64(normB)))
}

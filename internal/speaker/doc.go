// Package speaker verifies that a speech segment belongs to an enrolled
// voice, gating detection on the game master's voice in multi-speaker rooms.
//
// Voiceprints are float32 embeddings compared by cosine similarity against a
// configurable threshold. Embedding extraction sits behind the
// EmbeddingExtractor interface; OnnxExtractor is the production
// implementation.
package speaker

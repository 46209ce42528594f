// Package transcribe turns speech segments into text for keyword matching.
//
// The Transcriber interface keeps the pipeline agnostic to the backend:
// Whisper wraps a sherpa-onnx whisper model, Noop serves configurations
// without a speech model, and tests supply canned results.
package transcribe

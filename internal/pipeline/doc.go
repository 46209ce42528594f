// Package pipeline orchestrates streaming detection.
//
// Frames from the capture layer flow into a segment buffer and through the
// energy VAD on every call. Full segments move to a worker goroutine that
// runs the expensive collaborators (transcription, keyword matching, emotion
// classification, optional speaker gating) and feeds their results to the
// fusion machine. Everything observable leaves on a non-blocking event
// channel. A generation counter makes Stop discard in-flight segment results
// instead of delivering them late.
package pipeline

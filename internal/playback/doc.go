// Package playback is the portaudio output sink behind the engine's Output
// interface. Each voice runs its own output stream; the audio callback only
// reads decoded samples and applies gain, with teardown handled off the
// callback on a reaper goroutine.
package playback

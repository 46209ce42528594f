// Package engine is the reactive playback side of the daemon.
//
// It turns detection outcomes and operator commands into music and
// sound-effect playback: exclusive track playback with optional looping,
// timed crossfades with genuinely concurrent volume ramps, ducking with a
// smooth glide, and fire-and-forget effect layering. The engine talks to an
// Output interface so the portaudio sink stays out of unit tests.
package engine

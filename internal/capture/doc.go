// Package capture feeds live microphone audio into the detection pipeline.
//
// The portaudio device callback does exactly one job: copy the buffer into a
// bounded queue, dropping on overflow. A feeder goroutine delivers frames to
// the consumer, so slow processing can never stall the hardware callback.
package capture

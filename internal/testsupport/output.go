package testsupport

import (
	"sync"

	"bard/internal/engine"
)

// NullOutput satisfies engine.Output without touching an audio device. Every
// opened voice plays silently until stopped.
type NullOutput struct{}

func (NullOutput) Open(string, bool) (engine.Voice, error) {
	return &nullVoice{done: make(chan struct{})}, nil
}

type nullVoice struct {
	once sync.Once
	done chan struct{}
}

func (v *nullVoice) SetVolume(float32)     {}
func (v *nullVoice) Pause()                {}
func (v *nullVoice) Resume()               {}
func (v *nullVoice) Stop()                 { v.once.Do(func() { close(v.done) }) }
func (v *nullVoice) Done() <-chan struct{} { return v.done }

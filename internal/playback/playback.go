package playback

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	"bard/internal/engine"
	"bard/internal/faults"
	"bard/internal/logging"
	"bard/internal/media"
)

// framesPerBuffer keeps output latency around 10ms at 44.1kHz.
const framesPerBuffer = 512

// Sink opens portaudio output voices for the engine. One Sink serves any
// number of concurrent voices; each voice owns its own stream so music and
// layered effects mix in the host.
type Sink struct {
	logger *slog.Logger
}

// NewSink wraps the default output device. portaudio.Initialize must have
// been called by the daemon runtime.
func NewSink(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sink{logger: logging.WithComponent(logger, "playback")}
}

// Open decodes path and starts a voice for it.
func (s *Sink) Open(path string, loop bool) (engine.Voice, error) {
	var src media.Source
	var err error
	if loop {
		src, err = media.OpenLoop(path)
	} else {
		src, err = media.Open(path)
	}
	if err != nil {
		return nil, err
	}

	v := &voice{
		src:    src,
		logger: s.logger,
		done:   make(chan struct{}),
		ended:  make(chan struct{}),
	}
	v.volume.Store(math.Float32bits(1))

	stream, err := portaudio.OpenDefaultStream(
		0, src.Channels(), float64(src.SampleRate()), framesPerBuffer, v.fill)
	if err != nil {
		src.Close()
		return nil, faults.Wrap(faults.ErrDevice, "playback", "open", "cannot open output stream", err)
	}
	v.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		src.Close()
		return nil, faults.Wrap(faults.ErrDevice, "playback", "start", "cannot start output stream", err)
	}

	go v.reap()
	return v, nil
}

// voice is one playing stream. The portaudio callback only reads samples and
// applies gain; teardown happens on the reap goroutine.
type voice struct {
	src    media.Source
	stream *portaudio.Stream
	logger *slog.Logger

	volume atomic.Uint32
	paused atomic.Bool

	done     chan struct{}
	ended    chan struct{}
	endOnce  sync.Once
	stopOnce sync.Once
}

func (v *voice) fill(out []float32) {
	if v.paused.Load() {
		clear(out)
		return
	}

	n, err := v.src.Read(out)
	gain := math.Float32frombits(v.volume.Load())
	for i := 0; i < n; i++ {
		out[i] *= gain
	}
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	if err != nil {
		v.endOnce.Do(func() { close(v.ended) })
	}
}

// reap waits for the material to end or Stop to be called, then tears the
// stream down outside the audio callback.
func (v *voice) reap() {
	select {
	case <-v.ended:
	case <-v.done:
	}
	if err := v.stream.Stop(); err != nil {
		v.logger.Warn("output stream stop failed", logging.Error(err))
	}
	v.stream.Close()
	v.src.Close()
	v.stopOnce.Do(func() { close(v.done) })
}

func (v *voice) SetVolume(volume float32) {
	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	v.volume.Store(math.Float32bits(volume))
}

func (v *voice) Pause()  { v.paused.Store(true) }
func (v *voice) Resume() { v.paused.Store(false) }

func (v *voice) Stop() {
	v.stopOnce.Do(func() { close(v.done) })
}

func (v *voice) Done() <-chan struct{} { return v.done }

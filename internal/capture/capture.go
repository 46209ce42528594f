package capture

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"

	"bard/internal/dsp"
	"bard/internal/faults"
	"bard/internal/logging"
)

// Frame is one block of captured mono samples with its stream timestamp.
type Frame struct {
	Samples     []float32
	TimestampMS uint64
}

// Capture is the live microphone source. The callback given to Start runs on
// a feeder goroutine, never on the device callback itself.
type Capture interface {
	Start(onFrame func(Frame)) error
	Stop() error
	SampleRate() int
	Channels() int
}

// Config sizes the capture stream. Device selects an input device by name
// substring; empty means the system default.
type Config struct {
	Device      string
	SampleRate  int
	Channels    int
	FrameMS     int
	QueueFrames int
}

func (c Config) normalized() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
	if c.FrameMS <= 0 {
		c.FrameMS = 30
	}
	if c.QueueFrames <= 0 {
		c.QueueFrames = 32
	}
	return c
}

// PortAudio captures from the default input device. The device callback only
// copies samples into a bounded queue; a full queue drops the frame so the
// capture path never blocks.
type PortAudio struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	stream  *portaudio.Stream
	queue   chan Frame
	quit    chan struct{}
	samples uint64
	dropped uint64
	running bool
}

// New builds an unstarted capture source.
func New(cfg Config, logger *slog.Logger) *PortAudio {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &PortAudio{
		cfg:    cfg.normalized(),
		logger: logging.WithComponent(logger, "capture"),
	}
}

// SampleRate returns the configured stream rate.
func (p *PortAudio) SampleRate() int { return p.cfg.SampleRate }

// Channels always reports 1; multi-channel input is downmixed before frames
// leave this package.
func (p *PortAudio) Channels() int { return 1 }

// Start opens the input stream and begins delivering frames to onFrame from
// the feeder goroutine. Starting a running capture is a state error.
func (p *PortAudio) Start(onFrame func(Frame)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return faults.Wrap(faults.ErrState, "capture", "start", "already capturing", nil)
	}

	frameSamples := p.cfg.SampleRate * p.cfg.FrameMS / 1000 * p.cfg.Channels
	p.queue = make(chan Frame, p.cfg.QueueFrames)
	p.quit = make(chan struct{})
	p.samples = 0
	p.dropped = 0

	stream, err := p.openStream(frameSamples / p.cfg.Channels)
	if err != nil {
		return faults.Wrap(faults.ErrDevice, "capture", "open", "cannot open input stream", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return faults.Wrap(faults.ErrDevice, "capture", "start", "cannot start input stream", err)
	}
	p.stream = stream
	p.running = true

	go p.feed(onFrame, p.queue, p.quit)
	p.logger.Info("capture started",
		logging.Int("sample_rate", p.cfg.SampleRate),
		logging.Int("frame_ms", p.cfg.FrameMS))
	return nil
}

func (p *PortAudio) openStream(framesPerBuffer int) (*portaudio.Stream, error) {
	if p.cfg.Device == "" {
		return portaudio.OpenDefaultStream(
			p.cfg.Channels, 0, float64(p.cfg.SampleRate), framesPerBuffer, p.onDevice)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, info := range devices {
		if info.MaxInputChannels < p.cfg.Channels {
			continue
		}
		if !strings.Contains(strings.ToLower(info.Name), strings.ToLower(p.cfg.Device)) {
			continue
		}
		params := portaudio.StreamParameters{
			Input: portaudio.StreamDeviceParameters{
				Device:   info,
				Channels: p.cfg.Channels,
				Latency:  info.DefaultLowInputLatency,
			},
			SampleRate:      float64(p.cfg.SampleRate),
			FramesPerBuffer: framesPerBuffer,
		}
		return portaudio.OpenStream(params, p.onDevice)
	}
	return nil, fmt.Errorf("no input device matches %q", p.cfg.Device)
}

// onDevice runs on the portaudio callback. It must never block: it copies
// the buffer, downmixes, and enqueues or drops.
func (p *PortAudio) onDevice(in []float32) {
	samples := make([]float32, len(in))
	copy(samples, in)
	if p.cfg.Channels > 1 {
		samples = dsp.DownmixMono(samples, p.cfg.Channels)
	}

	timestamp := p.samples * 1000 / uint64(p.cfg.SampleRate)
	p.samples += uint64(len(samples))

	select {
	case p.queue <- Frame{Samples: samples, TimestampMS: timestamp}:
	default:
		p.dropped++
	}
}

func (p *PortAudio) feed(onFrame func(Frame), queue chan Frame, quit chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case frame := <-queue:
			onFrame(frame)
		}
	}
}

// Stop halts the stream and the feeder. Idempotent.
func (p *PortAudio) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return nil
	}
	p.running = false
	close(p.quit)

	err := p.stream.Stop()
	p.stream.Close()
	p.stream = nil
	if p.dropped > 0 {
		p.logger.Warn("capture dropped frames", logging.Uint64("dropped", p.dropped))
	}
	p.logger.Info("capture stopped")
	if err != nil {
		return faults.Wrap(faults.ErrDevice, "capture", "stop", "input stream stop failed", err)
	}
	return nil
}

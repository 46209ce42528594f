package pipeline

import "bard/internal/fusion"

// Segment duration bounds in milliseconds.
const (
	MinSegmentMS = 100
	MaxSegmentMS = 12000
)

// Config is an immutable snapshot of detection settings. It is supplied at
// construction and only replaceable between Start/Stop cycles.
type Config struct {
	Mode                      fusion.Mode
	EnableVAD                 bool
	EnableTranscription       bool
	EnableEmotion             bool
	EnableSpeakerVerification bool
	VADThreshold              float32
	SampleRate                int
	SegmentMS                 uint64
	DetectionTimeoutMS        uint64
	CooldownMS                uint64
}

// DefaultConfig mirrors the daemon's out-of-the-box detection settings.
func DefaultConfig() Config {
	return Config{
		Mode:                fusion.Autonomous,
		EnableVAD:           true,
		EnableTranscription: true,
		EnableEmotion:       true,
		VADThreshold:        0.5,
		SampleRate:          16000,
		SegmentMS:           8000,
		DetectionTimeoutMS:  10000,
		CooldownMS:          3000,
	}
}

// normalized clamps the tunables into their supported ranges.
func (c Config) normalized() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.SegmentMS < MinSegmentMS {
		c.SegmentMS = MinSegmentMS
	} else if c.SegmentMS > MaxSegmentMS {
		c.SegmentMS = MaxSegmentMS
	}
	if c.DetectionTimeoutMS == 0 {
		c.DetectionTimeoutMS = 10000
	}
	if c.CooldownMS == 0 {
		c.CooldownMS = 3000
	}
	if c.VADThreshold < 0 {
		c.VADThreshold = 0
	} else if c.VADThreshold > 1 {
		c.VADThreshold = 1
	}
	if c.Mode == "" {
		c.Mode = fusion.Autonomous
	}
	return c
}

// segmentSamples is the buffer size that triggers segment processing.
func (c Config) segmentSamples() int {
	return int(uint64(c.SampleRate) * c.SegmentMS / 1000)
}

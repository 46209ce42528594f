package config

import (
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAudio()
	c.normalizeDetection()
	c.normalizeEngine()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []*string{
		&c.Paths.DataDir,
		&c.Paths.LogDir,
		&c.Paths.MusicDir,
		&c.Paths.SfxDir,
		&c.Paths.SocketPath,
		&c.Detection.VocabularyPath,
		&c.Speaker.ModelPath,
		&c.Transcription.EncoderPath,
		&c.Transcription.DecoderPath,
		&c.Transcription.TokensPath,
	}
	for _, field := range fields {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	return nil
}

func (c *Config) normalizeAudio() {
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = defaultSampleRate
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = defaultChannels
	}
	if c.Audio.FrameMS <= 0 {
		c.Audio.FrameMS = defaultFrameMS
	}
	if c.Audio.QueueFrames <= 0 {
		c.Audio.QueueFrames = defaultQueueFrames
	}
}

func (c *Config) normalizeDetection() {
	c.Detection.Mode = strings.ToLower(strings.TrimSpace(c.Detection.Mode))
	if c.Detection.Mode == "" {
		c.Detection.Mode = defaultDetectionMode
	}
	c.Detection.VADThreshold = clamp01(c.Detection.VADThreshold)
	// Segment duration is bounded so one cycle neither starves the
	// classifiers nor stalls reactions.
	if c.Detection.SegmentMS < 100 {
		c.Detection.SegmentMS = 100
	}
	if c.Detection.SegmentMS > 12000 {
		c.Detection.SegmentMS = 12000
	}
	if c.Detection.DetectionTimeoutMS <= 0 {
		c.Detection.DetectionTimeoutMS = defaultDetectionTimeoutMS
	}
	if c.Detection.CooldownMS <= 0 {
		c.Detection.CooldownMS = defaultCooldownMS
	}
	c.Speaker.SimilarityThreshold = clamp01(c.Speaker.SimilarityThreshold)
	if c.Speaker.SimilarityThreshold == 0 {
		c.Speaker.SimilarityThreshold = defaultSpeakerThreshold
	}
	if c.Transcription.NumThreads <= 0 {
		c.Transcription.NumThreads = 2
	}
}

func (c *Config) normalizeEngine() {
	c.Engine.MasterVolume = clamp01(c.Engine.MasterVolume)
	c.Engine.MusicVolume = clamp01(c.Engine.MusicVolume)
	c.Engine.SfxVolume = clamp01(c.Engine.SfxVolume)
	c.Engine.DuckingAmount = clamp01(c.Engine.DuckingAmount)
	if c.Engine.DuckingFadeMS < 0 {
		c.Engine.DuckingFadeMS = defaultDuckingFadeMS
	}
	c.Engine.CrossfadeType = strings.ToLower(strings.TrimSpace(c.Engine.CrossfadeType))
	if c.Engine.CrossfadeType == "" {
		c.Engine.CrossfadeType = defaultCrossfadeType
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

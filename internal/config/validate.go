package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports configuration values that cannot be repaired by
// normalization.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.DataDir == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	switch c.Detection.Mode {
	case "autonomous", "collaborative":
	default:
		problems = append(problems, fmt.Sprintf("detection.mode %q must be autonomous or collaborative", c.Detection.Mode))
	}
	switch c.Engine.CrossfadeType {
	case "instant", "quick", "musical", "long":
	default:
		problems = append(problems, fmt.Sprintf("engine.crossfade_type %q must be instant, quick, musical, or long", c.Engine.CrossfadeType))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q must be console or json", c.Logging.Format))
	}
	if c.Detection.EnableSpeakerVerification && c.Speaker.ModelPath == "" {
		problems = append(problems, "speaker.model_path required when speaker verification is enabled")
	}
	if partial := c.transcriptionPartiallyConfigured(); partial {
		problems = append(problems, "transcription encoder_path, decoder_path, and tokens_path must be set together")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// TranscriberConfigured reports whether offline recognizer model paths are
// fully specified.
func (c *Config) TranscriberConfigured() bool {
	return c.Transcription.EncoderPath != "" &&
		c.Transcription.DecoderPath != "" &&
		c.Transcription.TokensPath != ""
}

func (c *Config) transcriptionPartiallyConfigured() bool {
	set := 0
	for _, p := range []string{c.Transcription.EncoderPath, c.Transcription.DecoderPath, c.Transcription.TokensPath} {
		if p != "" {
			set++
		}
	}
	return set > 0 && set < 3
}

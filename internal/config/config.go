package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
	MusicDir   string `toml:"music_dir"`
	SfxDir     string `toml:"sfx_dir"`
	SocketPath string `toml:"socket_path"`
	APIBind    string `toml:"api_bind"`
}

// Audio contains capture settings.
type Audio struct {
	InputDevice string `toml:"input_device"`
	SampleRate  int    `toml:"sample_rate"`
	Channels    int    `toml:"channels"`
	FrameMS     int    `toml:"frame_ms"`
	QueueFrames int    `toml:"queue_frames"`
}

// Detection contains detection pipeline settings.
type Detection struct {
	Mode                      string  `toml:"mode"`
	EnableVAD                 bool    `toml:"enable_vad"`
	EnableTranscription       bool    `toml:"enable_transcription"`
	EnableEmotion             bool    `toml:"enable_emotion"`
	EnableSpeakerVerification bool    `toml:"enable_speaker_verification"`
	VADThreshold              float64 `toml:"vad_threshold"`
	SegmentMS                 int     `toml:"segment_ms"`
	DetectionTimeoutMS        int     `toml:"detection_timeout_ms"`
	CooldownMS                int     `toml:"cooldown_ms"`
	VocabularyPath            string  `toml:"vocabulary_path"`
	WatchVocabulary           bool    `toml:"watch_vocabulary"`
}

// Speaker contains speaker verification settings.
type Speaker struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	ModelPath           string  `toml:"model_path"`
}

// Transcription contains offline recognizer settings. When the model paths
// are empty the daemon runs without a transcriber and the lexical channel
// contributes no signal.
type Transcription struct {
	EncoderPath string `toml:"encoder_path"`
	DecoderPath string `toml:"decoder_path"`
	TokensPath  string `toml:"tokens_path"`
	Language    string `toml:"language"`
	NumThreads  int    `toml:"num_threads"`
}

// Engine contains playback defaults.
type Engine struct {
	MasterVolume  float64 `toml:"master_volume"`
	MusicVolume   float64 `toml:"music_volume"`
	SfxVolume     float64 `toml:"sfx_volume"`
	CrossfadeType string  `toml:"crossfade_type"`
	DuckingAmount float64 `toml:"ducking_amount"`
	DuckingFadeMS int     `toml:"ducking_fade_ms"`
	OutputDevice  string  `toml:"output_device"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Suggestions    bool   `toml:"suggestions"`
	Sessions       bool   `toml:"sessions"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for bard.
//
// Configuration sections by subsystem:
//   - Paths: data/log/library directories, socket, API bind address
//   - Audio: capture device negotiation and frame queueing
//   - Detection: pipeline toggles, thresholds, and durations
//   - Speaker: verification threshold and embedding model
//   - Transcription: offline recognizer model paths
//   - Engine: playback volumes, crossfade, ducking
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Audio         Audio         `toml:"audio"`
	Detection     Detection     `toml:"detection"`
	Speaker       Speaker       `toml:"speaker"`
	Transcription Transcription `toml:"transcription"`
	Engine        Engine        `toml:"engine"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bard/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.MusicDir, c.Paths.SfxDir}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if c.Paths.SocketPath != "" {
		if err := os.MkdirAll(filepath.Dir(c.Paths.SocketPath), 0o755); err != nil {
			return fmt.Errorf("create socket directory: %w", err)
		}
	}
	return nil
}

// CatalogPath returns the SQLite catalog location under the data directory.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.DataDir, "bard.db")
}

func expandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}

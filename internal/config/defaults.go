package config

const (
	defaultDataDir    = "~/.local/share/bard"
	defaultLogDir     = "~/.local/share/bard/logs"
	defaultMusicDir   = "~/.local/share/bard/music"
	defaultSfxDir     = "~/.local/share/bard/sfx"
	defaultSocketPath = "~/.local/share/bard/bardd.sock"
	defaultAPIBind    = "127.0.0.1:7849"

	defaultSampleRate  = 16000
	defaultChannels    = 1
	defaultFrameMS     = 30
	defaultQueueFrames = 64

	defaultDetectionMode      = "autonomous"
	defaultVADThreshold       = 0.5
	defaultSegmentMS          = 8000
	defaultDetectionTimeoutMS = 10000
	defaultCooldownMS         = 3000

	defaultSpeakerThreshold = 0.75

	defaultMasterVolume  = 1.0
	defaultMusicVolume   = 0.7
	defaultSfxVolume     = 0.8
	defaultCrossfadeType = "musical"
	defaultDuckingAmount = 0.3
	defaultDuckingFadeMS = 200

	defaultNotifyTimeout = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			MusicDir:   defaultMusicDir,
			SfxDir:     defaultSfxDir,
			SocketPath: defaultSocketPath,
			APIBind:    defaultAPIBind,
		},
		Audio: Audio{
			SampleRate:  defaultSampleRate,
			Channels:    defaultChannels,
			FrameMS:     defaultFrameMS,
			QueueFrames: defaultQueueFrames,
		},
		Detection: Detection{
			Mode:                defaultDetectionMode,
			EnableVAD:           true,
			EnableTranscription: true,
			EnableEmotion:       true,
			VADThreshold:        defaultVADThreshold,
			SegmentMS:           defaultSegmentMS,
			DetectionTimeoutMS:  defaultDetectionTimeoutMS,
			CooldownMS:          defaultCooldownMS,
			WatchVocabulary:     true,
		},
		Speaker: Speaker{
			SimilarityThreshold: defaultSpeakerThreshold,
		},
		Transcription: Transcription{
			NumThreads: 2,
		},
		Engine: Engine{
			MasterVolume:  defaultMasterVolume,
			MusicVolume:   defaultMusicVolume,
			SfxVolume:     defaultSfxVolume,
			CrossfadeType: defaultCrossfadeType,
			DuckingAmount: defaultDuckingAmount,
			DuckingFadeMS: defaultDuckingFadeMS,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Suggestions:    true,
			Sessions:       true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

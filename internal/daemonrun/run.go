package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"

	"bard/internal/api"
	"bard/internal/capture"
	"bard/internal/catalog"
	"bard/internal/config"
	"bard/internal/daemon"
	"bard/internal/engine"
	"bard/internal/faults"
	"bard/internal/fusion"
	"bard/internal/ipc"
	"bard/internal/keyword"
	"bard/internal/logging"
	"bard/internal/notifications"
	"bard/internal/pipeline"
	"bard/internal/playback"
	"bard/internal/session"
	"bard/internal/speaker"
	"bard/internal/transcribe"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the bard daemon runtime loop and blocks until the context is
// canceled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := opts.LogLevel
	if strings.TrimSpace(level) == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.NewForDir(cfg.Paths.LogDir, level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "bardd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	if err := portaudio.Initialize(); err != nil {
		return faults.Wrap(faults.ErrDevice, "daemon", "start", "portaudio init failed", err)
	}
	defer portaudio.Terminate()

	store, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		logger.Error("open catalog", logging.Error(err))
		return err
	}

	if err := seedCatalog(signalCtx, cfg, store, logger); err != nil {
		store.Close()
		return err
	}

	matcher, vocabWatcher, err := buildMatcher(signalCtx, cfg, store, logger)
	if err != nil {
		store.Close()
		return err
	}
	if vocabWatcher != nil {
		defer vocabWatcher.Close()
	}

	transcriber, err := buildTranscriber(cfg, logger)
	if err != nil {
		store.Close()
		return err
	}
	if closer, ok := transcriber.(interface{ Close() }); ok && closer != nil {
		defer closer.Close()
	}

	verifier, extractor, err := buildSpeaker(signalCtx, cfg, store, logger)
	if err != nil {
		store.Close()
		return err
	}

	pipe := pipeline.New(pipelineConfig(cfg), pipeline.Deps{
		Matcher:     matcher,
		Transcriber: transcriber,
		Verifier:    verifier,
		Extractor:   extractor,
		Logger:      logger,
	})
	defer pipe.Close()

	eng := engine.New(engineOptions(cfg, logger))
	source := capture.New(capture.Config{
		Device:      cfg.Audio.InputDevice,
		SampleRate:  cfg.Audio.SampleRate,
		Channels:    cfg.Audio.Channels,
		FrameMS:     cfg.Audio.FrameMS,
		QueueFrames: cfg.Audio.QueueFrames,
	}, logger)

	notifier := notifications.NewService(cfg)
	manager := session.NewManager(session.Deps{
		Capture:  source,
		Pipeline: pipe,
		Engine:   eng,
		Store:    store,
		Notifier: notifier,
		Logger:   logger,
	})
	defer manager.Close()

	d, err := daemon.New(cfg, store, manager, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	ipcServer, err := ipc.NewServer(signalCtx, cfg.Paths.SocketPath, ipc.Deps{
		Manager:   manager,
		Engine:    eng,
		Store:     store,
		Notifier:  notifier,
		Logger:    logger,
		Verifier:  verifier,
		Extractor: extractor,
		LockPath:  d.LockPath(),
		MusicDir:  cfg.Paths.MusicDir,
		SfxDir:    cfg.Paths.SfxDir,
	})
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if strings.TrimSpace(cfg.Paths.APIBind) != "" {
		apiServer := api.NewServer(cfg.Paths.APIBind, manager, logger)
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("start API server: %w", err)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := apiServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("api shutdown failed", logging.Error(err))
			}
		}()
		logger.Info("api server listening", logging.String("addr", apiServer.Addr()))
	}

	logger.Info("bard daemon ready",
		logging.String("socket", cfg.Paths.SocketPath),
		logging.String("catalog", store.Path()),
		logging.String("mode", string(pipelineConfig(cfg).Mode)))

	<-signalCtx.Done()
	logger.Info("bard daemon shutting down")
	return nil
}

// seedCatalog installs the built-in vocabulary on first run and refreshes the
// media library from the configured directories.
func seedCatalog(ctx context.Context, cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
	seeded, err := store.SeedDefaultKeywords(ctx)
	if err != nil {
		return fmt.Errorf("seed keywords: %w", err)
	}
	if seeded > 0 {
		logger.Info("seeded default vocabulary", logging.Int("keywords", seeded))
	}

	if cfg.Paths.MusicDir != "" {
		count, err := store.ImportTracks(ctx, cfg.Paths.MusicDir)
		if err != nil {
			logger.Warn("music import failed", logging.Error(err))
		} else if count > 0 {
			logger.Info("music library imported", logging.Int("tracks", count))
		}
	}
	if cfg.Paths.SfxDir != "" {
		count, err := store.ImportEffects(ctx, cfg.Paths.SfxDir)
		if err != nil {
			logger.Warn("sfx import failed", logging.Error(err))
		} else if count > 0 {
			logger.Info("sfx library imported", logging.Int("effects", count))
		}
	}
	return nil
}

// buildMatcher prefers a vocabulary file when one is configured, falling back
// to the catalog's keyword table. The watcher is nil unless file watching is
// enabled.
func buildMatcher(ctx context.Context, cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*keyword.Matcher, *keyword.Watcher, error) {
	path := strings.TrimSpace(cfg.Detection.VocabularyPath)
	if path == "" {
		vocab, err := store.Vocabulary(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load vocabulary from catalog: %w", err)
		}
		return keyword.NewMatcher(vocab), nil, nil
	}

	vocab, err := keyword.LoadVocabulary(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load vocabulary file: %w", err)
	}
	matcher := keyword.NewMatcher(vocab)
	if !cfg.Detection.WatchVocabulary {
		return matcher, nil, nil
	}
	watcher, err := keyword.NewWatcher(matcher, path, logger)
	if err != nil {
		logger.Warn("vocabulary watch unavailable", logging.Error(err))
		return matcher, nil, nil
	}
	logger.Info("watching vocabulary file", logging.String("path", path))
	return matcher, watcher, nil
}

func buildTranscriber(cfg *config.Config, logger *slog.Logger) (transcribe.Transcriber, error) {
	if !cfg.Detection.EnableTranscription {
		return transcribe.Noop{}, nil
	}
	if strings.TrimSpace(cfg.Transcription.EncoderPath) == "" {
		logger.Info("no speech model configured, lexical channel disabled")
		return transcribe.Noop{}, nil
	}
	whisper, err := transcribe.NewWhisper(transcribe.WhisperConfig{
		EncoderPath: cfg.Transcription.EncoderPath,
		DecoderPath: cfg.Transcription.DecoderPath,
		TokensPath:  cfg.Transcription.TokensPath,
		Language:    cfg.Transcription.Language,
		NumThreads:  cfg.Transcription.NumThreads,
	})
	if err != nil {
		return nil, fmt.Errorf("load speech model: %w", err)
	}
	logger.Info("speech model loaded", logging.String("encoder", cfg.Transcription.EncoderPath))
	return whisper, nil
}

// buildSpeaker enrolls consented profiles from the catalog. The extractor is
// nil when speaker verification is disabled or no embedding model is
// configured; the pipeline then skips the gate.
func buildSpeaker(ctx context.Context, cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*speaker.Verifier, speaker.EmbeddingExtractor, error) {
	if !cfg.Detection.EnableSpeakerVerification {
		return nil, nil, nil
	}

	verifier := speaker.NewVerifier()
	if cfg.Speaker.SimilarityThreshold > 0 {
		verifier.SetThreshold(float32(cfg.Speaker.SimilarityThreshold))
	}

	profiles, err := store.Profiles(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load voice profiles: %w", err)
	}
	for _, profile := range profiles {
		verifier.Enroll(profile)
	}
	logger.Info("voice profiles enrolled", logging.Int("profiles", len(profiles)))

	if strings.TrimSpace(cfg.Speaker.ModelPath) == "" {
		logger.Warn("speaker verification enabled without an embedding model")
		return verifier, nil, nil
	}
	extractor, err := speaker.NewOnnxExtractor(cfg.Speaker.ModelPath, cfg.Transcription.NumThreads)
	if err != nil {
		return nil, nil, fmt.Errorf("load embedding model: %w", err)
	}
	return verifier, extractor, nil
}

func pipelineConfig(cfg *config.Config) pipeline.Config {
	mode := fusion.Autonomous
	if strings.EqualFold(strings.TrimSpace(cfg.Detection.Mode), string(fusion.Collaborative)) {
		mode = fusion.Collaborative
	}
	return pipeline.Config{
		Mode:                      mode,
		EnableVAD:                 cfg.Detection.EnableVAD,
		EnableTranscription:       cfg.Detection.EnableTranscription,
		EnableEmotion:             cfg.Detection.EnableEmotion,
		EnableSpeakerVerification: cfg.Detection.EnableSpeakerVerification,
		VADThreshold:              float32(cfg.Detection.VADThreshold),
		SampleRate:                cfg.Audio.SampleRate,
		SegmentMS:                 uint64(cfg.Detection.SegmentMS),
		DetectionTimeoutMS:        uint64(cfg.Detection.DetectionTimeoutMS),
		CooldownMS:                uint64(cfg.Detection.CooldownMS),
	}
}

func engineOptions(cfg *config.Config, logger *slog.Logger) engine.Options {
	opts := engine.Options{
		Output:        playback.NewSink(logger),
		Logger:        logger,
		MasterVolume:  float32(cfg.Engine.MasterVolume),
		MusicVolume:   float32(cfg.Engine.MusicVolume),
		SfxVolume:     float32(cfg.Engine.SfxVolume),
		DuckingAmount: float32(cfg.Engine.DuckingAmount),
		DuckingFade:   time.Duration(cfg.Engine.DuckingFadeMS) * time.Millisecond,
	}
	if fade, err := engine.ParseCrossfadeType(cfg.Engine.CrossfadeType); err == nil {
		opts.Crossfade = fade
	}
	return opts
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

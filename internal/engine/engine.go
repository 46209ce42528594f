package engine

import (
	"log/slog"
	"sync"
	"time"

	"bard/internal/faults"
	"bard/internal/logging"
	"bard/internal/media"
)

// State is the engine's playback phase.
type State string

const (
	Idle          State = "idle"
	Playing       State = "playing"
	Paused        State = "paused"
	Transitioning State = "transitioning"
)

// Voice is a single playing stream owned by the output sink.
type Voice interface {
	SetVolume(volume float32)
	Pause()
	Resume()
	Stop()
	// Done closes when the material ends or the voice is stopped.
	Done() <-chan struct{}
}

// Output opens voices for the engine. The production implementation sits on
// portaudio; tests use a silent sink.
type Output interface {
	Open(path string, loop bool) (Voice, error)
}

// rampInterval is the volume update cadence during crossfades and duck
// glides.
const rampInterval = 20 * time.Millisecond

// Options configure a new engine. Zero volumes mean "use the default".
type Options struct {
	Output        Output
	Logger        *slog.Logger
	MasterVolume  float32
	MusicVolume   float32
	SfxVolume     float32
	DuckingAmount float32
	DuckingFade   time.Duration
	Crossfade     CrossfadeType
}

// Engine drives music and sound-effect playback in response to detection
// outcomes or operator commands. All state mutation happens under one mutex;
// ramps run on goroutines that re-check a generation token every tick so a
// newer transition silently retires a stale one.
type Engine struct {
	output Output
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	master     float32
	music      float32
	sfx        float32
	duckAmount float32
	duckFade   time.Duration
	crossfade  CrossfadeType
	ducked     bool
	current    *playingTrack
	sfxVoices  map[Voice]struct{}
	rampGen    uint64
}

type playingTrack struct {
	track   media.Track
	voice   Voice
	started time.Time
}

// New builds an engine over the given output sink.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	e := &Engine{
		output:     opts.Output,
		logger:     logging.WithComponent(opts.Logger, "engine"),
		state:      Idle,
		master:     defaulted(opts.MasterVolume, 1.0),
		music:      defaulted(opts.MusicVolume, 0.7),
		sfx:        defaulted(opts.SfxVolume, 0.8),
		duckAmount: defaulted(opts.DuckingAmount, 0.3),
		duckFade:   opts.DuckingFade,
		crossfade:  opts.Crossfade,
		sfxVoices:  make(map[Voice]struct{}),
	}
	if e.duckFade == 0 {
		e.duckFade = 200 * time.Millisecond
	}
	if e.crossfade == "" {
		e.crossfade = Musical
	}
	return e
}

func defaulted(v, fallback float32) float32 {
	if v == 0 {
		return fallback
	}
	return clamp01(v)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// State returns the current playback phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// NowPlaying returns the current track and true while music is playing,
// paused or transitioning.
func (e *Engine) NowPlaying() (media.Track, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return media.Track{}, false
	}
	return e.current.track, true
}

// PlayTrack stops any current playback and starts track at the effective
// music volume.
func (e *Engine) PlayTrack(track media.Track) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rampGen++
	if e.current != nil {
		e.current.voice.Stop()
		e.current = nil
	}

	voice, err := e.openVoice(track)
	if err != nil {
		e.state = Idle
		return err
	}
	voice.SetVolume(e.musicTargetLocked())
	e.current = &playingTrack{track: track, voice: voice, started: time.Now()}
	e.state = Playing
	e.logger.Info("playing track",
		logging.String("track", track.Name),
		logging.Bool("loop", track.Loop))

	go e.watchEnd(voice)
	return nil
}

// CrossfadeTo transitions to track over the type's duration: the old voice
// ramps to silence while the new one ramps to the music target,
// concurrently. Instant degenerates to PlayTrack.
func (e *Engine) CrossfadeTo(track media.Track, fade CrossfadeType) error {
	duration := fade.Duration()
	if duration == 0 {
		return e.PlayTrack(track)
	}

	e.mu.Lock()
	old := e.current
	if old == nil {
		// Nothing to fade from; ramp the new track in from silence.
		e.mu.Unlock()
		return e.fadeInFromSilence(track, duration)
	}

	voice, err := e.openVoice(track)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	voice.SetVolume(0)
	e.rampGen++
	gen := e.rampGen
	e.current = &playingTrack{track: track, voice: voice, started: time.Now()}
	e.state = Transitioning
	e.logger.Info("crossfading",
		logging.String("from", old.track.Name),
		logging.String("to", track.Name),
		logging.String("type", string(fade)))
	e.mu.Unlock()

	go e.runCrossfade(old.voice, voice, duration, gen)
	return nil
}

func (e *Engine) fadeInFromSilence(track media.Track, duration time.Duration) error {
	e.mu.Lock()
	voice, err := e.openVoice(track)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	voice.SetVolume(0)
	e.rampGen++
	gen := e.rampGen
	e.current = &playingTrack{track: track, voice: voice, started: time.Now()}
	e.state = Transitioning
	e.mu.Unlock()

	go e.runCrossfade(nil, voice, duration, gen)
	return nil
}

// runCrossfade performs the timed concurrent ramp. A stale generation means
// a newer command owns the voices; the outgoing voice still gets stopped
// because nothing else references it.
func (e *Engine) runCrossfade(outgoing, incoming Voice, duration time.Duration, gen uint64) {
	start := time.Now()
	ticker := time.NewTicker(rampInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		progress := float32(now.Sub(start)) / float32(duration)
		if progress >= 1 {
			break
		}

		e.mu.Lock()
		if e.rampGen != gen {
			e.mu.Unlock()
			if outgoing != nil {
				outgoing.Stop()
			}
			return
		}
		target := e.musicTargetLocked()
		e.mu.Unlock()

		if outgoing != nil {
			outgoing.SetVolume(target * (1 - progress))
		}
		incoming.SetVolume(target * progress)
	}

	if outgoing != nil {
		outgoing.Stop()
	}

	e.mu.Lock()
	if e.rampGen == gen {
		incoming.SetVolume(e.musicTargetLocked())
		e.state = Playing
	}
	e.mu.Unlock()

	e.watchEnd(incoming)
}

// watchEnd idles the engine when the current track finishes naturally.
func (e *Engine) watchEnd(voice Voice) {
	<-voice.Done()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil && e.current.voice == voice && e.state == Playing {
		e.logger.Info("track finished", logging.String("track", e.current.track.Name))
		e.current = nil
		e.state = Idle
	}
}

// PlaySfx layers a one-shot effect over whatever music is playing.
// Fire-and-forget; errors are returned but playback is otherwise untracked.
func (e *Engine) PlaySfx(effect media.SoundEffect) error {
	e.mu.Lock()
	voice, err := e.output.Open(effect.Path, false)
	if err != nil {
		e.mu.Unlock()
		return faults.Wrap(faults.ErrDevice, "engine", "sfx", "cannot open effect", err)
	}
	voice.SetVolume(e.sfx * e.master)
	e.sfxVoices[voice] = struct{}{}
	e.mu.Unlock()

	e.logger.Debug("playing sfx", logging.String("effect", effect.Name))
	go func() {
		<-voice.Done()
		e.mu.Lock()
		delete(e.sfxVoices, voice)
		e.mu.Unlock()
	}()
	return nil
}

// Pause suspends music playback. Valid only while Playing.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Playing || e.current == nil {
		return faults.Wrap(faults.ErrState, "engine", "pause", "not playing", nil)
	}
	e.current.voice.Pause()
	e.state = Paused
	return nil
}

// Resume continues paused music. Valid only while Paused.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Paused || e.current == nil {
		return faults.Wrap(faults.ErrState, "engine", "resume", "not paused", nil)
	}
	e.current.voice.Resume()
	e.state = Playing
	return nil
}

// StopAll stops music and every live effect. Idempotent.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rampGen++
	if e.current != nil {
		e.current.voice.Stop()
		e.current = nil
	}
	for voice := range e.sfxVoices {
		voice.Stop()
		delete(e.sfxVoices, voice)
	}
	if e.state != Idle {
		e.logger.Info("playback stopped")
	}
	e.state = Idle
}

// Duck attenuates music by the configured ducking amount, glided over the
// ducking fade. No-op when already ducked.
func (e *Engine) Duck() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ducked {
		return
	}
	from := e.musicTargetLocked()
	e.ducked = true
	e.glideLocked(from, e.musicTargetLocked())
}

// ReleaseDuck restores the music target with the same glide.
func (e *Engine) ReleaseDuck() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ducked {
		return
	}
	from := e.musicTargetLocked()
	e.ducked = false
	e.glideLocked(from, e.musicTargetLocked())
}

// Ducked reports whether music is currently attenuated.
func (e *Engine) Ducked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ducked
}

// glideLocked ramps the current voice between two volumes over the duck
// fade. During a transition the crossfade ramp already recomputes the target
// every tick, so the new level applies through it instead.
func (e *Engine) glideLocked(from, to float32) {
	if e.current == nil || e.state == Transitioning {
		return
	}
	e.rampGen++
	gen := e.rampGen
	voice := e.current.voice
	duration := e.duckFade

	go func() {
		start := time.Now()
		ticker := time.NewTicker(rampInterval)
		defer ticker.Stop()
		for now := range ticker.C {
			progress := float32(now.Sub(start)) / float32(duration)
			if progress >= 1 {
				break
			}
			e.mu.Lock()
			stale := e.rampGen != gen
			e.mu.Unlock()
			if stale {
				return
			}
			voice.SetVolume(from + (to-from)*progress)
		}
		e.mu.Lock()
		if e.rampGen == gen {
			voice.SetVolume(e.musicTargetLocked())
		}
		e.mu.Unlock()
	}()
}

// SetMasterVolume scales everything. Clamped to [0,1].
func (e *Engine) SetMasterVolume(v float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.master = clamp01(v)
	e.applyVolumesLocked()
}

// SetMusicVolume sets the music channel level. Clamped to [0,1].
func (e *Engine) SetMusicVolume(v float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.music = clamp01(v)
	e.applyVolumesLocked()
}

// SetSfxVolume sets the effect channel level. Clamped to [0,1].
func (e *Engine) SetSfxVolume(v float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sfx = clamp01(v)
	e.applyVolumesLocked()
}

// SetCrossfadeType changes the default transition used by callers that do
// not pass one explicitly.
func (e *Engine) SetCrossfadeType(fade CrossfadeType) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.crossfade = fade
}

// CrossfadeDefault returns the configured default transition.
func (e *Engine) CrossfadeDefault() CrossfadeType {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.crossfade
}

// Volumes returns (master, music, sfx).
func (e *Engine) Volumes() (float32, float32, float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.master, e.music, e.sfx
}

// applyVolumesLocked pushes new levels to live voices. Transitions pick the
// change up on their next ramp tick.
func (e *Engine) applyVolumesLocked() {
	if e.current != nil && e.state != Transitioning {
		e.current.voice.SetVolume(e.musicTargetLocked())
	}
	for voice := range e.sfxVoices {
		voice.SetVolume(e.sfx * e.master)
	}
}

// musicTargetLocked is the effective music volume:
// music x master x (duckAmount when ducked).
func (e *Engine) musicTargetLocked() float32 {
	target := e.music * e.master
	if e.ducked {
		target *= e.duckAmount
	}
	return target
}

func (e *Engine) openVoice(track media.Track) (Voice, error) {
	voice, err := e.output.Open(track.Path, track.Loop)
	if err != nil {
		return nil, faults.Wrap(faults.ErrDevice, "engine", "play", "cannot open track", err)
	}
	return voice, nil
}

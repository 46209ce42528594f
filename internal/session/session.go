package session

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"bard/internal/capture"
	"bard/internal/catalog"
	"bard/internal/engine"
	"bard/internal/faults"
	"bard/internal/fusion"
	"bard/internal/keyword"
	"bard/internal/logging"
	"bard/internal/media"
	"bard/internal/notifications"
	"bard/internal/pipeline"
)

// Suggestion is the collaborative-mode outcome of a confirmed detection: the
// table is told what was heard and what would fit, and nothing plays until
// someone asks for it.
type Suggestion struct {
	Keyword string
	Emotion string
	TrackID string
	Track   string
}

// TrackChange reports an autonomous-mode music switch.
type TrackChange struct {
	Track   media.Track
	Keyword string
	Emotion string
}

// Snapshot is the session status surface exposed over IPC and the API.
type Snapshot struct {
	Active     bool
	Session    catalog.Session
	Pipeline   fusion.State
	Engine     engine.State
	NowPlaying string
	Detections int
	ElapsedMS  int64
	Mode       fusion.Mode
}

// Deps are the orchestrator's collaborators.
type Deps struct {
	Capture  capture.Capture
	Pipeline *pipeline.Pipeline
	Engine   *engine.Engine
	Store    *catalog.Store
	Notifier notifications.Service
	Logger   *slog.Logger
}

// Manager wires capture into the pipeline, reacts to detection outcomes, and
// records session history. One manager serves the daemon's whole lifetime;
// sessions start and stop within it.
type Manager struct {
	capture  capture.Capture
	pipeline *pipeline.Pipeline
	engine   *engine.Engine
	store    *catalog.Store
	notifier notifications.Service
	logger   *slog.Logger

	mu          sync.Mutex
	current     *catalog.Session
	starting    bool
	mode        fusion.Mode
	detections  int
	subscribers map[chan any]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager builds the orchestrator and starts its event loop.
func NewManager(deps Deps) *Manager {
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewNop()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		capture:     deps.Capture,
		pipeline:    deps.Pipeline,
		engine:      deps.Engine,
		store:       deps.Store,
		notifier:    deps.Notifier,
		logger:      logging.WithComponent(deps.Logger, "session"),
		subscribers: make(map[chan any]struct{}),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	go m.eventLoop()
	return m
}

// Close stops any active session and retires the event loop.
func (m *Manager) Close() {
	_ = m.Stop(context.Background())
	m.cancel()
	<-m.done
}

// Start opens a new session and begins detection. Starting while a session
// is active is a state error.
func (m *Manager) Start(ctx context.Context, name string, mode fusion.Mode) (catalog.Session, error) {
	// The starting flag claims the slot before the lock drops, so concurrent
	// callers cannot both pass the check and race the catalog.
	m.mu.Lock()
	if m.current != nil || m.starting {
		m.mu.Unlock()
		return catalog.Session{}, faults.Wrap(faults.ErrState, "session", "start", "session already active", nil)
	}
	m.starting = true
	m.mu.Unlock()

	session, err := m.store.CreateSession(ctx, name, string(mode))
	if err != nil {
		m.abandonStart(ctx, "")
		return catalog.Session{}, err
	}

	if err := m.pipeline.Start(); err != nil {
		m.abandonStart(ctx, session.ID)
		return catalog.Session{}, err
	}
	if m.capture != nil {
		if err := m.capture.Start(m.onFrame); err != nil {
			m.pipeline.Stop()
			m.abandonStart(ctx, session.ID)
			return catalog.Session{}, err
		}
	}

	m.mu.Lock()
	m.current = &session
	m.starting = false
	m.mode = mode
	m.detections = 0
	m.mu.Unlock()

	m.logger.Info("session started",
		logging.String("session_id", session.ID),
		logging.String("mode", string(mode)))
	if err := m.notifier.NotifySessionStarted(ctx, session.Name, string(mode)); err != nil {
		m.logger.Warn("session start notification failed", logging.Error(err))
	}
	return session, nil
}

// abandonStart releases the start claim after a failed Start and closes the
// already-created session row so it cannot linger active.
func (m *Manager) abandonStart(ctx context.Context, sessionID string) {
	m.mu.Lock()
	m.starting = false
	m.mu.Unlock()
	if sessionID == "" {
		return
	}
	if err := m.store.EndSession(ctx, sessionID); err != nil {
		m.logger.Warn("failed to close abandoned session",
			logging.String("session_id", sessionID), logging.Error(err))
	}
}

// Stop ends the active session. Stopping with no session active is a no-op.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	session := m.current
	detections := m.detections
	m.current = nil
	m.mu.Unlock()
	if session == nil {
		return nil
	}

	if m.capture != nil {
		if err := m.capture.Stop(); err != nil {
			m.logger.Warn("capture stop failed", logging.Error(err))
		}
	}
	m.pipeline.Stop()

	if err := m.store.EndSession(ctx, session.ID); err != nil {
		return err
	}
	duration := time.Since(session.StartedAt)
	m.logger.Info("session ended",
		logging.String("session_id", session.ID),
		logging.Duration("duration", duration),
		logging.Int("detections", detections))
	if err := m.notifier.NotifySessionEnded(ctx, session.Name, duration, detections); err != nil {
		m.logger.Warn("session end notification failed", logging.Error(err))
	}
	return nil
}

// Status returns a snapshot of the session, pipeline, and engine.
func (m *Manager) Status() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Pipeline: m.pipeline.State(),
		Engine:   m.engine.State(),
		Mode:     m.mode,
	}
	if track, ok := m.engine.NowPlaying(); ok {
		snap.NowPlaying = track.Name
	}
	if m.current != nil {
		snap.Active = true
		snap.Session = *m.current
		snap.Detections = m.detections
		snap.ElapsedMS = time.Since(m.current.StartedAt).Milliseconds()
	}
	return snap
}

// Subscribe registers an observer for pipeline events, suggestions, and
// track changes. The returned cancel function must be called to release the
// channel. Slow observers lose events.
func (m *Manager) Subscribe() (<-chan any, func()) {
	ch := make(chan any, 64)
	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		delete(m.subscribers, ch)
		m.mu.Unlock()
	}
	return ch, cancel
}

func (m *Manager) onFrame(frame capture.Frame) {
	m.pipeline.ProcessAudio(frame.Samples, frame.TimestampMS)
}

func (m *Manager) eventLoop() {
	defer close(m.done)
	events := m.pipeline.Events()
	for {
		select {
		case <-m.ctx.Done():
			return
		case event := <-events:
			m.handleEvent(event)
		}
	}
}

func (m *Manager) handleEvent(event pipeline.Event) {
	m.broadcast(event)

	m.mu.Lock()
	session := m.current
	m.mu.Unlock()
	if session == nil {
		return
	}
	offset := uint64(time.Since(session.StartedAt).Milliseconds())

	switch e := event.(type) {
	case pipeline.Keyword:
		m.record(catalog.DetectionEvent{
			SessionID:  session.ID,
			Kind:       "keyword",
			Keyword:    e.Word,
			Category:   e.Category,
			Confidence: float64(e.Confidence),
			OffsetMS:   offset,
		})
	case pipeline.Emotion:
		m.record(catalog.DetectionEvent{
			SessionID:  session.ID,
			Kind:       "emotion",
			Emotion:    e.Emotion,
			Confidence: float64(e.Confidence),
			OffsetMS:   offset,
		})
	case pipeline.Transcription:
		m.record(catalog.DetectionEvent{
			SessionID:  session.ID,
			Kind:       "transcription",
			Transcript: e.Text,
			OffsetMS:   offset,
		})
	case pipeline.DualSignal:
		m.mu.Lock()
		m.detections++
		mode := m.mode
		m.mu.Unlock()

		// The signal carries the keyword the machine actually locked on;
		// resolving it through the vocabulary gives its category and mood
		// without trusting event adjacency.
		var match *keyword.Keyword
		if kw, ok := m.pipeline.Matcher().Vocabulary().Get(e.Keyword); ok {
			match = &kw
		}

		m.record(catalog.DetectionEvent{
			SessionID:  session.ID,
			Kind:       "dual_signal",
			Keyword:    e.Keyword,
			Emotion:    e.Emotion,
			Confidence: float64(e.Confidence),
			OffsetMS:   offset,
		})
		m.react(e, match, mode)
	case pipeline.Error:
		m.logger.Warn("pipeline degradation",
			logging.String("kind", e.Kind),
			logging.String("message", e.Message))
	}
}

// react turns a confirmed dual signal into either an autonomous music change
// or a collaborative suggestion.
func (m *Manager) react(signal pipeline.DualSignal, match *keyword.Keyword, mode fusion.Mode) {
	ctx, cancel := context.WithTimeout(m.ctx, 10*time.Second)
	defer cancel()

	track, found := m.resolveTrack(ctx, signal, match)

	if mode == fusion.Collaborative {
		suggestion := Suggestion{Keyword: signal.Keyword, Emotion: signal.Emotion}
		if found {
			suggestion.TrackID = track.ID
			suggestion.Track = track.Name
		}
		m.broadcast(suggestion)
		if err := m.notifier.NotifySuggestion(ctx, signal.Keyword, signal.Emotion, suggestion.Track); err != nil {
			m.logger.Warn("suggestion notification failed", logging.Error(err))
		}
		return
	}

	if !found {
		m.logger.Info("no track matches detection",
			logging.String("keyword", signal.Keyword),
			logging.String("emotion", signal.Emotion))
		return
	}

	if current, ok := m.engine.NowPlaying(); ok && current.ID == track.ID {
		return
	}
	if err := m.engine.CrossfadeTo(track, m.engine.CrossfadeDefault()); err != nil {
		m.logger.Error("autonomous crossfade failed",
			logging.String("track", track.Name), logging.Error(err))
		return
	}
	m.broadcast(TrackChange{Track: track, Keyword: signal.Keyword, Emotion: signal.Emotion})
	m.logger.Info("music changed",
		logging.String("track", track.Name),
		logging.String("keyword", signal.Keyword),
		logging.String("emotion", signal.Emotion))

	if match != nil && match.Category != "" {
		m.layerEffect(ctx, match.Category)
	}
}

// resolveTrack picks music for a detection. The keyword's own mood wins,
// then the detected emotion, then the keyword's category.
func (m *Manager) resolveTrack(ctx context.Context, signal pipeline.DualSignal, match *keyword.Keyword) (media.Track, bool) {
	var moods []string
	if match != nil && match.Mood != "" {
		moods = append(moods, match.Mood)
	}
	if signal.Emotion != "" {
		moods = append(moods, signal.Emotion)
	}
	if match != nil && match.Category != "" {
		moods = append(moods, match.Category)
	}

	for _, mood := range moods {
		tracks, err := m.store.TracksByMood(ctx, mood)
		if err != nil {
			m.logger.Warn("track lookup failed", logging.String("mood", mood), logging.Error(err))
			continue
		}
		if len(tracks) > 0 {
			return tracks[rand.IntN(len(tracks))], true
		}
	}
	return media.Track{}, false
}

func (m *Manager) layerEffect(ctx context.Context, category string) {
	effects, err := m.store.EffectsByCategory(ctx, category)
	if err != nil {
		m.logger.Warn("effect lookup failed", logging.String("category", category), logging.Error(err))
		return
	}
	if len(effects) == 0 {
		return
	}
	effect := effects[rand.IntN(len(effects))]
	if err := m.engine.PlaySfx(effect); err != nil {
		m.logger.Warn("effect playback failed", logging.String("effect", effect.Name), logging.Error(err))
	}
}

func (m *Manager) record(event catalog.DetectionEvent) {
	ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
	defer cancel()
	if _, err := m.store.RecordEvent(ctx, event); err != nil {
		m.logger.Warn("event record failed", logging.String("kind", event.Kind), logging.Error(err))
	}
}

// broadcast fans an event to subscribers without ever blocking the loop.
func (m *Manager) broadcast(event any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

package session

import (
	"context"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bard/internal/capture"
	"bard/internal/catalog"
	"bard/internal/emotion"
	"bard/internal/engine"
	"bard/internal/fusion"
	"bard/internal/media"
	"bard/internal/pipeline"
	"bard/internal/transcribe"
)

type fakeCapture struct {
	mu      sync.Mutex
	onFrame func(capture.Frame)
	started bool
	stopped bool
}

func (f *fakeCapture) Start(onFrame func(capture.Frame)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFrame = onFrame
	f.started = true
	return nil
}

func (f *fakeCapture) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	f.onFrame = nil
	return nil
}

func (f *fakeCapture) SampleRate() int { return 16000 }
func (f *fakeCapture) Channels() int   { return 1 }

func (f *fakeCapture) feed(samples []float32, timestampMS uint64) {
	f.mu.Lock()
	onFrame := f.onFrame
	f.mu.Unlock()
	if onFrame != nil {
		onFrame(capture.Frame{Samples: samples, TimestampMS: timestampMS})
	}
}

type fakeTranscriber struct{ text string }

func (f fakeTranscriber) Transcribe(context.Context, []float32, int) (transcribe.Result, error) {
	return transcribe.Result{Text: f.text, Confidence: 1}, nil
}

type fakeClassifier struct{ res emotion.Result }

func (f fakeClassifier) Classify([]float32, int) (emotion.Result, error) {
	return f.res, nil
}

// scriptedTranscriber returns one canned text per segment. Only the pipeline
// worker calls it, so the index needs no locking.
type scriptedTranscriber struct {
	texts []string
	calls int
}

func (s *scriptedTranscriber) Transcribe(context.Context, []float32, int) (transcribe.Result, error) {
	i := s.calls
	s.calls++
	if i >= len(s.texts) {
		return transcribe.Result{}, nil
	}
	return transcribe.Result{Text: s.texts[i], Confidence: 1}, nil
}

// scriptedClassifier returns one canned result per segment.
type scriptedClassifier struct {
	results []emotion.Result
	calls   int
}

func (s *scriptedClassifier) Classify([]float32, int) (emotion.Result, error) {
	i := s.calls
	s.calls++
	if i >= len(s.results) {
		return emotion.Result{Primary: emotion.Neutral, Confidence: 0.1}, nil
	}
	return s.results[i], nil
}

type fakeVoice struct {
	once sync.Once
	done chan struct{}
}

func newFakeVoice() *fakeVoice          { return &fakeVoice{done: make(chan struct{})} }
func (v *fakeVoice) SetVolume(float32)  {}
func (v *fakeVoice) Pause()             {}
func (v *fakeVoice) Resume()            {}
func (v *fakeVoice) Stop()              { v.once.Do(func() { close(v.done) }) }
func (v *fakeVoice) Done() <-chan struct{} { return v.done }

type fakeOutput struct {
	mu     sync.Mutex
	opened []string
}

func (f *fakeOutput) Open(path string, loop bool) (engine.Voice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, path)
	return newFakeVoice(), nil
}

func (f *fakeOutput) openedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opened...)
}

type fixture struct {
	manager *Manager
	capture *fakeCapture
	output  *fakeOutput
	store   *catalog.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, pipeline.Deps{
		Transcriber: fakeTranscriber{text: "a fierce battle begins"},
		Classifier: fakeClassifier{res: emotion.Result{
			Primary:    emotion.Angry,
			Confidence: 0.9,
			Scores:     map[emotion.Emotion]float32{emotion.Angry: 0.9},
		}},
	})
}

func newFixtureWith(t *testing.T, deps pipeline.Deps) *fixture {
	t.Helper()

	store, err := catalog.Open(filepath.Join(t.TempDir(), "bard.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := pipeline.DefaultConfig()
	cfg.SegmentMS = 100
	cfg.VADThreshold = 0.1
	p := pipeline.New(cfg, deps)
	t.Cleanup(p.Close)

	output := &fakeOutput{}
	eng := engine.New(engine.Options{Output: output, Crossfade: engine.Instant})
	source := &fakeCapture{}

	m := NewManager(Deps{
		Capture:  source,
		Pipeline: p,
		Engine:   eng,
		Store:    store,
	})
	t.Cleanup(m.Close)

	return &fixture{manager: m, capture: source, output: output, store: store}
}

func loudFrame(n int) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(math.Sin(2*math.Pi*float64(i)/40)) * 0.9
	}
	return samples
}

// feedSegment pushes enough loud frames through capture to fill one 100ms
// segment at 16kHz.
func (f *fixture) feedSegment() {
	frame := loudFrame(480)
	for i := 0; i < 4; i++ {
		f.capture.feed(frame, uint64(i*30))
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestAutonomousDetectionChangesMusic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	track, err := f.store.AddTrack(ctx, media.Track{
		Name: "Battle Drums",
		Path: "/music/battle-drums.mp3",
		Mood: "angry",
		Loop: true,
	})
	if err != nil {
		t.Fatalf("add track: %v", err)
	}
	if _, err := f.store.AddEffect(ctx, media.SoundEffect{
		Name:     "Sword Clash",
		Path:     "/sfx/sword.wav",
		Category: "combat",
	}); err != nil {
		t.Fatalf("add effect: %v", err)
	}

	events, unsubscribe := f.manager.Subscribe()
	defer unsubscribe()

	sess, err := f.manager.Start(ctx, "Friday game", fusion.Autonomous)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if !f.capture.started {
		t.Fatal("capture not started")
	}

	f.feedSegment()

	waitFor(t, 2*time.Second, func() bool {
		snap := f.manager.Status()
		return snap.NowPlaying == "Battle Drums" && snap.Detections == 1
	})

	var change TrackChange
	deadline := time.After(2 * time.Second)
	for change.Track.ID == "" {
		select {
		case ev := <-events:
			if tc, ok := ev.(TrackChange); ok {
				change = tc
			}
		case <-deadline:
			t.Fatal("no TrackChange broadcast")
		}
	}
	if change.Track.ID != track.ID || change.Keyword != "battle" || change.Emotion != "angry" {
		t.Errorf("track change = %+v", change)
	}

	waitFor(t, 2*time.Second, func() bool {
		for _, path := range f.output.openedPaths() {
			if path == "/sfx/sword.wav" {
				return true
			}
		}
		return false
	})

	if err := f.manager.Stop(ctx); err != nil {
		t.Fatalf("stop session: %v", err)
	}
	if !f.capture.stopped {
		t.Error("capture not stopped")
	}

	recorded, err := f.store.EventsBySession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	kinds := map[string]bool{}
	for _, ev := range recorded {
		kinds[ev.Kind] = true
	}
	for _, want := range []string{"transcription", "keyword", "emotion", "dual_signal"} {
		if !kinds[want] {
			t.Errorf("missing recorded event kind %q in %v", want, kinds)
		}
	}

	ended, err := f.store.Session(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if ended.Active() {
		t.Error("session still active after stop")
	}
}

func TestCollaborativeDetectionSuggestsInsteadOfPlaying(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.store.AddTrack(ctx, media.Track{
		Name: "Battle Drums",
		Path: "/music/battle-drums.mp3",
		Mood: "angry",
	}); err != nil {
		t.Fatalf("add track: %v", err)
	}

	events, unsubscribe := f.manager.Subscribe()
	defer unsubscribe()

	if _, err := f.manager.Start(ctx, "", fusion.Collaborative); err != nil {
		t.Fatalf("start session: %v", err)
	}
	f.feedSegment()

	var suggestion Suggestion
	deadline := time.After(2 * time.Second)
	for suggestion.Keyword == "" {
		select {
		case ev := <-events:
			if s, ok := ev.(Suggestion); ok {
				suggestion = s
			}
		case <-deadline:
			t.Fatal("no Suggestion broadcast")
		}
	}
	if suggestion.Keyword != "battle" || suggestion.Emotion != "angry" || suggestion.Track != "Battle Drums" {
		t.Errorf("suggestion = %+v", suggestion)
	}

	if snap := f.manager.Status(); snap.Engine != engine.Idle {
		t.Errorf("engine state = %s, want idle in collaborative mode", snap.Engine)
	}
	if len(f.output.openedPaths()) != 0 {
		t.Errorf("collaborative mode opened voices: %v", f.output.openedPaths())
	}
}

func TestStartWhileActiveIsError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.manager.Start(ctx, "one", fusion.Autonomous); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.manager.Start(ctx, "two", fusion.Autonomous); err == nil {
		t.Fatal("expected error starting second session")
	}
	if err := f.manager.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := f.manager.Stop(ctx); err != nil {
		t.Fatalf("second stop should be a no-op, got %v", err)
	}
}

func TestConcurrentStartAdmitsOneSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.manager.Start(ctx, "race", fusion.Autonomous)
		}(i)
	}
	wg.Wait()

	started := 0
	for _, err := range errs {
		if err == nil {
			started++
		}
	}
	if started != 1 {
		t.Fatalf("started %d sessions, want 1", started)
	}

	sessions, err := f.store.Sessions(ctx)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("session rows = %d, want 1", len(sessions))
	}
	if !sessions[0].Active() {
		t.Error("winning session should be active")
	}

	if err := f.manager.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestFailedStartLeavesNoActiveSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Occupying the pipeline directly makes Start fail after the catalog row
	// already exists.
	if err := f.manager.pipeline.Start(); err != nil {
		t.Fatalf("pipeline start: %v", err)
	}
	if _, err := f.manager.Start(ctx, "doomed", fusion.Autonomous); err == nil {
		t.Fatal("expected start to fail while pipeline is busy")
	}

	sessions, err := f.store.Sessions(ctx)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	for _, s := range sessions {
		if s.Active() {
			t.Errorf("abandoned session left active: %+v", s)
		}
	}

	f.manager.pipeline.Stop()
	if _, err := f.manager.Start(ctx, "recovered", fusion.Autonomous); err != nil {
		t.Fatalf("start after failed attempt: %v", err)
	}
	if err := f.manager.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestReactResolvesKeywordFromSignal(t *testing.T) {
	// The keyword arrives one segment before the confirming emotion; the
	// reaction must still use the locked keyword's mood and category.
	f := newFixtureWith(t, pipeline.Deps{
		Transcriber: &scriptedTranscriber{texts: []string{"a trap springs shut", ""}},
		Classifier: &scriptedClassifier{results: []emotion.Result{
			{Primary: emotion.Neutral, Confidence: 0.2},
			{Primary: emotion.Fearful, Confidence: 0.9},
		}},
	})
	ctx := context.Background()

	if _, err := f.store.AddTrack(ctx, media.Track{
		Name: "Dread Strings",
		Path: "/music/dread-strings.mp3",
		Mood: "fearful",
	}); err != nil {
		t.Fatalf("add track: %v", err)
	}
	if _, err := f.store.AddEffect(ctx, media.SoundEffect{
		Name:     "Creaking Floor",
		Path:     "/sfx/creak.wav",
		Category: "danger",
	}); err != nil {
		t.Fatalf("add effect: %v", err)
	}

	events, unsubscribe := f.manager.Subscribe()
	defer unsubscribe()

	if _, err := f.manager.Start(ctx, "", fusion.Autonomous); err != nil {
		t.Fatalf("start session: %v", err)
	}
	f.feedSegment()
	f.feedSegment()

	var change TrackChange
	deadline := time.After(2 * time.Second)
	for change.Track.ID == "" {
		select {
		case ev := <-events:
			if tc, ok := ev.(TrackChange); ok {
				change = tc
			}
		case <-deadline:
			t.Fatal("no TrackChange broadcast")
		}
	}
	if change.Keyword != "trap" || change.Emotion != "fearful" || change.Track.Name != "Dread Strings" {
		t.Errorf("track change = %+v", change)
	}

	waitFor(t, 2*time.Second, func() bool {
		for _, path := range f.output.openedPaths() {
			if path == "/sfx/creak.wav" {
				return true
			}
		}
		return false
	})
}

func TestStatusReflectsIdleManager(t *testing.T) {
	f := newFixture(t)
	snap := f.manager.Status()
	if snap.Active {
		t.Error("idle manager reports active session")
	}
	if snap.Engine != engine.Idle {
		t.Errorf("engine state = %s, want idle", snap.Engine)
	}
	if snap.Pipeline != fusion.Listening {
		t.Errorf("pipeline state = %s, want listening", snap.Pipeline)
	}
}

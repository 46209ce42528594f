package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bard/internal/emotion"
	"bard/internal/faults"
	"bard/internal/fusion"
	"bard/internal/keyword"
	"bard/internal/logging"
	"bard/internal/speaker"
	"bard/internal/transcribe"
	"bard/internal/vad"
)

// EmotionClassifier is the segment-level emotion collaborator. Satisfied by
// *emotion.Classifier; tests inject deterministic results.
type EmotionClassifier interface {
	Classify(samples []float32, sampleRate int) (emotion.Result, error)
}

// Deps are the pipeline's collaborators. Nil fields get working defaults
// (default vocabulary, prosody classifier, no-op transcriber).
type Deps struct {
	Matcher     *keyword.Matcher
	Classifier  EmotionClassifier
	Transcriber transcribe.Transcriber
	Verifier    *speaker.Verifier
	Extractor   speaker.EmbeddingExtractor
	Logger      *slog.Logger
}

// Pipeline orchestrates detection: it buffers capture frames, runs VAD on
// every frame, hands full segments to a worker goroutine for the heavy
// classifiers, and drives the fusion machine with the results.
//
// ProcessAudio is called from the capture feeder and never blocks on segment
// work; the worker delivers results back under the same mutex, so machine
// mutation stays single-writer.
type Pipeline struct {
	cfg         Config
	logger      *slog.Logger
	vad         *vad.Detector
	matcher     *keyword.Matcher
	classifier  EmotionClassifier
	transcriber transcribe.Transcriber
	verifier    *speaker.Verifier
	extractor   speaker.EmbeddingExtractor

	mu             sync.Mutex
	machine        fusion.Machine
	segment        []float32
	running        bool
	generation     uint64
	detectionTimer *time.Timer
	cooldownTimer  *time.Timer

	events chan Event
	jobs   chan job
	ctx    context.Context
	cancel context.CancelFunc
}

type job struct {
	samples    []float32
	generation uint64
}

const (
	eventBuffer = 64
	jobBuffer   = 2
)

// New builds a pipeline from cfg and deps and starts its segment worker.
// Call Close to release the worker.
func New(cfg Config, deps Deps) *Pipeline {
	cfg = cfg.normalized()
	if deps.Matcher == nil {
		deps.Matcher = keyword.NewMatcher(keyword.DefaultVocabulary())
	}
	if deps.Classifier == nil {
		deps.Classifier = emotion.NewClassifier()
	}
	if deps.Transcriber == nil {
		deps.Transcriber = transcribe.Noop{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		cfg:         cfg,
		logger:      logging.WithComponent(deps.Logger, "pipeline"),
		vad:         vad.New(cfg.VADThreshold),
		matcher:     deps.Matcher,
		classifier:  deps.Classifier,
		transcriber: deps.Transcriber,
		verifier:    deps.Verifier,
		extractor:   deps.Extractor,
		machine:     fusion.NewMachine(cfg.Mode),
		events:      make(chan Event, eventBuffer),
		jobs:        make(chan job, jobBuffer),
		ctx:         ctx,
		cancel:      cancel,
	}
	go p.worker()
	return p
}

// Events returns the pipeline event stream. Slow consumers lose events
// rather than stalling detection.
func (p *Pipeline) Events() <-chan Event {
	return p.events
}

// State returns the fusion machine's current state.
func (p *Pipeline) State() fusion.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.machine.State
}

// Machine returns a snapshot of the fusion machine.
func (p *Pipeline) Machine() fusion.Machine {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.machine
}

// Matcher returns the keyword matcher the pipeline detects with.
func (p *Pipeline) Matcher() *keyword.Matcher {
	return p.matcher
}

// Running reports whether the pipeline is accepting audio.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Start resets the fusion machine and begins accepting audio. Starting a
// running pipeline is a state error.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return faults.Wrap(faults.ErrState, "pipeline", "start", "already running", nil)
	}
	p.running = true
	p.generation++
	p.segment = nil
	p.vad.Reset()
	p.applyLocked(fusion.Reset{})
	p.logger.Info("pipeline started",
		logging.String("mode", string(p.cfg.Mode)),
		logging.Uint64("segment_ms", p.cfg.SegmentMS))
	return nil
}

// Stop halts processing. Idempotent; results of any segment already in
// flight are discarded via the generation counter.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	p.generation++
	p.segment = nil
	p.stopTimersLocked()
	p.logger.Info("pipeline stopped")
}

// Close terminates the segment worker. The pipeline is unusable afterwards.
func (p *Pipeline) Close() {
	p.Stop()
	p.cancel()
}

// ProcessAudio ingests one capture frame. No-op unless running. VAD runs on
// every frame; a full segment buffer hands off to the worker without
// blocking.
func (p *Pipeline) ProcessAudio(samples []float32, timestampMS uint64) {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}

	p.segment = append(p.segment, samples...)

	if p.cfg.EnableVAD {
		res := p.vad.ProcessFrame(samples, timestampMS)
		switch {
		case res.IsSpeech && res.StartMS != nil && res.EndMS == nil:
			p.applyLocked(fusion.VoiceDetected{})
			p.emit(VoiceStart{TimestampMS: *res.StartMS})
		case res.EndMS != nil:
			p.applyLocked(fusion.VoiceEnded{})
			p.emit(VoiceEnd{StartMS: *res.StartMS, EndMS: *res.EndMS})
		}
	}

	var pending *job
	if len(p.segment) >= p.cfg.segmentSamples() {
		pending = &job{samples: p.segment, generation: p.generation}
		p.segment = nil
	}
	p.mu.Unlock()

	if pending == nil {
		return
	}
	select {
	case p.jobs <- *pending:
	default:
		p.logger.Warn("segment worker busy, dropping segment",
			logging.Int("samples", len(pending.samples)))
	}
}

func (p *Pipeline) worker() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case j := <-p.jobs:
			p.processSegment(j)
		}
	}
}

// processSegment runs the heavy collaborators off the capture path, then
// delivers all results in one critical section so stale generations are
// discarded atomically.
func (p *Pipeline) processSegment(j job) {
	cfg := p.cfg

	var identity *SpeakerVerified
	gated := false
	if cfg.EnableSpeakerVerification && p.extractor != nil && p.verifier != nil {
		embedding, err := p.extractor.Extract(j.samples, cfg.SampleRate)
		if err != nil {
			// Fail-open: a broken extractor must not silence detection.
			p.logger.Warn("speaker embedding failed",
				logging.String("kind", faults.Kind(err)), logging.Error(err))
		} else {
			res := p.verifier.Verify(embedding)
			identity = &SpeakerVerified{
				Verified:   res.Verified,
				Similarity: res.Similarity,
				SpeakerID:  res.SpeakerID,
			}
			gated = !res.Verified
		}
	}

	var transcription *Transcription
	var matches []keyword.Match
	if !gated && cfg.EnableTranscription {
		res, err := p.transcriber.Transcribe(p.ctx, j.samples, cfg.SampleRate)
		switch {
		case err != nil:
			p.logger.Warn("transcription failed",
				logging.String("kind", faults.Kind(err)), logging.Error(err))
			p.emit(Error{Kind: faults.Kind(err), Message: "transcription failed"})
		case res.Text != "":
			transcription = &Transcription{Text: res.Text, Language: res.Language}
			matches = p.matcher.Detect(res.Text)
		}
	}

	var emotionResult *emotion.Result
	if !gated && cfg.EnableEmotion {
		res, err := p.classifier.Classify(j.samples, cfg.SampleRate)
		if err != nil {
			// Data errors (segment too short) are skipped quietly per
			// contract; model errors surface on the event stream too.
			p.logger.Warn("emotion classification failed",
				logging.String("kind", faults.Kind(err)), logging.Error(err))
			if faults.Kind(err) != "data" {
				p.emit(Error{Kind: faults.Kind(err), Message: "emotion classification failed"})
			}
		} else {
			emotionResult = &res
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if j.generation != p.generation || !p.running {
		return
	}

	if identity != nil {
		p.emit(*identity)
		if gated {
			p.logger.Debug("segment dropped, speaker not verified",
				logging.Float64("similarity", float64(identity.Similarity)))
			return
		}
	}
	if transcription != nil {
		p.emit(*transcription)
		for _, match := range matches {
			// The typed event goes out before the machine steps so a
			// resulting DualSignal always trails the result that caused it.
			p.emit(Keyword{
				Word:       match.Keyword,
				Category:   match.Category,
				Mood:       match.Mood,
				Confidence: match.Confidence,
			})
			p.applyLocked(fusion.KeywordMatched{Keyword: match.Keyword})
		}
	}
	if emotionResult != nil {
		p.emit(Emotion{
			Emotion:    string(emotionResult.Primary),
			Confidence: emotionResult.Confidence,
		})
		p.applyLocked(fusion.EmotionDetected{
			Emotion:    string(emotionResult.Primary),
			Confidence: emotionResult.Confidence,
		})
	}
}

// applyLocked advances the fusion machine and interprets its effects.
// Callers hold p.mu.
func (p *Pipeline) applyLocked(event fusion.Event) {
	next, effects := fusion.Step(p.machine, event)
	p.machine = next

	for _, effect := range effects {
		switch e := effect.(type) {
		case fusion.StartDetectionTimer:
			p.armTimerLocked(&p.detectionTimer, p.cfg.DetectionTimeoutMS, fusion.Timeout{})
		case fusion.CancelDetectionTimer:
			stopTimer(&p.detectionTimer)
		case fusion.StartCooldownTimer:
			p.armTimerLocked(&p.cooldownTimer, p.cfg.CooldownMS, fusion.CooldownComplete{})
		case fusion.CancelCooldownTimer:
			stopTimer(&p.cooldownTimer)
		case fusion.AnnounceDualSignal:
			p.logger.Info("dual signal confirmed",
				logging.String("keyword", e.Keyword),
				logging.String("emotion", e.Emotion))
			p.emit(DualSignal{Keyword: e.Keyword, Emotion: e.Emotion, Confidence: e.Confidence})
		}
	}
}

func (p *Pipeline) armTimerLocked(slot **time.Timer, durationMS uint64, event fusion.Event) {
	stopTimer(slot)
	gen := p.generation
	*slot = time.AfterFunc(time.Duration(durationMS)*time.Millisecond, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if gen != p.generation || !p.running {
			return
		}
		p.applyLocked(event)
	})
}

func (p *Pipeline) stopTimersLocked() {
	stopTimer(&p.detectionTimer)
	stopTimer(&p.cooldownTimer)
}

func stopTimer(slot **time.Timer) {
	if *slot != nil {
		(*slot).Stop()
		*slot = nil
	}
}

// emit pushes an event without ever blocking; a full buffer drops the event
// with a warning.
func (p *Pipeline) emit(event Event) {
	select {
	case p.events <- event:
	default:
		p.logger.Warn("event buffer full, dropping event")
	}
}

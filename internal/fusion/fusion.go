package fusion

// State is the detection machine's position in the lock cycle.
type State string

const (
	// Listening waits for voice activity.
	Listening State = "listening"
	// Detecting accumulates keyword and emotion signals.
	Detecting State = "detecting"
	// Locked means both signals confirmed; held until cooldown completes.
	Locked State = "locked"
	// Cooldown is the timed sub-phase of Locked reported while the cooldown
	// timer runs. The transition table never lands here; status reporting
	// uses it.
	Cooldown State = "cooldown"
)

// Mode selects what happens on a confirmed lock. The machine itself is
// mode-agnostic; the pipeline's consumer either auto-executes an engine
// command or surfaces a suggestion.
type Mode string

const (
	Autonomous    Mode = "autonomous"
	Collaborative Mode = "collaborative"
)

// EmotionConfidenceFloor is the minimum confidence for an emotion result to
// count as the second signal.
const EmotionConfidenceFloor = 0.6

// Machine is the full detection state as a value. Step never mutates its
// receiver; callers keep the returned copy.
type Machine struct {
	State         State
	Mode          Mode
	KeywordSignal bool
	EmotionSignal bool
	Keyword       string
	Emotion       string
	EmotionScore  float32
}

// NewMachine returns a machine in Listening.
func NewMachine(mode Mode) Machine {
	return Machine{State: Listening, Mode: mode}
}

// DualSignalConfirmed reports whether both signals are set.
func (m Machine) DualSignalConfirmed() bool {
	return m.KeywordSignal && m.EmotionSignal
}

// Event is a tagged input to Step.
type Event interface{ isEvent() }

// VoiceDetected is a VAD rising edge.
type VoiceDetected struct{}

// VoiceEnded is a VAD falling edge.
type VoiceEnded struct{}

// KeywordMatched carries the highest-ranked keyword found in a segment.
type KeywordMatched struct{ Keyword string }

// EmotionDetected carries a segment's primary emotion.
type EmotionDetected struct {
	Emotion    string
	Confidence float32
}

// SpeakerVerified reports the identity gate outcome. It never changes state;
// the pipeline drops unverified segments before they reach the machine.
type SpeakerVerified struct{ Verified bool }

// Timeout fires when Detecting outlives the detection window without a lock.
type Timeout struct{}

// CooldownComplete fires when Locked has held for the cooldown interval.
type CooldownComplete struct{}

// Reset forces the machine back to Listening from any state.
type Reset struct{}

func (VoiceDetected) isEvent()    {}
func (VoiceEnded) isEvent()       {}
func (KeywordMatched) isEvent()   {}
func (EmotionDetected) isEvent()  {}
func (SpeakerVerified) isEvent()  {}
func (Timeout) isEvent()          {}
func (CooldownComplete) isEvent() {}
func (Reset) isEvent()            {}

// Effect is an instruction for the interpreter driving the machine. Effects
// are data; Step performs no I/O and touches no clocks.
type Effect interface{ isEffect() }

// StartDetectionTimer arms the Detecting self-expiry.
type StartDetectionTimer struct{}

// CancelDetectionTimer disarms the Detecting self-expiry.
type CancelDetectionTimer struct{}

// StartCooldownTimer arms the Locked hold interval.
type StartCooldownTimer struct{}

// CancelCooldownTimer disarms the Locked hold interval.
type CancelCooldownTimer struct{}

// AnnounceDualSignal reports a confirmed lock with the recorded signals.
type AnnounceDualSignal struct {
	Keyword    string
	Emotion    string
	Confidence float32
}

func (StartDetectionTimer) isEffect()  {}
func (CancelDetectionTimer) isEffect() {}
func (StartCooldownTimer) isEffect()   {}
func (CancelCooldownTimer) isEffect()  {}
func (AnnounceDualSignal) isEffect()   {}

// Step applies event to m and returns the successor machine plus the effects
// the interpreter must carry out. Unlisted (state, event) pairs leave the
// machine unchanged with no effects; in particular Locked ignores
// VoiceDetected, so a lock can only end through CooldownComplete or Reset.
func Step(m Machine, event Event) (Machine, []Effect) {
	if _, ok := event.(Reset); ok {
		var effects []Effect
		switch m.State {
		case Detecting:
			effects = append(effects, CancelDetectionTimer{})
		case Locked, Cooldown:
			effects = append(effects, CancelCooldownTimer{})
		}
		return NewMachine(m.Mode), effects
	}

	switch m.State {
	case Listening:
		if _, ok := event.(VoiceDetected); ok {
			next := m
			next.State = Detecting
			next.KeywordSignal = false
			next.EmotionSignal = false
			return next, []Effect{StartDetectionTimer{}}
		}

	case Detecting:
		switch ev := event.(type) {
		case KeywordMatched:
			next := m
			next.KeywordSignal = true
			next.Keyword = ev.Keyword
			return lockIfConfirmed(next)
		case EmotionDetected:
			if ev.Confidence <= EmotionConfidenceFloor {
				return m, nil
			}
			next := m
			next.EmotionSignal = true
			next.Emotion = ev.Emotion
			next.EmotionScore = ev.Confidence
			return lockIfConfirmed(next)
		case VoiceEnded:
			if !m.KeywordSignal && !m.EmotionSignal {
				next := m
				next.State = Listening
				return next, []Effect{CancelDetectionTimer{}}
			}
		case Timeout:
			next := m
			next.State = Listening
			return next, nil
		}

	case Locked, Cooldown:
		if _, ok := event.(CooldownComplete); ok {
			next := NewMachine(m.Mode)
			return next, nil
		}
	}

	return m, nil
}

func lockIfConfirmed(m Machine) (Machine, []Effect) {
	if !m.DualSignalConfirmed() {
		return m, nil
	}
	m.State = Locked
	return m, []Effect{
		AnnounceDualSignal{Keyword: m.Keyword, Emotion: m.Emotion, Confidence: m.EmotionScore},
		CancelDetectionTimer{},
		StartCooldownTimer{},
	}
}

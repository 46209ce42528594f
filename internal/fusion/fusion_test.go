package fusion

import (
	"reflect"
	"testing"
)

func step(t *testing.T, m Machine, events ...Event) Machine {
	t.Helper()
	for _, event := range events {
		m, _ = Step(m, event)
	}
	return m
}

func TestDualSignalLockSequence(t *testing.T) {
	m := NewMachine(Autonomous)
	if m.State != Listening {
		t.Fatalf("initial state = %s", m.State)
	}

	m, effects := Step(m, VoiceDetected{})
	if m.State != Detecting {
		t.Fatalf("after voice: %s, want detecting", m.State)
	}
	if !reflect.DeepEqual(effects, []Effect{StartDetectionTimer{}}) {
		t.Fatalf("effects = %v, want start detection timer", effects)
	}

	m, effects = Step(m, KeywordMatched{Keyword: "battle"})
	if m.State != Detecting || effects != nil {
		t.Fatalf("single signal must not lock: state=%s effects=%v", m.State, effects)
	}
	if !m.KeywordSignal || m.Keyword != "battle" {
		t.Fatalf("keyword signal not recorded: %+v", m)
	}

	m, effects = Step(m, EmotionDetected{Emotion: "angry", Confidence: 0.8})
	if m.State != Locked {
		t.Fatalf("dual signal state = %s, want locked", m.State)
	}
	if !m.DualSignalConfirmed() {
		t.Fatal("DualSignalConfirmed false after lock")
	}
	want := []Effect{
		AnnounceDualSignal{Keyword: "battle", Emotion: "angry", Confidence: 0.8},
		CancelDetectionTimer{},
		StartCooldownTimer{},
	}
	if !reflect.DeepEqual(effects, want) {
		t.Fatalf("lock effects = %v, want %v", effects, want)
	}
}

func TestEmotionBeforeKeywordAlsoLocks(t *testing.T) {
	m := step(t, NewMachine(Autonomous), VoiceDetected{},
		EmotionDetected{Emotion: "fearful", Confidence: 0.9})
	if m.State != Detecting || !m.EmotionSignal {
		t.Fatalf("emotion-first state: %+v", m)
	}
	m = step(t, m, KeywordMatched{Keyword: "dragon"})
	if m.State != Locked || m.Keyword != "dragon" || m.Emotion != "fearful" {
		t.Fatalf("keyword-second lock: %+v", m)
	}
}

func TestLowConfidenceEmotionIgnored(t *testing.T) {
	m := step(t, NewMachine(Autonomous), VoiceDetected{},
		EmotionDetected{Emotion: "angry", Confidence: EmotionConfidenceFloor})
	if m.EmotionSignal {
		t.Fatal("confidence at the floor must not set the signal")
	}
}

func TestVoiceEndedWithoutSignalsReturnsToListening(t *testing.T) {
	m, effects := Step(step(t, NewMachine(Autonomous), VoiceDetected{}), VoiceEnded{})
	if m.State != Listening {
		t.Fatalf("state = %s, want listening", m.State)
	}
	if !reflect.DeepEqual(effects, []Effect{CancelDetectionTimer{}}) {
		t.Fatalf("effects = %v, want cancel detection timer", effects)
	}
}

func TestVoiceEndedWithOneSignalStaysDetecting(t *testing.T) {
	m := step(t, NewMachine(Autonomous), VoiceDetected{},
		KeywordMatched{Keyword: "treasure"}, VoiceEnded{})
	if m.State != Detecting {
		t.Fatalf("state = %s, want detecting while a signal is pending", m.State)
	}
}

func TestDetectingTimeout(t *testing.T) {
	m := step(t, NewMachine(Autonomous), VoiceDetected{}, Timeout{})
	if m.State != Listening {
		t.Fatalf("state = %s, want listening after timeout", m.State)
	}
}

func TestLockedExitsOnlyViaCooldownOrReset(t *testing.T) {
	locked := step(t, NewMachine(Autonomous), VoiceDetected{},
		KeywordMatched{Keyword: "battle"},
		EmotionDetected{Emotion: "angry", Confidence: 0.8})

	for _, event := range []Event{VoiceDetected{}, VoiceEnded{},
		KeywordMatched{Keyword: "trap"}, EmotionDetected{Emotion: "sad", Confidence: 0.9},
		Timeout{}, SpeakerVerified{Verified: true}} {
		m, effects := Step(locked, event)
		if m.State != Locked {
			t.Fatalf("event %T broke the lock: %s", event, m.State)
		}
		if effects != nil {
			t.Fatalf("event %T produced effects while locked: %v", event, effects)
		}
	}

	m, _ := Step(locked, CooldownComplete{})
	if m.State != Listening || m.KeywordSignal || m.EmotionSignal || m.Keyword != "" || m.Emotion != "" {
		t.Fatalf("cooldown complete did not clear the machine: %+v", m)
	}

	m, effects := Step(locked, Reset{})
	if m.State != Listening {
		t.Fatalf("reset state = %s", m.State)
	}
	if !reflect.DeepEqual(effects, []Effect{CancelCooldownTimer{}}) {
		t.Fatalf("reset from locked effects = %v", effects)
	}
}

func TestResetFromDetectingCancelsTimer(t *testing.T) {
	m, effects := Step(step(t, NewMachine(Collaborative), VoiceDetected{}), Reset{})
	if m.State != Listening || m.Mode != Collaborative {
		t.Fatalf("reset machine: %+v", m)
	}
	if !reflect.DeepEqual(effects, []Effect{CancelDetectionTimer{}}) {
		t.Fatalf("effects = %v", effects)
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	m := NewMachine(Autonomous)
	Step(m, VoiceDetected{})
	if m.State != Listening {
		t.Fatal("Step mutated its input")
	}
}

func TestSignalsClearedOnNewEpisode(t *testing.T) {
	m := step(t, NewMachine(Autonomous), VoiceDetected{},
		KeywordMatched{Keyword: "battle"}, Timeout{}, VoiceDetected{})
	if m.KeywordSignal || m.EmotionSignal {
		t.Fatalf("stale signals survived a new episode: %+v", m)
	}
}

package pipeline

// Event is a typed pipeline notification. Events stream to the session layer
// and on to the UI; none of them block the detection path.
type Event interface{ isEvent() }

// VoiceStart marks a VAD rising edge.
type VoiceStart struct {
	TimestampMS uint64
}

// VoiceEnd marks a VAD falling edge with the segment it closes.
type VoiceEnd struct {
	StartMS uint64
	EndMS   uint64
}

// Transcription carries the text of a processed segment.
type Transcription struct {
	Text     string
	Language string
}

// Keyword reports one vocabulary match in a segment.
type Keyword struct {
	Word       string
	Category   string
	Mood       string
	Confidence float32
}

// Emotion reports a segment's primary emotion.
type Emotion struct {
	Emotion    string
	Confidence float32
}

// SpeakerVerified reports the identity gate outcome for a segment.
type SpeakerVerified struct {
	Verified   bool
	Similarity float32
	SpeakerID  string
}

// DualSignal reports a confirmed lock.
type DualSignal struct {
	Keyword    string
	Emotion    string
	Confidence float32
}

// Error surfaces a fail-open degradation to observers.
type Error struct {
	Kind    string
	Message string
}

func (VoiceStart) isEvent()      {}
func (VoiceEnd) isEvent()        {}
func (Transcription) isEvent()   {}
func (Keyword) isEvent()         {}
func (Emotion) isEvent()         {}
func (SpeakerVerified) isEvent() {}
func (DualSignal) isEvent()      {}
func (Error) isEvent()           {}

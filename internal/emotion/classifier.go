package emotion

import (
	"fmt"

	"bard/internal/faults"
)

// Emotion is one of the seven moods the classifier can report.
type Emotion string

const (
	Neutral   Emotion = "neutral"
	Happy     Emotion = "happy"
	Sad       Emotion = "sad"
	Angry     Emotion = "angry"
	Fearful   Emotion = "fearful"
	Surprised Emotion = "surprised"
	Disgusted Emotion = "disgusted"
)

// All returns every supported emotion in a stable order.
func All() []Emotion {
	return []Emotion{Neutral, Happy, Sad, Angry, Fearful, Surprised, Disgusted}
}

// Result is a classified segment. Scores always contains every emotion and
// sums to 1; Primary carries the highest score.
type Result struct {
	Primary    Emotion
	Confidence float32
	Scores     map[Emotion]float32
}

func (r Result) String() string {
	return fmt.Sprintf("%s (%.0f%%)", r.Primary, r.Confidence*100)
}

// minSamples is the shortest segment worth classifying, 50ms at 16kHz.
const minSamples = 800

// Classifier scores segments against prosody heuristics. Stateless apart from
// sensitivity, so a single instance is safe for concurrent use.
type Classifier struct {
	sensitivity float32
}

// NewClassifier returns a classifier with default sensitivity.
func NewClassifier() *Classifier {
	return &Classifier{sensitivity: 0.5}
}

// NewClassifierWithSensitivity clamps sensitivity into [0, 1].
func NewClassifierWithSensitivity(sensitivity float32) *Classifier {
	if sensitivity < 0 {
		sensitivity = 0
	} else if sensitivity > 1 {
		sensitivity = 1
	}
	return &Classifier{sensitivity: sensitivity}
}

// Sensitivity returns the configured feature weighting.
func (c *Classifier) Sensitivity() float32 {
	return c.sensitivity
}

// Classify scores a mono segment. Segments shorter than 50ms return a data
// error so callers can degrade instead of acting on noise.
func (c *Classifier) Classify(samples []float32, sampleRate int) (Result, error) {
	if len(samples) < minSamples {
		return Result{}, faults.Wrap(faults.ErrData, "emotion", "classify",
			fmt.Sprintf("need at least %d samples, got %d", minSamples, len(samples)), nil)
	}
	return c.Score(ExtractFeatures(samples, sampleRate)), nil
}

// Score converts features into a normalized emotion distribution. The weights
// come from speech prosody heuristics: energy tracks arousal, pitch and
// variance separate the high-arousal moods.
func (c *Classifier) Score(features Features) Result {
	energy := clamp01(features.RMS * 10)
	pitch := clamp01(features.PitchHz / 300)
	variance := clamp01(features.EnergyVariance * 50)

	// Low-arousal moods are gated on actual voicing so dead air reads as
	// neutral rather than sad. Anything above roughly -40 dBFS counts.
	presence := clamp01(features.RMS * 100)

	raw := map[Emotion]float32{
		Neutral:   (1 - energy*0.3) * (1 - variance*0.3) * 0.8,
		Happy:     energy*0.4 + pitch*0.3 + variance*0.2,
		Sad:       presence * ((1-energy)*0.5 + (1-pitch)*0.3 + (1-variance)*0.2),
		Angry:     energy*0.5 + pitch*0.3 + variance*0.4,
		Fearful:   (1-energy)*0.2 + pitch*0.4 + variance*0.5,
		Surprised: variance*0.6 + pitch*0.3,
		Disgusted: presence * ((1-energy)*0.4 + (1-pitch)*0.3),
	}

	var total float32
	for _, score := range raw {
		total += score
	}

	scores := make(map[Emotion]float32, len(raw))
	primary := Neutral
	var best float32 = -1
	for _, emo := range All() {
		score := raw[emo] / total
		scores[emo] = score
		if score > best {
			best = score
			primary = emo
		}
	}

	return Result{Primary: primary, Confidence: best, Scores: scores}
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

package speaker

import (
	"sync"
	"time"
)

// DefaultSimilarityThreshold gates verification when no threshold is
// configured.
const DefaultSimilarityThreshold = 0.75

// VoiceProfile is an enrolled speaker.
type VoiceProfile struct {
	ID           string
	Name         string
	Embedding    Embedding
	IsDefault    bool
	ConsentGiven bool
	Enrolled     time.Time
}

// VerificationResult reports the best match across enrolled profiles.
type VerificationResult struct {
	Verified   bool
	Similarity float32
	SpeakerID  string
}

// EmbeddingExtractor turns raw audio into a voiceprint. The production
// implementation wraps a speaker-embedding model; tests inject deterministic
// embeddings.
type EmbeddingExtractor interface {
	Extract(samples []float32, sampleRate int) (Embedding, error)
}

// Verifier matches candidate embeddings against enrolled voice profiles.
// Safe for concurrent use.
type Verifier struct {
	mu        sync.RWMutex
	threshold float32
	profiles  []VoiceProfile
}

// NewVerifier returns a verifier with the default similarity threshold.
func NewVerifier() *Verifier {
	return &Verifier{threshold: DefaultSimilarityThreshold}
}

// SetThreshold clamps threshold into [0, 1].
func (v *Verifier) SetThreshold(threshold float32) {
	if threshold < 0 {
		threshold = 0
	} else if threshold > 1 {
		threshold = 1
	}
	v.mu.Lock()
	v.threshold = threshold
	v.mu.Unlock()
}

// Threshold returns the active similarity threshold.
func (v *Verifier) Threshold() float32 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.threshold
}

// Enroll adds a profile. Re-enrolling an existing ID replaces it.
func (v *Verifier) Enroll(profile VoiceProfile) {
	if profile.Enrolled.IsZero() {
		profile.Enrolled = time.Now().UTC()
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.profiles {
		if v.profiles[i].ID == profile.ID {
			v.profiles[i] = profile
			return
		}
	}
	v.profiles = append(v.profiles, profile)
}

// Remove drops the profile with the given ID. Unknown IDs are a no-op.
func (v *Verifier) Remove(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	kept := v.profiles[:0]
	for _, profile := range v.profiles {
		if profile.ID != id {
			kept = append(kept, profile)
		}
	}
	v.profiles = kept
}

// Profiles returns a copy of the enrolled profiles.
func (v *Verifier) Profiles() []VoiceProfile {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]VoiceProfile, len(v.profiles))
	copy(out, v.profiles)
	return out
}

// Verify scans enrolled profiles for the closest match. With no profiles
// enrolled the result is unverified with similarity 0.
func (v *Verifier) Verify(candidate Embedding) VerificationResult {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if len(v.profiles) == 0 {
		return VerificationResult{}
	}

	var best VerificationResult
	first := true
	for _, profile := range v.profiles {
		similarity := CosineSimilarity(candidate, profile.Embedding)
		if first || similarity > best.Similarity {
			best = VerificationResult{Similarity: similarity, SpeakerID: profile.ID}
			first = false
		}
	}
	best.Verified = best.Similarity >= v.threshold
	return best
}

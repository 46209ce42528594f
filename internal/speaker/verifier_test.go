package speaker

import (
	"math"
	"testing"
)

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func TestCosineSimilarity(t *testing.T) {
	a := Embedding{1, 0, 0}
	if got := CosineSimilarity(a, Embedding{1, 0, 0}); !almostEqual(got, 1) {
		t.Fatalf("identical vectors = %v, want 1", got)
	}
	if got := CosineSimilarity(a, Embedding{0, 1, 0}); !almostEqual(got, 0) {
		t.Fatalf("orthogonal vectors = %v, want 0", got)
	}
	if got := CosineSimilarity(a, Embedding{-1, 0, 0}); !almostEqual(got, -1) {
		t.Fatalf("opposite vectors = %v, want -1", got)
	}
}

func TestCosineSimilarityDegenerateInputs(t *testing.T) {
	cases := []struct {
		name string
		a, b Embedding
	}{
		{"both empty", nil, nil},
		{"one empty", Embedding{1, 2}, nil},
		{"length mismatch", Embedding{1, 0}, Embedding{1, 0, 0}},
		{"zero norm", Embedding{0, 0, 0}, Embedding{1, 0, 0}},
	}
	for _, tc := range cases {
		if got := CosineSimilarity(tc.a, tc.b); got != 0 {
			t.Errorf("%s: similarity = %v, want 0", tc.name, got)
		}
	}
}

func TestVerifyNoProfiles(t *testing.T) {
	v := NewVerifier()
	res := v.Verify(Embedding{1, 0, 0})
	if res.Verified || res.Similarity != 0 || res.SpeakerID != "" {
		t.Fatalf("empty verifier returned %+v", res)
	}
}

func TestVerifyPicksBestMatch(t *testing.T) {
	v := NewVerifier()
	v.Enroll(VoiceProfile{ID: "gm", Name: "Game Master", Embedding: Embedding{1, 0, 0}})
	v.Enroll(VoiceProfile{ID: "player", Name: "Player", Embedding: Embedding{0, 1, 0}})

	res := v.Verify(Embedding{0.9, 0.1, 0})
	if res.SpeakerID != "gm" {
		t.Fatalf("best match = %q, want gm", res.SpeakerID)
	}
	if !res.Verified {
		t.Fatalf("similarity %v above default threshold should verify", res.Similarity)
	}

	res = v.Verify(Embedding{0.1, 0.9, 0})
	if res.SpeakerID != "player" {
		t.Fatalf("best match = %q, want player", res.SpeakerID)
	}
}

func TestVerifyThresholdGate(t *testing.T) {
	v := NewVerifier()
	v.Enroll(VoiceProfile{ID: "gm", Embedding: Embedding{1, 0, 0}})

	// 45 degrees apart scores ~0.707, below the default 0.75.
	res := v.Verify(Embedding{1, 1, 0})
	if res.Verified {
		t.Fatalf("similarity %v should not pass threshold %v", res.Similarity, v.Threshold())
	}

	v.SetThreshold(0.5)
	if res := v.Verify(Embedding{1, 1, 0}); !res.Verified {
		t.Fatalf("similarity %v should pass lowered threshold", res.Similarity)
	}
}

func TestSetThresholdClamps(t *testing.T) {
	v := NewVerifier()
	v.SetThreshold(3)
	if v.Threshold() != 1 {
		t.Fatalf("threshold = %v, want clamp to 1", v.Threshold())
	}
	v.SetThreshold(-1)
	if v.Threshold() != 0 {
		t.Fatalf("threshold = %v, want clamp to 0", v.Threshold())
	}
}

func TestEnrollReplacesAndRemoveDrops(t *testing.T) {
	v := NewVerifier()
	v.Enroll(VoiceProfile{ID: "gm", Name: "First", Embedding: Embedding{1, 0}})
	v.Enroll(VoiceProfile{ID: "gm", Name: "Second", Embedding: Embedding{0, 1}})
	profiles := v.Profiles()
	if len(profiles) != 1 || profiles[0].Name != "Second" {
		t.Fatalf("re-enroll did not replace: %+v", profiles)
	}

	v.Remove("gm")
	if len(v.Profiles()) != 0 {
		t.Fatal("Remove left profile behind")
	}
	v.Remove("ghost")
}

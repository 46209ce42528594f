package keyword

import (
	"path/filepath"
	"testing"
)

func TestExactMatchHasFullConfidence(t *testing.T) {
	matcher := NewMatcher(DefaultVocabulary())
	matches := matcher.Detect("You dare challenge me in BATTLE!")
	if len(matches) == 0 {
		t.Fatal("no matches for battle")
	}
	found := false
	for _, match := range matches {
		if match.Keyword == "battle" {
			found = true
			if match.Confidence != 1.0 {
				t.Fatalf("exact match confidence = %v, want 1.0", match.Confidence)
			}
			if match.Category != "combat" || match.Mood != "angry" {
				t.Fatalf("battle metadata = %+v", match)
			}
		}
	}
	if !found {
		t.Fatal("battle not among matches")
	}
}

func TestVariationResolvesToCanonicalWord(t *testing.T) {
	matcher := NewMatcher(DefaultVocabulary())
	matches := matcher.Detect("they fight at dawn")
	if len(matches) == 0 || matches[0].Keyword != "battle" {
		t.Fatalf("fight should resolve to battle, got %+v", matches)
	}
	if matches[0].Confidence != 1.0 {
		t.Fatalf("variation hit confidence = %v, want 1.0", matches[0].Confidence)
	}
}

func TestFuzzyMatchScoresLengthRatio(t *testing.T) {
	vocab := NewVocabulary()
	vocab.Add(Keyword{Word: "dragon", Category: "creature"})
	matcher := NewMatcher(vocab)

	matches := matcher.Detect("the dragonborn strides in")
	if len(matches) != 1 {
		t.Fatalf("matches = %+v", matches)
	}
	want := float32(len("dragon")) / float32(len("dragonborn"))
	if matches[0].Confidence != want {
		t.Fatalf("confidence = %v, want %v", matches[0].Confidence, want)
	}

	// Ratios at or below the floor are discarded.
	if matches := matcher.Detect("dragonbornbarbarians"); len(matches) != 0 {
		t.Fatalf("sub-floor ratio survived: %+v", matches)
	}
}

func TestPunctuationStripping(t *testing.T) {
	matcher := NewMatcher(DefaultVocabulary())
	matches := matcher.Detect(`"Treasure!" she cried.`)
	keywords := make(map[string]bool)
	for _, match := range matches {
		keywords[match.Keyword] = true
	}
	if !keywords["treasure"] {
		t.Fatalf("quoted treasure missed: %+v", matches)
	}
}

func TestMatchOrderingByPriorityThenConfidence(t *testing.T) {
	vocab := NewVocabulary()
	vocab.Add(Keyword{Word: "trap", Category: "danger", Priority: 5})
	vocab.Add(Keyword{Word: "treasure", Category: "loot", Priority: 1})
	matcher := NewMatcher(vocab)

	matches := matcher.Detect("treasure behind the trap")
	if len(matches) != 2 {
		t.Fatalf("matches = %+v", matches)
	}
	if matches[0].Keyword != "trap" || matches[1].Keyword != "treasure" {
		t.Fatalf("priority ordering violated: %+v", matches)
	}
}

func TestStableOrderOnTies(t *testing.T) {
	vocab := NewVocabulary()
	vocab.Add(Keyword{Word: "king", Category: "social"})
	vocab.Add(Keyword{Word: "merchant", Category: "social"})
	matcher := NewMatcher(vocab)

	matches := matcher.Detect("the king met the merchant")
	if len(matches) != 2 {
		t.Fatalf("matches = %+v", matches)
	}
	// Equal priority and confidence keep token order.
	if matches[0].Keyword != "king" || matches[1].Keyword != "merchant" {
		t.Fatalf("tie order changed: %+v", matches)
	}
}

func TestEmptyTextYieldsNoMatches(t *testing.T) {
	matcher := NewMatcher(DefaultVocabulary())
	if matches := matcher.Detect("   "); len(matches) != 0 {
		t.Fatalf("matches for blank text: %+v", matches)
	}
}

func TestReloadIfChangedRequiresStrictlyNewerVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocabulary.json")

	initial := NewVocabulary()
	initial.Add(Keyword{Word: "dragon", Category: "creature"})
	matcher := NewMatcher(initial)

	stale := NewVocabulary()
	stale.Add(Keyword{Word: "trap", Category: "danger"})
	stale.version = initial.Version()
	if err := SaveVocabulary(stale, path); err != nil {
		t.Fatal(err)
	}
	swapped, err := matcher.ReloadIfChanged(path)
	if err != nil {
		t.Fatal(err)
	}
	if swapped {
		t.Fatal("equal version must not swap")
	}
	if _, ok := matcher.Vocabulary().Get("dragon"); !ok {
		t.Fatal("stale reload replaced active vocabulary")
	}

	fresh := NewVocabulary()
	fresh.Add(Keyword{Word: "trap", Category: "danger"})
	fresh.version = initial.Version() + 1
	if err := SaveVocabulary(fresh, path); err != nil {
		t.Fatal(err)
	}
	swapped, err = matcher.ReloadIfChanged(path)
	if err != nil {
		t.Fatal(err)
	}
	if !swapped {
		t.Fatal("newer version did not swap")
	}
	if _, ok := matcher.Vocabulary().Get("trap"); !ok {
		t.Fatal("swap lost new keyword")
	}
}

package keyword

import (
	"sort"
	"strings"
	"sync"
)

// Match is a single keyword hit inside a transcript.
type Match struct {
	Keyword    string
	Category   string
	Mood       string
	Confidence float32
	StartIndex int
	EndIndex   int
}

// fuzzyFloor is the minimum length-ratio confidence a substring hit needs to
// count as a match.
const fuzzyFloor = 0.5

// Matcher detects vocabulary keywords in transcribed text. It is safe for
// concurrent use; the vocabulary watcher may swap vocabularies while the
// pipeline is detecting.
type Matcher struct {
	mu    sync.RWMutex
	vocab *Vocabulary
}

// NewMatcher returns a matcher over the given vocabulary. A nil vocabulary
// is replaced with an empty one.
func NewMatcher(vocab *Vocabulary) *Matcher {
	if vocab == nil {
		vocab = NewVocabulary()
	}
	return &Matcher{vocab: vocab}
}

// SetVocabulary unconditionally replaces the active vocabulary.
func (m *Matcher) SetVocabulary(vocab *Vocabulary) {
	if vocab == nil {
		return
	}
	m.mu.Lock()
	m.vocab = vocab
	m.mu.Unlock()
}

// Version returns the active vocabulary version.
func (m *Matcher) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vocab.Version()
}

// Vocabulary returns the active vocabulary.
func (m *Matcher) Vocabulary() *Vocabulary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vocab
}

// ReloadIfChanged parses the vocabulary at path and swaps it in only when its
// version is strictly greater than the active one. It reports whether a swap
// occurred.
func (m *Matcher) ReloadIfChanged(path string) (bool, error) {
	candidate, err := LoadVocabulary(path)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if candidate.Version() <= m.vocab.Version() {
		return false, nil
	}
	m.vocab = candidate
	return true, nil
}

// Detect finds keyword matches in text. Each whitespace token is tried for an
// exact (case-insensitive) hit first, then fuzzily against every variation:
// substring containment scores shorter/longer length and survives only above
// the fuzzy floor. Results sort by priority then confidence, descending;
// ties keep discovery order.
func (m *Matcher) Detect(text string) []Match {
	m.mu.RLock()
	vocab := m.vocab
	m.mu.RUnlock()

	tokens := strings.Fields(strings.ToLower(text))
	var matches []Match

	for i, token := range tokens {
		token = strings.Trim(token, ".,!?;:\"'()")
		if token == "" {
			continue
		}

		if kw, ok := vocab.Get(token); ok {
			matches = append(matches, Match{
				Keyword:    kw.Word,
				Category:   kw.Category,
				Mood:       kw.Mood,
				Confidence: 1.0,
				StartIndex: i,
				EndIndex:   i,
			})
			continue
		}

		// Best fuzzy hit per owning keyword, scanned in insertion order so
		// tie-breaking stays deterministic.
		best := make(map[string]Match)
		var order []string
		for _, variation := range vocab.variations {
			confidence := fuzzyConfidence(token, variation)
			if confidence <= fuzzyFloor {
				continue
			}
			kw := *vocab.entries[variation]
			prev, seen := best[kw.Word]
			if !seen {
				order = append(order, kw.Word)
			}
			if !seen || confidence > prev.Confidence {
				best[kw.Word] = Match{
					Keyword:    kw.Word,
					Category:   kw.Category,
					Mood:       kw.Mood,
					Confidence: confidence,
					StartIndex: i,
					EndIndex:   i,
				}
			}
		}
		for _, word := range order {
			matches = append(matches, best[word])
		}
	}

	m.sortMatches(vocab, matches)
	return matches
}

func (m *Matcher) sortMatches(vocab *Vocabulary, matches []Match) {
	priority := func(match Match) int {
		if kw, ok := vocab.Get(match.Keyword); ok {
			return kw.Priority
		}
		return 0
	}
	sort.SliceStable(matches, func(i, j int) bool {
		pi, pj := priority(matches[i]), priority(matches[j])
		if pi != pj {
			return pi > pj
		}
		return matches[i].Confidence > matches[j].Confidence
	})
}

func fuzzyConfidence(token, variation string) float32 {
	if !strings.Contains(token, variation) && !strings.Contains(variation, token) {
		return 0
	}
	shorter, longer := len(token), len(variation)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if longer == 0 {
		return 0
	}
	return float32(shorter) / float32(longer)
}

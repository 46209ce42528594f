package keyword

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Keyword is a canonical trigger word with its spoken variations.
type Keyword struct {
	Word       string   `json:"word"`
	Category   string   `json:"category"`
	Variations []string `json:"variations"`
	Mood       string   `json:"mood,omitempty"`
	Priority   int      `json:"priority"`
}

// Vocabulary maps lowercased variations to their owning keyword. Every
// mutation bumps a strictly increasing version so reload logic can tell
// whether a candidate file is actually newer.
type Vocabulary struct {
	entries    map[string]*Keyword
	variations []string // insertion order, for deterministic fuzzy scans
	version    uint64
}

// NewVocabulary returns an empty vocabulary at version zero.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{entries: make(map[string]*Keyword)}
}

// Add registers kw under all of its variations. The canonical word is always
// included as a variation even when the caller omits it.
func (v *Vocabulary) Add(kw Keyword) {
	if strings.TrimSpace(kw.Word) == "" {
		return
	}
	kw.Word = strings.ToLower(strings.TrimSpace(kw.Word))

	seen := make(map[string]bool, len(kw.Variations)+1)
	normalized := make([]string, 0, len(kw.Variations)+1)
	for _, raw := range append([]string{kw.Word}, kw.Variations...) {
		variation := strings.ToLower(strings.TrimSpace(raw))
		if variation == "" || seen[variation] {
			continue
		}
		seen[variation] = true
		normalized = append(normalized, variation)
	}
	kw.Variations = normalized

	stored := kw
	for _, variation := range kw.Variations {
		if _, exists := v.entries[variation]; !exists {
			v.variations = append(v.variations, variation)
		}
		v.entries[variation] = &stored
	}
	v.version++
}

// Remove drops the keyword owning word (looked up by any variation) along
// with all of its variations. Removing an unknown word is a no-op.
func (v *Vocabulary) Remove(word string) {
	kw, ok := v.entries[strings.ToLower(strings.TrimSpace(word))]
	if !ok {
		return
	}
	for _, variation := range kw.Variations {
		delete(v.entries, variation)
	}
	kept := v.variations[:0]
	for _, variation := range v.variations {
		if _, ok := v.entries[variation]; ok {
			kept = append(kept, variation)
		}
	}
	v.variations = kept
	v.version++
}

// Get returns the keyword owning word, matched case-insensitively against
// any variation.
func (v *Vocabulary) Get(word string) (Keyword, bool) {
	kw, ok := v.entries[strings.ToLower(strings.TrimSpace(word))]
	if !ok {
		return Keyword{}, false
	}
	return *kw, true
}

// Keywords returns the distinct keywords sorted by canonical word.
func (v *Vocabulary) Keywords() []Keyword {
	byWord := make(map[string]Keyword)
	for _, kw := range v.entries {
		byWord[kw.Word] = *kw
	}
	out := make([]Keyword, 0, len(byWord))
	for _, kw := range byWord {
		out = append(out, kw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out
}

// Version returns the monotonically increasing mutation counter.
func (v *Vocabulary) Version() uint64 {
	return v.version
}

// Len returns the number of distinct keywords.
func (v *Vocabulary) Len() int {
	return len(v.Keywords())
}

type vocabularyFile struct {
	Version  uint64    `json:"version"`
	Keywords []Keyword `json:"keywords"`
}

// MarshalJSON serializes the vocabulary with its version so a round-trip
// preserves reload ordering.
func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	return json.Marshal(vocabularyFile{Version: v.version, Keywords: v.Keywords()})
}

// ParseVocabulary builds a vocabulary from serialized JSON. The file version
// wins over the counter accumulated while re-adding keywords.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var file vocabularyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	vocab := NewVocabulary()
	for _, kw := range file.Keywords {
		vocab.Add(kw)
	}
	if file.Version > vocab.version {
		vocab.version = file.Version
	}
	return vocab, nil
}

// LoadVocabulary reads and parses a vocabulary file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// SaveVocabulary writes the vocabulary to path as indented JSON.
func SaveVocabulary(v *Vocabulary, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize vocabulary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write vocabulary: %w", err)
	}
	return nil
}

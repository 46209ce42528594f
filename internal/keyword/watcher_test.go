package keyword

import (
	"path/filepath"
	"testing"
	"time"

	"bard/internal/logging"
)

func writeVocabularyFile(t *testing.T, path string, version uint64, words ...Keyword) {
	t.Helper()
	vocab := NewVocabulary()
	for _, kw := range words {
		vocab.Add(kw)
	}
	vocab.version = version
	if err := SaveVocabulary(vocab, path); err != nil {
		t.Fatalf("save vocabulary: %v", err)
	}
}

func waitForVersion(t *testing.T, m *Matcher, want uint64) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if m.Version() == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("vocabulary version = %d, want %d", m.Version(), want)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.json")
	writeVocabularyFile(t, path, 1, Keyword{Word: "battle", Category: "combat"})

	matcher := NewMatcher(nil)
	if _, err := matcher.ReloadIfChanged(path); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	watcher, err := NewWatcher(matcher, path, logging.NewNop())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	writeVocabularyFile(t, path, 2,
		Keyword{Word: "battle", Category: "combat"},
		Keyword{Word: "dragon", Mood: "fearful"})

	waitForVersion(t, matcher, 2)
	if _, ok := matcher.Vocabulary().Get("dragon"); !ok {
		t.Error("reloaded vocabulary missing new keyword")
	}
}

func TestWatcherIgnoresStaleVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.json")
	writeVocabularyFile(t, path, 3, Keyword{Word: "battle", Category: "combat"})

	matcher := NewMatcher(nil)
	if _, err := matcher.ReloadIfChanged(path); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	watcher, err := NewWatcher(matcher, path, logging.NewNop())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	// Same version: the debounce fires but the strictly-greater rule must
	// keep the active vocabulary.
	writeVocabularyFile(t, path, 3, Keyword{Word: "trap", Category: "danger"})
	time.Sleep(3 * debounce)

	if _, ok := matcher.Vocabulary().Get("trap"); ok {
		t.Error("stale vocabulary version should not swap in")
	}
	if _, ok := matcher.Vocabulary().Get("battle"); !ok {
		t.Error("active vocabulary lost its keyword")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocabulary.json")
	writeVocabularyFile(t, path, 1, Keyword{Word: "battle", Category: "combat"})

	matcher := NewMatcher(nil)
	if _, err := matcher.ReloadIfChanged(path); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	watcher, err := NewWatcher(matcher, path, logging.NewNop())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	writeVocabularyFile(t, filepath.Join(dir, "other.json"), 9, Keyword{Word: "trap"})
	time.Sleep(3 * debounce)

	if got := matcher.Version(); got != 1 {
		t.Errorf("version = %d after unrelated write, want 1", got)
	}
}

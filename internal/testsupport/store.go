package testsupport

import (
	"context"
	"os"
	"testing"

	"bard/internal/catalog"
	"bard/internal/config"
	"bard/internal/media"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		t.Fatalf("mkdir data dir: %v", err)
	}
	store, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewTrack adds a music track to the store for tests.
func NewTrack(t testing.TB, store *catalog.Store, track media.Track) media.Track {
	t.Helper()

	added, err := store.AddTrack(context.Background(), track)
	if err != nil {
		t.Fatalf("store.AddTrack: %v", err)
	}
	return added
}

package daemon_test

import (
	"context"
	"testing"

	"bard/internal/catalog"
	"bard/internal/daemon"
	"bard/internal/engine"
	"bard/internal/pipeline"
	"bard/internal/session"
	"bard/internal/testsupport"
)

func newTestDaemon(t *testing.T, logDir string) (*daemon.Daemon, *catalog.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.LogDir = logDir
	store := testsupport.MustOpenStore(t, cfg)

	p := pipeline.New(pipeline.DefaultConfig(), pipeline.Deps{})
	t.Cleanup(p.Close)
	eng := engine.New(engine.Options{Output: testsupport.NullOutput{}, Crossfade: engine.Instant})
	manager := session.NewManager(session.Deps{Pipeline: p, Engine: eng, Store: store})
	t.Cleanup(manager.Close)

	d, err := daemon.New(cfg, store, manager, nil)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	return d, store
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	logDir := t.TempDir()
	d, _ := newTestDaemon(t, logDir)
	defer d.Close()

	if d.Running() {
		t.Fatal("daemon should not run before Start")
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !d.Running() {
		t.Fatal("daemon should report running")
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected error starting twice")
	}

	d.Stop()
	if d.Running() {
		t.Fatal("daemon should stop")
	}
	d.Stop()
}

func TestLockRejectsSecondInstance(t *testing.T) {
	logDir := t.TempDir()

	first, _ := newTestDaemon(t, logDir)
	defer first.Close()
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("start first: %v", err)
	}

	second, _ := newTestDaemon(t, logDir)
	defer second.Close()
	if err := second.Start(context.Background()); err == nil {
		t.Fatal("expected second instance to fail on lock")
	}

	first.Stop()
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("start after release: %v", err)
	}
}

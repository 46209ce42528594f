package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"bard/internal/catalog"
	"bard/internal/engine"
	"bard/internal/ipc"
	"bard/internal/media"
	"bard/internal/pipeline"
	"bard/internal/session"
	"bard/internal/testsupport"
	"bard/internal/transcribe"
)

// startDaemonFixture serves a real IPC socket backed by a temp catalog so
// command round trips exercise the full wire path.
func startDaemonFixture(t *testing.T) (string, *catalog.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	p := pipeline.New(pipeline.DefaultConfig(), pipeline.Deps{Transcriber: transcribe.Noop{}})
	t.Cleanup(p.Close)
	eng := engine.New(engine.Options{Output: testsupport.NullOutput{}, Crossfade: engine.Instant})
	manager := session.NewManager(session.Deps{Pipeline: p, Engine: eng, Store: store})
	t.Cleanup(manager.Close)

	socket := cfg.Paths.SocketPath
	srv, err := ipc.NewServer(context.Background(), socket, ipc.Deps{
		Manager: manager,
		Engine:  eng,
		Store:   store,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)
	return socket, store
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command %v: %v\noutput: %s", args, err, out.String())
	}
	return out.String()
}

func TestRootCommandWiring(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{
		"start", "stop", "restart", "status", "daemon", "session",
		"play", "crossfade", "sfx", "pause", "resume", "silence",
		"duck", "unduck", "volume", "fade", "library", "keywords",
		"config", "logs", "profiles", "test-notify",
	} {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestKeywordCommandsRoundTrip(t *testing.T) {
	socket, _ := startDaemonFixture(t)

	runCommand(t, "--socket", socket, "keywords", "add", "ambush",
		"--category", "combat", "--mood", "fearful", "--priority", "2",
		"--variation", "ambushed")

	out := runCommand(t, "--socket", socket, "keywords", "list")
	if !strings.Contains(out, "ambush") || !strings.Contains(out, "combat") {
		t.Errorf("keyword list output missing entry:\n%s", out)
	}

	out = runCommand(t, "--socket", socket, "keywords", "remove", "ambush")
	if !strings.Contains(out, "removed") {
		t.Errorf("remove output = %q", out)
	}
	out = runCommand(t, "--socket", socket, "keywords", "remove", "ambush")
	if !strings.Contains(out, "not found") {
		t.Errorf("second remove output = %q", out)
	}
}

func TestVolumeCommandShowsMix(t *testing.T) {
	socket, _ := startDaemonFixture(t)

	out := runCommand(t, "--socket", socket, "volume", "music", "0.5")
	if !strings.Contains(out, "0.50") {
		t.Errorf("volume output missing level:\n%s", out)
	}
	out = runCommand(t, "--socket", socket, "volume")
	if !strings.Contains(out, "Master") || !strings.Contains(out, "Ducked") {
		t.Errorf("volume table incomplete:\n%s", out)
	}
}

func TestPlayCommandReportsTrack(t *testing.T) {
	socket, store := startDaemonFixture(t)

	track := testsupport.NewTrack(t, store,
		media.Track{Name: "Tavern", Path: "/music/tavern.mp3", Mood: "social"})

	out := runCommand(t, "--socket", socket, "play", track.ID)
	if !strings.Contains(out, "Tavern") {
		t.Errorf("play output = %q", out)
	}

	out = runCommand(t, "--socket", socket, "library", "tracks", "--mood", "social")
	if !strings.Contains(out, "Tavern") {
		t.Errorf("library output missing track:\n%s", out)
	}
}

func TestSessionCommands(t *testing.T) {
	socket, _ := startDaemonFixture(t)

	out := runCommand(t, "--socket", socket, "session", "start",
		"--name", "Friday game", "--mode", "collaborative")
	if !strings.Contains(out, "Friday game") || !strings.Contains(out, "collaborative") {
		t.Errorf("session start output = %q", out)
	}

	out = runCommand(t, "--socket", socket, "status")
	if !strings.Contains(out, "Friday game") {
		t.Errorf("status output missing session:\n%s", out)
	}

	out = runCommand(t, "--socket", socket, "session", "stop")
	if !strings.Contains(out, "Session stopped") {
		t.Errorf("session stop output = %q", out)
	}

	out = runCommand(t, "--socket", socket, "session", "list")
	if !strings.Contains(out, "Friday game") {
		t.Errorf("session list output missing session:\n%s", out)
	}
}

func TestStatusOfflineFallsBackToConfig(t *testing.T) {
	out := runCommand(t, "--socket", filepath.Join(t.TempDir(), "missing.sock"), "status")
	if !strings.Contains(out, "Not running") {
		t.Errorf("offline status output = %q", out)
	}
}

package ipc_test

import (
	"context"
	"path/filepath"
	"testing"

	"bard/internal/catalog"
	"bard/internal/engine"
	"bard/internal/ipc"
	"bard/internal/media"
	"bard/internal/pipeline"
	"bard/internal/session"
	"bard/internal/speaker"
	"bard/internal/testsupport"
	"bard/internal/transcribe"
)

// fixedExtractor returns the same embedding for any audio.
type fixedExtractor struct{ embedding speaker.Embedding }

func (f fixedExtractor) Extract([]float32, int) (speaker.Embedding, error) {
	return f.embedding, nil
}

func newTestClient(t *testing.T) (*ipc.Client, *catalog.Store) {
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
		Manager:   manager,
		Engine:    eng,
		Store:     store,
		Verifier:  speaker.NewVerifier(),
		Extractor: fixedExtractor{embedding: speaker.Embedding{0.1, 0.2, 0.3}},
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, store
}

func TestStatusRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)

	status, err := client.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Running {
		t.Error("daemon should report running")
	}
	if status.Active {
		t.Error("no session should be active")
	}
	if status.Engine != "idle" || status.Pipeline != "listening" {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestSessionLifecycleOverIPC(t *testing.T) {
	client, _ := newTestClient(t)

	started, err := client.SessionStart("Friday game", "collaborative")
	if err != nil {
		t.Fatalf("session start: %v", err)
	}
	if started.SessionID == "" || started.Mode != "collaborative" {
		t.Errorf("start response = %+v", started)
	}

	if _, err := client.SessionStart("another", "autonomous"); err == nil {
		t.Fatal("expected error starting second session")
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Active || status.SessionName != "Friday game" {
		t.Errorf("status during session = %+v", status)
	}

	stopped, err := client.SessionStop()
	if err != nil {
		t.Fatalf("session stop: %v", err)
	}
	if !stopped.Stopped {
		t.Error("stop not acknowledged")
	}

	sessions, err := client.SessionList()
	if err != nil {
		t.Fatalf("session list: %v", err)
	}
	if len(sessions.Sessions) != 1 || sessions.Sessions[0].Active {
		t.Errorf("session list = %+v", sessions.Sessions)
	}
}

func TestInvalidModeRejected(t *testing.T) {
	client, _ := newTestClient(t)
	if _, err := client.SessionStart("x", "chaotic"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestEngineCommands(t *testing.T) {
	client, store := newTestClient(t)
	ctx := context.Background()

	track, err := store.AddTrack(ctx, media.Track{Name: "Tavern", Path: "/music/tavern.mp3", Mood: "social"})
	if err != nil {
		t.Fatalf("add track: %v", err)
	}
	effect, err := store.AddEffect(ctx, media.SoundEffect{Name: "Door", Path: "/sfx/door.wav", Category: "exploration"})
	if err != nil {
		t.Fatalf("add effect: %v", err)
	}

	played, err := client.EnginePlay(track.ID)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if played.Track.Name != "Tavern" {
		t.Errorf("played = %+v", played.Track)
	}

	if _, err := client.EnginePlay("missing"); err == nil {
		t.Fatal("expected error for unknown track")
	}

	if _, err := client.EngineSfx(effect.ID); err != nil {
		t.Fatalf("sfx: %v", err)
	}

	volumes, err := client.EngineSetVolume("music", 0.5)
	if err != nil {
		t.Fatalf("set volume: %v", err)
	}
	if volumes.Music != 0.5 {
		t.Errorf("music volume = %v, want 0.5", volumes.Music)
	}
	if _, err := client.EngineSetVolume("bass", 0.5); err == nil {
		t.Fatal("expected error for unknown channel")
	}

	if _, err := client.EngineDuck(); err != nil {
		t.Fatalf("duck: %v", err)
	}
	volumes, err = client.EngineVolumes()
	if err != nil {
		t.Fatalf("volumes: %v", err)
	}
	if !volumes.Ducked {
		t.Error("expected ducked state")
	}
	if _, err := client.EngineReleaseDuck(); err != nil {
		t.Fatalf("release duck: %v", err)
	}

	if _, err := client.EngineSetCrossfade("quick"); err != nil {
		t.Fatalf("set crossfade: %v", err)
	}
	if _, err := client.EngineSetCrossfade("wobbly"); err == nil {
		t.Fatal("expected error for unknown crossfade")
	}

	if _, err := client.EnginePause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := client.EngineResume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if _, err := client.EngineStopAll(); err != nil {
		t.Fatalf("stop all: %v", err)
	}
}

func TestKeywordManagement(t *testing.T) {
	client, _ := newTestClient(t)

	if _, err := client.KeywordAdd(ipc.Keyword{
		Word:       "ambush",
		Category:   "combat",
		Mood:       "fearful",
		Priority:   2,
		Variations: []string{"ambushed"},
	}); err != nil {
		t.Fatalf("keyword add: %v", err)
	}

	list, err := client.KeywordList()
	if err != nil {
		t.Fatalf("keyword list: %v", err)
	}
	if len(list.Keywords) != 1 || list.Keywords[0].Word != "ambush" {
		t.Errorf("keywords = %+v", list.Keywords)
	}

	removed, err := client.KeywordRemove("ambush")
	if err != nil {
		t.Fatalf("keyword remove: %v", err)
	}
	if !removed.Removed {
		t.Error("expected removal")
	}
	removed, err = client.KeywordRemove("ambush")
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if removed.Removed {
		t.Error("second removal should report false")
	}
}

func TestProfileLifecycle(t *testing.T) {
	client, _ := newTestClient(t)

	wav := filepath.Join(t.TempDir(), "gm.wav")
	testsupport.WriteWAV(t, wav, 16000, 1, testsupport.SinePCM(16000, 220, 16000, 0.5))

	if _, err := client.ProfileEnroll(ipc.ProfileEnrollRequest{
		Name: "GM", AudioPath: wav,
	}); err == nil {
		t.Fatal("expected error enrolling without consent")
	}

	enrolled, err := client.ProfileEnroll(ipc.ProfileEnrollRequest{
		Name: "GM", AudioPath: wav, IsDefault: true, Consent: true,
	})
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if enrolled.Profile.ID == "" || enrolled.Profile.Name != "GM" || !enrolled.Profile.IsDefault {
		t.Errorf("profile = %+v", enrolled.Profile)
	}

	list, err := client.ProfileList()
	if err != nil {
		t.Fatalf("profile list: %v", err)
	}
	if len(list.Profiles) != 1 || list.Profiles[0].ID != enrolled.Profile.ID {
		t.Errorf("profiles = %+v", list.Profiles)
	}

	removed, err := client.ProfileRemove(enrolled.Profile.ID)
	if err != nil {
		t.Fatalf("profile remove: %v", err)
	}
	if !removed.Removed {
		t.Error("expected removal")
	}
	removed, err = client.ProfileRemove(enrolled.Profile.ID)
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if removed.Removed {
		t.Error("second removal should report false")
	}
}

func TestDialFailsWhenSocketMissing(t *testing.T) {
	if _, err := ipc.Dial(filepath.Join(t.TempDir(), "missing.sock")); err == nil {
		t.Fatal("expected dial error")
	}
}

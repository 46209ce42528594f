package logging

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewForDirCreatesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := NewForDir(dir, "info", "json")
	if err != nil {
		t.Fatalf("NewForDir failed: %v", err)
	}
	logger.Info("hello")
}

func TestConsoleHandlerFormatsComponent(t *testing.T) {
	var sb strings.Builder
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&writerAdapter{&sb}, levelVar))

	WithComponent(logger, "engine").Info("track started", String("track", "ambush"))

	out := sb.String()
	if !strings.Contains(out, "[engine]") {
		t.Fatalf("missing component tag: %q", out)
	}
	if !strings.Contains(out, "track=ambush") {
		t.Fatalf("missing attr pair: %q", out)
	}
}

type writerAdapter struct{ sb *strings.Builder }

func (w *writerAdapter) Write(p []byte) (int, error) { return w.sb.Write(p) }

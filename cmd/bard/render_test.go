package main

import (
	"os"
	"strings"
	"testing"
)

func TestRenderStatusLinePlain(t *testing.T) {
	line := renderStatusLine("Bard", statusOK, "Running", false)
	if !strings.Contains(line, "Bard:") || !strings.Contains(line, "[OK] Running") {
		t.Errorf("line = %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Errorf("plain line should not contain ANSI codes: %q", line)
	}
}

func TestRenderStatusLineAlignsKindMarkers(t *testing.T) {
	short := renderStatusLine("Bard", statusOK, "Running", false)
	long := renderStatusLine("Notifications", statusWarn, "Not configured", false)
	if strings.Index(short, "[") != strings.Index(long, "[") {
		t.Errorf("kind markers misaligned:\n%q\n%q", short, long)
	}
}

func TestRenderStatusLineColorized(t *testing.T) {
	line := renderStatusLine("Bard", statusWarn, "Not running", true)
	if !strings.HasPrefix(line, ansiYellow) || !strings.HasSuffix(line, ansiReset) {
		t.Errorf("colorized line = %q", line)
	}
}

func TestRenderSectionHeaderUnderlinesTitle(t *testing.T) {
	lines := renderSectionHeader(" Engine ", false)
	if len(lines) != 2 {
		t.Fatalf("expected title and rule, got %v", lines)
	}
	if lines[0] != "Engine" {
		t.Errorf("title = %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Errorf("rule = %q for title %q", lines[1], lines[0])
	}
}

func TestShouldColorizeRejectsBuffers(t *testing.T) {
	if shouldColorize(&strings.Builder{}) {
		t.Error("non-file writers should never colorize")
	}
}

func TestShouldColorizeHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if shouldColorize(os.Stdout) {
		t.Error("NO_COLOR must disable colors even for terminals")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"Name", "Mood"},
		[][]string{{"Tavern", "social"}, {"Battle"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	if !strings.Contains(out, "Tavern") || !strings.Contains(out, "Battle") {
		t.Errorf("table output = %q", out)
	}
}

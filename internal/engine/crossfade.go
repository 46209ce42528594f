package engine

import (
	"strings"
	"time"

	"bard/internal/faults"
)

// CrossfadeType selects how long a track transition takes.
type CrossfadeType string

const (
	// Instant switches tracks with no ramp at all.
	Instant CrossfadeType = "instant"
	// Quick is a 500ms ramp for scene cuts.
	Quick CrossfadeType = "quick"
	// Musical is the 2s default, long enough to feel intentional.
	Musical CrossfadeType = "musical"
	// Long is a 5s ramp for slow scene shifts.
	Long CrossfadeType = "long"
)

// Duration returns the ramp length for the type. Unknown types fall back to
// Musical.
func (c CrossfadeType) Duration() time.Duration {
	switch c {
	case Instant:
		return 0
	case Quick:
		return 500 * time.Millisecond
	case Long:
		return 5 * time.Second
	default:
		return 2 * time.Second
	}
}

// ParseCrossfadeType validates a config or command string.
func ParseCrossfadeType(s string) (CrossfadeType, error) {
	switch CrossfadeType(strings.ToLower(strings.TrimSpace(s))) {
	case Instant:
		return Instant, nil
	case Quick:
		return Quick, nil
	case Musical, "":
		return Musical, nil
	case Long:
		return Long, nil
	default:
		return "", faults.Wrap(faults.ErrData, "engine", "parse", "unknown crossfade type "+s, nil)
	}
}

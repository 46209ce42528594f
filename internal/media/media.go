package media

import "time"

// Track is a music library entry.
type Track struct {
	ID       string
	Name     string
	Path     string
	Genre    string
	Mood     string
	Loop     bool
	Duration time.Duration
}

// SoundEffect is a short one-shot sample layered over music.
type SoundEffect struct {
	ID       string
	Name     string
	Path     string
	Category string
	Mood     string
}

// Source is a streaming float32 sample reader. Read fills out with
// interleaved samples and returns io.EOF when the material ends.
type Source interface {
	SampleRate() int
	Channels() int
	Read(out []float32) (int, error)
	Close() error
}

package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bard/internal/faults"
)

// Open decodes the audio file at path, picking the decoder by extension.
// Supported formats: mp3, wav.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return OpenMP3(path)
	case ".wav":
		return OpenWAV(path)
	default:
		return nil, faults.Wrap(faults.ErrData, "media", "open",
			fmt.Sprintf("unsupported format %q", filepath.Ext(path)), nil)
	}
}

// OpenLoop wraps Open so the source restarts from the beginning on EOF,
// forever. Used for looping background tracks.
func OpenLoop(path string) (Source, error) {
	first, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &loopSource{path: path, current: first}, nil
}

type loopSource struct {
	path    string
	current Source
}

func (l *loopSource) SampleRate() int { return l.current.SampleRate() }
func (l *loopSource) Channels() int   { return l.current.Channels() }

func (l *loopSource) Read(out []float32) (int, error) {
	n, err := l.current.Read(out)
	if err == nil || !errors.Is(err, io.EOF) {
		return n, err
	}
	// Reopen rather than seek; not every decoder can rewind.
	l.current.Close()
	next, openErr := Open(l.path)
	if openErr != nil {
		return n, openErr
	}
	l.current = next
	more, err := l.current.Read(out[n:])
	return n + more, err
}

func (l *loopSource) Close() error { return l.current.Close() }

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrData, "media", "open", "cannot open audio file", err)
	}
	return f, nil
}

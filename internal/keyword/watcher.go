package keyword

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"bard/internal/logging"
)

// Watcher reloads the matcher's vocabulary whenever the backing file
// changes. Reloads follow the strictly-greater version rule, so touching the
// file without bumping its version is a no-op.
type Watcher struct {
	matcher *Matcher
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// debounce collapses editor write bursts into a single reload.
const debounce = 250 * time.Millisecond

// NewWatcher starts watching the directory containing path. Watching the
// directory instead of the file survives the rename-and-replace pattern most
// editors use.
func NewWatcher(matcher *Matcher, path string, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		matcher: matcher,
		path:    path,
		logger:  logging.WithComponent(logger, "vocabulary"),
		watcher: fsWatcher,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

// Close stops the watcher and releases its OS resources.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("vocabulary watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	swapped, err := w.matcher.ReloadIfChanged(w.path)
	if err != nil {
		w.logger.Warn("vocabulary reload failed", logging.Error(err), logging.String("path", w.path))
		return
	}
	if swapped {
		w.logger.Info("vocabulary reloaded",
			logging.Uint64("version", w.matcher.Version()),
			logging.String("path", w.path))
	}
}

package repl

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/varz/cli/cmd"
	"github.com/ardnew/varz/log"
)

// debounce is how long a change to a watched file suppresses further
// change notifications.
const debounce = 100 * time.Millisecond

// watcher sends the path of a variable file each time it changes.
type watcher struct {
	fs      *fsnotify.Watcher
	files   map[string]struct{}
	changes chan string
	logger  log.Logger

	mu         sync.Mutex
	lastChange time.Time
}

// startWatcher starts watching the given variable files until ctx is done.
//
// The directory of each file is watched rather than the file itself, so a
// file replaced by rename (as most editors save) is still reported.
// Standard input is never watched.
func startWatcher(ctx context.Context, files []string, logger log.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &watcher{
		fs:      fsw,
		files:   make(map[string]struct{}),
		changes: make(chan string),
		logger:  logger,
	}

	dirs := make(map[string]struct{})

	for _, path := range files {
		if path == cmd.StdinSource {
			continue
		}

		path = filepath.Clean(path)
		w.files[path] = struct{}{}
		dirs[filepath.Dir(path)] = struct{}{}
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()

			return nil, err
		}

		logger.DebugContext(ctx, "watching directory", slog.String("dir", dir))
	}

	go w.loop(ctx)

	return w, nil
}

// Changes returns the channel of changed file paths. It is closed when the
// watcher stops.
func (w *watcher) Changes() <-chan string { return w.changes }

func (w *watcher) loop(ctx context.Context) {
	defer close(w.changes)
	defer w.fs.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}

			if !w.relevant(event) {
				continue
			}

			w.logger.TraceContext(ctx, "variable file changed",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()),
			)

			select {
			case w.changes <- event.Name:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}

			w.logger.WarnContext(ctx, "watcher error", slog.Any("error", err))
		}
	}
}

// relevant reports whether event modifies a watched file and falls outside
// the debounce window of the previous change.
func (w *watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) {
		return false
	}

	if _, ok := w.files[filepath.Clean(event.Name)]; !ok {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if time.Since(w.lastChange) < debounce {
		return false
	}

	w.lastChange = time.Now()

	return true
}

package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/interop-labs/modreg/internal/logging"
)

// Func is called after a change settles.
type Func func(ctx context.Context) error

// Watcher watches files and calls fn after they change.
type Watcher struct {
	targets  map[string]bool
	dirs     []string
	debounce time.Duration
	fn       Func
	ready    chan struct{}
}

// New returns a Watcher for paths. A zero debounce calls fn on the first
// relevant event.
func New(paths []string, debounce time.Duration, fn Func) *Watcher {
	w := &Watcher{
		targets:  make(map[string]bool, len(paths)),
		debounce: debounce,
		fn:       fn,
		ready:    make(chan struct{}),
	}
	seen := make(map[string]bool)
	for _, p := range paths {
		p = filepath.Clean(p)
		w.targets[p] = true
		dir := filepath.Dir(p)
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w
}

// Ready is closed once the watches are registered.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run blocks until ctx is cancelled. Errors returned by fn are logged and do
// not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		log.Debug("watching directory", "dir", dir)
	}
	close(w.ready)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			log.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("file watcher error", "error", err)
		case <-timer.C:
			if err := w.fn(ctx); err != nil {
				log.Error("regeneration failed", "error", err)
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !w.targets[filepath.Clean(ev.Name)] {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}

// Package watch re-runs work when run tables change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler is called with the sorted paths that changed during one debounce
// window. It runs on the watcher's goroutine.
type Handler func(ctx context.Context, changed []string)

// Watcher watches a fixed set of files with debouncing.
//
// The parent directories are watched rather than the files, so a table that
// is replaced by rename (as simulators and editors often do) keeps firing.
type Watcher struct {
	files    map[string]bool
	dirs     []string
	debounce time.Duration
	handler  Handler
	logger   *zap.Logger
}

// New creates a watcher over files. A zero debounce fires on every event.
func New(files []string, debounce time.Duration, handler Handler, logger *zap.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if handler == nil {
		return nil, fmt.Errorf("nil handler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		debounce: debounce,
		handler:  handler,
		logger:   logger,
	}
	seen := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = true
		if dir := filepath.Dir(abs); !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// Run blocks until ctx is canceled. It returns an error only when watching
// could not start.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.logger.Info("watching run tables",
		zap.Int("files", len(w.files)),
		zap.Duration("debounce", w.debounce))

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = make(map[string]bool)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(ev.Name)
			if !w.files[path] {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("run table changed", zap.String("path", path), zap.String("op", ev.Op.String()))
			pending[path] = true

			// ── (re)arm debounce ──
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-timerC:
			timerC = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			w.handler(ctx, changed)
		}
	}
}

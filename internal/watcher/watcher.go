// Package watcher reports settled changes under a directory tree.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a directory tree and hands out changes in batches once the
// tree has been quiet for the settle delay. Saving a file in an editor usually
// produces several writes; they arrive as one batch.
type Watcher struct {
	fs     *fsnotify.Watcher
	logger *slog.Logger
	opts   Options
}

// New creates a new file watcher.
func New(logger *slog.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{fs: fw, logger: logger, opts: opts}, nil
}

// Watch adds a directory and all of its subdirectories.
func (w *Watcher) Watch(root string) error {
	root = filepath.Clean(root)
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return fmt.Errorf("failed to access %s: %w", root, err)
			}
			w.logger.Warn("failed to access path", "path", p, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.opts.shouldIgnore(p) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			return fmt.Errorf("failed to add watch on %s: %w", p, err)
		}
		w.logger.Debug("added watch", "path", p)
		return nil
	})
}

// Run delivers batches to fn until ctx is cancelled or the watcher is closed.
// fn runs on the watcher goroutine; a slow fn delays the next batch.
func (w *Watcher) Run(ctx context.Context, fn func([]Event)) error {
	pending := make(map[string]EventType)
	timer := time.NewTimer(w.opts.SettleDelay)
	timer.Stop()
	defer timer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := make([]Event, 0, len(pending))
		for path, typ := range pending {
			batch = append(batch, Event{Type: typ, Path: path})
		}
		clear(pending)
		slices.SortFunc(batch, func(a, b Event) int { return strings.Compare(a.Path, b.Path) })
		fn(batch)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				flush()
				return nil
			}
			if w.handle(ev, pending) {
				timer.Reset(w.opts.SettleDelay)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			flush()
		}
	}
}

// handle records ev in pending and reports whether it was kept.
func (w *Watcher) handle(ev fsnotify.Event, pending map[string]EventType) bool {
	if w.opts.shouldIgnore(ev.Name) {
		return false
	}

	typ, ok := classify(ev.Op)
	if !ok {
		return false
	}

	// New directories are watched too; their files arrive as their own events.
	if typ == EventChanged && ev.Op.Has(fsnotify.Create) && isDir(ev.Name) {
		if err := w.Watch(ev.Name); err != nil {
			w.logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
		}
		return false
	}

	if !w.opts.wants(ev.Name) {
		return false
	}

	pending[ev.Name] = typ
	return true
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

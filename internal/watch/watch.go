// Package watch keeps the page store in step with a project directory on
// disk. Each burst of filesystem events is debounced into a single re-walk,
// and the store is reloaded only when the walked documents changed.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/vibe-studio/internal/walker"
)

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 250 * time.Millisecond

// SyncFunc receives the walked entries whenever they differ from the last
// sync.
type SyncFunc func(ctx context.Context, root string, entries []walker.Entry) error

// Watcher re-walks a directory tree after filesystem changes.
type Watcher struct {
	cfg      walker.Config
	debounce time.Duration
	onSync   SyncFunc
	log      logrus.FieldLogger

	fs *fsnotify.Watcher

	mu   sync.Mutex
	last string
}

// New creates a watcher for cfg.RootDir. Nothing is watched until Run.
func New(cfg walker.Config, debounce time.Duration, onSync SyncFunc, log logrus.FieldLogger) (*Watcher, error) {
	if onSync == nil {
		return nil, fmt.Errorf("watch: sync func is required")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}
	cfg.RootDir = root

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		debounce: debounce,
		onSync:   onSync,
		log:      log.WithField("component", "watch"),
		fs:       fsw,
	}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Root returns the absolute directory being watched.
func (w *Watcher) Root() string { return w.cfg.RootDir }

// addRecursive adds dir and all its walkable subdirectories.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return fmt.Errorf("watch: %w", err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && walker.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			return fmt.Errorf("watch: add %s: %w", p, err)
		}
		w.log.WithField("dir", p).Debug("watching directory")
		return nil
	})
}

// Sync walks the tree once and calls the sync func if the documents changed
// since the previous call. It reports whether the sync func ran.
func (w *Watcher) Sync(ctx context.Context) (bool, error) {
	entries, err := walker.Walk(w.cfg)
	if err != nil {
		return false, err
	}
	fp := walker.Fingerprint(entries)

	w.mu.Lock()
	unchanged := fp == w.last
	w.mu.Unlock()
	if unchanged {
		return false, nil
	}

	if err := w.onSync(ctx, w.cfg.RootDir, entries); err != nil {
		return false, err
	}

	w.mu.Lock()
	w.last = fp
	w.mu.Unlock()
	return true, nil
}

// Run performs an initial sync and then syncs after every debounced burst
// of events until ctx is cancelled. It closes the underlying watcher on
// return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	if _, err := w.Sync(ctx); err != nil {
		w.log.WithError(err).Warn("initial sync failed")
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !walker.SkipDir(info.Name()) {
					if err := w.addRecursive(event.Name); err != nil {
						w.log.WithError(err).Warn("watching new directory")
					}
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			w.log.WithFields(logrus.Fields{"path": event.Name, "op": event.Op.String()}).Debug("change detected")
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			synced, err := w.Sync(ctx)
			if err != nil {
				w.log.WithError(err).Warn("sync failed")
				continue
			}
			if synced {
				w.log.WithField("root", w.cfg.RootDir).Info("project reloaded from disk")
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

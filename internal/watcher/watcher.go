// Package watcher implements IndexWatcher: it observes filesystem events
// under a repository root and triggers indexIncremental at most once per
// configurable interval, coalescing bursts of events in between.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/codelens-dev/codelens/internal/discovery"
	"github.com/codelens-dev/codelens/internal/indexer"
	"github.com/codelens-dev/codelens/internal/lang"
)

// debounceTime is the quiet period after a burst of fsnotify events before a
// run is even considered; it only coalesces bursts, the interval below is
// what actually rate-limits runs.
const debounceTime = 500 * time.Millisecond

const maxDirectories = 1000
const maxDepth = 20

// IndexWatcher wraps an Indexer and drives indexIncremental off filesystem
// events.
type IndexWatcher struct {
	root       string
	ix         *indexer.Indexer
	interval   time.Duration
	extensions map[string]bool
	onIndex    func(*indexer.IncrementalSummary)
	onError    func(error)
	logger     *slog.Logger

	fsWatcher *fsnotify.Watcher

	ctx    context.Context
	cancel context.CancelFunc

	wg       sync.WaitGroup // tracks the in-flight indexIncremental run, if any
	doneCh   chan struct{}
	stopOnce sync.Once

	timerMu       sync.Mutex
	debounceTimer *time.Timer

	lastRunMu sync.Mutex
	lastRun   time.Time

	watchedDirs int
}

// New builds an IndexWatcher for root. interval defaults to 60s if <= 0.
// onIndex and onError may be nil.
func New(root string, ix *indexer.Indexer, registry *lang.Registry, interval time.Duration, onIndex func(*indexer.IncrementalSummary), onError func(error), logger *slog.Logger) (*IndexWatcher, error) {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	if onIndex == nil {
		onIndex = func(*indexer.IncrementalSummary) {}
	}
	if onError == nil {
		onError = func(error) {}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	exts := make(map[string]bool)
	for _, l := range registry.All() {
		for _, ext := range l.Extensions() {
			exts[ext] = true
		}
	}

	w := &IndexWatcher{
		root:       root,
		ix:         ix,
		interval:   interval,
		extensions: exts,
		onIndex:    onIndex,
		onError:    onError,
		logger:     logger,
		fsWatcher:  fsWatcher,
		doneCh:     make(chan struct{}),
	}

	if err := w.addDirectoriesRecursively(root, 0); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching in the background. ctx governs the watcher's
// lifetime in addition to explicit Stop calls.
func (w *IndexWatcher) Start(ctx context.Context) {
	w.ctx, w.cancel = context.WithCancel(ctx)
	go w.watch()
}

// Stop signals the watcher to shut down and blocks until both the event loop
// and any in-flight indexIncremental run have finished.
func (w *IndexWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		w.wg.Wait()
		err = w.fsWatcher.Close()
	})
	return err
}

func (w *IndexWatcher) watch() {
	defer close(w.doneCh)

	debounceCh := make(chan struct{}, 1)

	for {
		select {
		case <-w.ctx.Done():
			w.stopDebounceTimer()
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name, 0); err != nil {
						w.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
				}
			}
			if !w.shouldProcessEvent(event) {
				continue
			}
			w.resetDebounceTimer(debounceCh)

		case <-debounceCh:
			w.maybeRun(debounceCh)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

// maybeRun enforces the once-per-interval rate limit: if not enough time has
// passed since the last run, it reschedules itself instead of running
// immediately.
func (w *IndexWatcher) maybeRun(debounceCh chan struct{}) {
	w.lastRunMu.Lock()
	elapsed := time.Since(w.lastRun)
	if !w.lastRun.IsZero() && elapsed < w.interval {
		remaining := w.interval - elapsed
		w.lastRunMu.Unlock()
		w.timerMu.Lock()
		w.debounceTimer = time.AfterFunc(remaining, func() {
			select {
			case debounceCh <- struct{}{}:
			default:
			}
		})
		w.timerMu.Unlock()
		return
	}
	w.lastRun = time.Now()
	w.lastRunMu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		summary, err := w.ix.IndexIncremental(w.ctx)
		if err != nil {
			w.onError(err)
			return
		}
		w.onIndex(summary)
	}()
}

func (w *IndexWatcher) resetDebounceTimer(debounceCh chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		if !w.debounceTimer.Stop() {
			select {
			case <-debounceCh:
			default:
			}
		}
	}
	w.debounceTimer = time.AfterFunc(debounceTime, func() {
		select {
		case debounceCh <- struct{}{}:
		default:
		}
	})
}

func (w *IndexWatcher) stopDebounceTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}

func (w *IndexWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return w.extensions[filepath.Ext(event.Name)]
}

func (w *IndexWatcher) addDirectoriesRecursively(path string, depth int) error {
	if depth > maxDepth {
		return nil
	}
	if discovery.IsBlacklistedDir(filepath.Base(path)) {
		return nil
	}
	if w.watchedDirs >= maxDirectories {
		w.logger.Warn("directory watch limit reached, some directories will not be watched", "limit", maxDirectories)
		return nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	if err := w.fsWatcher.Add(path); err != nil {
		return err
	}
	w.watchedDirs++

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := w.addDirectoriesRecursively(filepath.Join(path, entry.Name()), depth+1); err != nil {
			w.logger.Warn("failed to watch subdirectory", "dir", entry.Name(), "error", err)
		}
	}
	return nil
}

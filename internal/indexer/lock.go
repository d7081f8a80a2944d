package indexer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/codelens-dev/codelens/internal/errs"
)

// lockFileName is the advisory lock inside the index directory that enforces
// the single-writer model: only one process may mutate the index at a time.
// Its holder is recorded in the lock file's contents for diagnostics
// (Indexer.Stats reports it).
const lockFileName = ".index.lock"

// writerLock serializes indexFull/indexIncremental/deleteIndex and
// IndexWatcher runs against one index directory.
type writerLock struct {
	path string
	fl   *flock.Flock
}

func newWriterLock(indexDir string) *writerLock {
	path := filepath.Join(indexDir, lockFileName)
	return &writerLock{path: path, fl: flock.New(path)}
}

// tryAcquire attempts a non-blocking exclusive lock, tagging the lock file
// with operation for diagnostics. Returns false if another writer holds it.
func (w *writerLock) tryAcquire(operation string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return false, errs.Wrap(errs.StoreError, "failed to create index directory", err)
	}
	ok, err := w.fl.TryLock()
	if err != nil {
		return false, errs.Wrap(errs.StoreError, "failed to acquire index lock", err)
	}
	if !ok {
		return false, nil
	}
	_ = os.WriteFile(w.path, []byte(fmt.Sprintf("pid=%d operation=%s", os.Getpid(), operation)), 0644)
	return true, nil
}

func (w *writerLock) release() error {
	if err := w.fl.Unlock(); err != nil {
		return errs.Wrap(errs.StoreError, "failed to release index lock", err)
	}
	return nil
}

// holder reads the diagnostic tag left by whoever currently (or most
// recently) held the lock, without itself acquiring it.
func (w *writerLock) holder() string {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return ""
	}
	return string(data)
}

// isHeld reports whether another process currently holds the lock, by
// attempting and immediately releasing a non-blocking acquisition.
func (w *writerLock) isHeld() bool {
	probe := flock.New(w.path)
	ok, err := probe.TryLock()
	if err != nil {
		return false
	}
	if ok {
		probe.Unlock()
		return false
	}
	return true
}

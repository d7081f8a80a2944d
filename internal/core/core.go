// Package core exposes indexing, search, and duplicate-detection as a
// single facade. It is the only layer the CLI (or any other adapter) calls
// into; it contains no indexing, search, or duplicate-detection logic of
// its own.
package core

import (
	"context"
	"time"

	"github.com/codelens-dev/codelens/internal/corectx"
	"github.com/codelens-dev/codelens/internal/duplicate"
	"github.com/codelens-dev/codelens/internal/indexer"
	"github.com/codelens-dev/codelens/internal/lang"
	"github.com/codelens-dev/codelens/internal/search"
	"github.com/codelens-dev/codelens/internal/watcher"
)

// IndexFull runs a full index of root.
func IndexFull(ctx context.Context, root string) (*indexer.FullSummary, error) {
	return IndexFullWithProgress(ctx, root, nil)
}

// IndexFullWithProgress runs a full index of root, invoking onProgress after
// each file is parsed (nil is a valid no-op hook).
func IndexFullWithProgress(ctx context.Context, root string, onProgress func(processed, total int)) (*indexer.FullSummary, error) {
	cc, err := corectx.Build(root)
	if err != nil {
		return nil, err
	}
	defer cc.Close()

	ix := indexer.New(cc.Root, cc.Config, lang.Default(), cc.Provider, cc.Store, cc.Logger)
	if onProgress != nil {
		ix.SetProgressHook(onProgress)
	}
	return ix.IndexFull(ctx)
}

// IndexIncremental reindexes only what changed since the last run.
func IndexIncremental(ctx context.Context, root string) (*indexer.IncrementalSummary, error) {
	cc, err := corectx.Build(root)
	if err != nil {
		return nil, err
	}
	defer cc.Close()

	ix := indexer.New(cc.Root, cc.Config, lang.Default(), cc.Provider, cc.Store, cc.Logger)
	return ix.IndexIncremental(ctx)
}

// VerifyIndex compares the stored index against the working tree without
// mutating anything.
func VerifyIndex(ctx context.Context, root string) (*indexer.VerifySummary, error) {
	cc, err := corectx.Build(root)
	if err != nil {
		return nil, err
	}
	defer cc.Close()

	ix := indexer.New(cc.Root, cc.Config, lang.Default(), cc.Provider, cc.Store, cc.Logger)
	return ix.VerifyIndex(ctx)
}

// Stats reports the current index's metadata and chunk breakdowns.
func Stats(ctx context.Context, root string) (*indexer.Stats, error) {
	cc, err := corectx.Build(root)
	if err != nil {
		return nil, err
	}
	defer cc.Close()

	ix := indexer.New(cc.Root, cc.Config, lang.Default(), cc.Provider, cc.Store, cc.Logger)
	return ix.Stats(ctx)
}

// DeleteIndex removes every indexed chunk from the store and deletes the
// index metadata; the index directory itself and the store file are kept.
func DeleteIndex(ctx context.Context, root string) error {
	cc, err := corectx.Build(root)
	if err != nil {
		return err
	}
	defer cc.Close()

	ix := indexer.New(cc.Root, cc.Config, lang.Default(), cc.Provider, cc.Store, cc.Logger)
	return ix.DeleteIndex(ctx)
}

// Search runs SearchPipeline against root's index.
func Search(ctx context.Context, root string, params search.Params) ([]search.Result, search.Summary, error) {
	cc, err := corectx.Build(root)
	if err != nil {
		return nil, search.Summary{}, err
	}
	defer cc.Close()

	sp := search.New(cc.Root, cc.Provider, cc.Store, cc.Logger)
	return sp.Search(ctx, params)
}

// DetectDuplicates runs DuplicateDetector against root's index.
func DetectDuplicates(ctx context.Context, root string, params duplicate.Params) (*duplicate.Result, error) {
	cc, err := corectx.Build(root)
	if err != nil {
		return nil, err
	}
	defer cc.Close()

	d := duplicate.New(cc.Store, lang.Default(), cc.Logger)
	return d.Detect(ctx, params)
}

// WatchHandle is the running watcher returned by StartWatch; callers must
// eventually call Stop, which blocks until any in-flight run finishes.
type WatchHandle struct {
	cc *corectx.Context
	iw *watcher.IndexWatcher
}

// StartWatch starts an IndexWatcher over root, triggering indexIncremental
// at most once per interval and coalescing filesystem event bursts.
func StartWatch(ctx context.Context, root string, interval time.Duration, onIndex func(*indexer.IncrementalSummary), onError func(error)) (*WatchHandle, error) {
	cc, err := corectx.Build(root)
	if err != nil {
		return nil, err
	}

	ix := indexer.New(cc.Root, cc.Config, lang.Default(), cc.Provider, cc.Store, cc.Logger)
	registry := lang.Default()

	iw, err := watcher.New(cc.Root, ix, registry, interval, onIndex, onError, cc.Logger)
	if err != nil {
		cc.Close()
		return nil, err
	}
	iw.Start(ctx)

	return &WatchHandle{cc: cc, iw: iw}, nil
}

// Stop blocks until any in-flight indexIncremental run finishes, then closes
// the underlying store handle.
func (h *WatchHandle) Stop() error {
	if err := h.iw.Stop(); err != nil {
		h.cc.Close()
		return err
	}
	return h.cc.Close()
}

// Package indexer implements full and incremental indexing, verification,
// stats, and deletion, all serialized against a single advisory lock so that
// only one writer touches the index at a time.
package indexer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/codelens-dev/codelens/internal/chunk"
	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/discovery"
	"github.com/codelens-dev/codelens/internal/embed"
	"github.com/codelens-dev/codelens/internal/errs"
	"github.com/codelens-dev/codelens/internal/indexmeta"
	"github.com/codelens-dev/codelens/internal/lang"
	"golang.org/x/sync/errgroup"
)

// Indexer drives parse → chunk → embed → store for one repository root.
type Indexer struct {
	root     string
	indexDir string
	cfg      *config.Config
	registry *lang.Registry
	chunker  *chunk.Chunker
	provider embed.Provider
	store    Store
	logger   *slog.Logger
	lock     *writerLock

	onProgress func(processed, total int)
}

// SetProgressHook registers a callback invoked after each file is parsed
// during IndexFull/IndexIncremental, for adapters that render a progress bar.
func (ix *Indexer) SetProgressHook(hook func(processed, total int)) {
	ix.onProgress = hook
}

// New builds an Indexer. logger defaults to slog.Default() when nil.
func New(root string, cfg *config.Config, registry *lang.Registry, provider embed.Provider, store Store, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	indexDir := filepath.Join(root, config.IndexDirName)
	return &Indexer{
		root:     root,
		indexDir: indexDir,
		cfg:      cfg,
		registry: registry,
		chunker:  chunk.New(registry, cfg.Chunking.MaxFileBytes, logger),
		provider: provider,
		store:    store,
		logger:   logger,
		lock:     newWriterLock(indexDir),
	}
}

// IndexDir returns the per-repository directory holding metadata and lock.
func (ix *Indexer) IndexDir() string { return ix.indexDir }

func (ix *Indexer) acquire(operation string) error {
	ok, err := ix.lock.tryAcquire(operation)
	if err != nil {
		return err
	}
	if !ok {
		return errs.New(errs.StoreError, "index is locked by another writer: "+ix.lock.holder())
	}
	return nil
}

func (ix *Indexer) release() {
	if err := ix.lock.release(); err != nil {
		ix.logger.Warn("failed to release index lock", "error", err)
	}
}

func (ix *Indexer) discoverFiles() ([]string, error) {
	fd, err := discovery.New(ix.root, ix.cfg.Paths.Include, ix.cfg.Paths.Exclude, ix.cfg.Paths.Whitelist)
	if err != nil {
		return nil, err
	}
	return fd.Discover()
}

func (ix *Indexer) workerCount() int {
	if ix.cfg.Indexing.ParseWorkerCount > 0 {
		return ix.cfg.Indexing.ParseWorkerCount
	}
	return runtime.NumCPU()
}

// parseResult is one file's outcome from the parse/hash/chunk phase.
type parseResult struct {
	path   string
	hash   string
	chunks []chunk.Chunk
	err    error
}

// parseFiles reads, hashes, and chunks each file with bounded CPU-bound
// concurrency. A per-file error never aborts the run.
func (ix *Indexer) parseFiles(ctx context.Context, paths []string) []parseResult {
	results := make([]parseResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workerCount())

	var processed atomic.Int64
	total := len(paths)

	for i, relPath := range paths {
		i, relPath := i, relPath
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = ix.parseOne(relPath)
			if ix.onProgress != nil {
				ix.onProgress(int(processed.Add(1)), total)
			}
			return nil
		})
	}
	_ = g.Wait() // per-file errors are carried in parseResult.err, not returned here
	return results
}

func (ix *Indexer) parseOne(relPath string) parseResult {
	absPath := filepath.Join(ix.root, relPath)
	content, err := os.ReadFile(absPath)
	if err != nil {
		return parseResult{path: relPath, err: err}
	}
	fileHash := hashFile(content)
	chunks := ix.chunker.ChunkFile(relPath, content)
	return parseResult{path: relPath, hash: fileHash, chunks: chunks}
}

// embedResults batches every chunk across all results through the provider
// and writes the resulting vectors back onto each chunk.
func (ix *Indexer) embedResults(ctx context.Context, results []parseResult) error {
	var texts []string
	var slots []*chunk.Chunk

	for ri := range results {
		if results[ri].err != nil {
			continue
		}
		for ci := range results[ri].chunks {
			texts = append(texts, results[ri].chunks[ci].Content)
			slots = append(slots, &results[ri].chunks[ci])
		}
	}
	if len(texts) == 0 {
		return nil
	}

	vectors, err := embed.EmbedBatched(ctx, ix.provider, texts, ix.cfg.Indexing.EmbedBatchSize, ix.cfg.Indexing.EmbedConcurrency, nil)
	if err != nil {
		return errs.Wrap(errs.EmbedderError, "failed to embed chunks", err)
	}
	for i, v := range vectors {
		slots[i].Embedding = v
	}
	return nil
}

// writeResults deletes any existing chunks for each file then upserts the
// newly parsed set, keeping each file's replacement atomic at the store layer.
func (ix *Indexer) writeResults(ctx context.Context, results []parseResult) (chunks int, errCount int, err error) {
	for _, r := range results {
		if r.err != nil {
			errCount++
			ix.logger.Warn("skipping file that failed to parse", "file", r.path, "error", r.err)
			continue
		}
		if delErr := ix.store.DeleteByFile(ctx, r.path); delErr != nil {
			return chunks, errCount, delErr
		}
		if len(r.chunks) == 0 {
			continue
		}
		if upErr := ix.store.UpsertChunks(ctx, r.chunks); upErr != nil {
			return chunks, errCount, upErr
		}
		chunks += len(r.chunks)
	}
	return chunks, errCount, nil
}

// IndexFull performs a complete reindex of every discovered file.
func (ix *Indexer) IndexFull(ctx context.Context) (*FullSummary, error) {
	start := time.Now()
	if err := ix.acquire("indexFull"); err != nil {
		return nil, err
	}
	defer ix.release()

	paths, err := ix.discoverFiles()
	if err != nil {
		return nil, err
	}

	results := ix.parseFiles(ctx, paths)
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.Cancelled, "indexFull cancelled", err)
	}
	if err := ix.embedResults(ctx, results); err != nil {
		return nil, err
	}

	chunkCount, errCount, err := ix.writeResults(ctx, results)
	if err != nil {
		return nil, errs.Wrap(errs.StoreError, "failed to write chunks", err)
	}

	// Drop chunks of files recorded by a previous index that are no longer
	// discovered, so the store holds no chunks outside the new metadata.
	if prev, ok, loadErr := indexmeta.Load(ix.indexDir); loadErr == nil && ok {
		current := make(map[string]bool, len(paths))
		for _, p := range paths {
			current[p] = true
		}
		for path := range prev.FileHashes {
			if !current[path] {
				if delErr := ix.store.DeleteByFile(ctx, path); delErr != nil {
					return nil, errs.Wrap(errs.StoreError, "failed to delete chunks of removed file", delErr)
				}
			}
		}
	}

	meta := indexmeta.New(ix.provider.ModelID(), ix.provider.ProviderName(), ix.provider.Dim())
	for _, r := range results {
		if r.err != nil {
			continue
		}
		meta.FileHashes[r.path] = indexmeta.FileEntry{FileHash: r.hash, ChunkIDs: chunkIDs(r.chunks)}
	}
	if err := meta.Save(ix.indexDir); err != nil {
		return nil, err
	}

	return &FullSummary{
		Files:      len(paths) - errCount,
		Chunks:     chunkCount,
		Errors:     errCount,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// IndexIncremental reindexes only files whose hash changed since the last
// run, classifying each discovered path as added, changed, unchanged, or
// removed.
func (ix *Indexer) IndexIncremental(ctx context.Context) (*IncrementalSummary, error) {
	start := time.Now()
	if err := ix.acquire("indexIncremental"); err != nil {
		return nil, err
	}
	defer ix.release()

	meta, ok, err := indexmeta.Load(ix.indexDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.New(errs.NoIndex, "no index found; run indexFull first")
	}
	if err := meta.CheckSchema(); err != nil {
		return nil, err
	}
	if err := meta.CheckModel(ix.provider.ModelID(), ix.provider.Dim()); err != nil {
		return nil, err
	}

	paths, err := ix.discoverFiles()
	if err != nil {
		return nil, err
	}

	discovered := make(map[string]string, len(paths))
	var hashErrCount int
	for _, relPath := range paths {
		content, readErr := os.ReadFile(filepath.Join(ix.root, relPath))
		if readErr != nil {
			hashErrCount++
			ix.logger.Warn("skipping unreadable file", "file", relPath, "error", readErr)
			continue
		}
		discovered[relPath] = hashFile(content)
	}

	previous := make(map[string]string, len(meta.FileHashes))
	for path, entry := range meta.FileHashes {
		previous[path] = entry.FileHash
	}

	cs := classify(discovered, previous)

	for _, path := range cs.Removed {
		if err := ix.store.DeleteByFile(ctx, path); err != nil {
			return nil, errs.Wrap(errs.StoreError, "failed to delete removed file", err)
		}
		delete(meta.FileHashes, path)
	}

	toProcess := append(append([]string{}, cs.Added...), cs.Modified...)
	results := ix.parseFiles(ctx, toProcess)
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.Cancelled, "indexIncremental cancelled", err)
	}
	if err := ix.embedResults(ctx, results); err != nil {
		return nil, err
	}
	chunkCount, errCount, err := ix.writeResults(ctx, results)
	if err != nil {
		return nil, errs.Wrap(errs.StoreError, "failed to write chunks", err)
	}

	for _, r := range results {
		if r.err != nil {
			continue
		}
		meta.FileHashes[r.path] = indexmeta.FileEntry{FileHash: r.hash, ChunkIDs: chunkIDs(r.chunks)}
	}

	if err := meta.Save(ix.indexDir); err != nil {
		return nil, err
	}

	return &IncrementalSummary{
		Files:      len(toProcess) - errCount,
		Chunks:     chunkCount,
		Skipped:    len(cs.Unchanged),
		Removed:    len(cs.Removed),
		Errors:     errCount + hashErrCount,
		DurationMs: time.Since(start).Milliseconds(),
		Mode:       "incremental",
	}, nil
}

// VerifyIndex recomputes fileHashes only, without chunking or embedding,
// and never mutates the store.
func (ix *Indexer) VerifyIndex(ctx context.Context) (*VerifySummary, error) {
	meta, ok, err := indexmeta.Load(ix.indexDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.New(errs.NoIndex, "no index found; run indexFull first")
	}

	paths, err := ix.discoverFiles()
	if err != nil {
		return nil, err
	}

	discovered := make(map[string]string, len(paths))
	for _, relPath := range paths {
		content, readErr := os.ReadFile(filepath.Join(ix.root, relPath))
		if readErr != nil {
			continue
		}
		discovered[relPath] = hashFile(content)
	}

	previous := make(map[string]string, len(meta.FileHashes))
	for path, entry := range meta.FileHashes {
		previous[path] = entry.FileHash
	}

	cs := classify(discovered, previous)

	// "removed" mirrors "missing" here: verifyIndex never mutates the store,
	// so the only removal it can report is the same set of vanished files
	// indexIncremental would delete.
	return &VerifySummary{
		Indexed:      len(meta.FileHashes),
		Changed:      len(cs.Modified),
		Missing:      len(cs.Removed),
		Removed:      len(cs.Removed),
		ChangedPaths: capPaths(cs.Modified),
		MissingPaths: capPaths(cs.Removed),
	}, nil
}

// Stats returns the IndexMetadata snapshot plus chunk breakdowns.
func (ix *Indexer) Stats(ctx context.Context) (*Stats, error) {
	meta, ok, err := indexmeta.Load(ix.indexDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.New(errs.NoIndex, "no index found; run indexFull first")
	}

	s := &Stats{
		EmbedModelID:       meta.EmbedModelID,
		EmbedProvider:      meta.EmbedProvider,
		EmbedDim:           meta.EmbedDim,
		SchemaVersion:      meta.SchemaVersion,
		Files:              len(meta.FileHashes),
		ChunksByLanguage:   make(map[string]int),
		ChunksBySymbolType: make(map[string]int),
	}

	err = ix.store.IterateChunks(ctx, nil, func(c chunk.Chunk) error {
		s.TotalChunks++
		s.ChunksByLanguage[string(c.Language)]++
		s.ChunksBySymbolType[string(c.SymbolType)]++
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.StoreError, "failed to iterate chunks for stats", err)
	}

	s.LockHeld = ix.lock.isHeld()
	if s.LockHeld {
		s.LockHolder = ix.lock.holder()
	}

	return s, nil
}

// DeleteIndex removes every chunk and the metadata document for this
// repository.
func (ix *Indexer) DeleteIndex(ctx context.Context) error {
	if err := ix.acquire("deleteIndex"); err != nil {
		return err
	}
	defer ix.release()

	meta, ok, err := indexmeta.Load(ix.indexDir)
	if err != nil {
		return err
	}
	if ok {
		for path := range meta.FileHashes {
			if err := ix.store.DeleteByFile(ctx, path); err != nil {
				return errs.Wrap(errs.StoreError, "failed to delete chunks during deleteIndex", err)
			}
		}
	}

	return indexmeta.Delete(ix.indexDir)
}

func chunkIDs(chunks []chunk.Chunk) []string {
	if len(chunks) == 0 {
		return nil
	}
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	return ids
}

// Package search implements the semantic search pipeline: structural
// pre-filtering through VectorStore, semantic KNN, an optional scoped regex
// post-filter, similarity scoring, optional reranking, and dedup caps.
package search

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/embed"
	"github.com/codelens-dev/codelens/internal/errs"
	"github.com/codelens-dev/codelens/internal/indexmeta"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

// Pipeline executes searches against one repository's index.
type Pipeline struct {
	root     string
	indexDir string
	provider embed.Provider
	store    *vectorstore.Store
	logger   *slog.Logger
}

// New builds a Pipeline. logger defaults to slog.Default() when nil.
func New(root string, provider embed.Provider, store *vectorstore.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		root:     root,
		indexDir: filepath.Join(root, config.IndexDirName),
		provider: provider,
		store:    store,
		logger:   logger,
	}
}

type candidate struct {
	hit        vectorstore.SearchResult
	similarity float64
	rerank     *float64
}

// Search runs the full pipeline and returns matches ordered by relevance.
func (sp *Pipeline) Search(ctx context.Context, p Params) ([]Result, Summary, error) {
	p.Normalize()

	if strings.TrimSpace(p.Query) == "" {
		return nil, Summary{}, errs.New(errs.InvalidInput, "query must not be empty")
	}

	meta, ok, err := indexmeta.Load(sp.indexDir)
	if err != nil {
		return nil, Summary{}, err
	}
	if !ok {
		return nil, Summary{}, errs.New(errs.NoIndex, "no index found; run indexFull first")
	}
	if err := meta.CheckSchema(); err != nil {
		return nil, Summary{}, err
	}
	if err := meta.CheckModel(sp.provider.ModelID(), sp.provider.Dim()); err != nil {
		return nil, Summary{}, err
	}

	var patternRe *regexp.Regexp
	if p.Pattern != "" {
		patternRe, err = regexp.Compile(p.Pattern)
		if err != nil {
			return nil, Summary{}, errs.Wrap(errs.InvalidInput, "invalid search pattern", err)
		}
	}

	var includeGlob glob.Glob
	if p.Include != "" {
		includeGlob, err = glob.Compile(p.Include, '/')
		if err != nil {
			return nil, Summary{}, errs.Wrap(errs.InvalidInput, "invalid include glob", err)
		}
	}

	filter := buildFilter(p)

	queryVectors, err := sp.provider.Embed(ctx, []string{p.Query})
	if err != nil {
		return nil, Summary{}, errs.Wrap(errs.EmbedderError, "failed to embed query", err)
	}

	multiplier := 2
	if p.Pattern != "" {
		multiplier = 3
	}
	k := p.Limit * multiplier

	hits, err := sp.store.Search(ctx, queryVectors[0], k, filter)
	if err != nil {
		return nil, Summary{}, err
	}

	if err := ctx.Err(); err != nil {
		return nil, Summary{}, errs.Wrap(errs.Cancelled, "search cancelled", err)
	}

	if includeGlob != nil {
		filtered := hits[:0]
		for _, h := range hits {
			if includeGlob.Match(h.Chunk.File) {
				filtered = append(filtered, h)
			}
		}
		hits = filtered
	}

	if patternRe != nil {
		hits, err = sp.filterByPattern(hits, patternRe)
		if err != nil {
			return nil, Summary{}, err
		}
	}

	candidates := make([]candidate, 0, len(hits))
	for _, h := range hits {
		sim := 1 - h.Distance
		if sim < 0 {
			sim = 0
		}
		if sim > 1 {
			sim = 1
		}
		candidates = append(candidates, candidate{hit: h, similarity: sim})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})

	if p.Rerank {
		candidates, err = sp.rerank(ctx, p.Query, candidates, p.Limit)
		if err != nil {
			return nil, Summary{}, err
		}
	}

	results := applyMinScoreAndDedup(candidates, p.MinScore, p.MaxPerFile, p.MaxPerSymbol, p.Limit)

	return results, Summary{Matches: len(results), Indexed: len(meta.FileHashes)}, nil
}

// rerank calls the provider's optional Reranker capability on the top
// min(max(limit,20),100,n) candidates, reorders those by the returned score,
// and appends the remainder in their existing semantic order. If the
// provider doesn't implement Reranker, it is a no-op.
func (sp *Pipeline) rerank(ctx context.Context, query string, candidates []candidate, limit int) ([]candidate, error) {
	reranker, ok := sp.provider.(embed.Reranker)
	if !ok {
		return candidates, nil
	}

	n := len(candidates)
	top := limit
	if top < 20 {
		top = 20
	}
	if top > 100 {
		top = 100
	}
	if top > n {
		top = n
	}
	if top == 0 {
		return candidates, nil
	}

	texts := make([]string, top)
	for i := 0; i < top; i++ {
		texts[i] = candidates[i].hit.Chunk.Content
	}

	scores, err := reranker.Rerank(ctx, query, texts)
	if err != nil {
		return nil, errs.Wrap(errs.EmbedderError, "failed to rerank candidates", err)
	}

	head := make([]candidate, top)
	copy(head, candidates[:top])
	for i := range head {
		s := float64(scores[i])
		head[i].rerank = &s
	}
	sort.SliceStable(head, func(i, j int) bool {
		return *head[i].rerank > *head[j].rerank
	})

	reordered := make([]candidate, 0, n)
	reordered = append(reordered, head...)
	reordered = append(reordered, candidates[top:]...)
	return reordered, nil
}

// filterByPattern runs patternRe against the files referenced by hits,
// reading each referenced file at most once, and keeps only hits whose
// [startLine, endLine] intersects a match line.
func (sp *Pipeline) filterByPattern(hits []vectorstore.SearchResult, patternRe *regexp.Regexp) ([]vectorstore.SearchResult, error) {
	matchLines := make(map[string]map[int]bool)

	kept := hits[:0]
	for _, h := range hits {
		lines, ok := matchLines[h.Chunk.File]
		if !ok {
			lines = sp.matchedLines(h.Chunk.File, patternRe)
			matchLines[h.Chunk.File] = lines
		}
		if rangeIntersects(lines, h.Chunk.StartLine, h.Chunk.EndLine) {
			kept = append(kept, h)
		}
	}
	return kept, nil
}

func (sp *Pipeline) matchedLines(relPath string, patternRe *regexp.Regexp) map[int]bool {
	lines := make(map[int]bool)
	content, err := os.ReadFile(filepath.Join(sp.root, relPath))
	if err != nil {
		sp.logger.Warn("failed to read file for pattern filter", "file", relPath, "error", err)
		return lines
	}
	for i, line := range bytes.Split(content, []byte("\n")) {
		if patternRe.Match(line) {
			lines[i+1] = true
		}
	}
	return lines
}

func rangeIntersects(lines map[int]bool, start, end int) bool {
	for l := start; l <= end; l++ {
		if lines[l] {
			return true
		}
	}
	return false
}

// applyMinScoreAndDedup drops candidates below minScore, then walks the
// ordered list keeping a result only while its file and symbolName counts
// stay below the configured caps, finally truncating to limit.
func applyMinScoreAndDedup(candidates []candidate, minScore float64, maxPerFile, maxPerSymbol, limit int) []Result {
	fileCounts := make(map[string]int)
	symbolCounts := make(map[string]int)

	results := make([]Result, 0, limit)
	for _, c := range candidates {
		if c.similarity < minScore {
			continue
		}
		file := c.hit.Chunk.File
		symbol := c.hit.Chunk.SymbolName
		if fileCounts[file] >= maxPerFile {
			continue
		}
		if symbol != "" && symbolCounts[symbol] >= maxPerSymbol {
			continue
		}

		fileCounts[file]++
		if symbol != "" {
			symbolCounts[symbol]++
		}

		results = append(results, toResult(c))
		if len(results) >= limit {
			break
		}
	}
	return results
}

func toResult(c candidate) Result {
	ch := c.hit.Chunk
	return Result{
		File:          ch.File,
		StartLine:     ch.StartLine,
		EndLine:       ch.EndLine,
		SymbolName:    ch.SymbolName,
		SymbolType:    string(ch.SymbolType),
		Complexity:    ch.Complexity,
		ParentScope:   ch.ParentScope,
		IsExported:    ch.IsExported,
		Content:       ch.Content,
		SemanticScore: c.similarity,
		RerankScore:   c.rerank,
	}
}

package duplicate

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/google/uuid"

	"github.com/codelens-dev/codelens/internal/chunk"
	"github.com/codelens-dev/codelens/internal/errs"
	"github.com/codelens-dev/codelens/internal/lang"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

// Store is the read access DuplicateDetector needs from a VectorStore.
type Store interface {
	IterateChunks(ctx context.Context, filter *vectorstore.Filter, visit func(chunk.Chunk) error) error
}

// testFilePathRe matches common test-file path conventions across the
// registry's supported languages.
var testFilePathRe = regexp.MustCompile(`(?i)(_test\.[a-z]+$|\.test\.[a-z]+$|\.spec\.[a-z]+$|(^|/)tests?/)`)

// Detector clusters near-duplicate chunks and ranks the resulting groups.
type Detector struct {
	store    Store
	registry *lang.Registry
	logger   *slog.Logger
}

// New builds a Detector. logger defaults to slog.Default() when nil.
func New(store Store, registry *lang.Registry, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{store: store, registry: registry, logger: logger}
}

// Detect clusters near-duplicate chunks by embedding similarity, rejects
// groups that fail the requested scope rules, and ranks what remains by
// estimated impact.
func (d *Detector) Detect(ctx context.Context, p Params) (*Result, error) {
	p.Normalize()

	candidates, err := d.collectCandidates(ctx, p)
	if err != nil {
		return nil, err
	}

	uf := newUnionFind(len(candidates))
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if ctx.Err() != nil {
				return nil, errs.Wrap(errs.Cancelled, "duplicate detection cancelled", ctx.Err())
			}
			sim := cosineSimilarity(candidates[i].chunk.Embedding, candidates[j].chunk.Embedding)
			if sim >= p.Thresholds.Low {
				uf.union(i, j)
			}
		}
	}

	var accepted, acceptable []Group
	patterns := AcceptablePatterns()

	for _, members := range uf.groups() {
		if len(members) < 2 {
			continue
		}
		group := buildGroup(candidates, members, p.Thresholds)
		if rejectGroup(candidates, members, p) {
			continue
		}

		if p.IgnoreAcceptablePatterns && isAcceptableGroup(candidates, members, patterns) {
			acceptable = append(acceptable, group)
			continue
		}
		accepted = append(accepted, group)
	}

	if boolOrDefault(p.RankByImpact, true) {
		rankByImpact(accepted)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		if accepted[i].Score != accepted[j].Score {
			return accepted[i].Score > accepted[j].Score
		}
		return accepted[i].TotalLines > accepted[j].TotalLines
	})

	if len(accepted) > p.Limit {
		accepted = accepted[:p.Limit]
	}

	summary := Summary{}
	filesAffected := make(map[string]bool)
	for _, g := range accepted {
		summary.TotalDuplicates++
		summary.TotalSavings += g.EstimatedSavings
		for _, inst := range g.Instances {
			filesAffected[inst.File] = true
		}
	}
	summary.FilesAffected = len(filesAffected)

	return &Result{Summary: summary, Duplicates: accepted, AcceptableDuplicates: acceptable}, nil
}

type candidateChunk struct {
	chunk      chunk.Chunk
	normalized string
}

func (d *Detector) collectCandidates(ctx context.Context, p Params) ([]candidateChunk, error) {
	scopeSet := make(map[chunk.SymbolType]bool, len(p.ScopeFilter))
	for _, st := range p.ScopeFilter {
		scopeSet[st] = true
	}

	var candidates []candidateChunk
	err := d.store.IterateChunks(ctx, nil, func(c chunk.Chunk) error {
		if !scopeSet[c.SymbolType] {
			return nil
		}
		if c.EndLine-c.StartLine+1 < p.MinLines {
			return nil
		}
		if c.Complexity < p.MinComplexity {
			return nil
		}
		if p.ExcludePattern != "" {
			matched, err := filepath.Match(p.ExcludePattern, c.File)
			if err == nil && matched {
				return nil
			}
		}

		normalized := c.Content
		if boolOrDefault(p.NormalizeIdentifiers, true) {
			reserved := map[string]bool{}
			if support, ok := d.registry.Lookup(c.File); ok {
				reserved = support.ReservedWords()
			}
			normalized = normalizeIdentifiers(c.Content, reserved)
		}

		candidates = append(candidates, candidateChunk{chunk: c, normalized: normalized})
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.StoreError, "failed to iterate chunks for duplicate detection", err)
	}
	return candidates, nil
}

func buildGroup(candidates []candidateChunk, members []int, thresholds Thresholds) Group {
	minSim := 1.0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			sim := cosineSimilarity(candidates[members[i]].chunk.Embedding, candidates[members[j]].chunk.Embedding)
			if sim < minSim {
				minSim = sim
			}
		}
	}

	instances := make([]Instance, 0, len(members))
	totalLines := 0
	totalComplexity := 0
	for _, idx := range members {
		c := candidates[idx].chunk
		lines := c.EndLine - c.StartLine + 1
		instances = append(instances, Instance{
			File:       c.File,
			StartLine:  c.StartLine,
			EndLine:    c.EndLine,
			SymbolName: c.SymbolName,
			Complexity: c.Complexity,
		})
		totalLines += lines
		totalComplexity += c.Complexity
	}

	fileCount := countFiles(instances)

	group := Group{
		ID:            uuid.NewString(),
		Level:         thresholds.level(minSim),
		MinSimilarity: minSim,
		Instances:     instances,
		TotalLines:    totalLines,
		AvgComplexity: float64(totalComplexity) / float64(len(members)),
		FilesAffected: fileCount,
	}

	maxInstanceLines := 0
	for _, inst := range instances {
		if l := inst.EndLine - inst.StartLine + 1; l > maxInstanceLines {
			maxInstanceLines = l
		}
	}
	group.EstimatedSavings = totalLines - maxInstanceLines

	return group
}

// countFiles returns the number of distinct files an instance set touches.
func countFiles(instances []Instance) int {
	seen := make(map[string]bool, len(instances))
	for _, inst := range instances {
		seen[inst.File] = true
	}
	return len(seen)
}

func rejectGroup(candidates []candidateChunk, members []int, p Params) bool {
	files := make(map[string]bool)
	anyExported := false
	allTests := true
	for _, idx := range members {
		c := candidates[idx].chunk
		files[c.File] = true
		if c.IsExported {
			anyExported = true
		}
		if !testFilePathRe.MatchString(c.File) {
			allTests = false
		}
	}

	if p.CrossFileOnly && len(files) < 2 {
		return true
	}
	if p.OnlyExported && !anyExported {
		return true
	}
	if p.IgnoreTests && allTests {
		return true
	}
	return false
}

func isAcceptableGroup(candidates []candidateChunk, members []int, patterns []AcceptablePattern) bool {
	for _, idx := range members {
		if !matchesAcceptablePattern(candidates[idx].normalized, patterns) {
			return false
		}
	}
	return len(members) > 0
}

// rankByImpact scores each group as totalLines × avgComplexity × fileCount.
func rankByImpact(groups []Group) {
	for i := range groups {
		complexity := groups[i].AvgComplexity
		if complexity <= 0 {
			complexity = 1
		}
		groups[i].Score = float64(groups[i].TotalLines) * complexity * float64(groups[i].FilesAffected)
	}
}


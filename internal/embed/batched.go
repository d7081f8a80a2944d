package embed

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BatchProgress reports embedding progress for CLI progress bars.
type BatchProgress struct {
	BatchIndex      int
	TotalBatches    int
	ProcessedChunks int
	TotalChunks     int
}

// EmbedBatched splits texts into batches of batchSize and embeds them with up
// to concurrency batches in flight at once, preserving input order in the
// result. progressCh, if non-nil, receives one BatchProgress per completed
// batch (batches may complete out of order; BatchIndex reflects submission
// order, not completion order).
func EmbedBatched(
	ctx context.Context,
	provider Provider,
	texts []string,
	batchSize, concurrency int,
	progressCh chan<- BatchProgress,
) ([][]float32, error) {
	total := len(texts)
	if total == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = total
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	numBatches := (total + batchSize - 1) / batchSize
	results := make([][]float32, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for batchIdx := 0; batchIdx < numBatches; batchIdx++ {
		batchIdx := batchIdx
		start := batchIdx * batchSize
		end := start + batchSize
		if end > total {
			end = total
		}

		g.Go(func() error {
			batchEmbeddings, err := provider.Embed(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("batch %d/%d failed: %w", batchIdx+1, numBatches, err)
			}
			for i, emb := range batchEmbeddings {
				results[start+i] = emb
			}
			if progressCh != nil {
				select {
				case progressCh <- BatchProgress{
					BatchIndex:      batchIdx + 1,
					TotalBatches:    numBatches,
					ProcessedChunks: end,
					TotalChunks:     total,
				}:
				case <-gctx.Done():
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

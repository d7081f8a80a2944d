package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/codelens-dev/codelens/internal/core"
)

var (
	incrementalFlag bool
	quietFlag       bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the repository for semantic search",
	Long: `Index parses source files, extracts chunks, generates embeddings, and
stores them in the repository's local vector store.

By default this runs a full reindex. Pass --incremental to only process
files that changed since the last run.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&incrementalFlag, "incremental", "i", false, "only reindex files that changed since the last run")
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "disable the progress bar")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\ninterrupted, cancelling index run...")
		cancel()
	}()

	root, err := repoRoot(cmd)
	if err != nil {
		return err
	}

	if incrementalFlag {
		summary, err := core.IndexIncremental(ctx, root)
		if err != nil {
			return err
		}
		fmt.Printf("indexed %d files, %d chunks, %d skipped, %d removed (%dms)\n",
			summary.Files, summary.Chunks, summary.Skipped, summary.Removed, summary.DurationMs)
		return nil
	}

	var bar *progressbar.ProgressBar
	onProgress := func(processed, total int) {
		if quietFlag {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("indexing"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
			)
		}
		bar.Set(processed)
	}

	summary, err := core.IndexFullWithProgress(ctx, root, onProgress)
	if err != nil {
		return err
	}
	if bar != nil {
		bar.Finish()
	}
	fmt.Printf("indexed %d files, %d chunks, %d errors (%dms)\n",
		summary.Files, summary.Chunks, summary.Errors, summary.DurationMs)
	return nil
}

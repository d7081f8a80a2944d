package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codelens-dev/codelens/internal/core"
	"github.com/codelens-dev/codelens/internal/indexer"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the repository and reindex incrementally on changes",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 60*time.Second, "minimum time between incremental reindex runs")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, err := repoRoot(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	onIndex := func(s *indexer.IncrementalSummary) {
		fmt.Printf("reindexed: %d files, %d chunks, %d removed (%dms)\n", s.Files, s.Chunks, s.Removed, s.DurationMs)
	}
	onError := func(err error) {
		fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
	}

	handle, err := core.StartWatch(ctx, root, watchInterval, onIndex, onError)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nstopping watch...")
	cancel()
	return handle.Stop()
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelens-dev/codelens/internal/core"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the current index's metadata and chunk breakdowns",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	root, err := repoRoot(cmd)
	if err != nil {
		return err
	}

	s, err := core.Stats(context.Background(), root)
	if err != nil {
		return err
	}

	fmt.Printf("model: %s (%s, dim=%d)\n", s.EmbedModelID, s.EmbedProvider, s.EmbedDim)
	fmt.Printf("schema: %s\n", s.SchemaVersion)
	fmt.Printf("files: %d, chunks: %d\n", s.Files, s.TotalChunks)
	for lang, count := range s.ChunksByLanguage {
		fmt.Printf("  %s: %d\n", lang, count)
	}
	if s.LockHeld {
		fmt.Printf("lock held by: %s\n", s.LockHolder)
	}
	return nil
}

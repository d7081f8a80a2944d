package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codelens-dev/codelens/internal/core"
	"github.com/codelens-dev/codelens/internal/duplicate"
)

var (
	dupMinLines      int
	dupMinComplexity int
	dupCrossFileOnly bool
	dupOnlyExported  bool
	dupIgnoreTests   bool
	dupExclude       string
	dupLimit         int
	dupJSON          bool
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Find groups of near-duplicate chunks, ranked by impact",
	RunE:  runDuplicates,
}

func init() {
	rootCmd.AddCommand(duplicatesCmd)
	duplicatesCmd.Flags().IntVar(&dupMinLines, "min-lines", 10, "minimum chunk length to consider")
	duplicatesCmd.Flags().IntVar(&dupMinComplexity, "min-complexity", 0, "minimum chunk complexity to consider")
	duplicatesCmd.Flags().BoolVar(&dupCrossFileOnly, "cross-file-only", false, "only report groups spanning multiple files")
	duplicatesCmd.Flags().BoolVar(&dupOnlyExported, "only-exported", false, "only report groups with at least one exported member")
	duplicatesCmd.Flags().BoolVar(&dupIgnoreTests, "ignore-tests", false, "drop groups entirely contained in test files")
	duplicatesCmd.Flags().StringVar(&dupExclude, "exclude", "", "glob pattern to exclude from consideration")
	duplicatesCmd.Flags().IntVar(&dupLimit, "limit", 50, "maximum groups to return")
	duplicatesCmd.Flags().BoolVar(&dupJSON, "json", false, "print results as JSON")
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	root, err := repoRoot(cmd)
	if err != nil {
		return err
	}

	params := duplicate.Params{
		MinLines:       dupMinLines,
		MinComplexity:  dupMinComplexity,
		CrossFileOnly:  dupCrossFileOnly,
		OnlyExported:   dupOnlyExported,
		IgnoreTests:    dupIgnoreTests,
		ExcludePattern: dupExclude,
		Limit:          dupLimit,
	}

	result, err := core.DetectDuplicates(context.Background(), root, params)
	if err != nil {
		return err
	}

	if dupJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("%d duplicate groups across %d files, ~%d lines saveable\n\n",
		result.Summary.TotalDuplicates, result.Summary.FilesAffected, result.Summary.TotalSavings)
	for _, g := range result.Duplicates {
		fmt.Printf("[%s] %d instances, %d lines, score %.1f\n", g.Level, len(g.Instances), g.TotalLines, g.Score)
		for _, inst := range g.Instances {
			fmt.Printf("  %s:%d-%d %s\n", inst.File, inst.StartLine, inst.EndLine, inst.SymbolName)
		}
	}
	return nil
}

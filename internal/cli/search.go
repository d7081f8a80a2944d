package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codelens-dev/codelens/internal/core"
	"github.com/codelens-dev/codelens/internal/search"
)

var (
	searchLimit        int
	searchPattern      string
	searchInclude      string
	searchSymbolType   string
	searchLanguage     string
	searchMinScore     float64
	searchMaxPerFile   int
	searchMaxPerSymbol int
	searchRerank       bool
	searchJSON         bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Semantic search over the repository's index",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum results")
	searchCmd.Flags().StringVar(&searchPattern, "pattern", "", "regex, scoped to files matched by semantic search")
	searchCmd.Flags().StringVar(&searchInclude, "include", "", "glob filter on file path")
	searchCmd.Flags().StringVar(&searchSymbolType, "symbol-type", "", "filter by symbol type")
	searchCmd.Flags().StringVar(&searchLanguage, "language", "", "filter by language")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "drop results below this similarity")
	searchCmd.Flags().IntVar(&searchMaxPerFile, "max-per-file", 1, "cap results per file")
	searchCmd.Flags().IntVar(&searchMaxPerSymbol, "max-per-symbol", 1, "cap results per symbol name")
	searchCmd.Flags().BoolVar(&searchRerank, "rerank", false, "apply the provider's optional reranker")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	root, err := repoRoot(cmd)
	if err != nil {
		return err
	}

	params := search.Params{
		Query:        args[0],
		Limit:        searchLimit,
		Pattern:      searchPattern,
		Include:      searchInclude,
		SymbolType:   searchSymbolType,
		Language:     searchLanguage,
		MinScore:     searchMinScore,
		MaxPerFile:   searchMaxPerFile,
		MaxPerSymbol: searchMaxPerSymbol,
		Rerank:       searchRerank,
	}

	results, summary, err := core.Search(context.Background(), root, params)
	if err != nil {
		return err
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Summary search.Summary  `json:"summary"`
			Results []search.Result `json:"results"`
		}{summary, results})
	}

	fmt.Printf("%d matches (index covers %d files)\n\n", summary.Matches, summary.Indexed)
	for _, r := range results {
		fmt.Printf("%s:%d-%d  %s  (score %.3f)\n", r.File, r.StartLine, r.EndLine, r.SymbolName, r.SemanticScore)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelens-dev/codelens/internal/core"
)

var deleteIndexCmd = &cobra.Command{
	Use:   "delete-index",
	Short: "Delete the repository's index",
	RunE:  runDeleteIndex,
}

func init() {
	rootCmd.AddCommand(deleteIndexCmd)
}

func runDeleteIndex(cmd *cobra.Command, args []string) error {
	root, err := repoRoot(cmd)
	if err != nil {
		return err
	}

	if err := core.DeleteIndex(context.Background(), root); err != nil {
		return err
	}
	fmt.Println("index deleted")
	return nil
}

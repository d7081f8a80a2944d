package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelens-dev/codelens/internal/core"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare the stored index against the working tree without mutating it",
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	root, err := repoRoot(cmd)
	if err != nil {
		return err
	}

	v, err := core.VerifyIndex(context.Background(), root)
	if err != nil {
		return err
	}

	fmt.Printf("indexed: %d, changed: %d, missing: %d, removed: %d\n", v.Indexed, v.Changed, v.Missing, v.Removed)
	for _, p := range v.ChangedPaths {
		fmt.Printf("  changed: %s\n", p)
	}
	for _, p := range v.MissingPaths {
		fmt.Printf("  missing: %s\n", p)
	}
	return nil
}

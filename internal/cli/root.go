// Package cli is the thin cobra+viper adapter over internal/core. It parses
// flags, builds arguments, and calls the core operations; it contains no
// indexing, search, or duplicate-detection logic itself.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "codelens",
	Short: "Semantic code search and duplicate detection",
	Long: `codelens indexes a repository's source into a local vector store and
exposes semantic search, structural filtering, and duplicate detection over
the result.`,
}

// Execute adds all child commands to the root command and runs it. Called by
// main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file read into the CLI's viper settings (index, search and the other operations always load <root>/.codelens/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("root", "", "repository root (default: current directory)")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.AutomaticEnv()
		if err := viper.ReadInConfig(); err == nil && verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// repoRoot resolves the repository root for a command invocation: the
// current working directory, unless overridden by --root.
func repoRoot(cmd *cobra.Command) (string, error) {
	if r, _ := cmd.Flags().GetString("root"); r != "" {
		return r, nil
	}
	return os.Getwd()
}

// Package cli implements the hydroprep command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/BaoyingShan0/OpenHydrology/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "hydroprep",
	Short: "Turn hydrology documents into training data",
	Long: `hydroprep ingests hydrology documents (PDF, text, JSON, CSV,
Markdown), cleans and deduplicates the extracted text, enriches it with
domain terms and generated question/answer pairs, scores each chunk on
four quality dimensions and exports the result as a training dataset.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable debug and info logging")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "",
		"path to a YAML configuration file")
}

// Execute runs the root command and returns its error, if any.
func Execute() error {
	return rootCmd.Execute()
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/BaoyingShan0/OpenHydrology/internal/config"
	"github.com/BaoyingShan0/OpenHydrology/internal/parsers"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported input file formats",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.New(flagConfig)
		if err != nil {
			return err
		}
		registry, err := parsers.FromConfig(cfg.Section("parser"))
		if err != nil {
			return err
		}
		for _, format := range registry.SupportedFormats() {
			cmd.Printf(".%s\n", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

package cmd

import (
	"log"

	"github.com/josephlewis42/treesh/core/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// initCmd writes the default configuration.
var initCmd = &cobra.Command{
	Use:   "init [DIR]",
	Short: "Initialize the configuration in the given or current directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.ErrOrStderr(), "", 0)

		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		return config.Initialize(afero.NewOsFs(), dir, logger)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

package cmd

import (
	"fmt"

	"github.com/josephlewis42/treesh/core"
	"github.com/spf13/cobra"
)

// builtinsCmd lists the commands that run inside the executor.
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the builtin commands.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range core.BuiltinNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "NAME=value")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}

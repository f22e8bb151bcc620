package cmd

import (
	"fmt"

	"github.com/josephlewis42/treesh/core/shell"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var renderYAML bool

// renderCmd prints tree documents as shell text.
var renderCmd = &cobra.Command{
	Use:   "render TREE_FILE...",
	Short: "Print command trees as shell text.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fs := afero.NewOsFs()
		for _, path := range args {
			trees, err := shell.Load(fs, path)
			if err != nil {
				return err
			}

			for _, tree := range trees {
				if !renderYAML {
					fmt.Fprintln(cmd.OutOrStdout(), shell.Render(tree))
					continue
				}

				out, err := shell.Encode(tree)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "---\n%s", out)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().BoolVar(&renderYAML, "yaml", false, "print the normalized tree documents instead")
}

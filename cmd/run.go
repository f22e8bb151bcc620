package cmd

import (
	"log"
	"os"

	"github.com/josephlewis42/treesh/core"
	"github.com/josephlewis42/treesh/core/logger"
	"github.com/josephlewis42/treesh/core/shell"
	"github.com/josephlewis42/treesh/core/vos"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Exit codes of the run command that aren't tree statuses.
const (
	exitFatal = 2
)

var envFiles []string

// runCmd executes tree documents.
var runCmd = &cobra.Command{
	Use:   "run TREE_FILE...",
	Short: "Execute command tree documents.",
	Long: `Execute the trees in each document in order, like lines typed into an
interactive shell. Execution stops at the first exit or quit.

The program exits with the status of the last tree. Fatal errors exit with
status 2.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		runLogger := log.New(cmd.ErrOrStderr(), "[treesh] ", 0)

		configuration, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fs := afero.NewOsFs()
		var trees []shell.Node
		for _, path := range args {
			loaded, err := shell.Load(fs, path)
			if err != nil {
				return err
			}
			trees = append(trees, loaded...)
		}

		executor, err := core.New(core.Config{
			Verbose:      configuration.Verbose,
			Color:        logger.ShouldColor(configuration.Color, os.Stderr),
			EventLogPath: configuration.EventLog,
			FileMode:     configuration.FileMode(),
		})
		if err != nil {
			return err
		}
		defer executor.Close()

		files := append(append([]string(nil), configuration.EnvFiles...), envFiles...)
		if err := vos.LoadEnvFiles(executor.OS, files...); err != nil {
			return err
		}

		status, err := executor.Run(trees)
		switch {
		case err != nil:
			runLogger.Println(err)
			return exitWith(cmd, exitFatal)
		case status == core.ExitShell, status.Success():
			return nil
		default:
			return exitWith(cmd, int(status))
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringArrayVar(&envFiles, "env-file", nil, "load variables from a dotenv file before running, may be repeated")
}

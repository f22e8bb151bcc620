package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/josephlewis42/treesh/core/config"
	"github.com/josephlewis42/treesh/core/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cfgPath   string
	verbose   bool
	colorMode string
)

// loadConfig reads the configuration and applies the persistent flags over
// it. A missing configuration file is not an error.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configuration, err := config.LoadOrDefault(afero.NewOsFs(), cfgPath)
	if err != nil {
		return nil, fmt.Errorf("couldn't load config: %w", err)
	}

	if cmd.Flags().Changed("verbose") {
		configuration.Verbose = verbose
	}
	if cmd.Flags().Changed("color") {
		configuration.Color = colorMode
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return configuration, nil
}

// exitError ends the program with a status and no further message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// exitWith stops cobra from printing the error and makes Execute exit with
// code.
func exitWith(cmd *cobra.Command, code int) error {
	cmd.SilenceErrors = true
	return &exitError{code: code}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "treesh",
	Short: "Command tree executor",
	Long: `Executes parsed shell command trees: sequences, conditionals, parallel
commands, pipes and redirections, with cd, exit and NAME=value built in.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()

	var exit *exitError
	switch {
	case errors.As(err, &exit):
		os.Exit(exit.code)
	case err != nil:
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "trace every executed node on stderr")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", logger.ColorAuto, "color diagnostics: auto, always or never")
}

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/josephlewis42/treesh/core/logger"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the event log.",
}

// openEventLog opens the log named on the command line, or the one in the
// configuration.
func openEventLog(cmd *cobra.Command, args []string) (*os.File, error) {
	if len(args) > 0 {
		return os.Open(args[0])
	}

	configuration, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if configuration.EventLog == "" {
		return nil, errors.New("no event log given and none configured")
	}
	return os.Open(configuration.EventLog)
}

func printYAML(cmd *cobra.Command, v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

var reportCommand = &cobra.Command{
	Use:   "report [EVENT_LOG]",
	Short: "Show a report of events.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := openEventLog(cmd, args)
		if err != nil {
			return err
		}
		defer fd.Close()

		var report logger.Report
		if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
			return err
		}

		return printYAML(cmd, report)
	},
}

var bugsCommand = &cobra.Command{
	Use:   "bugs [EVENT_LOG]",
	Short: "Show unknown commands, failed builtins and fatal errors.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := openEventLog(cmd, args)
		if err != nil {
			return err
		}
		defer fd.Close()

		report := logger.NewBugReport()
		if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
			return err
		}

		return printYAML(cmd, report)
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
	eventsCmd.AddCommand(bugsCommand)
}

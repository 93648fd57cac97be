package main

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chronoflow",
	Short: "ChronoFlow - a lightweight in-memory job scheduler",
	Long: `ChronoFlow watches a directory of declarative job definitions and
spawns subprocesses at their scheduled times, recording structured
execution logs. It supports cron-recurring and one-shot (absolute
timestamp) schedules.`,
	Version: Version,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(jobsCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Display the ChronoFlow version, build time, git commit and Go version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("chronoflow %s\n", Version)
		fmt.Printf("  build time:  %s\n", BuildTime)
		fmt.Printf("  git commit:  %s\n", GitCommit)
		fmt.Printf("  go version:  %s\n", GoVersion)
	},
}

// Command chronoflow runs the ChronoFlow job scheduler daemon, and offers
// a small set of file-based job-management subcommands.
package main

import "os"

var (
	// Version variables set during build via -ldflags.
	Version   string = "0.1.0-dev"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
	GoVersion string = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

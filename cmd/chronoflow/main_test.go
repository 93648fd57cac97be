package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandStructure(t *testing.T) {
	require := rootCmd.Commands()
	found := make(map[string]bool, len(require))
	for _, c := range require {
		found[c.Name()] = true
	}

	for _, expected := range []string{"version", "serve", "jobs"} {
		assert.True(t, found[expected], "expected command %q registered on rootCmd", expected)
	}
}

func TestJobsSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, c := range jobsCmd.Commands() {
		found[c.Name()] = true
	}

	for _, expected := range []string{"add", "list", "remove"} {
		assert.True(t, found[expected], "expected subcommand %q registered on jobsCmd", expected)
	}
}

func TestServeCmdFlags(t *testing.T) {
	assert.NotNil(t, serveCmd.Flags().Lookup("config"))
	assert.NotNil(t, serveCmd.Flags().Lookup("log-level"))
}

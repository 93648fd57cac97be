package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronoflow/chronoflow/internal/job"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(oldDir) })
	require.NoError(t, os.Chdir(tempDir))
	return tempDir
}

func TestJobsAdd_WithConfiguredJobsDir(t *testing.T) {
	tempDir := chdirTemp(t)

	jobsDir := filepath.Join(tempDir, "jobs.d")
	require.NoError(t, os.WriteFile("config.toml", []byte(`[scheduler]
jobs_dir = "`+jobsDir+`"
`), 0o644))
	jobsConfigPath = ""

	runJobsAdd(jobsAddCmd, []string{"* * * * *", "echo hi"})

	files, err := os.ReadDir(jobsDir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(filepath.Join(jobsDir, files[0].Name()))
	require.NoError(t, err)
	j, err := job.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "* * * * *", j.Schedule)
	assert.Equal(t, "echo hi", j.Task.Command)
}

func TestJobsRemove_DeletesMatchingFile(t *testing.T) {
	tempDir := chdirTemp(t)

	jobsDir := filepath.Join(tempDir, "jobs.d")
	require.NoError(t, os.WriteFile("config.toml", []byte(`[scheduler]
jobs_dir = "`+jobsDir+`"
`), 0o644))
	jobsConfigPath = ""

	runJobsAdd(jobsAddCmd, []string{"* * * * *", "echo hi"})

	files, err := os.ReadDir(jobsDir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(filepath.Join(jobsDir, files[0].Name()))
	require.NoError(t, err)
	j, err := job.Parse(data)
	require.NoError(t, err)

	runJobsRemove(jobsRemoveCmd, []string{j.ID})

	files, err = os.ReadDir(jobsDir)
	require.NoError(t, err)
	assert.Len(t, files, 0)
}

func TestJobsAdd_LeavesExactlyOneDefinitionFile(t *testing.T) {
	// runJobsRemove calls os.Exit(1) on a miss, which would kill the test
	// binary, so the unknown-id path is not exercised here; this only
	// checks that a single add leaves exactly one definition file.
	tempDir := chdirTemp(t)

	jobsDir := filepath.Join(tempDir, "jobs.d")
	require.NoError(t, os.WriteFile("config.toml", []byte(`[scheduler]
jobs_dir = "`+jobsDir+`"
`), 0o644))
	jobsConfigPath = ""

	runJobsAdd(jobsAddCmd, []string{"* * * * *", "echo hi"})

	files, err := os.ReadDir(jobsDir)
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestJobsListFromDB_EmptyStoreReportsNothing(t *testing.T) {
	tempDir := chdirTemp(t)

	dbPath := filepath.Join(tempDir, "audit.db")
	require.NoError(t, os.WriteFile("config.toml", []byte(`[store]
enabled = true
path = "`+dbPath+`"
`), 0o644))
	jobsConfigPath = ""

	// runJobsListFromDB only ever writes to stdout; it must not exit(1)
	// on an empty-but-valid store.
	runJobsListFromDB()
}

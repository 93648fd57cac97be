package eventlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_AddAndDeleteLines(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	w.Add("job-1", "* * * * *")
	w.Delete("job-1")

	data, err := os.ReadFile(filepath.Join(dir, "scheduler.log"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "ADD job_id=job-1 new_schedule=* * * * *")
	assert.Contains(t, content, "DELETE job_id=job-1")
}

func TestWriter_ScheduleChangeIncludesBothSchedules(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	w.ScheduleChange("job-2", "* * * * *", "0 * * * *")

	data, err := os.ReadFile(filepath.Join(dir, "scheduler.log"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "SCHEDULE_CHANGE job_id=job-2 old_schedule=* * * * * new_schedule=0 * * * *")
}

func TestWriter_DeleteUnknownJobStillLogs(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	w.Delete("never-existed")

	data, err := os.ReadFile(filepath.Join(dir, "scheduler.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "DELETE job_id=never-existed")
}

func TestWriter_StartStopHaveNoFields(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	w.Start()
	w.Stop()

	data, err := os.ReadFile(filepath.Join(dir, "scheduler.log"))
	require.NoError(t, err)
	lines := string(data)

	assert.Contains(t, lines, "] START\n")
	assert.Contains(t, lines, "] STOP\n")
}

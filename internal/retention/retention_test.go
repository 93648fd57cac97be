package retention

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronoflow/chronoflow/internal/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "debug", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func writeLogFile(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("execution_id: x\n"), 0o644))
	modTime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestSweep_RemovesOnlyExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "job-a", "old.log")
	fresh := filepath.Join(dir, "job-a", "fresh.log")
	writeLogFile(t, old, 48*time.Hour)
	writeLogFile(t, fresh, time.Minute)

	s := New(dir, Config{Enabled: true, MaxAge: 24 * time.Hour, Interval: time.Hour}, newTestLogger(t))
	s.sweep()

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err), "expired log file should have been removed")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "fresh log file should be kept")
}

func TestSweep_IgnoresNonLogFiles(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "job-a", "notes.txt")
	writeLogFile(t, other, 48*time.Hour)

	s := New(dir, Config{Enabled: true, MaxAge: 24 * time.Hour, Interval: time.Hour}, newTestLogger(t))
	s.sweep()

	_, err := os.Stat(other)
	assert.NoError(t, err, "non-.log files must never be removed")
}

func TestStart_DisabledIsNoOp(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "job-a", "old.log")
	writeLogFile(t, old, 48*time.Hour)

	s := New(dir, Config{Enabled: false}, newTestLogger(t))
	s.Start(context.Background())
	t.Cleanup(s.Stop)

	_, err := os.Stat(old)
	assert.NoError(t, err, "disabled sweeper must not touch files")
}

// Package execlog writes one log file per job execution under
// <log_dir>/<job_id>/<execution_id>.log, in the fixed field-ordered
// format the original scheduler produced. Write failures are reported to
// the caller's logger but never propagated to the scheduler — a broken
// disk must not stop jobs from running.
package execlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chronoflow/chronoflow/internal/logger"
)

// Status is the outcome recorded in an execution log.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Execution is everything needed to render one execution log file.
type Execution struct {
	ExecutionID     string
	JobID           string
	Command         string
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds float64
	Status          Status
	ExitCode        int
	Stdout          string
	Stderr          string
}

// Writer creates per-job directories under Dir and writes one execution
// log file per call to Write.
type Writer struct {
	Dir    string
	Logger *logger.Logger
}

// New creates a Writer rooted at dir. The directory is created lazily,
// per job, on the first Write for that job.
func New(dir string, log *logger.Logger) *Writer {
	return &Writer{Dir: dir, Logger: log}
}

// NewExecutionID returns a fresh 128-bit hex execution identifier, matching
// the original scheduler's uuid4().hex.
func NewExecutionID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Write renders e to <Dir>/<e.JobID>/<e.ExecutionID>.log. Failures are
// logged and swallowed; the scheduler's dispatch path never blocks or
// errors on a logging failure.
func (w *Writer) Write(e Execution) {
	jobDir := filepath.Join(w.Dir, e.JobID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		w.reportFailure(e.JobID, err)
		return
	}

	path := filepath.Join(jobDir, e.ExecutionID+".log")
	f, err := os.Create(path)
	if err != nil {
		w.reportFailure(e.JobID, err)
		return
	}
	defer f.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "execution_id: %s\n", e.ExecutionID)
	fmt.Fprintf(&b, "job_id: %s\n", e.JobID)
	fmt.Fprintf(&b, "command: %s\n", e.Command)
	fmt.Fprintf(&b, "start_time: %s\n", e.StartTime.Format(time.RFC3339Nano))
	fmt.Fprintf(&b, "end_time: %s\n", e.EndTime.Format(time.RFC3339Nano))
	fmt.Fprintf(&b, "duration_seconds: %s\n", formatDuration(e.DurationSeconds))
	fmt.Fprintf(&b, "status: %s\n", e.Status)
	fmt.Fprintf(&b, "exit_code: %d\n", e.ExitCode)
	b.WriteString("stdout:\n")
	b.WriteString(e.Stdout)
	if e.Stdout != "" && !strings.HasSuffix(e.Stdout, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("stderr:\n")
	b.WriteString(e.Stderr)
	if e.Stderr != "" && !strings.HasSuffix(e.Stderr, "\n") {
		b.WriteString("\n")
	}

	if _, err := f.WriteString(b.String()); err != nil {
		w.reportFailure(e.JobID, err)
	}
}

func (w *Writer) reportFailure(jobID string, err error) {
	if w.Logger != nil {
		w.Logger.Error("failed to write execution log", err, logger.Field{Key: "job_id", Value: jobID})
	}
	fmt.Fprintf(os.Stderr, "ERROR: failed to write execution log for job %s: %v\n", jobID, err)
}

// formatDuration matches Python's default float-to-str rendering closely
// enough for log readability (no trailing zeros beyond what's needed).
func formatDuration(seconds float64) string {
	s := fmt.Sprintf("%g", seconds)
	return s
}

// Package eventlog appends scheduler lifecycle and job-management events
// to a single <log_dir>/scheduler.log file, one line per event. Writes are
// best-effort: a failing write falls back to stderr and never blocks the
// scheduler.
package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EventType is the fixed vocabulary of scheduler.log event kinds.
type EventType string

const (
	EventStart          EventType = "START"
	EventStop           EventType = "STOP"
	EventAdd            EventType = "ADD"
	EventUpdate         EventType = "UPDATE"
	EventDelete         EventType = "DELETE"
	EventScheduleChange EventType = "SCHEDULE_CHANGE"
	EventError          EventType = "ERROR"
)

// Writer appends lines to <Dir>/scheduler.log.
type Writer struct {
	mu      sync.Mutex
	path    string
	observe func(EventType)
}

// New creates a Writer rooted at dir. The directory is created eagerly so
// the first Write never has to.
func New(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &Writer{path: filepath.Join(dir, "scheduler.log")}, nil
}

// SetObserver installs a callback invoked once per event, after the line
// has been appended to scheduler.log. Used to feed the optional metrics
// package without making Writer depend on Prometheus. Not safe to call
// concurrently with Write methods.
func (w *Writer) SetObserver(observe func(EventType)) {
	w.observe = observe
}

// Start records scheduler startup.
func (w *Writer) Start() { w.write(EventStart, "", "", "", "") }

// Stop records scheduler shutdown.
func (w *Writer) Stop() { w.write(EventStop, "", "", "", "") }

// Add records a newly registered job.
func (w *Writer) Add(jobID, schedule string) { w.write(EventAdd, jobID, "", schedule, "") }

// Update records a re-registered job whose definition changed but whose
// schedule string did not.
func (w *Writer) Update(jobID, schedule string) { w.write(EventUpdate, jobID, "", schedule, "") }

// Delete records a job removal. Callers emit this unconditionally, even
// when the job_id was never registered — that mirrors the source
// scheduler's behavior and is intentionally preserved, not a bug.
func (w *Writer) Delete(jobID string) { w.write(EventDelete, jobID, "", "", "") }

// ScheduleChange records a job whose schedule string changed between
// reconciliations.
func (w *Writer) ScheduleChange(jobID, oldSchedule, newSchedule string) {
	w.write(EventScheduleChange, jobID, oldSchedule, newSchedule, "")
}

// Error records a scheduling or execution-path error. jobID may be empty
// for scheduler-wide errors.
func (w *Writer) Error(jobID, errMsg string) { w.write(EventError, jobID, "", "", errMsg) }

func (w *Writer) write(eventType EventType, jobID, oldSchedule, newSchedule, errMsg string) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	parts := []string{fmt.Sprintf("[%s]", timestamp), string(eventType)}
	if jobID != "" {
		parts = append(parts, "job_id="+jobID)
	}
	if oldSchedule != "" {
		parts = append(parts, "old_schedule="+oldSchedule)
	}
	if newSchedule != "" {
		parts = append(parts, "new_schedule="+newSchedule)
	}
	if errMsg != "" {
		parts = append(parts, "error="+errMsg)
	}
	line := strings.Join(parts, " ") + "\n"

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to write to scheduler.log: %v\n", err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to write to scheduler.log: %v\n", err)
	}

	if w.observe != nil {
		w.observe(eventType)
	}
}

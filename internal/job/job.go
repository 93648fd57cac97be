// Package job defines the declarative job document and its validated
// in-memory representation. A Job is immutable once parsed; the reconciler
// replaces it wholesale on file modification rather than mutating fields.
package job

import (
	"encoding/json"
	"fmt"
)

// TaskType discriminates the tagged Task variant. The set is open for
// extension: unknown tags fail validation rather than being silently
// accepted.
type TaskType string

// TaskExecuteCommand is the only task variant ChronoFlow ships today.
const TaskExecuteCommand TaskType = "execute_command"

// Task is the tagged union of things a Job can do when it fires. Only the
// fields relevant to Type are populated; Validate enforces that.
type Task struct {
	Type    TaskType `json:"type"`
	Command string   `json:"command,omitempty"`
}

// Job is the validated, immutable definition parsed from a definition file.
type Job struct {
	ID          string `json:"job_id"`
	Description string `json:"description,omitempty"`
	Schedule    string `json:"schedule"`
	Task        Task   `json:"task"`
}

// Parse decodes and validates a job definition document. Parse failures
// are returned to the caller (the reconciler) and never corrupt any
// registry — the reconciler logs and skips the offending file.
func Parse(data []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return Job{}, fmt.Errorf("invalid job document: %w", err)
	}
	if err := j.Validate(); err != nil {
		return Job{}, err
	}
	return j, nil
}

// Validate enforces the field-level rules from the job definition schema.
func (j Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job_id is required")
	}
	if j.Schedule == "" {
		return fmt.Errorf("schedule is required")
	}
	switch j.Task.Type {
	case TaskExecuteCommand:
		if j.Task.Command == "" {
			return fmt.Errorf("task.command is required for execute_command")
		}
	case "":
		return fmt.Errorf("task.type is required")
	default:
		return fmt.Errorf("unknown task type: %q", j.Task.Type)
	}
	return nil
}

// Serialize round-trips a Job back to its JSON document form. Used by the
// CLI's `jobs add` command and by round-trip tests (spec invariant 6).
func Serialize(j Job) ([]byte, error) {
	return json.MarshalIndent(j, "", "  ")
}

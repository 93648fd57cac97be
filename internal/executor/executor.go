// Package executor runs a job.Task to completion and reports its outcome.
// It is stateless and safe to invoke concurrently from many worker
// goroutines.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/chronoflow/chronoflow/internal/job"
)

// DefaultTimeout is the hard wall-clock cap applied when New is given a
// zero or negative timeout, matching the Python original's subprocess.run(timeout=3600).
const DefaultTimeout = 1 * time.Hour

// Result is the outcome of running a single Task.
type Result struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs tasks with a configured wall-clock timeout.
type Executor struct {
	Timeout time.Duration
}

// New creates an Executor. A zero or negative timeout falls back to
// DefaultTimeout.
func New(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{Timeout: timeout}
}

// Execute runs t to completion, applying the executor's timeout. Only
// job.TaskExecuteCommand is supported today; the switch is the seam for
// future task types as the task tag set grows.
func (e *Executor) Execute(ctx context.Context, t job.Task) Result {
	switch t.Type {
	case job.TaskExecuteCommand:
		return e.executeCommand(ctx, t.Command)
	default:
		return Result{Success: false, Stderr: fmt.Sprintf("unsupported task type: %q", t.Type), ExitCode: -1}
	}
}

// executeCommand spawns the host shell with the command string unmodified,
// captures stdout/stderr fully, and enforces the wall-clock timeout by
// killing the child on expiry.
func (e *Executor) executeCommand(ctx context.Context, command string) Result {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, "sh", "-c", command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if timeoutCtx.Err() == context.DeadlineExceeded {
		return Result{
			Success:  false,
			Stdout:   stdout.String(),
			Stderr:   "command timed out after " + e.Timeout.String(),
			ExitCode: -1,
		}
	}

	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return Result{
				Success:  false,
				Stdout:   stdout.String(),
				Stderr:   stderr.String() + err.Error(),
				ExitCode: -1,
			}
		}
		return Result{
			Success:  false,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: exitErr.ExitCode(),
		}
	}

	return Result{
		Success:  true,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
}

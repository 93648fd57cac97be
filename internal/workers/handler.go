package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/chronoflow/chronoflow/internal/execlog"
	"github.com/chronoflow/chronoflow/internal/executor"
	"github.com/chronoflow/chronoflow/internal/job"
	"github.com/chronoflow/chronoflow/internal/retry"
)

// ExecutionObserver is notified once per finished execution, after the
// execution log has been written. Used to feed the optional metrics
// package without making the handler itself depend on Prometheus.
type ExecutionObserver func(jobID string, status execlog.Status, duration time.Duration)

// NewExecutionHandler builds the Handler the scheduler installs into the
// pool: run the command (with retry.Run wrapping the retry policy), then
// write exactly one execution log entry for the final attempt. observe
// may be nil.
func NewExecutionHandler(exec *executor.Executor, execLog *execlog.Writer, retryCfg retry.Config, observe ExecutionObserver) Handler {
	return func(ctx context.Context, task Task) error {
		start := time.Now().UTC()
		executionID := execlog.NewExecutionID()

		t := job.Task{Type: job.TaskExecuteCommand, Command: task.Command}

		result, attempt := retry.Run(ctx, retryCfg, func(attemptNumber int) (executor.Result, retry.Attempt) {
			r := exec.Execute(ctx, t)
			return r, retry.Attempt{Success: r.Success, ExitCode: r.ExitCode}
		})
		end := time.Now().UTC()

		status := execlog.StatusSuccess
		if !result.Success {
			status = execlog.StatusFailure
		}

		execLog.Write(execlog.Execution{
			ExecutionID:     executionID,
			JobID:           task.JobID,
			Command:         task.Command,
			StartTime:       start,
			EndTime:         end,
			DurationSeconds: end.Sub(start).Seconds(),
			Status:          status,
			ExitCode:        result.ExitCode,
			Stdout:          result.Stdout,
			Stderr:          result.Stderr,
		})

		if observe != nil {
			observe(task.JobID, status, end.Sub(start))
		}

		if !attempt.Success {
			return fmt.Errorf("job %s exited with code %d", task.JobID, attempt.ExitCode)
		}
		return nil
	}
}

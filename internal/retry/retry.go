// Package retry implements the optional execution-retry policy applied
// around a failed job run: exponential backoff between attempts, with a
// small set of exit codes treated as non-retryable regardless of how many
// attempts remain.
package retry

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultMaxAttempts  = 1 // off by default: the scheduler's non-goals exclude guaranteed retry semantics
	defaultInitialDelay = 1 * time.Second
	defaultMaxDelay     = 1 * time.Hour
)

// nonRetryableExitCodes mirrors the original scheduler's retry handler:
// 126 (command found but not executable) and 127 (command not found) can
// never succeed by re-running the same command, so retrying is wasted
// effort regardless of MaxAttempts.
var nonRetryableExitCodes = map[int]bool{126: true, 127: true}

// Config controls how many times a failed execution is retried and how
// long the backoff between attempts grows.
type Config struct {
	MaxAttempts    int           // total attempts including the first; 0 or 1 disables retry
	InitialBackoff time.Duration // default 1s
	MaxBackoff     time.Duration // default 1h, matching the source's cap on exponential backoff
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = defaultInitialDelay
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxDelay
	}
	return c
}

// Attempt is the outcome of one execution, enough information for
// ShouldRetry to apply the exit-code exclusion list.
type Attempt struct {
	Success  bool
	ExitCode int
}

// ShouldRetry reports whether attemptNumber (1-based, the attempt that
// just completed) should be followed by another attempt, given result
// and the configured MaxAttempts.
func ShouldRetry(cfg Config, attemptNumber int, result Attempt) bool {
	cfg = cfg.withDefaults()
	if result.Success {
		return false
	}
	if attemptNumber >= cfg.MaxAttempts {
		return false
	}
	if nonRetryableExitCodes[result.ExitCode] {
		return false
	}
	return true
}

// Backoff returns the delay to wait before the attempt numbered
// attemptNumber+1 (1-based attemptNumber just finished), exponential in
// attemptNumber and capped at cfg.MaxBackoff.
func Backoff(cfg Config, attemptNumber int) time.Duration {
	cfg = cfg.withDefaults()
	d := cfg.InitialBackoff * time.Duration(uint(1)<<uint(attemptNumber-1))
	if d > cfg.MaxBackoff {
		return cfg.MaxBackoff
	}
	return d
}

// Run calls execute repeatedly until it succeeds, runs out of attempts,
// or hits a non-retryable exit code, sleeping Backoff between attempts.
// It returns the final Attempt along with the result value execute
// produced on that attempt.
func Run[T any](ctx context.Context, cfg Config, execute func(attempt int) (T, Attempt)) (T, Attempt) {
	cfg = cfg.withDefaults()

	var value T
	var result Attempt

	for attempt := 1; ; attempt++ {
		value, result = execute(attempt)
		if !ShouldRetry(cfg, attempt, result) {
			return value, result
		}

		delay := Backoff(cfg, attempt)
		slog.Debug("scheduling execution retry", "attempt", attempt+1, "delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return value, result
		}
	}
}

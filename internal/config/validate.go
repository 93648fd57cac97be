package config

import (
	"fmt"
	"strings"
)

// Validate checks the fully-defaulted configuration for consistency.
func (c *Config) Validate() []error {
	var errs []error

	if c.Scheduler.JobsDir == "" {
		errs = append(errs, fmt.Errorf("scheduler.jobs_dir is required"))
	}
	if c.Scheduler.LogDir == "" {
		errs = append(errs, fmt.Errorf("scheduler.log_dir is required"))
	}
	if c.Scheduler.CheckIntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.check_interval_seconds must be > 0"))
	}
	if c.Scheduler.FileWatcherIntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.file_watcher_interval_seconds must be > 0"))
	}
	if c.Scheduler.MaxConcurrentJobs <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.max_concurrent_jobs must be > 0"))
	}
	if c.Scheduler.JobTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.job_timeout_seconds must be > 0"))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true, "critical": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid logging.level: %s (expected: debug, info, warn, error, critical)", c.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Errorf("invalid logging.format: %s (expected: json, text)", c.Logging.Format))
	}

	if c.Logging.Output == "" {
		errs = append(errs, fmt.Errorf("logging.output is required"))
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		errs = append(errs, fmt.Errorf("metrics.port must be a valid TCP port when metrics.enabled is true"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must be >= 1"))
	}

	if c.Store.Enabled && c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store.path is required when store.enabled is true"))
	}

	if c.Retention.Enabled && c.Retention.MaxAgeHours <= 0 {
		errs = append(errs, fmt.Errorf("retention.max_age_hours must be > 0 when retention.enabled is true"))
	}
	if c.Retention.Enabled && c.Retention.IntervalHours <= 0 {
		errs = append(errs, fmt.Errorf("retention.interval_hours must be > 0 when retention.enabled is true"))
	}

	return errs
}

// Package config provides configuration loading and validation for
// ChronoFlow. It supports TOML configuration files with environment
// variable expansion, default values, and comprehensive validation.
//
// Configuration structure:
//   - [scheduler]: watch directory, log directory, tick cadences, concurrency
//   - [logging]: log level, format, and output
//   - [metrics]: optional Prometheus exposition endpoint
//   - [retry]: optional execution-retry policy
//   - [store]: optional SQLite audit trail
//   - [retention]: optional execution log pruning
//
// Environment variables:
// Environment variables can be referenced using ${VAR} or ${VAR:default}
// syntax. For example: jobs_dir = "${CHRONOFLOW_JOBS_DIR:/etc/chronoflow/jobs.d}"
package config

// Config represents the main application configuration.
type Config struct {
	Scheduler SchedulerConfig `toml:"scheduler"`
	Logging   LoggingConfig   `toml:"logging"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Retry     RetryConfig     `toml:"retry"`
	Store     StoreConfig     `toml:"store"`
	Retention RetentionConfig `toml:"retention"`
}

// SchedulerConfig holds the scheduler daemon's tunable runtime surface.
type SchedulerConfig struct {
	JobsDir                    string  `toml:"jobs_dir"`
	LogDir                     string  `toml:"log_dir"`
	CheckIntervalSeconds       float64 `toml:"check_interval_seconds"`
	FileWatcherIntervalSeconds float64 `toml:"file_watcher_interval_seconds"`
	MaxConcurrentJobs          int     `toml:"max_concurrent_jobs"`
	JobTimeoutSeconds          int     `toml:"job_timeout_seconds"`
}

// LoggingConfig configures the process-wide structured logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// MetricsConfig configures the optional Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// RetryConfig configures the optional execution-retry policy. Off by
// default (MaxAttempts defaults to 1, i.e. no retry).
type RetryConfig struct {
	MaxAttempts           int     `toml:"max_attempts"`
	InitialBackoffSeconds float64 `toml:"initial_backoff_seconds"`
	MaxBackoffSeconds     float64 `toml:"max_backoff_seconds"`
}

// StoreConfig configures the optional SQLite audit-trail persistence.
// The live registry never reads from this store; it is write-only
// bookkeeping, consulted only by `chronoflow jobs list --from-db`.
type StoreConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// RetentionConfig configures periodic pruning of execution log files under
// log_dir. Off by default.
type RetentionConfig struct {
	Enabled       bool    `toml:"enabled"`
	MaxAgeHours   float64 `toml:"max_age_hours"`
	IntervalHours float64 `toml:"interval_hours"`
}

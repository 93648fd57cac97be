package config

// applyDefaults fills in every zero-valued field with its documented
// default value.
func applyDefaults(c *Config) {
	if c.Scheduler.JobsDir == "" {
		c.Scheduler.JobsDir = "/etc/chronoflow/jobs.d"
	}
	if c.Scheduler.LogDir == "" {
		c.Scheduler.LogDir = "logs"
	}
	if c.Scheduler.CheckIntervalSeconds == 0 {
		c.Scheduler.CheckIntervalSeconds = 1.0
	}
	if c.Scheduler.FileWatcherIntervalSeconds == 0 {
		c.Scheduler.FileWatcherIntervalSeconds = 2.0
	}
	if c.Scheduler.MaxConcurrentJobs == 0 {
		c.Scheduler.MaxConcurrentJobs = 50
	}
	if c.Scheduler.JobTimeoutSeconds == 0 {
		c.Scheduler.JobTimeoutSeconds = 3600
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	if c.Metrics.Port == 0 {
		c.Metrics.Port = 9090
	}

	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 1
	}
	if c.Retry.InitialBackoffSeconds == 0 {
		c.Retry.InitialBackoffSeconds = 1.0
	}
	if c.Retry.MaxBackoffSeconds == 0 {
		c.Retry.MaxBackoffSeconds = 3600.0
	}

	if c.Store.Path == "" {
		c.Store.Path = "chronoflow.db"
	}

	if c.Retention.MaxAgeHours == 0 {
		c.Retention.MaxAgeHours = 24 * 7
	}
	if c.Retention.IntervalHours == 0 {
		c.Retention.IntervalHours = 24
	}
}

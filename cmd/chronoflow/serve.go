package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/chronoflow/chronoflow/internal/config"
	"github.com/chronoflow/chronoflow/internal/eventlog"
	"github.com/chronoflow/chronoflow/internal/execlog"
	"github.com/chronoflow/chronoflow/internal/executor"
	"github.com/chronoflow/chronoflow/internal/job"
	"github.com/chronoflow/chronoflow/internal/logger"
	"github.com/chronoflow/chronoflow/internal/metrics"
	"github.com/chronoflow/chronoflow/internal/reconciler"
	"github.com/chronoflow/chronoflow/internal/retention"
	"github.com/chronoflow/chronoflow/internal/retry"
	"github.com/chronoflow/chronoflow/internal/scheduler"
	"github.com/chronoflow/chronoflow/internal/store"
	"github.com/chronoflow/chronoflow/internal/workers"
)

var (
	serveConfigPath string
	serveLogLevel   string
)

// serveCmd is the daemon entry point: load configuration, wire every
// component, run until a shutdown signal arrives.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler daemon",
	Long: `serve loads chronoflow's configuration, starts the directory
reconciler and the scheduler's tick loop, and runs until SIGINT/SIGTERM.`,
	Run: serveHandler,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "path to configuration file (default: ./config.toml)")
	serveCmd.Flags().StringVarP(&serveLogLevel, "log-level", "l", "", "override logging.level (debug, info, warn, error)")
}

func serveHandler(cmd *cobra.Command, args []string) {
	configPath := serveConfigPath
	if configPath == "" {
		configPath = "./config.toml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if serveLogLevel != "" {
		cfg.Logging.Level = serveLogLevel
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "configuration validation failed:\n")
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  - %v\n", e)
		}
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	log.Info("starting chronoflow",
		logger.Field{Key: "version", Value: Version},
		logger.Field{Key: "git_commit", Value: GitCommit},
		logger.Field{Key: "config", Value: configPath},
		logger.Field{Key: "jobs_dir", Value: cfg.Scheduler.JobsDir})

	events, err := eventlog.New(cfg.Scheduler.LogDir)
	if err != nil {
		log.Error("failed to initialize event log", err)
		os.Exit(1)
	}

	execLog := execlog.New(cfg.Scheduler.LogDir, log)
	exec := executor.New(time.Duration(cfg.Scheduler.JobTimeoutSeconds) * time.Second)
	retryCfg := retry.Config{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: time.Duration(cfg.Retry.InitialBackoffSeconds * float64(time.Second)),
		MaxBackoff:     time.Duration(cfg.Retry.MaxBackoffSeconds * float64(time.Second)),
	}

	var (
		promMetrics   *metrics.Metrics
		metricsServer *metrics.Server
	)
	if cfg.Metrics.Enabled {
		promMetrics = metrics.New("chronoflow", prometheus.DefaultRegisterer)
		metricsServer = metrics.NewServer(fmt.Sprintf(":%d", cfg.Metrics.Port), prometheus.DefaultGatherer)
		go func() {
			log.Info("starting metrics server", logger.Field{Key: "port", Value: cfg.Metrics.Port})
			if err := metricsServer.ListenAndServe(); err != nil {
				log.Error("metrics server stopped unexpectedly", err)
			}
		}()
	}

	var observe workers.ExecutionObserver
	if promMetrics != nil {
		observe = func(jobID string, status execlog.Status, duration time.Duration) {
			promMetrics.RecordExecution(jobID, string(status), duration)
		}
		events.SetObserver(func(evt eventlog.EventType) {
			promMetrics.RecordEvent(string(evt))
		})
	}

	pool := workers.NewPool(cfg.Scheduler.MaxConcurrentJobs, workers.DefaultQueueSize, log,
		workers.NewExecutionHandler(exec, execLog, retryCfg, observe))
	pool.Start()

	sched := scheduler.New(pool, events, log,
		time.Duration(cfg.Scheduler.CheckIntervalSeconds*float64(time.Second)))

	var audit *store.SQLiteStore
	var regSource reconciler.Scheduler = sched
	if cfg.Store.Enabled {
		audit, err = store.Open(cfg.Store.Path)
		if err != nil {
			log.Error("failed to open audit store", err)
			os.Exit(1)
		}
		regSource = &auditingScheduler{Scheduler: sched, store: audit, log: log}
		log.Info("audit trail enabled", logger.Field{Key: "path", Value: cfg.Store.Path})
	}

	recon := reconciler.New(cfg.Scheduler.JobsDir,
		time.Duration(cfg.Scheduler.FileWatcherIntervalSeconds*float64(time.Second)),
		regSource, events, log)

	retentionCtx, stopRetention := context.WithCancel(context.Background())
	sweeper := retention.New(cfg.Scheduler.LogDir, retention.Config{
		Enabled:  cfg.Retention.Enabled,
		MaxAge:   time.Duration(cfg.Retention.MaxAgeHours * float64(time.Hour)),
		Interval: time.Duration(cfg.Retention.IntervalHours * float64(time.Hour)),
	}, log)
	sweeper.Start(retentionCtx)

	sched.Start()
	if err := recon.Start(); err != nil {
		log.Error("failed to start directory reconciler", err)
		sched.Stop()
		os.Exit(1)
	}

	statsCtx, stopStats := context.WithCancel(context.Background())
	if promMetrics != nil {
		promMetrics.SetSchedulerUp(true)
		go reportRegistryStats(statsCtx, sched, promMetrics)
	}

	log.Info("chronoflow is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("received shutdown signal", logger.Field{Key: "signal", Value: sig.String()})

	stopStats()
	stopRetention()
	recon.Stop()
	sched.Stop()
	pool.Stop()
	if promMetrics != nil {
		promMetrics.SetSchedulerUp(false)
	}
	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(ctx)
	}
	if audit != nil {
		_ = audit.Close()
	}

	log.Info("chronoflow stopped")
	os.Exit(0)
}

// reportRegistryStats periodically publishes the registry's scheduled vs.
// unscheduled job counts until ctx is cancelled.
func reportRegistryStats(ctx context.Context, sched *scheduler.Scheduler, m *metrics.Metrics) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		scheduled, unscheduled := sched.Stats()
		m.SetJobCounts(scheduled, unscheduled)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// auditingScheduler decorates a reconciler.Scheduler so that every
// registry mutation is mirrored into the optional SQLite audit trail.
// The scheduler's own in-memory registry never reads from the store —
// this wrapper only ever writes to it. It is an audit log, not a restart
// mechanism.
type auditingScheduler struct {
	*scheduler.Scheduler
	store *store.SQLiteStore
	log   *logger.Logger
}

func (a *auditingScheduler) AddJob(j job.Job) {
	a.Scheduler.AddJob(j)
	if err := a.store.Upsert(j); err != nil {
		a.log.Error("failed to record job in audit store", err, logger.Field{Key: "job_id", Value: j.ID})
	}
}

func (a *auditingScheduler) RemoveJob(jobID string) {
	a.Scheduler.RemoveJob(jobID)
	if err := a.store.Remove(jobID); err != nil {
		a.log.Error("failed to remove job from audit store", err, logger.Field{Key: "job_id", Value: jobID})
	}
}

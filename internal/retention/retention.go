// Package retention periodically prunes execution log files under
// log_dir/<job_id>/ so a long-running daemon's disk usage does not grow
// unboundedly. It is pure housekeeping: it never touches the in-memory
// registry and a failed sweep is logged and retried on the next tick.
package retention

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/chronoflow/chronoflow/internal/logger"
)

// Stats summarizes one sweep.
type Stats struct {
	FilesRemoved int
	BytesFreed   int64
	Duration     time.Duration
}

// Config controls the sweep cadence and cutoff.
type Config struct {
	// Enabled turns the periodic sweep on.
	Enabled bool
	// MaxAge removes execution log files whose mtime is older than this.
	MaxAge time.Duration
	// Interval is the time between sweeps.
	Interval time.Duration
}

// Sweeper removes aged-out execution log files from a log directory tree.
type Sweeper struct {
	dir    string
	cfg    Config
	log    *logger.Logger
	ticker *time.Ticker
	cancel context.CancelFunc
}

// New creates a Sweeper rooted at dir (the same log_dir execlog.Writer
// writes under).
func New(dir string, cfg Config, log *logger.Logger) *Sweeper {
	return &Sweeper{dir: dir, cfg: cfg, log: log}
}

// Start begins the periodic sweep in the background. A disabled or
// zero-interval config is a no-op. The initial sweep runs immediately.
func (s *Sweeper) Start(ctx context.Context) {
	if !s.cfg.Enabled || s.cfg.Interval <= 0 {
		s.log.Info("execution log retention disabled")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.ticker = time.NewTicker(s.cfg.Interval)

	s.log.Info("execution log retention started",
		logger.Field{Key: "max_age", Value: s.cfg.MaxAge.String()},
		logger.Field{Key: "interval", Value: s.cfg.Interval.String()})

	go s.sweep()

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.sweep()
			case <-ctx.Done():
				s.ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the periodic sweep.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// sweep walks dir once, removing files older than cfg.MaxAge.
func (s *Sweeper) sweep() {
	start := time.Now()
	cutoff := start.Add(-s.cfg.MaxAge)
	stats := Stats{}

	err := filepath.WalkDir(s.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(d.Name()) != ".log" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		size := info.Size()
		if err := os.Remove(path); err != nil {
			s.log.Error("failed to remove expired execution log", err,
				logger.Field{Key: "path", Value: path})
			return nil
		}
		stats.FilesRemoved++
		stats.BytesFreed += size
		return nil
	})
	if err != nil {
		s.log.Error("execution log retention sweep failed", err)
		return
	}

	stats.Duration = time.Since(start)
	if stats.FilesRemoved > 0 {
		s.log.Info("execution log retention swept expired files",
			logger.Field{Key: "files_removed", Value: stats.FilesRemoved},
			logger.Field{Key: "bytes_freed", Value: stats.BytesFreed},
			logger.Field{Key: "duration_ms", Value: stats.Duration.Milliseconds()})
	} else {
		s.log.Debug("execution log retention swept with nothing to remove")
	}
}

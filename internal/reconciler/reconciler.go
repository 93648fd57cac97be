// Package reconciler polls a directory of job definition files and keeps
// the scheduler's registry in sync with what's on disk: new files are
// added, modified files are re-added (which upserts), and files that
// disappear are removed. It is the only writer of its own file index; the
// scheduler never reaches back into it.
package reconciler

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chronoflow/chronoflow/internal/eventlog"
	"github.com/chronoflow/chronoflow/internal/job"
	"github.com/chronoflow/chronoflow/internal/logger"
)

// DefaultPollInterval matches the source watcher's 2s poll cadence.
const DefaultPollInterval = 2 * time.Second

// Scheduler is the subset of scheduler.Scheduler the reconciler depends on.
type Scheduler interface {
	AddJob(j job.Job)
	RemoveJob(jobID string)
}

// fileState is what the reconciler remembers about one definition file
// between polls: its modification time and the job_id it last produced,
// so a rename-with-new-id can be detected and the stale job removed.
type fileState struct {
	modTime time.Time
	jobID   string
}

// Reconciler polls watchDir for *.json definition files at pollInterval.
type Reconciler struct {
	watchDir     string
	pollInterval time.Duration
	scheduler    Scheduler
	events       *eventlog.Writer
	log          *logger.Logger

	index map[string]fileState

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a Reconciler. pollInterval <= 0 falls back to DefaultPollInterval.
func New(watchDir string, pollInterval time.Duration, sched Scheduler, events *eventlog.Writer, log *logger.Logger) *Reconciler {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Reconciler{
		watchDir:     watchDir,
		pollInterval: pollInterval,
		scheduler:    sched,
		events:       events,
		log:          log,
		index:        make(map[string]fileState),
	}
}

// Start ensures the watch directory exists, performs one full initial load
// pass, then spawns the polling loop.
func (r *Reconciler) Start() error {
	if err := os.MkdirAll(r.watchDir, 0o755); err != nil {
		return fmt.Errorf("failed to create watch directory: %w", err)
	}

	r.loadExisting()

	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	go r.run()

	r.log.Info("directory reconciler started",
		logger.Field{Key: "watch_dir", Value: r.watchDir},
		logger.Field{Key: "poll_interval", Value: r.pollInterval.String()})
	return nil
}

// Stop signals the polling loop and waits for it to exit.
func (r *Reconciler) Stop() {
	if r.stopCh == nil {
		return
	}
	close(r.stopCh)
	<-r.doneCh
	r.log.Info("directory reconciler stopped")
}

func (r *Reconciler) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.poll()
		}
	}
}

// loadExisting performs the startup pass: every file currently present is
// treated as new and loaded via addFile, each one emitting an ADD event.
func (r *Reconciler) loadExisting() {
	files, err := r.listDefinitionFiles()
	if err != nil {
		r.log.Error("failed to list job definition files", err,
			logger.Field{Key: "watch_dir", Value: r.watchDir})
		return
	}

	r.log.Info("loading existing job definition files", logger.Field{Key: "count", Value: len(files)})
	for path, modTime := range files {
		r.addFile(path, modTime)
	}
}

// poll runs one diff pass: new paths are added, paths whose mtime changed
// are re-added (handling an id change first), and paths that vanished are
// removed. A failure listing the directory itself is isolated and logged;
// it never stops the polling loop.
func (r *Reconciler) poll() {
	current, err := r.listDefinitionFiles()
	if err != nil {
		r.log.Error("failed to list job definition files", err,
			logger.Field{Key: "watch_dir", Value: r.watchDir})
		return
	}

	for path, modTime := range current {
		state, known := r.index[path]
		switch {
		case !known:
			r.addFile(path, modTime)
		case !state.modTime.Equal(modTime):
			r.modifyFile(path, modTime, state)
		}
	}

	for path, state := range r.index {
		if _, stillPresent := current[path]; !stillPresent {
			r.scheduler.RemoveJob(state.jobID)
			delete(r.index, path)
		}
	}
}

func (r *Reconciler) addFile(path string, modTime time.Time) {
	j, err := r.parseFile(path)
	if err != nil {
		r.reportFileError(path, err)
		return
	}

	r.scheduler.AddJob(j)
	r.index[path] = fileState{modTime: modTime, jobID: j.ID}
}

func (r *Reconciler) modifyFile(path string, modTime time.Time, prev fileState) {
	j, err := r.parseFile(path)
	if err != nil {
		r.reportFileError(path, err)
		return
	}

	if j.ID != prev.jobID {
		r.scheduler.RemoveJob(prev.jobID)
	}
	r.scheduler.AddJob(j)
	r.index[path] = fileState{modTime: modTime, jobID: j.ID}
}

func (r *Reconciler) parseFile(path string) (job.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return job.Job{}, fmt.Errorf("failed to read job file: %w", err)
	}
	return job.Parse(data)
}

func (r *Reconciler) reportFileError(path string, err error) {
	msg := fmt.Sprintf("error processing job file %s: %v", path, err)
	r.log.Error("failed to process job definition file", err, logger.Field{Key: "path", Value: path})
	r.events.Error("", msg)
}

// listDefinitionFiles returns every *.json file in watchDir mapped to its
// modification time.
func (r *Reconciler) listDefinitionFiles() (map[string]time.Time, error) {
	entries, err := os.ReadDir(r.watchDir)
	if err != nil {
		return nil, err
	}

	files := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files[filepath.Join(r.watchDir, e.Name())] = info.ModTime()
	}
	return files, nil
}

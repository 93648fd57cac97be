// Package scheduler holds the registry of known jobs and their schedule
// entries, and drives the fixed-cadence tick loop that dispatches fired
// entries to the worker pool. It is the only component that mutates the
// registry; the reconciler reaches it exclusively through AddJob/RemoveJob.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/chronoflow/chronoflow/internal/eventlog"
	"github.com/chronoflow/chronoflow/internal/job"
	"github.com/chronoflow/chronoflow/internal/logger"
	"github.com/chronoflow/chronoflow/internal/schedule"
	"github.com/chronoflow/chronoflow/internal/workers"
)

// DefaultTickInterval matches the source scheduler's 1s poll cadence.
const DefaultTickInterval = 1 * time.Second

// shutdownTimeout bounds how long Stop waits for the tick loop to exit.
const shutdownTimeout = 5 * time.Second

// Scheduler owns the job registry and its schedule entries, guarded by a
// single mutex (spec: "the registry is the only shared mutable state").
type Scheduler struct {
	pool         *workers.WorkerPool
	events       *eventlog.Writer
	log          *logger.Logger
	tickInterval time.Duration

	mu      sync.Mutex
	jobs    map[string]job.Job
	entries map[string]schedule.Entry

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// New creates a Scheduler that dispatches fired entries onto pool and
// records lifecycle/registry events to events.
func New(pool *workers.WorkerPool, events *eventlog.Writer, log *logger.Logger, tickInterval time.Duration) *Scheduler {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	return &Scheduler{
		pool:         pool,
		events:       events,
		log:          log,
		tickInterval: tickInterval,
		jobs:         make(map[string]job.Job),
		entries:      make(map[string]schedule.Entry),
	}
}

// AddJob upserts j into the registry. A brand-new job_id emits ADD; an
// existing one with an unchanged schedule string emits UPDATE; an existing
// one whose schedule string changed emits SCHEDULE_CHANGE with both values.
// A job whose schedule fails to parse (or whose one-shot time has already
// elapsed) stays in jobs without an entries binding and emits an ERROR
// event — it is "known" but never fires.
func (s *Scheduler) AddJob(j job.Job) {
	now := time.Now().UTC()

	s.mu.Lock()
	existing, existed := s.jobs[j.ID]
	entry, err := schedule.Create(j, now)
	if err != nil {
		delete(s.entries, j.ID)
		s.jobs[j.ID] = j
		s.mu.Unlock()

		if schedule.IsPastOneShot(err) {
			s.log.Warn("one-shot job scheduled in the past, skipping",
				logger.Field{Key: "job_id", Value: j.ID})
		} else {
			s.log.Error("failed to schedule job", err,
				logger.Field{Key: "job_id", Value: j.ID})
		}
		s.events.Error(j.ID, err.Error())
		return
	}

	if old, ok := s.entries[j.ID]; ok {
		old.Cancel()
	}
	s.jobs[j.ID] = j
	s.entries[j.ID] = entry
	s.mu.Unlock()

	switch {
	case !existed:
		s.events.Add(j.ID, j.Schedule)
	case existing.Schedule != j.Schedule:
		s.events.ScheduleChange(j.ID, existing.Schedule, j.Schedule)
	default:
		s.events.Update(j.ID, j.Schedule)
	}
}

// RemoveJob cancels and evicts job_id from both maps, then emits DELETE.
// Removing an unknown id is a no-op on the registry but still emits the
// event.
func (s *Scheduler) RemoveJob(jobID string) {
	s.mu.Lock()
	if entry, ok := s.entries[jobID]; ok {
		entry.Cancel()
		delete(s.entries, jobID)
	}
	delete(s.jobs, jobID)
	s.mu.Unlock()

	s.events.Delete(jobID)
}

// Job returns the registered job and whether it exists, for CLI/status use.
func (s *Scheduler) Job(jobID string) (job.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	return j, ok
}

// Jobs returns a snapshot of every registered job, regardless of whether it
// has a live schedule entry.
func (s *Scheduler) Jobs() []job.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]job.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	return out
}

// Stats reports how many registered jobs have a live schedule entry
// ("scheduled") versus how many are known without one ("unscheduled"):
// jobs that failed to schedule, e.g. an invalid cron expression or a
// one-shot time already in the past, and one-shot jobs that have already
// fired and been evicted.
func (s *Scheduler) Stats() (scheduled, unscheduled int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scheduled = len(s.entries)
	unscheduled = len(s.jobs) - scheduled
	return scheduled, unscheduled
}

// Start spawns the tick loop. Idempotent: a second call while already
// running is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.events.Start()
	s.log.Info("scheduler started", logger.Field{Key: "tick_interval", Value: s.tickInterval.String()})
	go s.run()
}

// Stop signals the tick loop and waits up to shutdownTimeout for it to
// exit. Idempotent: a second call while already stopped is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		s.log.Warn("tick loop did not stop within the shutdown timeout")
	}

	s.events.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// firedEntry is a snapshotted (job_id, Job, Entry) triple taken under the
// registry lock, acted on after the lock is released.
type firedEntry struct {
	jobID string
	job   job.Job
	entry schedule.Entry
}

// tick runs one scheduling cadence: snapshot under lock, dispatch without
// the lock held, re-lock to advance/evict, sleep (handled by the caller's
// ticker).
func (s *Scheduler) tick() {
	now := time.Now().UTC()

	s.mu.Lock()
	var fired []firedEntry
	for id, e := range s.entries {
		if e.ShouldRun(now) {
			fired = append(fired, firedEntry{jobID: id, job: s.jobs[id], entry: e})
		}
	}
	s.mu.Unlock()

	for _, f := range fired {
		s.dispatch(f, now)
	}

	if len(fired) == 0 {
		return
	}

	s.mu.Lock()
	for _, f := range fired {
		switch e := f.entry.(type) {
		case *schedule.Recurring:
			e.Advance()
		case *schedule.OneShot:
			if s.entries[f.jobID] == f.entry {
				delete(s.entries, f.jobID)
			}
		}
	}
	s.mu.Unlock()
}

// dispatch hands firedAt off to the worker pool asynchronously: a slow or
// full pool must never stall the tick loop itself.
func (s *Scheduler) dispatch(f firedEntry, firedAt time.Time) {
	go func() {
		s.pool.Submit(workers.Task{
			JobID:   f.jobID,
			Command: f.job.Task.Command,
			FiredAt: firedAt,
			Context: context.Background(),
		})
	}()
}

// Package schedule implements the polymorphic ScheduleEntry (one-shot vs
// recurring) and the factory that derives one from a job.Job. Every entry
// is owned exclusively by the scheduler's registry; callers never share
// mutation of one across goroutines without the registry's lock.
package schedule

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Kind identifies which ScheduleEntry variant an entry is, for logging and
// for the scheduler's dispatch decisions (advance vs evict after firing).
type Kind string

const (
	KindOneShot   Kind = "oneshot"
	KindRecurring Kind = "recurring"
)

// Entry is the mutable per-job scheduling state the scheduler registry
// owns. Implementations guard their own state with an internal mutex, so
// ShouldRun, Cancel and Cancelled are safe to call concurrently, with or
// without the registry lock held.
type Entry interface {
	Kind() Kind
	// ShouldRun reports whether the entry is due at now. Always false once
	// Cancel has been called.
	ShouldRun(now time.Time) bool
	// Cancel marks the entry so that no further ShouldRun call returns true.
	// Safe to call from removeJob while a tick is concurrently snapshotting,
	// since the registry lock serializes both.
	Cancel()
	Cancelled() bool
}

// OneShot fires at most once, at FireAt, then self-evicts from the
// registry (eviction is the scheduler's job, not the entry's).
type OneShot struct {
	mu        sync.Mutex
	FireAt    time.Time
	cancelled bool
}

func NewOneShot(fireAt time.Time) *OneShot {
	return &OneShot{FireAt: fireAt}
}

func (o *OneShot) Kind() Kind { return KindOneShot }

func (o *OneShot) ShouldRun(now time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancelled {
		return false
	}
	return !now.Before(o.FireAt)
}

func (o *OneShot) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelled = true
}

func (o *OneShot) Cancelled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelled
}

// Recurring fires every time the wrapped cron.Schedule says it's due,
// rescheduling strictly forward after each fire via Advance.
type Recurring struct {
	mu         sync.Mutex
	CronExpr   string
	schedule   cron.Schedule
	NextFireAt time.Time
	cancelled  bool
}

func NewRecurring(cronExpr string, sched cron.Schedule, seededFrom time.Time) *Recurring {
	return &Recurring{
		CronExpr:   cronExpr,
		schedule:   sched,
		NextFireAt: sched.Next(seededFrom),
	}
}

func (r *Recurring) Kind() Kind { return KindRecurring }

func (r *Recurring) ShouldRun(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return false
	}
	return !now.Before(r.NextFireAt)
}

func (r *Recurring) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = true
}

func (r *Recurring) Cancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// Advance moves NextFireAt strictly forward using the cron iterator's
// standard contract (Next always returns a time strictly after its
// argument). Called by the scheduler after dispatch, never after the
// subprocess completes — a slow or hanging job must not delay the next
// scheduled fire.
func (r *Recurring) Advance() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.NextFireAt = r.schedule.Next(r.NextFireAt)
}

// NextFireTime returns the current next-fire instant, for logging/tests.
func (r *Recurring) NextFireTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.NextFireAt
}

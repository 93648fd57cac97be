package schedule

import (
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/chronoflow/chronoflow/internal/job"
)

// parser accepts the standard five-field cron form (minute hour dom month
// dow), matching the job definitions' "* * * * *" style schedules.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// pastOneShotError is returned by Create when a one-shot job's fire time
// has already elapsed. The scheduler logs it at warn level rather than
// error level; in scheduler.log both it and a parse failure are recorded
// as an ERROR event.
type pastOneShotError struct{ jobID string }

func (e *pastOneShotError) Error() string {
	return "one-time job " + e.jobID + " scheduled time is in the past, skipping"
}

// IsPastOneShot reports whether err was produced by Create because a
// one-shot job's fire time had already elapsed.
func IsPastOneShot(err error) bool {
	_, ok := err.(*pastOneShotError)
	return ok
}

// isCronSchedule applies the same heuristic as the original scheduler:
// a schedule string is a cron expression unless it contains 'T' or 'Z',
// in which case it is treated as an ISO 8601 one-shot timestamp. This is
// preserved exactly, including its edge cases (a cron expression that
// happens to use literal month/day names containing those letters would
// misclassify — the original behaves the same way and nothing here is
// meant to correct that).
func isCronSchedule(sched string) bool {
	return !strings.Contains(sched, "T") && !strings.Contains(sched, "Z")
}

// Create derives a ScheduleEntry from j, dispatching on whether j.Schedule
// looks like a cron expression or an ISO 8601 timestamp. It returns
// (nil, err) for both a past one-shot time and an unparsable schedule;
// callers distinguish the two with IsPastOneShot to pick the right log
// severity.
func Create(j job.Job, now time.Time) (Entry, error) {
	if isCronSchedule(j.Schedule) {
		return createRecurring(j, now)
	}
	return createOneShot(j, now)
}

// naiveTimestampLayout matches an ISO 8601 timestamp with no zone/offset
// suffix. A trailing Z is equivalent to +00:00, and such naive timestamps
// are interpreted as UTC, matching the source scheduler's
// datetime.fromisoformat + tzinfo-is-None-means-UTC behavior.
const naiveTimestampLayout = "2006-01-02T15:04:05"

func createOneShot(j job.Job, now time.Time) (Entry, error) {
	fireAt, err := time.Parse(time.RFC3339, j.Schedule)
	if err != nil {
		fireAt, err = time.ParseInLocation(naiveTimestampLayout, j.Schedule, time.UTC)
		if err != nil {
			return nil, err
		}
	}
	fireAt = fireAt.UTC()

	if !fireAt.After(now) {
		return nil, &pastOneShotError{jobID: j.ID}
	}
	return NewOneShot(fireAt), nil
}

func createRecurring(j job.Job, now time.Time) (Entry, error) {
	sched, err := parser.Parse(j.Schedule)
	if err != nil {
		return nil, err
	}
	return NewRecurring(j.Schedule, sched, now), nil
}

package cron

import (
	"context"
	"fmt"
	"time"
)

// SessionCloser is the part of the attendance service the job needs.
type SessionCloser interface {
	CloseStaleSessions(ctx context.Context, now time.Time) (int, error)
}

type AttendanceJobs struct {
	closer   SessionCloser
	interval time.Duration
	now      func() time.Time
}

func NewAttendanceJobs(closer SessionCloser, interval time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		closer:   closer,
		interval: interval,
		now:      time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_sessions", j.interval, j.AutoCloseStaleSessions)
}

// AutoCloseStaleSessions checks out sessions left open past their shift's
// auto-close time. Sessions closed before a failure stay closed.
func (j *AttendanceJobs) AutoCloseStaleSessions(ctx context.Context) error {
	if _, err := j.closer.CloseStaleSessions(ctx, j.now()); err != nil {
		return fmt.Errorf("auto-close stale sessions: %w", err)
	}
	return nil
}

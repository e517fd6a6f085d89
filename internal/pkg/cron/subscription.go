package cron

import (
	"context"
	"fmt"
	"time"
)

// TrialExpirer is the part of the subscription service the job needs.
type TrialExpirer interface {
	ExpireLapsed(ctx context.Context, now time.Time) (int, error)
}

// SubscriptionJobs contains subscription-related cron jobs
type SubscriptionJobs struct {
	expirer  TrialExpirer
	interval time.Duration
	now      func() time.Time
}

func NewSubscriptionJobs(expirer TrialExpirer, interval time.Duration) *SubscriptionJobs {
	return &SubscriptionJobs{
		expirer:  expirer,
		interval: interval,
		now:      time.Now,
	}
}

func (j *SubscriptionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("expire_lapsed_trials", j.interval, j.ExpireLapsedTrials)
}

// ExpireLapsedTrials flips lapsed TRIAL and ACTIVE organizations to EXPIRED.
func (j *SubscriptionJobs) ExpireLapsedTrials(ctx context.Context) error {
	if _, err := j.expirer.ExpireLapsed(ctx, j.now()); err != nil {
		return fmt.Errorf("expire lapsed trials: %w", err)
	}
	return nil
}

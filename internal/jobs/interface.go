package jobs

import "context"

// Job is a unit of background work run by the Scheduler.
type Job interface {
	// Name identifies the job in logs and on-demand runs.
	Name() string

	// Schedule is a standard five field cron spec, e.g. "0 3 * * *".
	// An empty schedule registers the job for on-demand runs only.
	Schedule() string

	Run(ctx context.Context) error
}

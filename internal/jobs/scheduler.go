package jobs

import (
	"context"
	"fmt"
	"time"

	"anoa.com/rickmortyapi/pkg/logger"
	"github.com/robfig/cron/v3"
)

const defaultJobTimeout = 10 * time.Minute

// Scheduler runs registered jobs on their cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	timeout time.Duration
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		jobs:    make([]Job, 0),
		timeout: defaultJobTimeout,
	}
}

// Register adds job and schedules it when it has a schedule.
func (s *Scheduler) Register(job Job) error {
	schedule := job.Schedule()
	if schedule != "" {
		if _, err := s.cron.AddFunc(schedule, func() { s.execute(job) }); err != nil {
			return fmt.Errorf("schedule job %s: %w", job.Name(), err)
		}
		logger.Info().Str("job", job.Name()).Str("schedule", schedule).Msg("job scheduled")
	} else {
		logger.Info().Str("job", job.Name()).Msg("job registered for on-demand runs")
	}

	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) execute(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	log := logger.Get().With().Str("job", job.Name()).Logger()
	log.Info().Msg("job started")

	if err := job.Run(ctx); err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("job failed")
		return
	}
	log.Info().Dur("duration", time.Since(start)).Msg("job completed")
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info().Int("jobs", len(s.jobs)).Msg("job scheduler started")
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logger.Warn().Msg("job scheduler stopped before running jobs finished")
		return
	}
	logger.Info().Msg("job scheduler stopped")
}

// RunByName runs a registered job immediately.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			return job.Run(ctx)
		}
	}
	return fmt.Errorf("job %q not registered", name)
}

func (s *Scheduler) Jobs() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job represents a scheduled task
type Job func(ctx context.Context) error

// Scheduler manages periodic tasks
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a scheduler whose job runs are bounded by timeout.
func New(timeout time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: timeout,
		logger:  logger,
	}
}

// AddJob adds a job with a cron schedule, e.g. "@every 30s" or "*/5 * * * *".
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.run(name, job); err != nil {
			s.logger.Error("❌ job failed", zap.String("job", name), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.logger.Info("Added job", zap.String("job", name), zap.String("schedule", schedule))
	return nil
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.logger.Info("🚀 Scheduler started")
	s.cron.Start()
}

// Stop halts the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("🛑 Scheduler stopping")
	return s.cron.Stop()
}

// RunNow executes a job once on the caller's goroutine, bounded by the same timeout.
func (s *Scheduler) RunNow(name string, job Job) error {
	return s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		return err
	}
	s.logger.Debug("job completed", zap.String("job", name), zap.Duration("took", time.Since(start)))
	return nil
}

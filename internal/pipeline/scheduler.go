package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

// Scheduler runs send_reports on a fixed interval and, optionally,
// gather_stats at every UTC midnight.
type Scheduler struct {
	jobs        *Jobs
	interval    time.Duration
	dailyGather bool
	now         func() time.Time
	logger      *logrus.Logger
}

// NewScheduler creates a scheduler for jobs.
func NewScheduler(jobs *Jobs, interval time.Duration, dailyGather bool, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		jobs:        jobs,
		interval:    interval,
		dailyGather: dailyGather,
		now:         time.Now,
		logger:      logger,
	}
}

// untilMidnight returns the time left until the next 00:00 UTC.
func untilMidnight(now time.Time) time.Duration {
	return models.StartOfDay(now).Add(24 * time.Hour).Sub(now.UTC())
}

// Start blocks until ctx is cancelled. Job errors are logged and never stop
// the loop.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var midnight <-chan time.Time
	var timer *time.Timer
	if s.dailyGather {
		timer = time.NewTimer(untilMidnight(s.now()))
		defer timer.Stop()
		midnight = timer.C
	}

	s.logger.WithFields(logrus.Fields{
		"interval":     s.interval.String(),
		"daily_gather": s.dailyGather,
	}).Info("Scheduler started")

	s.sendReports(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.sendReports(ctx)
		case <-midnight:
			s.gatherStats(ctx)
			timer.Reset(untilMidnight(s.now()))
		}
	}
}

func (s *Scheduler) sendReports(ctx context.Context) {
	if _, err := s.jobs.SendReports(ctx); err != nil {
		s.logger.WithError(err).Warn("send_reports finished with errors")
	}
}

func (s *Scheduler) gatherStats(ctx context.Context) {
	if _, err := s.jobs.GatherStats(ctx); err != nil {
		s.logger.WithError(err).Warn("gather_stats finished with errors")
	}
}

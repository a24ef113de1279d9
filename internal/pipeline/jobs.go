package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

const (
	JobGatherStats = "gather_stats"
	JobSendReports = "send_reports"
)

// Jobs are the batch entry points shared by the CLI, the scheduler and the
// HTTP API.
type Jobs struct {
	pipeline *Pipeline
	repos    Repositories
	runner   *Runner
	now      func() time.Time
	logger   *logrus.Logger
}

// NewJobs creates the job set.
func NewJobs(p *Pipeline, runner *Runner, logger *logrus.Logger) *Jobs {
	return &Jobs{
		pipeline: p,
		repos:    p.repos,
		runner:   runner,
		now:      p.now,
		logger:   logger,
	}
}

// GatherStats stores today's counters for every tracked repository.
func (j *Jobs) GatherStats(ctx context.Context) (*models.BatchProgress, error) {
	j.logger.Info("Check repos to save stats")
	repos, err := j.repos.ListRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	if len(repos) == 0 {
		j.logger.Info("No repos to save stats")
	}
	return j.runner.Run(ctx, JobGatherStats, repos, j.pipeline.Gather)
}

// SendReports delivers a report for every repository whose schedule is due.
func (j *Jobs) SendReports(ctx context.Context) (*models.BatchProgress, error) {
	j.logger.Info("Check repos to send report")
	repos, err := j.repos.ListDueRepositories(ctx, j.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list due repositories: %w", err)
	}
	if len(repos) == 0 {
		j.logger.Info("No repos to report")
	}
	return j.runner.Run(ctx, JobSendReports, repos, func(ctx context.Context, repo *models.Repository) error {
		return j.pipeline.Report(ctx, repo, true)
	})
}

// SendInstantReport delivers a report for one repository regardless of its
// schedule. An unknown id surfaces as a not found error.
func (j *Jobs) SendInstantReport(ctx context.Context, id string) error {
	repo, err := j.repos.GetRepository(ctx, models.NormalizeID(id))
	if err != nil {
		return err
	}
	return j.pipeline.Report(ctx, repo, false)
}

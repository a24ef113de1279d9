package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/github-reporter/internal/errors"
	"github.com/Kamar-Folarin/github-reporter/internal/lock"
	"github.com/Kamar-Folarin/github-reporter/internal/models"
	"github.com/Kamar-Folarin/github-reporter/internal/report"
)

// ErrPipelineBusy is returned when another run holds the repository.
var ErrPipelineBusy = apperrors.NewConflictError("pipeline already running for repository", nil)

// Collector fetches repository data from GitHub.
type Collector interface {
	Collect(ctx context.Context, owner, name string, since time.Time) (*models.CollectedData, error)
	CollectStats(ctx context.Context, owner, name string) (models.DaySnapshot, error)
}

// Snapshots stores the daily counter history.
type Snapshots interface {
	Today() time.Time
	GetHistory(ctx context.Context, owner, name string) (models.History, error)
	UpsertToday(ctx context.Context, owner, name string, snap models.DaySnapshot) error
}

// Repositories is the registry of tracked repositories.
type Repositories interface {
	GetRepository(ctx context.Context, id string) (*models.Repository, error)
	ListRepositories(ctx context.Context) ([]*models.Repository, error)
	ListDueRepositories(ctx context.Context, now time.Time) ([]*models.Repository, error)
	MarkReported(ctx context.Context, id string, reportedAt, nextReportAt time.Time) error
}

// Renderer turns report data into markup and charts.
type Renderer interface {
	Render(d *report.Data) (*report.Rendered, error)
}

// Dispatcher delivers a rendered report.
type Dispatcher interface {
	Dispatch(ctx context.Context, r *report.Rendered) error
}

// Pipeline runs collect, store, compose, render and dispatch for one
// repository at a time.
type Pipeline struct {
	collector  Collector
	snapshots  Snapshots
	repos      Repositories
	renderer   Renderer
	dispatcher Dispatcher
	locker     lock.Locker
	lookback   time.Duration
	now        func() time.Time
	logger     *logrus.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLocker replaces the in-process lock, e.g. with a lock.Chain that also
// takes a Redis lock.
func WithLocker(l lock.Locker) Option {
	return func(p *Pipeline) {
		p.locker = l
	}
}

// WithClock overrides the pipeline clock.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithLookback sets how far back issue and pull request activity is shown.
func WithLookback(d time.Duration) Option {
	return func(p *Pipeline) {
		p.lookback = d
	}
}

// New wires a pipeline from its components.
func New(collector Collector, snapshots Snapshots, repos Repositories, renderer Renderer, dispatcher Dispatcher, logger *logrus.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		collector:  collector,
		snapshots:  snapshots,
		repos:      repos,
		renderer:   renderer,
		dispatcher: dispatcher,
		locker:     lock.NewKeyed(),
		lookback:   24 * time.Hour,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) acquire(ctx context.Context, repo *models.Repository) (func(), error) {
	unlock, err := p.locker.TryLock(ctx, repo.ID)
	if errors.Is(err, lock.ErrBusy) {
		return nil, ErrPipelineBusy
	}
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", repo.ID, err)
	}
	return unlock, nil
}

// Report runs the full pipeline for repo. When schedule is true a successful
// delivery advances the repository schedule; a failure anywhere leaves the
// schedule untouched so the next tick retries.
func (p *Pipeline) Report(ctx context.Context, repo *models.Repository, schedule bool) error {
	unlock, err := p.acquire(ctx, repo)
	if err != nil {
		return err
	}
	defer unlock()

	now := p.now().UTC()
	logger := p.logger.WithFields(logrus.Fields{
		"repo_id": repo.ID,
		"owner":   repo.Owner,
		"repo":    repo.Name,
	})
	logger.WithField("state", models.StateCollecting).Info("Preparing report")

	collected, err := p.collector.Collect(ctx, repo.Owner, repo.Name, now.Add(-p.lookback))
	if err != nil {
		return err
	}

	if err := p.snapshots.UpsertToday(ctx, repo.Owner, repo.Name, collected.Snapshot()); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	history, err := p.snapshots.GetHistory(ctx, repo.Owner, repo.Name)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	data, err := report.Compose(collected, history, p.snapshots.Today().AddDate(0, 0, -1))
	if err != nil {
		return err
	}
	data.GeneratedAt = now

	rendered, err := p.renderer.Render(data)
	if err != nil {
		return err
	}
	if err := p.dispatcher.Dispatch(ctx, rendered); err != nil {
		return err
	}

	if !schedule {
		logger.WithField("state", models.StateDelivered).Info("Instant report delivered")
		return nil
	}

	next := nextReport(repo, now)
	if err := p.repos.MarkReported(ctx, repo.ID, now, next); err != nil {
		return fmt.Errorf("mark reported: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"state":          models.StateDelivered,
		"next_report_at": next,
	}).Info("Report delivered")
	return nil
}

// Gather stores today's counters for repo without building a report.
func (p *Pipeline) Gather(ctx context.Context, repo *models.Repository) error {
	unlock, err := p.acquire(ctx, repo)
	if err != nil {
		return err
	}
	defer unlock()

	snap, err := p.collector.CollectStats(ctx, repo.Owner, repo.Name)
	if err != nil {
		return err
	}
	if err := p.snapshots.UpsertToday(ctx, repo.Owner, repo.Name, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"repo_id":   repo.ID,
		"stars":     snap.Stars,
		"downloads": snap.Downloads,
	}).Info("Saved stats")
	return nil
}

func nextReport(repo *models.Repository, now time.Time) time.Time {
	if repo.NextReportAt == nil {
		return models.StartOfDay(now).Add(30 * time.Hour)
	}
	return models.NextReportAfter(*repo.NextReportAt, now)
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

// RepoFunc processes one repository.
type RepoFunc func(ctx context.Context, repo *models.Repository) error

// Runner applies a RepoFunc to many repositories on a bounded worker pool.
// A failing repository never stops the others.
type Runner struct {
	workers    int
	statusChan chan *models.BatchProgress
	mu         sync.Mutex
	logger     *logrus.Logger
}

// NewRunner creates a runner with the given number of workers.
func NewRunner(workers int, logger *logrus.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		workers:    workers,
		statusChan: make(chan *models.BatchProgress, 1),
		logger:     logger,
	}
}

// Run processes repos and returns the final progress together with every
// per-repository error joined. Busy repositories count as skipped, not failed.
func (r *Runner) Run(ctx context.Context, job string, repos []*models.Repository, fn RepoFunc) (*models.BatchProgress, error) {
	progress := &models.BatchProgress{
		Job:            job,
		Total:          len(repos),
		StartTime:      time.Now(),
		LastUpdateTime: time.Now(),
	}
	r.updateProgress(progress)

	workerChan := make(chan struct{}, r.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

dispatch:
	for _, repo := range repos {
		select {
		case <-ctx.Done():
			mu.Lock()
			errs = append(errs, ctx.Err())
			mu.Unlock()
			break dispatch
		case workerChan <- struct{}{}:
			wg.Add(1)
			go func(repo *models.Repository) {
				defer wg.Done()
				defer func() { <-workerChan }()

				err := fn(ctx, repo)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case errors.Is(err, ErrPipelineBusy):
					progress.Skipped++
					r.logger.WithField("repo_id", repo.ID).Info("Repository busy, skipping")
				case err != nil:
					progress.Failed++
					progress.Errors = append(progress.Errors, fmt.Sprintf("%s: %v", repo.ID, err))
					errs = append(errs, fmt.Errorf("%s: %w", repo.ID, err))
					r.logger.WithError(err).WithField("repo_id", repo.ID).Error("Repository failed")
				default:
					progress.Processed++
				}
				progress.LastUpdateTime = time.Now()
				r.updateProgress(progress)
			}(repo)
		}
	}

	wg.Wait()

	mu.Lock()
	final := *progress
	mu.Unlock()
	r.updateProgress(&final)

	r.logger.WithFields(logrus.Fields{
		"job":       job,
		"total":     final.Total,
		"processed": final.Processed,
		"failed":    final.Failed,
		"skipped":   final.Skipped,
		"duration":  time.Since(final.StartTime).String(),
	}).Info("Batch finished")

	return &final, errors.Join(errs...)
}

// Progress returns a channel holding the latest progress snapshot.
func (r *Runner) Progress() <-chan *models.BatchProgress {
	return r.statusChan
}

func (r *Runner) updateProgress(progress *models.BatchProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := *progress
	snapshot.Errors = append([]string(nil), progress.Errors...)
	select {
	case r.statusChan <- &snapshot:
	default:
		// Channel is full, replace the value
		select {
		case <-r.statusChan:
		default:
		}
		r.statusChan <- &snapshot
	}
}

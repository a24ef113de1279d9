package github

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/Kamar-Folarin/github-reporter/internal/errors"
	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

// Collector gathers the statistics of one repository.
type Collector struct {
	client *Client
	logger *logrus.Logger
}

// NewCollector creates a collector backed by client.
func NewCollector(client *Client, logger *logrus.Logger) *Collector {
	return &Collector{client: client, logger: logger}
}

func itemUpdatedAt(i models.Item) time.Time { return i.UpdatedAt }

// Collect fetches repository info, download totals, issues, pull requests,
// referrers and traffic concurrently. If any fetch fails the whole
// collection fails with a CollectionFailedError and no data is returned.
func (c *Collector) Collect(ctx context.Context, owner, name string, since time.Time) (*models.CollectedData, error) {
	logger := c.logger.WithFields(logrus.Fields{
		"owner": owner,
		"repo":  name,
		"since": since,
	})

	// The quota is only reported, never used as a gate.
	if _, err := c.client.CheckRateLimit(ctx); err != nil {
		logger.WithError(err).Warn("Failed to check rate limit")
	}

	data := &models.CollectedData{Owner: owner, Name: name, Since: since}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		repo, err := c.client.Repository(gctx, owner, name)
		if err != nil {
			return err
		}
		data.Stars = repo.GetStargazersCount()
		data.OpenIssues = repo.GetOpenIssuesCount()
		return nil
	})

	g.Go(func() error {
		downloads, err := c.client.DownloadCount(gctx, owner, name)
		if err != nil {
			return err
		}
		data.Downloads = downloads
		return nil
	})

	g.Go(func() error {
		items, err := FetchSince(gctx, func(ctx context.Context, page int) ([]models.Item, error) {
			return c.client.IssuesPage(ctx, owner, name, since, page)
		}, itemUpdatedAt, since)
		if err != nil {
			return err
		}
		data.Issues, _ = Partition(items)
		return nil
	})

	g.Go(func() error {
		pulls, err := FetchSince(gctx, func(ctx context.Context, page int) ([]models.Item, error) {
			return c.client.PullsPage(ctx, owner, name, page)
		}, itemUpdatedAt, since)
		if err != nil {
			return err
		}
		data.Pulls = pulls
		return nil
	})

	g.Go(func() error {
		referrers, err := c.client.Referrers(gctx, owner, name)
		if err != nil {
			return err
		}
		data.Referrers = referrers
		return nil
	})

	g.Go(func() error {
		views, err := c.client.TrafficViews(gctx, owner, name)
		if err != nil {
			return err
		}
		data.Traffic.Views = views
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Collection failed")
		return nil, apperrors.NewCollectionFailedError(owner+"/"+name, err)
	}

	if yesterday, twoDaysAgo, err := data.Traffic.Pick(); err == nil {
		data.Traffic.Yesterday = &yesterday
		data.Traffic.TwoDaysAgo = &twoDaysAgo
	} else {
		logger.WithField("views", len(data.Traffic.Views)).Warn("Traffic window too short")
	}

	logger.WithFields(logrus.Fields{
		"stars":     data.Stars,
		"downloads": data.Downloads,
		"issues":    len(data.Issues),
		"pulls":     len(data.Pulls),
		"referrers": len(data.Referrers),
		"views":     len(data.Traffic.Views),
	}).Info("Collected repository data")
	return data, nil
}

// CollectStats fetches only the headline counters.
func (c *Collector) CollectStats(ctx context.Context, owner, name string) (models.DaySnapshot, error) {
	var snap models.DaySnapshot
	var openIssues int
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		repo, err := c.client.Repository(gctx, owner, name)
		if err != nil {
			return err
		}
		snap.Stars = repo.GetStargazersCount()
		openIssues = repo.GetOpenIssuesCount()
		return nil
	})

	g.Go(func() error {
		downloads, err := c.client.DownloadCount(gctx, owner, name)
		if err != nil {
			return err
		}
		snap.Downloads = downloads
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.DaySnapshot{}, apperrors.NewCollectionFailedError(owner+"/"+name, err)
	}
	snap.OpenIssues = &openIssues
	return snap, nil
}

// Partition splits items by kind, preserving order.
func Partition(items []models.Item) (issues, pulls []models.Item) {
	for _, item := range items {
		if item.IsPullRequest() {
			pulls = append(pulls, item)
		} else {
			issues = append(issues, item)
		}
	}
	return issues, pulls
}

package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	gh "github.com/google/go-github/v62/github"
	"github.com/jferrl/go-githubauth"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/Kamar-Folarin/github-reporter/internal/config"
	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

// PageSize is the number of items requested per page.
const PageSize = 100

// Client is an authenticated GitHub REST client. It reports the remaining
// quota but never throttles on it; an exhausted quota surfaces as a
// transient error.
type Client struct {
	gh     *gh.Client
	logger *logrus.Logger
}

// NewClient builds a client from configuration. Secondary rate limits are
// slept through up to cfg.SecondaryLimitSleep; longer waits fail the request.
func NewClient(cfg config.GitHubConfig, logger *logrus.Logger) (*Client, error) {
	var base http.RoundTripper = http.DefaultTransport
	if cfg.SecondaryLimitSleep > 0 {
		waiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(cfg.SecondaryLimitSleep, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
		}
		base = waiter
	}

	ts, err := tokenSource(cfg)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &oauth2.Transport{
			Base:   base,
			Source: ts,
		},
	}
	return NewClientWithHTTP(httpClient, cfg.APIBaseURL, logger)
}

// NewClientWithHTTP wraps an already authenticated http.Client.
func NewClientWithHTTP(httpClient *http.Client, baseURL string, logger *logrus.Logger) (*Client, error) {
	client := gh.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, NewValidationError("base_url", baseURL)
		}
		client.BaseURL = u
	}
	return &Client{gh: client, logger: logger}, nil
}

func tokenSource(cfg config.GitHubConfig) (oauth2.TokenSource, error) {
	if !cfg.UsesApp() {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}), nil
	}
	appTokenSource, err := githubauth.NewApplicationTokenSource(cfg.AppClientID, []byte(cfg.AppPrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create github app token source: %w", err)
	}
	return githubauth.NewInstallationTokenSource(cfg.AppInstallationID, appTokenSource), nil
}

type rateLimitResponse struct {
	Resources struct {
		Core struct {
			Limit     int   `json:"limit"`
			Remaining int   `json:"remaining"`
			Reset     int64 `json:"reset"`
		} `json:"core"`
	} `json:"resources"`
}

// CheckRateLimit returns the remaining core quota and logs it.
func (c *Client) CheckRateLimit(ctx context.Context) (int, error) {
	var payload rateLimitResponse
	if err := c.Get(ctx, "rate_limit", nil, &payload); err != nil {
		return 0, err
	}
	core := payload.Resources.Core
	c.logger.WithFields(logrus.Fields{
		"rate_limit_remaining": core.Remaining,
		"rate_limit_limit":     core.Limit,
		"rate_limit_reset":     time.Unix(core.Reset, 0).UTC(),
	}).Info("GitHub rate limit")
	return core.Remaining, nil
}

// Get issues an authenticated GET for path relative to the API root and
// decodes the JSON body into v.
func (c *Client) Get(ctx context.Context, path string, params url.Values, v any) error {
	path = strings.TrimPrefix(path, "/")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	req, err := c.gh.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	_, err = c.gh.Do(ctx, req, v)
	return classifyError(err, path)
}

// Repository fetches the repository metadata.
func (c *Client) Repository(ctx context.Context, owner, name string) (*gh.Repository, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, classifyRepoError(err, owner, name)
	}
	return repo, nil
}

// DownloadCount sums download_count over every asset of every release.
func (c *Client) DownloadCount(ctx context.Context, owner, name string) (int, error) {
	total := 0
	opts := &gh.ListOptions{PerPage: PageSize, Page: 1}
	for {
		releases, resp, err := c.gh.Repositories.ListReleases(ctx, owner, name, opts)
		if err != nil {
			return 0, classifyRepoError(err, owner, name)
		}
		total += SumDownloads(releases)
		if len(releases) == 0 || resp.NextPage == 0 {
			return total, nil
		}
		opts.Page = resp.NextPage
	}
}

// SumDownloads adds up the asset download counts of releases.
func SumDownloads(releases []*gh.RepositoryRelease) int {
	total := 0
	for _, release := range releases {
		for _, asset := range release.Assets {
			total += asset.GetDownloadCount()
		}
	}
	return total
}

// IssuesPage fetches one page of issues and pull requests updated since
// since, most recently updated first.
func (c *Client) IssuesPage(ctx context.Context, owner, name string, since time.Time, page int) ([]models.Item, error) {
	opts := &gh.IssueListByRepoOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		Since:       since,
		ListOptions: gh.ListOptions{PerPage: PageSize, Page: page},
	}
	issues, _, err := c.gh.Issues.ListByRepo(ctx, owner, name, opts)
	if err != nil {
		return nil, classifyRepoError(err, owner, name)
	}
	items := make([]models.Item, 0, len(issues))
	for _, issue := range issues {
		items = append(items, itemFromIssue(issue))
	}
	return items, nil
}

// PullsPage fetches one page of pull requests, most recently updated first.
func (c *Client) PullsPage(ctx context.Context, owner, name string, page int) ([]models.Item, error) {
	opts := &gh.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: PageSize, Page: page},
	}
	pulls, _, err := c.gh.PullRequests.List(ctx, owner, name, opts)
	if err != nil {
		return nil, classifyRepoError(err, owner, name)
	}
	items := make([]models.Item, 0, len(pulls))
	for _, pr := range pulls {
		items = append(items, itemFromPull(pr))
	}
	return items, nil
}

// Referrers fetches the top referring sites of the last 14 days.
func (c *Client) Referrers(ctx context.Context, owner, name string) ([]models.ReferrerStat, error) {
	referrers, _, err := c.gh.Repositories.ListTrafficReferrers(ctx, owner, name)
	if err != nil {
		return nil, classifyRepoError(err, owner, name)
	}
	out := make([]models.ReferrerStat, 0, len(referrers))
	for _, r := range referrers {
		out = append(out, models.ReferrerStat{
			Referrer: r.GetReferrer(),
			Count:    r.GetCount(),
			Uniques:  r.GetUniques(),
		})
	}
	return out, nil
}

// TrafficViews fetches the daily views series, oldest first.
func (c *Client) TrafficViews(ctx context.Context, owner, name string) ([]models.DayTraffic, error) {
	views, _, err := c.gh.Repositories.ListTrafficViews(ctx, owner, name, &gh.TrafficBreakdownOptions{Per: "day"})
	if err != nil {
		return nil, classifyRepoError(err, owner, name)
	}
	out := make([]models.DayTraffic, 0, len(views.Views))
	for _, v := range views.Views {
		out = append(out, models.DayTraffic{
			Timestamp: v.GetTimestamp().Time.UTC(),
			Count:     v.GetCount(),
			Uniques:   v.GetUniques(),
		})
	}
	return out, nil
}

func itemFromIssue(issue *gh.Issue) models.Item {
	kind := models.KindIssue
	if issue.IsPullRequest() {
		kind = models.KindPullRequest
	}
	return models.Item{
		Kind:      kind,
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		State:     models.ItemState(issue.GetState()),
		CreatedAt: issue.GetCreatedAt().Time,
		UpdatedAt: issue.GetUpdatedAt().Time,
		HTMLURL:   issue.GetHTMLURL(),
	}
}

func itemFromPull(pr *gh.PullRequest) models.Item {
	return models.Item{
		Kind:      models.KindPullRequest,
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		State:     models.ItemState(pr.GetState()),
		CreatedAt: pr.GetCreatedAt().Time,
		UpdatedAt: pr.GetUpdatedAt().Time,
		HTMLURL:   pr.GetHTMLURL(),
	}
}

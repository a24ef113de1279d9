package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kamar-Folarin/github-reporter/internal/config"
	"github.com/Kamar-Folarin/github-reporter/internal/db"
	"github.com/Kamar-Folarin/github-reporter/internal/dispatch"
	"github.com/Kamar-Folarin/github-reporter/internal/github"
	"github.com/Kamar-Folarin/github-reporter/internal/lock"
	"github.com/Kamar-Folarin/github-reporter/internal/pipeline"
	"github.com/Kamar-Folarin/github-reporter/internal/report"
	"github.com/Kamar-Folarin/github-reporter/internal/snapshot"
)

const (
	lockTTL           = 15 * time.Minute
	renderHTTPTimeout = 30 * time.Second
)

// app holds the wired components of one command invocation.
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	store  *db.PostgresStore
	redis  *redis.Client
	jobs   *pipeline.Jobs
}

func newLogger(cfg *config.Config, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(cfg.Level())
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// newBaseApp loads configuration and opens the database.
func newBaseApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(cfg, verbose)

	store, err := db.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize database")
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, store: store}, nil
}

// newApp wires the full pipeline on top of newBaseApp.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	a, err := newBaseApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	client, err := github.NewClient(cfg.GitHub, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}
	collector := github.NewCollector(client, logger)

	snapshots := snapshot.NewStore(a.store, logger, snapshot.WithRetention(cfg.Retention()))

	renderer, err := report.NewRenderer(logger)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: renderHTTPTimeout}
	mjml, err := dispatch.NewMJMLClient(cfg.Render, httpClient, logger)
	if err != nil {
		return err
	}
	sender := dispatch.NewMailgunSender(cfg.Mail, httpClient, logger)
	dispatcher := dispatch.NewDispatcher(mjml, sender, cfg.Report.From, cfg.Report.To)

	var locker lock.Locker = lock.NewKeyed()
	if cfg.RedisURL != "" {
		rdb, err := lock.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		a.redis = rdb
		locker = lock.Chain{locker, lock.NewRedis(rdb, lockTTL, logger)}
		logger.Info("Using Redis repository locks")
	}

	p := pipeline.New(collector, snapshots, a.store, renderer, dispatcher, logger,
		pipeline.WithLocker(locker),
		pipeline.WithLookback(cfg.Report.Lookback),
	)
	a.jobs = pipeline.NewJobs(p, pipeline.NewRunner(cfg.Report.Workers, logger), logger)
	return nil
}

// migrate runs migrations with retry logic
func (a *app) migrate() error {
	if err := retry(3, 5*time.Second, a.store.Migrate); err != nil {
		a.logger.WithError(err).Error("Failed to run migrations after retries")
		return err
	}
	return nil
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.WithError(err).Warn("Failed to close redis client")
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.WithError(err).Warn("Failed to close database")
	}
}

// retry retries a function up to a certain number of attempts with a delay between attempts
func retry(attempts int, sleep time.Duration, fn func() error) error {
	if err := fn(); err != nil {
		if attempts--; attempts > 0 {
			time.Sleep(sleep)
			return retry(attempts, sleep, fn)
		}
		return err
	}
	return nil
}

package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store defines the interface for database operations
type Store interface {
	// Repository operations
	CreateRepository(ctx context.Context, repo *models.Repository) error
	GetRepository(ctx context.Context, id string) (*models.Repository, error)
	GetRepositoryByName(ctx context.Context, owner, name string) (*models.Repository, error)
	ListRepositories(ctx context.Context) ([]*models.Repository, error)
	ListDueRepositories(ctx context.Context, now time.Time) ([]*models.Repository, error)
	UpdateSchedule(ctx context.Context, id string, nextReportAt *time.Time) (*models.Repository, error)
	DeleteRepository(ctx context.Context, id string) error

	// Snapshot operations
	GetStats(ctx context.Context, owner, name string) (models.History, error)
	UpdateStats(ctx context.Context, owner, name string, mutate func(models.History) error) error

	// Lifecycle operations
	MarkReported(ctx context.Context, id string, reportedAt, nextReportAt time.Time) error
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Migrate applies the embedded goose migrations.
func (s *PostgresStore) Migrate() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

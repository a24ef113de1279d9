package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	apperrors "github.com/Kamar-Folarin/github-reporter/internal/errors"
	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

const uniqueViolation = "23505"

const repositoryColumns = `id, owner, name, stats, reported_at, next_report_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepository(row rowScanner) (*models.Repository, error) {
	var repo models.Repository
	var statsJSON []byte
	var reportedAt, nextReportAt sql.NullTime
	if err := row.Scan(
		&repo.ID,
		&repo.Owner,
		&repo.Name,
		&statsJSON,
		&reportedAt,
		&nextReportAt,
		&repo.CreatedAt,
		&repo.UpdatedAt,
	); err != nil {
		return nil, err
	}

	stats, err := decodeHistory(statsJSON)
	if err != nil {
		return nil, err
	}
	repo.Stats = stats

	if reportedAt.Valid {
		t := reportedAt.Time.UTC()
		repo.ReportedAt = &t
	}
	if nextReportAt.Valid {
		t := nextReportAt.Time.UTC()
		repo.NextReportAt = &t
	}
	return &repo, nil
}

func decodeHistory(raw []byte) (models.History, error) {
	history := models.History{}
	if len(raw) == 0 {
		return history, nil
	}
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	return history, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// CreateRepository inserts a new tracked repository.
func (s *PostgresStore) CreateRepository(ctx context.Context, repo *models.Repository) error {
	if repo == nil {
		return fmt.Errorf("repository cannot be nil")
	}
	stats := repo.Stats
	if stats == nil {
		stats = models.History{}
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO repositories (id, owner, name, stats, reported_at, next_report_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at`,
		repo.ID, repo.Owner, repo.Name, statsJSON, nullTime(repo.ReportedAt), nullTime(repo.NextReportAt),
	).Scan(&repo.CreatedAt, &repo.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperrors.NewValidationError(fmt.Sprintf("repository %s/%s is already tracked", repo.Owner, repo.Name), err)
		}
		return fmt.Errorf("failed to create repository: %w", err)
	}
	return nil
}

// GetRepository retrieves a repository by its ID
func (s *PostgresStore) GetRepository(ctx context.Context, id string) (*models.Repository, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+repositoryColumns+` FROM repositories WHERE id = $1`, id)
	repo, err := scanRepository(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ResourceNotFound("repository", id)
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	return repo, nil
}

// GetRepositoryByName retrieves a repository by owner and name
func (s *PostgresStore) GetRepositoryByName(ctx context.Context, owner, name string) (*models.Repository, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+repositoryColumns+` FROM repositories WHERE owner = $1 AND name = $2`, owner, name)
	repo, err := scanRepository(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ResourceNotFound("repository", owner+"/"+name)
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	return repo, nil
}

// ListRepositories retrieves all repositories
func (s *PostgresStore) ListRepositories(ctx context.Context) ([]*models.Repository, error) {
	return s.queryRepositories(ctx, `SELECT `+repositoryColumns+` FROM repositories ORDER BY owner, name`)
}

// ListDueRepositories retrieves repositories whose next report is at or before now.
func (s *PostgresStore) ListDueRepositories(ctx context.Context, now time.Time) ([]*models.Repository, error) {
	return s.queryRepositories(ctx, `
		SELECT `+repositoryColumns+`
		FROM repositories
		WHERE next_report_at IS NOT NULL AND next_report_at <= $1
		ORDER BY next_report_at`, now.UTC())
}

func (s *PostgresStore) queryRepositories(ctx context.Context, query string, args ...any) ([]*models.Repository, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query repositories: %w", err)
	}
	defer rows.Close()

	var repos []*models.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repository row: %w", err)
		}
		repos = append(repos, repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repository rows: %w", err)
	}

	return repos, nil
}

// UpdateSchedule sets when the next report of a repository is due.
func (s *PostgresStore) UpdateSchedule(ctx context.Context, id string, nextReportAt *time.Time) (*models.Repository, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE repositories
		SET next_report_at = $1,
			updated_at = NOW()
		WHERE id = $2
		RETURNING `+repositoryColumns, nullTime(nextReportAt), id)
	repo, err := scanRepository(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ResourceNotFound("repository", id)
		}
		return nil, fmt.Errorf("failed to update repository: %w", err)
	}
	return repo, nil
}

// DeleteRepository deletes a repository and its snapshot history
func (s *PostgresStore) DeleteRepository(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM repositories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete repository: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ResourceNotFound("repository", id)
	}
	return nil
}

// GetStats returns the snapshot history of a repository.
func (s *PostgresStore) GetStats(ctx context.Context, owner, name string) (models.History, error) {
	var statsJSON []byte
	err := s.db.QueryRowContext(ctx, `SELECT stats FROM repositories WHERE owner = $1 AND name = $2`, owner, name).Scan(&statsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ResourceNotFound("repository", owner+"/"+name)
		}
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return decodeHistory(statsJSON)
}

// UpdateStats reads the history of a repository, applies mutate and writes
// the whole history back in one transaction. The row stays locked between
// the read and the write.
func (s *PostgresStore) UpdateStats(ctx context.Context, owner, name string, mutate func(models.History) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	var statsJSON []byte
	err = tx.QueryRowContext(ctx, `
		SELECT id, stats FROM repositories
		WHERE owner = $1 AND name = $2
		FOR UPDATE`, owner, name).Scan(&id, &statsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ResourceNotFound("repository", owner+"/"+name)
		}
		return fmt.Errorf("failed to lock stats: %w", err)
	}

	history, err := decodeHistory(statsJSON)
	if err != nil {
		return err
	}
	if err := mutate(history); err != nil {
		return err
	}

	updated, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE repositories SET stats = $1, updated_at = NOW() WHERE id = $2`, updated, id); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MarkReported records a delivered report and schedules the next one in a
// single statement.
func (s *PostgresStore) MarkReported(ctx context.Context, id string, reportedAt, nextReportAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE repositories
		SET reported_at = $1,
			next_report_at = $2,
			updated_at = NOW()
		WHERE id = $3`, reportedAt.UTC(), nextReportAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark repository reported: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ResourceNotFound("repository", id)
	}
	return nil
}

package snapshot

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/github-reporter/internal/lock"
	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

// Backend persists the history of each repository.
type Backend interface {
	GetStats(ctx context.Context, owner, name string) (models.History, error)
	UpdateStats(ctx context.Context, owner, name string, mutate func(models.History) error) error
}

// Store reads and writes daily snapshots. Writers of the same repository are
// serialized; different repositories proceed independently.
type Store struct {
	backend   Backend
	locks     *lock.Keyed
	now       func() time.Time
	retention time.Duration
	logger    *logrus.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to compute today's key.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithRetention prunes entries older than d on every upsert. Zero keeps
// everything.
func WithRetention(d time.Duration) Option {
	return func(s *Store) {
		s.retention = d
	}
}

// NewStore creates a snapshot store over backend.
func NewStore(backend Backend, logger *logrus.Logger, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		locks:   lock.NewKeyed(),
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the UTC day the store considers current.
func (s *Store) Today() time.Time {
	return models.StartOfDay(s.now())
}

// GetHistory returns every stored snapshot of the repository.
func (s *Store) GetHistory(ctx context.Context, owner, name string) (models.History, error) {
	return s.backend.GetStats(ctx, owner, name)
}

// UpsertToday replaces today's entry with snap. Other days are untouched
// apart from retention pruning.
func (s *Store) UpsertToday(ctx context.Context, owner, name string, snap models.DaySnapshot) error {
	unlock := s.locks.Lock(models.RecordID(owner, name))
	defer unlock()

	today := s.Today()
	key := models.DayKey(today)
	return s.backend.UpdateStats(ctx, owner, name, func(h models.History) error {
		h[key] = snap
		if s.retention > 0 {
			if removed := h.Prune(today.Add(-s.retention)); removed > 0 {
				s.logger.WithFields(logrus.Fields{
					"owner":   owner,
					"repo":    name,
					"removed": removed,
				}).Debug("Pruned old snapshots")
			}
		}
		return nil
	})
}

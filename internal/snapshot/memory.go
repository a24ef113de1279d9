package snapshot

import (
	"context"
	"sync"

	apperrors "github.com/Kamar-Folarin/github-reporter/internal/errors"
	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

// MemoryBackend keeps histories in process memory. Repositories must be
// registered with Track before they can be written.
type MemoryBackend struct {
	mu        sync.Mutex
	histories map[string]models.History
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{histories: make(map[string]models.History)}
}

// Track registers a repository with an optional initial history.
func (m *MemoryBackend) Track(owner, name string, history models.History) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if history == nil {
		history = models.History{}
	}
	m.histories[models.RecordID(owner, name)] = copyHistory(history)
}

func (m *MemoryBackend) GetStats(_ context.Context, owner, name string) (models.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.histories[models.RecordID(owner, name)]
	if !ok {
		return nil, apperrors.ResourceNotFound("repository", owner+"/"+name)
	}
	return copyHistory(h), nil
}

func (m *MemoryBackend) UpdateStats(_ context.Context, owner, name string, mutate func(models.History) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := models.RecordID(owner, name)
	h, ok := m.histories[id]
	if !ok {
		return apperrors.ResourceNotFound("repository", owner+"/"+name)
	}
	working := copyHistory(h)
	if err := mutate(working); err != nil {
		return err
	}
	m.histories[id] = working
	return nil
}

func copyHistory(h models.History) models.History {
	out := make(models.History, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

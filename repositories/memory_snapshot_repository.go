package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/Dosada05/tournament-engine/models"
)

// memorySnapshotRepository keeps JSON-encoded snapshots so callers never share
// memory with the store.
type memorySnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]storedSnapshot
}

type storedSnapshot struct {
	version int64
	data    []byte
}

func NewMemorySnapshotRepository() SnapshotRepository {
	return &memorySnapshotRepository{snapshots: make(map[string]storedSnapshot)}
}

func (r *memorySnapshotRepository) Save(ctx context.Context, t *models.Tournament) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.snapshots[t.ID]; ok && existing.version > t.Version {
		return fmt.Errorf("%w: tournament %s has version %d, got %d", ErrSnapshotStale, t.ID, existing.version, t.Version)
	}
	r.snapshots[t.ID] = storedSnapshot{version: t.Version, data: data}
	return nil
}

func (r *memorySnapshotRepository) FindByID(ctx context.Context, id string) (*models.Tournament, error) {
	r.mu.RLock()
	s, ok := r.snapshots[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	t := &models.Tournament{}
	if err := json.Unmarshal(s.data, t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *memorySnapshotRepository) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.snapshots))
	for id := range r.snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memorySnapshotRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.snapshots[id]; !ok {
		return ErrSnapshotNotFound
	}
	delete(r.snapshots, id)
	return nil
}

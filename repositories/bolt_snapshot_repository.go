package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/asdine/storm"
)

// boltSnapshot is the stored record; the tournament itself is kept as JSON.
type boltSnapshot struct {
	ID      string `storm:"id"`
	Status  string `storm:"index"`
	Version int64
	Data    []byte
}

type boltSnapshotRepository struct {
	db *storm.DB
}

// NewBoltSnapshotRepository opens (or creates) an embedded snapshot store at path.
func NewBoltSnapshotRepository(path string) (SnapshotRepository, func() error, error) {
	db, err := storm.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open snapshot store %s: %w", path, err)
	}
	return &boltSnapshotRepository{db: db}, db.Close, nil
}

func (r *boltSnapshotRepository) Save(ctx context.Context, t *models.Tournament) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}

	tx, err := r.db.Begin(true)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	var existing boltSnapshot
	err = tx.One("ID", t.ID, &existing)
	switch {
	case err == nil:
		if existing.Version > t.Version {
			return fmt.Errorf("%w: tournament %s has version %d, got %d", ErrSnapshotStale, t.ID, existing.Version, t.Version)
		}
	case errors.Is(err, storm.ErrNotFound):
	default:
		return fmt.Errorf("failed to read snapshot %s: %w", t.ID, err)
	}

	rec := boltSnapshot{ID: t.ID, Status: string(t.Status), Version: t.Version, Data: data}
	if err := tx.Save(&rec); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", t.ID, err)
	}
	return tx.Commit()
}

func (r *boltSnapshotRepository) FindByID(ctx context.Context, id string) (*models.Tournament, error) {
	var rec boltSnapshot
	if err := r.db.One("ID", id, &rec); err != nil {
		if errors.Is(err, storm.ErrNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", id, err)
	}

	t := &models.Tournament{}
	if err := json.Unmarshal(rec.Data, t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *boltSnapshotRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.Select().Each(new(boltSnapshot), func(record interface{}) error {
		ids = append(ids, record.(*boltSnapshot).ID)
		return nil
	})
	if err != nil && !errors.Is(err, storm.ErrNotFound) {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *boltSnapshotRepository) Delete(ctx context.Context, id string) error {
	var rec boltSnapshot
	if err := r.db.One("ID", id, &rec); err != nil {
		if errors.Is(err, storm.ErrNotFound) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to read snapshot %s: %w", id, err)
	}
	if err := r.db.DeleteStruct(&rec); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	return nil
}

package repositories

import (
	"context"
	"errors"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrSnapshotNotFound = errors.New("tournament snapshot not found")
	ErrSnapshotStale    = errors.New("tournament snapshot is older than the stored version")
)

// SnapshotRepository сохраняет и загружает снимки турниров целиком.
type SnapshotRepository interface {
	Save(ctx context.Context, t *models.Tournament) error
	FindByID(ctx context.Context, id string) (*models.Tournament, error)
	ListIDs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

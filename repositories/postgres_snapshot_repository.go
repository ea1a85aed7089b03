package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/lib/pq"
)

var ErrSnapshotCorrupted = errors.New("tournament snapshot is not valid JSON")

const createSnapshotsTable = `
	CREATE TABLE IF NOT EXISTS tournament_snapshots (
		id         TEXT PRIMARY KEY,
		slug       TEXT NOT NULL,
		status     TEXT NOT NULL,
		version    BIGINT NOT NULL,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`

type postgresSnapshotRepository struct {
	db *sql.DB
}

func NewPostgresSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &postgresSnapshotRepository{db: db}
}

// MigrateSnapshots creates the snapshot table when it does not exist yet.
func MigrateSnapshots(ctx context.Context, exec SQLExecutor) error {
	if _, err := exec.ExecContext(ctx, createSnapshotsTable); err != nil {
		return fmt.Errorf("failed to create tournament_snapshots table: %w", err)
	}
	return nil
}

func (r *postgresSnapshotRepository) Save(ctx context.Context, t *models.Tournament) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}

	// Старая версия не должна перезаписать более новую.
	query := `
		INSERT INTO tournament_snapshots (id, slug, status, version, data, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			slug = EXCLUDED.slug,
			status = EXCLUDED.status,
			version = EXCLUDED.version,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
		WHERE tournament_snapshots.version <= EXCLUDED.version`

	result, err := r.db.ExecContext(ctx, query, t.ID, t.Slug, t.Status, t.Version, data, t.UpdatedAt)
	if err != nil {
		return r.handleSnapshotError(err)
	}
	return checkAffectedRows(result, fmt.Errorf("%w: tournament %s version %d", ErrSnapshotStale, t.ID, t.Version))
}

func (r *postgresSnapshotRepository) FindByID(ctx context.Context, id string) (*models.Tournament, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM tournament_snapshots WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, r.handleSnapshotError(err)
	}

	t := &models.Tournament{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *postgresSnapshotRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM tournament_snapshots ORDER BY id`)
	if err != nil {
		return nil, r.handleSnapshotError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tournament id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament ids: %w", err)
	}
	return ids, nil
}

func (r *postgresSnapshotRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournament_snapshots WHERE id = $1`, id)
	if err != nil {
		return r.handleSnapshotError(err)
	}
	return checkAffectedRows(result, ErrSnapshotNotFound)
}

func (r *postgresSnapshotRepository) handleSnapshotError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "22P02", "22032": // invalid_text_representation, invalid_json_text
			return fmt.Errorf("%w: %s", ErrSnapshotCorrupted, pqErr.Message)
		case "42P01": // undefined_table
			return fmt.Errorf("tournament_snapshots table is missing, run migrations: %w", err)
		}
	}
	return err
}

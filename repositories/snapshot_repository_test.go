package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTournament(id string, version int64) *models.Tournament {
	return &models.Tournament{
		ID:         id,
		Slug:       "cup-" + id,
		Name:       "Cup " + id,
		Format:     models.FormatSwiss,
		Status:     models.StatusRegistration,
		Settings:   &models.SwissSettings{Rounds: 3},
		MinPlayers: 2,
		MaxPlayers: 8,
		Participants: []*models.Participant{
			{ID: "p1", DisplayName: "Player 1", Rating: 1500, Seed: 1},
		},
		Version: version,
	}
}

func runSnapshotRepositoryTests(t *testing.T, repo SnapshotRepository) {
	ctx := context.Background()

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	require.NoError(t, repo.Save(ctx, sampleTournament("b", 1)))
	require.NoError(t, repo.Save(ctx, sampleTournament("a", 1)))
	require.NoError(t, repo.Save(ctx, sampleTournament("a", 3)))

	err = repo.Save(ctx, sampleTournament("a", 2))
	assert.ErrorIs(t, err, ErrSnapshotStale)

	got, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Version)
	assert.Equal(t, "cup-a", got.Slug)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, 1500, got.Participants[0].Rating)
	settings, ok := got.Settings.(*models.SwissSettings)
	require.True(t, ok)
	assert.Equal(t, 3, settings.Rounds)

	// повторное сохранение той же версии допустимо
	require.NoError(t, repo.Save(ctx, sampleTournament("a", 3)))

	ids, err = repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, repo.Delete(ctx, "b"))
	assert.ErrorIs(t, repo.Delete(ctx, "b"), ErrSnapshotNotFound)

	ids, err = repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestMemorySnapshotRepository(t *testing.T) {
	runSnapshotRepositoryTests(t, NewMemorySnapshotRepository())
}

func TestMemorySnapshotRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySnapshotRepository()
	original := sampleTournament("a", 1)
	require.NoError(t, repo.Save(ctx, original))

	original.Name = "changed after save"
	got, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Cup a", got.Name)

	got.Participants[0].Rating = 0
	again, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1500, again.Participants[0].Rating)
}

func TestBoltSnapshotRepository(t *testing.T) {
	repo, closeFn, err := NewBoltSnapshotRepository(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	runSnapshotRepositoryTests(t, repo)
}

func TestBoltSnapshotRepositoryReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")
	ctx := context.Background()

	repo, closeFn, err := NewBoltSnapshotRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, sampleTournament("a", 5)))
	require.NoError(t, closeFn())

	repo, closeFn, err = NewBoltSnapshotRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	got, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Version)
	assert.Equal(t, models.StatusRegistration, got.Status)
}

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	keys         []string
	contentTypes []string
	bodies       [][]byte
	err          error
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.keys = append(f.keys, key)
	f.contentTypes = append(f.contentTypes, contentType)
	f.bodies = append(f.bodies, body)
	return &UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return publicURL("https://results.example.com/archive", key)
}

func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func completedEvent() events.Event {
	placement := 1
	return events.New(events.TournamentCompleted, "t-1", time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC), events.TournamentCompletedPayload{
		Slug: "spring-cup",
		Name: "Spring Cup",
		Standings: []models.StandingEntry{
			{Position: 1, ParticipantID: "p1", Placement: &placement, Wins: 3},
		},
		Awards: []models.PrizeAward{
			{Place: 1, Criterion: models.CriterionPlacement, ParticipantID: "p1", Amount: 500, Currency: "USD"},
		},
	})
}

func TestArchiveKey(t *testing.T) {
	assert.Equal(t, "results/spring-cup-t-1.json", ArchiveKey("spring-cup", "t-1"))
	assert.Equal(t, "results/t-1.json", ArchiveKey("", "t-1"))
}

func TestResultsArchiverUploadsCompletedTournaments(t *testing.T) {
	uploader := &fakeUploader{}
	logger, _ := testLogger()
	archiver := NewResultsArchiver(uploader, logger)

	e := completedEvent()
	archiver.HandleEvent(context.Background(), e)

	require.Len(t, uploader.keys, 1)
	assert.Equal(t, "results/spring-cup-t-1.json", uploader.keys[0])
	assert.Equal(t, "application/json", uploader.contentTypes[0])

	var doc ResultsDocument
	require.NoError(t, json.Unmarshal(uploader.bodies[0], &doc))
	assert.Equal(t, "t-1", doc.TournamentID)
	assert.Equal(t, "Spring Cup", doc.Name)
	assert.Equal(t, e.ID, doc.EventID)
	assert.True(t, doc.CompletedAt.Equal(e.OccurredAt))
	require.Len(t, doc.Awards, 1)
	assert.Equal(t, int64(500), doc.Awards[0].Amount)
	require.Len(t, doc.Standings, 1)
	assert.Equal(t, "p1", doc.Standings[0].ParticipantID)
}

func TestResultsArchiverIgnoresOtherEvents(t *testing.T) {
	uploader := &fakeUploader{}
	logger, _ := testLogger()
	archiver := NewResultsArchiver(uploader, logger)

	archiver.HandleEvent(context.Background(), events.New(events.MatchCompleted, "t-1", time.Now(), events.MatchCompletedPayload{}))
	archiver.HandleEvent(context.Background(), events.New(events.TournamentCompleted, "t-1", time.Now(), "not a payload"))

	assert.Empty(t, uploader.keys)
}

func TestResultsArchiverLogsUploadFailures(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("bucket unavailable")}
	logger, buf := testLogger()
	archiver := NewResultsArchiver(uploader, logger)

	_, err := archiver.Archive(context.Background(), completedEvent(), completedEvent().Payload.(events.TournamentCompletedPayload))
	assert.Error(t, err)

	archiver.HandleEvent(context.Background(), completedEvent())
	assert.Contains(t, buf.String(), "failed to archive tournament results")
	assert.Contains(t, buf.String(), "bucket unavailable")
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"https://cdn.example.com", "results/a.json", "https://cdn.example.com/results/a.json"},
		{"https://cdn.example.com/archive/", "/results/a.json", "https://cdn.example.com/archive/results/a.json"},
		{"", "results/a.json", ""},
		{"https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, publicURL(tt.base, tt.key), "base=%q key=%q", tt.base, tt.key)
	}
}

func TestNewS3UploaderRequiresCredentials(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), S3UploaderConfig{BucketName: "results"})
	assert.Error(t, err)
}

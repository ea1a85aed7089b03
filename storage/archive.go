package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
)

const archiveUploadTimeout = 30 * time.Second

// ResultsDocument is the archived record of a finished tournament.
type ResultsDocument struct {
	TournamentID string                 `json:"tournament_id"`
	Slug         string                 `json:"slug"`
	Name         string                 `json:"name"`
	CompletedAt  time.Time              `json:"completed_at"`
	EventID      string                 `json:"event_id"`
	Standings    []models.StandingEntry `json:"standings"`
	Awards       []models.PrizeAward    `json:"awards"`
}

// ResultsArchiver uploads final standings and awards when a tournament completes.
type ResultsArchiver struct {
	uploader FileUploader
	logger   *slog.Logger
}

func NewResultsArchiver(uploader FileUploader, logger *slog.Logger) *ResultsArchiver {
	return &ResultsArchiver{uploader: uploader, logger: logger}
}

func ArchiveKey(slug, tournamentID string) string {
	if slug == "" {
		return fmt.Sprintf("results/%s.json", tournamentID)
	}
	return fmt.Sprintf("results/%s-%s.json", slug, tournamentID)
}

func (a *ResultsArchiver) HandleEvent(ctx context.Context, e events.Event) {
	if e.Type != events.TournamentCompleted {
		return
	}
	payload, ok := e.Payload.(events.TournamentCompletedPayload)
	if !ok {
		a.logger.WarnContext(ctx, "unexpected tournament_completed payload",
			slog.String("event_id", e.ID),
			slog.String("payload_type", fmt.Sprintf("%T", e.Payload)))
		return
	}
	if _, err := a.Archive(ctx, e, payload); err != nil {
		a.logger.ErrorContext(ctx, "failed to archive tournament results",
			slog.String("tournament_id", e.TournamentID),
			slog.Any("error", err))
	}
}

func (a *ResultsArchiver) Archive(ctx context.Context, e events.Event, payload events.TournamentCompletedPayload) (*UploadResult, error) {
	doc := ResultsDocument{
		TournamentID: e.TournamentID,
		Slug:         payload.Slug,
		Name:         payload.Name,
		CompletedAt:  e.OccurredAt,
		EventID:      e.ID,
		Standings:    payload.Standings,
		Awards:       payload.Awards,
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode results of %s: %w", e.TournamentID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, archiveUploadTimeout)
	defer cancel()

	result, err := a.uploader.Upload(ctx, ArchiveKey(payload.Slug, e.TournamentID), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "tournament results archived",
		slog.String("tournament_id", e.TournamentID),
		slog.String("key", result.Key),
		slog.String("location", result.Location))
	return result, nil
}

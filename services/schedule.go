package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-engine/models"
)

// RunScheduledTransitions applies every scheduling-window transition that is due
// at now and returns how many were applied. Failures are logged per tournament.
// An auto start refused for lack of players is recorded and not retried.
func (r *Registry) RunScheduledTransitions(ctx context.Context, now time.Time) int {
	applied := 0
	for _, id := range r.ids() {
		if ctx.Err() != nil {
			break
		}
		t, err := r.snapshot(id)
		if err != nil {
			continue
		}
		applied += r.runDue(ctx, t, now)
	}
	return applied
}

func due(at *time.Time, now time.Time) bool {
	return at != nil && !now.Before(*at)
}

func (r *Registry) runDue(ctx context.Context, t *models.Tournament, now time.Time) int {
	log := r.logger.With(slog.String("tournament_id", t.ID))
	applied := 0
	status := t.Status

	if status == models.StatusDraft && due(t.Schedule.RegistrationOpensAt, now) {
		if _, err := r.OpenRegistration(ctx, t.ID); err != nil {
			log.WarnContext(ctx, "scheduled registration open failed", slog.Any("error", err))
			return applied
		}
		applied++
		status = models.StatusRegistration
	}

	startDue := t.Schedule.AutoStart && t.Schedule.AutoStartFailedAt == nil && due(t.Schedule.StartsAt, now)
	if status == models.StatusRegistration && (due(t.Schedule.RegistrationClosesAt, now) || startDue) {
		if _, err := r.CloseRegistration(ctx, t.ID); err != nil {
			log.WarnContext(ctx, "scheduled registration close failed", slog.Any("error", err))
			return applied
		}
		applied++
		status = models.StatusReady
	}

	if status == models.StatusReady && startDue {
		_, err := r.StartTournament(ctx, t.ID)
		switch {
		case err == nil:
			applied++
		case errors.Is(err, ErrInsufficientPlayers):
			log.WarnContext(ctx, "scheduled start skipped, organizer has to start manually", slog.Any("error", err))
			if err := r.markAutoStartFailed(ctx, t.ID, now); err != nil {
				log.ErrorContext(ctx, "failed to record skipped auto start", slog.Any("error", err))
			}
		default:
			log.ErrorContext(ctx, "scheduled start failed", slog.Any("error", err))
		}
	}
	return applied
}

func (r *Registry) markAutoStartFailed(ctx context.Context, id string, at time.Time) error {
	_, err := r.mutate(ctx, id, "mark_auto_start_failed", func(tx *txn) error {
		if tx.t.Status != models.StatusReady || tx.t.Schedule.AutoStartFailedAt != nil {
			return errNoChange
		}
		failedAt := at
		tx.t.Schedule.AutoStartFailedAt = &failedAt
		return nil
	})
	return err
}

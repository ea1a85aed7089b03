package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/utils"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	defaultMinPlayers = 2
	maxNameLength     = 120
)

type CreateTournamentInput struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	OrganizerID string                `json:"-"`
	Format      models.Format         `json:"format"`
	Settings    models.FormatSettings `json:"-"`
	Schedule    models.Schedule       `json:"schedule"`
	MinPlayers  int                   `json:"min_players"`
	MaxPlayers  int                   `json:"max_players"`
	EntryFee    models.EntryFee       `json:"entry_fee"`
	Prizes      models.PrizeConfig    `json:"prizes"`
	Seeding     models.SeedingPolicy  `json:"seeding"`
	AccessCode  string                `json:"access_code,omitempty"`
}

// CreateTournament validates the configuration and stores a new draft tournament.
func (r *Registry) CreateTournament(ctx context.Context, in CreateTournamentInput) (*models.Tournament, error) {
	if err := normalizeCreateInput(&in); err != nil {
		return nil, err
	}

	now := r.now()
	t := &models.Tournament{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		OrganizerID: in.OrganizerID,
		Format:      in.Format,
		Status:      models.StatusDraft,
		Schedule:    in.Schedule,
		MinPlayers:  in.MinPlayers,
		MaxPlayers:  in.MaxPlayers,
		EntryFee:    in.EntryFee,
		Prizes:      in.Prizes,
		Seeding:     in.Seeding,
		Settings:    in.Settings,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.Slug = slug.Make(t.Name)
	t.Schedule.AutoStartFailedAt = nil

	if in.AccessCode != "" {
		hash, err := utils.HashAccessCode(in.AccessCode)
		if err != nil {
			return nil, fmt.Errorf("failed to hash access code: %w", err)
		}
		t.AccessCodeHash = hash
	}

	r.insert(t)
	r.logger.InfoContext(ctx, "tournament created",
		slog.String("tournament_id", t.ID),
		slog.String("format", string(t.Format)),
		slog.String("organizer_id", t.OrganizerID))
	return t.Clone().Public(), nil
}

func normalizeCreateInput(in *CreateTournamentInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if len(in.Name) > maxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidConfig, maxNameLength)
	}

	if in.Settings == nil {
		settings, err := models.DefaultSettings(in.Format)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		in.Settings = settings
	}
	if in.Format == "" {
		in.Format = in.Settings.Format()
	}
	if in.Settings.Format() != in.Format {
		return fmt.Errorf("%w: settings are for %s, tournament format is %s", ErrInvalidConfig, in.Settings.Format(), in.Format)
	}
	if _, err := brackets.NewGenerator(in.Settings); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if rules := in.Settings.Rules(); rules.BestOf < 0 || rules.MatchDurationMinutes < 0 {
		return fmt.Errorf("%w: match rules must not be negative", ErrInvalidConfig)
	}
	if s, ok := in.Settings.(*models.SwissSettings); ok && s.Rounds < 0 {
		return fmt.Errorf("%w: swiss rounds must not be negative", ErrInvalidConfig)
	}

	if in.MinPlayers == 0 {
		in.MinPlayers = defaultMinPlayers
	}
	if in.MinPlayers < 2 {
		return fmt.Errorf("%w: min_players must be at least 2", ErrInvalidConfig)
	}
	if in.MaxPlayers < in.MinPlayers {
		return fmt.Errorf("%w: max_players (%d) must be at least min_players (%d)", ErrInvalidConfig, in.MaxPlayers, in.MinPlayers)
	}

	if in.EntryFee.Amount < 0 {
		return fmt.Errorf("%w: entry fee must not be negative", ErrInvalidConfig)
	}
	if err := validatePrizes(in.Prizes); err != nil {
		return err
	}

	switch in.Seeding {
	case "":
		in.Seeding = models.SeedByRating
	case models.SeedByRating, models.SeedRandom, models.SeedByRegistrationOrder:
	default:
		return fmt.Errorf("%w: unknown seeding policy %q", ErrInvalidConfig, in.Seeding)
	}

	return validateSchedule(in.Schedule)
}

func validatePrizes(p models.PrizeConfig) error {
	if p.Pool < 0 {
		return fmt.Errorf("%w: prize pool must not be negative", ErrInvalidConfig)
	}
	total := 0
	places := make(map[int]bool, len(p.Distribution))
	for _, share := range p.Distribution {
		if share.Place < 1 {
			return fmt.Errorf("%w: prize place must be at least 1", ErrInvalidConfig)
		}
		if places[share.Place] {
			return fmt.Errorf("%w: prize place %d is listed twice", ErrInvalidConfig, share.Place)
		}
		if share.Percentage < 0 {
			return fmt.Errorf("%w: prize percentage must not be negative", ErrInvalidConfig)
		}
		places[share.Place] = true
		total += share.Percentage
	}
	if total > 100 {
		return fmt.Errorf("%w: prize distribution adds up to %d%%", ErrInvalidConfig, total)
	}
	for _, rule := range p.Specials {
		switch rule.Criterion {
		case models.CriterionMostTags, models.CriterionLongestSurvival, models.CriterionUnderdog:
		default:
			return fmt.Errorf("%w: unknown special prize criterion %q", ErrInvalidConfig, rule.Criterion)
		}
		if rule.Amount < 0 {
			return fmt.Errorf("%w: special prize amount must not be negative", ErrInvalidConfig)
		}
	}
	return nil
}

func validateSchedule(s models.Schedule) error {
	ordered := []*time.Time{s.RegistrationOpensAt, s.RegistrationClosesAt, s.StartsAt, s.EndsAt}
	var prev *time.Time
	for _, at := range ordered {
		if at == nil {
			continue
		}
		if prev != nil && at.Before(*prev) {
			return fmt.Errorf("%w: schedule instants are out of order", ErrInvalidConfig)
		}
		prev = at
	}
	if s.AutoStart && s.StartsAt == nil {
		return fmt.Errorf("%w: auto_start requires starts_at", ErrInvalidConfig)
	}
	return nil
}

// OpenRegistration moves a draft tournament into registration.
func (r *Registry) OpenRegistration(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	t, err := r.mutate(ctx, tournamentID, "open_registration", func(tx *txn) error {
		if err := transition(tx.t, models.StatusRegistration); err != nil {
			return err
		}
		tx.emit(events.RegistrationOpened, events.RegistrationOpenedPayload{
			Name:       tx.t.Name,
			MaxPlayers: tx.t.MaxPlayers,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t.Clone().Public(), nil
}

// CloseRegistration stops accepting registrations; check-in stays open until start.
func (r *Registry) CloseRegistration(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	t, err := r.mutate(ctx, tournamentID, "close_registration", func(tx *txn) error {
		if tx.t.Status != models.StatusRegistration {
			return fmt.Errorf("%w: registration is not open (status %s)", ErrInvalidState, tx.t.Status)
		}
		return transition(tx.t, models.StatusReady)
	})
	if err != nil {
		return nil, err
	}
	return t.Clone().Public(), nil
}

// StartTournament seeds the checked-in participants and generates the bracket.
func (r *Registry) StartTournament(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	t, err := r.mutate(ctx, tournamentID, "start_tournament", func(tx *txn) error {
		return r.start(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "tournament started",
		slog.String("tournament_id", t.ID),
		slog.Int("participants", len(t.Participants)),
		slog.Int("matches", len(t.Matches)))
	return t.Clone().Public(), nil
}

func (r *Registry) start(ctx context.Context, tx *txn) error {
	t := tx.t
	if t.Status != models.StatusRegistration && t.Status != models.StatusReady {
		return fmt.Errorf("%w: tournament %s cannot start from %s", ErrInvalidState, t.ID, t.Status)
	}

	var checkedIn, noShows []*models.Participant
	for _, p := range t.Participants {
		if p.CheckedIn {
			checkedIn = append(checkedIn, p)
		} else {
			noShows = append(noShows, p)
		}
	}
	if len(checkedIn) < t.MinPlayers || len(checkedIn) < 2 {
		return fmt.Errorf("%w: %d checked in, %d required", ErrInsufficientPlayers, len(checkedIn), t.MinPlayers)
	}

	seeded, err := brackets.Seed(checkedIn, t.Seeding, r.rng)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	gen, err := brackets.NewGenerator(t.Settings)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	bracket, err := gen.GenerateBracket(ctx, brackets.GenerateBracketParams{
		Settings:     t.Settings,
		Participants: seeded,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughParticipants) {
			return fmt.Errorf("%w: %v", ErrInsufficientPlayers, err)
		}
		return fmt.Errorf("%w: %s bracket generation failed: %v", ErrInternal, gen.GetName(), err)
	}

	// Места в листе ожидания так и не освободились.
	for _, w := range t.Waitlist {
		tx.refund(w.Participant, "waitlist_not_promoted")
	}
	t.Waitlist = nil

	t.Participants = seeded
	t.NoShows = noShows
	t.Rounds = bracket.Rounds
	t.Matches = bracket.Matches
	t.BracketSize = bracket.BracketSize
	t.Byes = bracket.Byes
	t.CurrentRound = 1
	startedAt := tx.now
	t.StartedAt = &startedAt
	if err := transition(t, models.StatusInProgress); err != nil {
		return err
	}

	tx.emit(events.TournamentStarted, events.TournamentStartedPayload{
		Format:       t.Format,
		Participants: len(seeded),
		Rounds:       len(bracket.Rounds),
		BracketSize:  bracket.BracketSize,
		Byes:         bracket.Byes,
	})
	for _, m := range t.Matches {
		switch m.Status {
		case models.MatchReady:
			tx.emit(events.MatchReady, events.MatchReadyPayload{Match: m.Clone()})
		case models.MatchBye:
			creditBye(t, m)
		}
	}
	return r.advance(ctx, tx)
}

// CancelTournament stops a tournament and refunds every paid entry.
func (r *Registry) CancelTournament(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	t, err := r.mutate(ctx, tournamentID, "cancel_tournament", func(tx *txn) error {
		if err := transition(tx.t, models.StatusCancelled); err != nil {
			return err
		}
		before := len(tx.t.Refunds)
		for _, p := range tx.t.Participants {
			tx.refund(p, "tournament_cancelled")
		}
		for _, p := range tx.t.NoShows {
			tx.refund(p, "tournament_cancelled")
		}
		for _, w := range tx.t.Waitlist {
			tx.refund(w.Participant, "tournament_cancelled")
		}
		tx.t.Waitlist = nil
		tx.emit(events.TournamentCancelled, events.TournamentCancelledPayload{
			Refunds: append([]models.Refund(nil), tx.t.Refunds[before:]...),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "tournament cancelled", slog.String("tournament_id", t.ID))
	return t.Clone().Public(), nil
}

// CompleteTournament finalises standings and prizes. Calling it on a completed
// tournament returns the awards computed the first time.
func (r *Registry) CompleteTournament(ctx context.Context, tournamentID string) ([]models.PrizeAward, error) {
	t, err := r.mutate(ctx, tournamentID, "complete_tournament", func(tx *txn) error {
		if tx.t.Status == models.StatusCompleted {
			return errNoChange
		}
		if tx.t.Status != models.StatusInProgress {
			return fmt.Errorf("%w: tournament %s is %s", ErrInvalidState, tx.t.ID, tx.t.Status)
		}
		for _, m := range tx.t.Matches {
			if !m.Status.IsTerminal() {
				return fmt.Errorf("%w: match %d is still %s", ErrInvalidState, m.ID, m.Status)
			}
		}
		if r.hasMoreRounds(tx.t) {
			return fmt.Errorf("%w: round %d has not been played yet", ErrInvalidState, len(tx.t.Rounds)+1)
		}
		return r.complete(tx)
	})
	if err != nil {
		return nil, err
	}
	return append([]models.PrizeAward(nil), t.Awards...), nil
}

// complete computes standings and awards exactly once per tournament.
func (r *Registry) complete(tx *txn) error {
	t := tx.t
	if t.Status == models.StatusCompleted {
		return nil
	}

	standings := ComputeStandings(t)
	for i := range standings {
		standings[i].Placement = intPtr(standings[i].Position)
		if p, ok := t.Participant(standings[i].ParticipantID); ok {
			p.FinalPlacement = intPtr(standings[i].Position)
		}
	}

	t.Standings = standings
	t.Awards = CalculatePrizes(t.Prizes, standings)
	completedAt := tx.now
	t.CompletedAt = &completedAt
	if err := transition(t, models.StatusCompleted); err != nil {
		return err
	}

	tx.emit(events.TournamentCompleted, events.TournamentCompletedPayload{
		Slug:      t.Slug,
		Name:      t.Name,
		Standings: append([]models.StandingEntry(nil), standings...),
		Awards:    append([]models.PrizeAward(nil), t.Awards...),
	})
	return nil
}

// refund records a returned entry fee for a paid participant.
func (tx *txn) refund(p *models.Participant, reason string) (models.Refund, bool) {
	if p == nil || !p.FeePaid || tx.t.EntryFee.Amount <= 0 {
		return models.Refund{}, false
	}
	p.FeePaid = false
	refund := models.Refund{
		ParticipantID: p.ID,
		Amount:        tx.t.EntryFee.Amount,
		Currency:      tx.t.EntryFee.Currency,
		Reason:        reason,
		At:            tx.now,
	}
	tx.t.Refunds = append(tx.t.Refunds, refund)
	return refund, true
}

// AuthorizeOrganizer checks that actorID may manage the tournament.
func (r *Registry) AuthorizeOrganizer(ctx context.Context, tournamentID, actorID string, isAdmin bool) error {
	t, err := r.snapshot(tournamentID)
	if err != nil {
		return err
	}
	if isAdmin || (actorID != "" && t.OrganizerID == actorID) {
		return nil
	}
	return fmt.Errorf("%w: %s does not organize tournament %s", ErrUnauthorized, actorID, tournamentID)
}

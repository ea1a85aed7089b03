package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Dosada05/tournament-engine/models"
)

type TournamentSummary struct {
	ID           string                  `json:"id"`
	Slug         string                  `json:"slug"`
	Name         string                  `json:"name"`
	Format       models.Format           `json:"format"`
	Status       models.TournamentStatus `json:"status"`
	Participants int                     `json:"participants"`
	Waitlisted   int                     `json:"waitlisted"`
	MaxPlayers   int                     `json:"max_players"`
	CurrentRound int                     `json:"current_round"`
	Private      bool                    `json:"private"`
	CreatedAt    time.Time               `json:"created_at"`
}

type RoundView struct {
	Number  int                `json:"number"`
	Name    string             `json:"name"`
	Bracket models.BracketSide `json:"bracket"`
	Matches []*models.Match    `json:"matches"`
}

// BracketView - снимок сетки, собранный из одной версии турнира.
type BracketView struct {
	TournamentID  string                  `json:"tournament_id"`
	Format        models.Format           `json:"format"`
	Status        models.TournamentStatus `json:"status"`
	Version       int64                   `json:"version"`
	CurrentRound  int                     `json:"current_round"`
	BracketSize   int                     `json:"bracket_size,omitempty"`
	Byes          int                     `json:"byes,omitempty"`
	RequiresReset bool                    `json:"requires_reset,omitempty"`
	Rounds        []RoundView             `json:"rounds"`
}

func (r *Registry) GetTournament(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	t, err := r.snapshot(tournamentID)
	if err != nil {
		return nil, err
	}
	return t.Clone().Public(), nil
}

// ListTournaments returns summaries ordered by creation time, optionally
// filtered by status.
func (r *Registry) ListTournaments(ctx context.Context, status models.TournamentStatus) ([]TournamentSummary, error) {
	ids := r.ids()
	list := make([]TournamentSummary, 0, len(ids))
	for _, id := range ids {
		t, err := r.snapshot(id)
		if err != nil {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		list = append(list, TournamentSummary{
			ID:           t.ID,
			Slug:         t.Slug,
			Name:         t.Name,
			Format:       t.Format,
			Status:       t.Status,
			Participants: len(t.Participants),
			Waitlisted:   len(t.Waitlist),
			MaxPlayers:   t.MaxPlayers,
			CurrentRound: t.CurrentRound,
			Private:      t.IsPrivate(),
			CreatedAt:    t.CreatedAt,
		})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (r *Registry) GetBracket(ctx context.Context, tournamentID string) (*BracketView, error) {
	t, err := r.snapshot(tournamentID)
	if err != nil {
		return nil, err
	}
	view := &BracketView{
		TournamentID:  t.ID,
		Format:        t.Format,
		Status:        t.Status,
		Version:       t.Version,
		CurrentRound:  t.CurrentRound,
		BracketSize:   t.BracketSize,
		Byes:          t.Byes,
		RequiresReset: t.RequiresReset,
		Rounds:        make([]RoundView, 0, len(t.Rounds)),
	}
	for _, round := range t.Rounds {
		rv := RoundView{Number: round.Number, Name: round.Name, Bracket: round.Bracket}
		for _, id := range round.MatchIDs {
			m, ok := t.MatchByID(id)
			if !ok {
				return nil, fmt.Errorf("%w: round %d references unknown match %d", ErrInternal, round.Number, id)
			}
			rv.Matches = append(rv.Matches, m.Clone())
		}
		view.Rounds = append(view.Rounds, rv)
	}
	return view, nil
}

// GetStandings returns the final standings of a completed tournament and live
// standings otherwise.
func (r *Registry) GetStandings(ctx context.Context, tournamentID string) ([]models.StandingEntry, error) {
	t, err := r.snapshot(tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status == models.StatusCompleted {
		return append([]models.StandingEntry(nil), t.Standings...), nil
	}
	return ComputeStandings(t), nil
}

func (r *Registry) GetPlayerMatches(ctx context.Context, tournamentID, participantID string) ([]*models.Match, error) {
	t, err := r.snapshot(tournamentID)
	if err != nil {
		return nil, err
	}
	known := false
	if _, ok := t.Participant(participantID); ok {
		known = true
	}
	for _, p := range t.NoShows {
		if p.ID == participantID {
			known = true
		}
	}
	if !known && t.WaitlistPosition(participantID) == 0 {
		return nil, fmt.Errorf("%w: %s in tournament %s", ErrParticipantNotFound, participantID, tournamentID)
	}

	matches := make([]*models.Match, 0)
	for _, m := range t.Matches {
		if m.HasParticipant(participantID) {
			matches = append(matches, m.Clone())
		}
	}
	return matches, nil
}

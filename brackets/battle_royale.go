package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

type BattleRoyaleGenerator struct{}

func NewBattleRoyaleGenerator() RoundGenerator {
	return &BattleRoyaleGenerator{}
}

func (g *BattleRoyaleGenerator) GetName() string {
	return "BattleRoyale"
}

// GenerateBracket builds the first round of groups; each later round is built
// by NextRound from the previous round's qualifiers.
func (g *BattleRoyaleGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error) {
	if len(params.Participants) < 2 {
		return nil, ErrNotEnoughParticipants
	}
	round, matches, err := g.NextRound(ctx, NextRoundParams{
		Settings:     params.Settings,
		Participants: params.Participants,
		RoundNumber:  1,
	})
	if err != nil {
		return nil, err
	}

	a := &arena{}
	r := a.addRound(round.Name, round.Bracket)
	for _, m := range matches {
		added := a.addMatch(r, len(m.Slots))
		added.Slots = m.Slots
		added.Status = m.Status
		added.WinnerID = m.WinnerID
		added.QualifyCount = m.QualifyCount
		added.Placements = m.Placements
	}
	return a.bracket(), nil
}

// NextRound splits participants into ceil(n/playersPerMatch) groups, dealing
// them out in snake order so group sizes differ by at most one and strength is
// spread evenly. A group keeps ceil(size/2) qualifiers; a round with a single
// group is the final and keeps only its winner.
func (g *BattleRoyaleGenerator) NextRound(ctx context.Context, params NextRoundParams) (*models.Round, []*models.Match, error) {
	settings, ok := params.Settings.(*models.BattleRoyaleSettings)
	if !ok {
		return nil, nil, fmt.Errorf("%w: battle royale generator got %T", ErrInvalidSettings, params.Settings)
	}
	if settings.PlayersPerMatch < 2 {
		return nil, nil, fmt.Errorf("%w: players_per_match must be at least 2", ErrInvalidSettings)
	}
	n := len(params.Participants)
	if n < 2 {
		return nil, nil, ErrNotEnoughParticipants
	}

	groups := GroupCount(n, settings.PlayersPerMatch)
	members := make([][]*models.Participant, groups)
	for i, p := range params.Participants {
		row, col := i/groups, i%groups
		if row%2 == 1 {
			col = groups - 1 - col
		}
		members[col] = append(members[col], p)
	}

	name := fmt.Sprintf("Round %d", params.RoundNumber)
	if groups == 1 {
		name = "Final"
	}
	round := &models.Round{Number: params.RoundNumber, Name: name, Bracket: models.BracketMain}

	matches := make([]*models.Match, 0, groups)
	for i, group := range members {
		m := &models.Match{
			Round:        params.RoundNumber,
			Position:     i + 1,
			Bracket:      models.BracketMain,
			Status:       models.MatchReady,
			QualifyCount: (len(group) + 1) / 2,
			Slots:        make([]models.Slot, len(group)),
		}
		for j, p := range group {
			m.Slots[j] = models.Slot{ParticipantID: p.ID, Settled: true}
		}
		if groups == 1 {
			m.QualifyCount = 1
		}
		if len(group) == 1 {
			m.Status = models.MatchBye
			m.WinnerID = group[0].ID
			m.Placements = []string{group[0].ID}
		}
		matches = append(matches, m)
	}
	return round, matches, nil
}

// GroupCount is the number of groups n participants are split into.
func GroupCount(n, playersPerMatch int) int {
	if playersPerMatch < 1 {
		return 1
	}
	return (n + playersPerMatch - 1) / playersPerMatch
}

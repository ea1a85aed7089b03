package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

type DoubleEliminationGenerator struct {
}

func NewDoubleEliminationGenerator() BracketGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

// GenerateBracket builds the winners tree, 2*(k-1) losers rounds and the grand
// final. Losers rounds alternate: odd rounds pair survivors of the previous
// losers round (round 1 pairs winners-round-1 losers), even rounds take the
// losers dropping from the next winners round in reverse order to delay rematches.
func (g *DoubleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error) {
	if len(params.Participants) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	a := &arena{}
	winners := buildEliminationTree(a, params.Participants, models.BracketWinners, "Winners ")
	k := len(winners.rounds)
	losersRounds := 2 * (k - 1)

	var prev []*models.Match
	for lr := 1; lr <= losersRounds; lr++ {
		round := a.addRound(losersRoundName(lr, losersRounds), models.BracketLosers)
		var current []*models.Match
		switch {
		case lr == 1:
			w1 := winners.rounds[0]
			for i := 0; i < len(w1); i += 2 {
				m := a.addMatch(round, 2)
				link(w1[i], models.OutcomeLoser, m, 0)
				link(w1[i+1], models.OutcomeLoser, m, 1)
				current = append(current, m)
			}
		case lr%2 == 0:
			drop := winners.rounds[lr/2]
			if len(drop) != len(prev) {
				return nil, fmt.Errorf("%w: losers round %d expects %d drops, winners round has %d", ErrInvalidLink, lr, len(prev), len(drop))
			}
			for j := range prev {
				m := a.addMatch(round, 2)
				link(prev[j], models.OutcomeWinner, m, 0)
				link(drop[len(drop)-1-j], models.OutcomeLoser, m, 1)
				current = append(current, m)
			}
		default:
			for i := 0; i < len(prev); i += 2 {
				m := a.addMatch(round, 2)
				link(prev[i], models.OutcomeWinner, m, 0)
				link(prev[i+1], models.OutcomeWinner, m, 1)
				current = append(current, m)
			}
		}
		prev = current
	}

	gfRound := a.addRound(grandFinalsName, models.BracketGrandFinals)
	gf := a.addMatch(gfRound, 2)
	link(winners.final(), models.OutcomeWinner, gf, 0)
	if losersRounds == 0 {
		link(winners.final(), models.OutcomeLoser, gf, 1)
	} else {
		link(prev[0], models.OutcomeWinner, gf, 1)
	}

	if err := ValidateLinks(a.matches); err != nil {
		return nil, err
	}
	if err := winners.settleFirstRound(a.matches); err != nil {
		return nil, err
	}

	b := a.bracket()
	b.BracketSize = winners.size
	b.Byes = winners.size - len(params.Participants)
	return b, nil
}

// IsGrandFinal reports whether m is the first grand final match.
func IsGrandFinal(m *models.Match) bool {
	return m.Bracket == models.BracketGrandFinals && !m.IsBracketReset
}

// NewBracketReset builds the replay of a grand final the losers-bracket champion
// won. Slot order matches the original: winners champion first.
func NewBracketReset(gf *models.Match, roundNumber int) (*models.Round, *models.Match) {
	round := &models.Round{Name: grandFinalsResetName, Bracket: models.BracketGrandFinals, Number: roundNumber}
	m := &models.Match{
		Round:          roundNumber,
		Position:       1,
		Bracket:        models.BracketGrandFinals,
		Status:         models.MatchReady,
		IsBracketReset: true,
		PrevMatchIDs:   []int{gf.ID},
		Slots: []models.Slot{
			{ParticipantID: gf.Slots[0].ParticipantID, Settled: true},
			{ParticipantID: gf.Slots[1].ParticipantID, Settled: true},
		},
	}
	return round, m
}

package brackets

import (
	"context"
	"fmt"
	"math"

	"github.com/Dosada05/tournament-engine/models"
)

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error) {
	if len(params.Participants) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	a := &arena{}
	tree := buildEliminationTree(a, params.Participants, models.BracketMain, "")
	if err := ValidateLinks(a.matches); err != nil {
		return nil, err
	}
	if err := tree.settleFirstRound(a.matches); err != nil {
		return nil, err
	}

	b := a.bracket()
	b.BracketSize = tree.size
	b.Byes = tree.size - len(params.Participants)
	return b, nil
}

// eliminationTree is a winners-advance tree; rounds[0] is the first round.
type eliminationTree struct {
	size   int
	rounds [][]*models.Match
}

// buildEliminationTree lays out ceil(log2(n)) rounds. Round 1 pairs seed i with
// seed size-1-i, placed in standard bracket order so that the top two seeds can
// only meet in the final.
func buildEliminationTree(a *arena, seeded []*models.Participant, side models.BracketSide, prefix string) *eliminationTree {
	n := len(seeded)
	numRounds := int(math.Ceil(math.Log2(float64(n))))
	size := 1 << uint(numRounds)

	tree := &eliminationTree{size: size}
	order := bracketOrder(size)

	first := a.addRound(prefix+eliminationRoundName(1, numRounds, size), side)
	var current []*models.Match
	for i := 0; i < len(order); i += 2 {
		m := a.addMatch(first, 2)
		for slot, seedIdx := range order[i : i+2] {
			var p *models.Participant
			if seedIdx < n {
				p = seeded[seedIdx]
			}
			seat(m, slot, p)
		}
		current = append(current, m)
	}
	tree.rounds = append(tree.rounds, current)

	for r := 2; r <= numRounds; r++ {
		round := a.addRound(prefix+eliminationRoundName(r, numRounds, size), side)
		next := make([]*models.Match, 0, len(current)/2)
		for i := 0; i < len(current); i += 2 {
			m := a.addMatch(round, 2)
			link(current[i], models.OutcomeWinner, m, 0)
			link(current[i+1], models.OutcomeWinner, m, 1)
			next = append(next, m)
		}
		tree.rounds = append(tree.rounds, next)
		current = next
	}
	return tree
}

// settleFirstRound marks first-round matches ready and pushes byes forward.
func (t *eliminationTree) settleFirstRound(matches []*models.Match) error {
	for _, m := range t.rounds[0] {
		if _, err := Settle(matches, m); err != nil {
			return fmt.Errorf("settling match %d: %w", m.ID, err)
		}
	}
	return nil
}

func (t *eliminationTree) final() *models.Match {
	last := t.rounds[len(t.rounds)-1]
	return last[0]
}

// bracketOrder returns zero-based seed indexes in bracket position order;
// consecutive pairs are first-round opponents (i vs size-1-i).
func bracketOrder(size int) []int {
	order := []int{0}
	for len(order) < size {
		m := len(order) * 2
		next := make([]int, 0, m)
		for _, s := range order {
			next = append(next, s, m-1-s)
		}
		order = next
	}
	return order
}

package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket schedules every pair exactly once using the circle method.
// An odd field is padded with a virtual BYE; its pairings produce no match.
// The last position is pinned and meets the position rotating through index
// `round`; the remaining positions pair as (round+i) and (n-1-i+round) mod (n-1).
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error) {
	participants := params.Participants
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w: round robin needs 2, got %d", ErrNotEnoughParticipants, len(participants))
	}

	positions := make([]*models.Participant, len(participants))
	copy(positions, participants)
	if len(positions)%2 == 1 {
		positions = append(positions, nil)
	}
	n := len(positions)

	a := &arena{}
	for round := 0; round < n-1; round++ {
		r := a.addRound(fmt.Sprintf("Round %d", round+1), models.BracketMain)

		pairs := make([][2]int, 0, n/2)
		pairs = append(pairs, [2]int{round % (n - 1), n - 1})
		for i := 1; i < n/2; i++ {
			pairs = append(pairs, [2]int{(round + i) % (n - 1), (n - 1 - i + round) % (n - 1)})
		}

		for _, pair := range pairs {
			home, away := positions[pair[0]], positions[pair[1]]
			if home == nil || away == nil {
				continue
			}
			if away.Seed < home.Seed {
				home, away = away, home
			}
			m := a.addMatch(r, 2)
			seat(m, 0, home)
			seat(m, 1, away)
			if _, err := Settle(a.matches, m); err != nil {
				return nil, err
			}
		}
	}
	return a.bracket(), nil
}

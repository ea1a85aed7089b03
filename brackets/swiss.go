package brackets

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/Dosada05/tournament-engine/models"
)

// swissSearchBudget caps the backtracking pairing search before falling back to
// greedy pairing that allows rematches.
const swissSearchBudget = 100_000

type SwissGenerator struct{}

func NewSwissGenerator() RoundGenerator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// SwissRounds returns the number of rounds to play for n participants.
func SwissRounds(s *models.SwissSettings, n int) int {
	rounds := 0
	if s != nil {
		rounds = s.Rounds
	}
	if rounds <= 0 {
		rounds = int(math.Ceil(math.Log2(float64(n))))
	}
	if rounds > n-1 {
		rounds = n - 1
	}
	if rounds < 1 {
		rounds = 1
	}
	return rounds
}

// GenerateBracket materialises round one only; later rounds come from NextRound.
func (g *SwissGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error) {
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
	}
	return a.bracket(), nil
}

// NextRound pairs participants by running score (wins*3 + draws), best first.
// Pairing walks down the ranking so each player meets the nearest-ranked
// opponent they have not played yet; a backtracking search guarantees no
// rematch whenever a rematch-free pairing exists.
func (g *SwissGenerator) NextRound(ctx context.Context, params NextRoundParams) (*models.Round, []*models.Match, error) {
	if len(params.Participants) < 2 {
		return nil, nil, ErrNotEnoughParticipants
	}

	ranked := make([]*models.Participant, len(params.Participants))
	copy(ranked, params.Participants)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := ranked[i].Stats.Points(), ranked[j].Stats.Points()
		if pi != pj {
			return pi > pj
		}
		return ranked[i].Seed < ranked[j].Seed
	})

	played := make(map[pairKey]bool)
	hadBye := make(map[string]bool)
	for _, m := range params.History {
		ids := m.ParticipantIDs()
		if len(ids) == 2 {
			played[newPairKey(ids[0], ids[1])] = true
		}
		if m.Status == models.MatchBye && m.WinnerID != "" {
			hadBye[m.WinnerID] = true
		}
	}

	pool := make([]string, 0, len(ranked))
	for _, p := range ranked {
		pool = append(pool, p.ID)
	}

	byeID := ""
	if len(pool)%2 == 1 {
		idx := len(pool) - 1
		for i := len(pool) - 1; i >= 0; i-- {
			if !hadBye[pool[i]] {
				idx = i
				break
			}
		}
		byeID = pool[idx]
		pool = append(pool[:idx:idx], pool[idx+1:]...)
	}

	budget := swissSearchBudget
	pairs, ok := pairWithoutRematch(pool, played, &budget)
	if !ok {
		pairs = pairGreedy(pool, played)
	}

	round := &models.Round{
		Number:  params.RoundNumber,
		Name:    fmt.Sprintf("Round %d", params.RoundNumber),
		Bracket: models.BracketMain,
	}
	matches := make([]*models.Match, 0, len(pairs)+1)
	for i, pair := range pairs {
		matches = append(matches, &models.Match{
			Round:    params.RoundNumber,
			Position: i + 1,
			Bracket:  models.BracketMain,
			Status:   models.MatchReady,
			Slots: []models.Slot{
				{ParticipantID: pair[0], Settled: true},
				{ParticipantID: pair[1], Settled: true},
			},
		})
	}
	if byeID != "" {
		matches = append(matches, &models.Match{
			Round:    params.RoundNumber,
			Position: len(pairs) + 1,
			Bracket:  models.BracketMain,
			Status:   models.MatchBye,
			WinnerID: byeID,
			Slots: []models.Slot{
				{ParticipantID: byeID, Settled: true},
				{Settled: true},
			},
		})
	}
	return round, matches, nil
}

type pairKey struct{ a, b string }

func newPairKey(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{x, y}
}

func pairWithoutRematch(pool []string, played map[pairKey]bool, budget *int) ([][2]string, bool) {
	if len(pool) == 0 {
		return nil, true
	}
	head := pool[0]
	for j := 1; j < len(pool); j++ {
		*budget--
		if *budget <= 0 {
			return nil, false
		}
		if played[newPairKey(head, pool[j])] {
			continue
		}
		rest := make([]string, 0, len(pool)-2)
		rest = append(rest, pool[1:j]...)
		rest = append(rest, pool[j+1:]...)
		if sub, ok := pairWithoutRematch(rest, played, budget); ok {
			return append([][2]string{{head, pool[j]}}, sub...), true
		}
	}
	return nil, false
}

// pairGreedy pairs each player with the nearest unplayed opponent, or the
// nearest opponent at all when every remaining one is a rematch.
func pairGreedy(pool []string, played map[pairKey]bool) [][2]string {
	remaining := append([]string(nil), pool...)
	var pairs [][2]string
	for len(remaining) >= 2 {
		head := remaining[0]
		pick := 1
		for j := 1; j < len(remaining); j++ {
			if !played[newPairKey(head, remaining[j])] {
				pick = j
				break
			}
		}
		pairs = append(pairs, [2]string{head, remaining[pick]})
		next := make([]string, 0, len(remaining)-2)
		next = append(next, remaining[1:pick]...)
		next = append(next, remaining[pick+1:]...)
		remaining = next
	}
	return pairs
}

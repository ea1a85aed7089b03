package brackets

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func players(n int) []*models.Participant {
	out := make([]*models.Participant, n)
	for i := range out {
		out[i] = &models.Participant{
			ID:                fmt.Sprintf("p%d", i+1),
			DisplayName:       fmt.Sprintf("Player %d", i+1),
			Rating:            2000 - i*10,
			RegistrationOrder: i + 1,
			Seed:              i + 1,
		}
	}
	return out
}

// playOut decides every ready match in favour of slot 0 until nothing is ready
// and returns how many matches were actually played.
func playOut(t *testing.T, matches []*models.Match) int {
	t.Helper()
	played := 0
	for {
		var next *models.Match
		for _, m := range matches {
			if m.Status == models.MatchReady {
				next = m
				break
			}
		}
		if next == nil {
			return played
		}
		next.WinnerID = next.Slots[0].ParticipantID
		next.LoserID = next.Slots[1].ParticipantID
		next.Status = models.MatchCompleted
		played++
		_, err := Propagate(matches, next)
		require.NoError(t, err)
	}
}

func countStatus(matches []*models.Match, status models.MatchStatus) int {
	n := 0
	for _, m := range matches {
		if m.Status == status {
			n++
		}
	}
	return n
}

func TestSingleEliminationAnySize(t *testing.T) {
	for n := 2; n <= 33; n++ {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			b, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
				Settings:     &models.SingleEliminationSettings{},
				Participants: players(n),
			})
			require.NoError(t, err)

			rounds := int(math.Ceil(math.Log2(float64(n))))
			size := 1 << rounds
			assert.Len(t, b.Rounds, rounds)
			assert.Len(t, b.Matches, size-1)
			assert.Equal(t, size, b.BracketSize)
			assert.Equal(t, size-n, b.Byes)
			assert.Equal(t, "Final", b.Rounds[len(b.Rounds)-1].Name)
			require.NoError(t, ValidateLinks(b.Matches))

			assert.Equal(t, n-1, playOut(t, b.Matches))
			for _, m := range b.Matches {
				assert.True(t, m.Status.IsTerminal(), "match %d is %s", m.ID, m.Status)
			}
			final := b.Matches[len(b.Matches)-1]
			assert.Equal(t, "p1", final.WinnerID)
		})
	}
}

func TestSingleEliminationFivePlayers(t *testing.T) {
	b, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Settings:     &models.SingleEliminationSettings{},
		Participants: players(5),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, b.Byes)
	names := make([]string, len(b.Rounds))
	for i, r := range b.Rounds {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"Round of 8", "Semi-Finals", "Final"}, names)

	first := b.Matches[:4]
	assert.Equal(t, 3, countStatus(first, models.MatchBye))
	// 4 против 5 - единственный настоящий матч первого раунда
	assert.Equal(t, models.MatchReady, first[1].Status)
	assert.Equal(t, []string{"p4", "p5"}, first[1].ParticipantIDs())

	// Сеяные 2 и 3 прошли по бай и уже встречаются в полуфинале.
	semi := b.Matches[5]
	assert.Equal(t, models.MatchReady, semi.Status)
	assert.ElementsMatch(t, []string{"p2", "p3"}, semi.ParticipantIDs())
	assert.Equal(t, models.MatchPending, b.Matches[4].Status)
}

func TestDoubleEliminationStructure(t *testing.T) {
	b, err := NewDoubleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Settings:     &models.DoubleEliminationSettings{},
		Participants: players(4),
	})
	require.NoError(t, err)
	require.NoError(t, ValidateLinks(b.Matches))

	names := make([]string, len(b.Rounds))
	for i, r := range b.Rounds {
		names[i] = r.Name
	}
	assert.Equal(t, []string{
		"Winners Semi-Finals", "Winners Final",
		"Losers Round 1", "Losers Final",
		"Grand Finals",
	}, names)
	assert.Len(t, b.Matches, 6)

	gf := b.Matches[len(b.Matches)-1]
	assert.True(t, IsGrandFinal(gf))
	assert.Nil(t, gf.NextMatchID)
	assert.Nil(t, gf.LoserNextMatchID)
}

func TestDoubleEliminationEveryoneLosesTwice(t *testing.T) {
	for n := 2; n <= 12; n++ {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			b, err := NewDoubleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
				Settings:     &models.DoubleEliminationSettings{},
				Participants: players(n),
			})
			require.NoError(t, err)
			require.NoError(t, ValidateLinks(b.Matches))

			assert.Equal(t, 2*n-2, playOut(t, b.Matches))
			gf := b.Matches[len(b.Matches)-1]
			assert.Equal(t, models.MatchCompleted, gf.Status)
			assert.Equal(t, "p1", gf.WinnerID)
		})
	}
}

func TestNewBracketReset(t *testing.T) {
	gf := &models.Match{
		ID:      6,
		Bracket: models.BracketGrandFinals,
		Slots: []models.Slot{
			{ParticipantID: "p1", Settled: true},
			{ParticipantID: "p3", Settled: true},
		},
	}
	round, m := NewBracketReset(gf, 6)

	assert.Equal(t, "Grand Finals Reset", round.Name)
	assert.Equal(t, models.MatchReady, m.Status)
	assert.True(t, m.IsBracketReset)
	assert.False(t, IsGrandFinal(m))
	assert.Equal(t, []string{"p1", "p3"}, m.ParticipantIDs())
	assert.Equal(t, []int{6}, m.PrevMatchIDs)
}

func TestRoundRobinPairsEveryoneOnce(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 8, 9} {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			b, err := NewRoundRobinGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
				Settings:     &models.RoundRobinSettings{},
				Participants: players(n),
			})
			require.NoError(t, err)

			wantRounds := n - 1
			if n%2 == 1 {
				wantRounds = n
			}
			assert.Len(t, b.Rounds, wantRounds)
			assert.Len(t, b.Matches, n*(n-1)/2)

			seen := make(map[pairKey]bool)
			for _, m := range b.Matches {
				ids := m.ParticipantIDs()
				require.Len(t, ids, 2)
				key := newPairKey(ids[0], ids[1])
				assert.False(t, seen[key], "pair %v scheduled twice", key)
				seen[key] = true
				assert.Equal(t, models.MatchReady, m.Status)
			}

			for _, r := range b.Rounds {
				busy := make(map[string]bool)
				for _, id := range r.MatchIDs {
					for _, pid := range b.Matches[id-1].ParticipantIDs() {
						assert.False(t, busy[pid], "%s plays twice in %s", pid, r.Name)
						busy[pid] = true
					}
				}
			}
		})
	}
}

func TestSwissRounds(t *testing.T) {
	assert.Equal(t, 3, SwissRounds(&models.SwissSettings{}, 8))
	assert.Equal(t, 3, SwissRounds(&models.SwissSettings{}, 5))
	assert.Equal(t, 1, SwissRounds(&models.SwissSettings{}, 2))
	assert.Equal(t, 3, SwissRounds(&models.SwissSettings{Rounds: 10}, 4))
	assert.Equal(t, 2, SwissRounds(&models.SwissSettings{Rounds: 2}, 16))
}

func TestSwissNoRematches(t *testing.T) {
	for _, n := range []int{8, 7} {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			ps := players(n)
			byID := make(map[string]*models.Participant, n)
			for _, p := range ps {
				byID[p.ID] = p
			}

			settings := &models.SwissSettings{}
			gen := NewSwissGenerator()
			var history []*models.Match
			pairs := make(map[pairKey]bool)
			byes := make(map[string]int)

			for round := 1; round <= SwissRounds(settings, n); round++ {
				_, matches, err := gen.NextRound(context.Background(), NextRoundParams{
					Settings:     settings,
					Participants: ps,
					History:      history,
					RoundNumber:  round,
				})
				require.NoError(t, err)
				assert.Len(t, matches, (n+1)/2)

				for _, m := range matches {
					if m.Status == models.MatchBye {
						byes[m.WinnerID]++
						byID[m.WinnerID].Stats.Wins++
						history = append(history, m)
						continue
					}
					ids := m.ParticipantIDs()
					require.Len(t, ids, 2)
					key := newPairKey(ids[0], ids[1])
					assert.False(t, pairs[key], "rematch %v in round %d", key, round)
					pairs[key] = true

					winner, loser := ids[0], ids[1]
					if rng.Intn(2) == 1 {
						winner, loser = loser, winner
					}
					m.WinnerID, m.LoserID = winner, loser
					m.Status = models.MatchCompleted
					byID[winner].Stats.Wins++
					byID[loser].Stats.Losses++
					history = append(history, m)
				}
			}

			for id, count := range byes {
				assert.Equal(t, 1, count, "%s received %d byes", id, count)
			}
		})
	}
}

func TestSwissPairsByScore(t *testing.T) {
	ps := players(4)
	ps[2].Stats.Wins = 1 // p3
	ps[3].Stats.Wins = 1 // p4
	history := []*models.Match{
		{Status: models.MatchCompleted, Slots: []models.Slot{{ParticipantID: "p1", Settled: true}, {ParticipantID: "p3", Settled: true}}},
		{Status: models.MatchCompleted, Slots: []models.Slot{{ParticipantID: "p2", Settled: true}, {ParticipantID: "p4", Settled: true}}},
	}

	_, matches, err := NewSwissGenerator().NextRound(context.Background(), NextRoundParams{
		Settings:     &models.SwissSettings{},
		Participants: ps,
		History:      history,
		RoundNumber:  2,
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, []string{"p3", "p4"}, matches[0].ParticipantIDs())
	assert.Equal(t, []string{"p1", "p2"}, matches[1].ParticipantIDs())
}

func TestBattleRoyaleGroups(t *testing.T) {
	settings := &models.BattleRoyaleSettings{PlayersPerMatch: 4}
	_, matches, err := NewBattleRoyaleGenerator().NextRound(context.Background(), NextRoundParams{
		Settings:     settings,
		Participants: players(10),
		RoundNumber:  1,
	})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, []string{"p1", "p6", "p7"}, matches[0].ParticipantIDs())
	assert.Equal(t, []string{"p2", "p5", "p8"}, matches[1].ParticipantIDs())
	assert.Equal(t, []string{"p3", "p4", "p9", "p10"}, matches[2].ParticipantIDs())
	for _, m := range matches {
		assert.Equal(t, 2, m.QualifyCount)
		assert.Equal(t, models.MatchReady, m.Status)
	}
}

func TestBattleRoyaleFinal(t *testing.T) {
	round, matches, err := NewBattleRoyaleGenerator().NextRound(context.Background(), NextRoundParams{
		Settings:     &models.BattleRoyaleSettings{PlayersPerMatch: 4},
		Participants: players(3),
		RoundNumber:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", round.Name)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].QualifyCount)
	assert.Len(t, matches[0].Slots, 3)
}

func TestNewGeneratorRejectsBadSettings(t *testing.T) {
	_, err := NewGenerator(&models.BattleRoyaleSettings{PlayersPerMatch: 1})
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = NewGenerator(nil)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	gen, err := NewGenerator(&models.SwissSettings{})
	require.NoError(t, err)
	_, ok := gen.(RoundGenerator)
	assert.True(t, ok)
}

func TestGenerateNeedsTwoPlayers(t *testing.T) {
	gens := []BracketGenerator{
		NewSingleEliminationGenerator(),
		NewDoubleEliminationGenerator(),
		NewRoundRobinGenerator(),
		NewSwissGenerator(),
		NewBattleRoyaleGenerator(),
	}
	settings := []models.FormatSettings{
		&models.SingleEliminationSettings{},
		&models.DoubleEliminationSettings{},
		&models.RoundRobinSettings{},
		&models.SwissSettings{},
		&models.BattleRoyaleSettings{PlayersPerMatch: 4},
	}
	for i, g := range gens {
		_, err := g.GenerateBracket(context.Background(), GenerateBracketParams{
			Settings:     settings[i],
			Participants: players(1),
		})
		assert.ErrorIs(t, err, ErrNotEnoughParticipants, g.GetName())
	}
}

func TestValidateLinksDetectsCycle(t *testing.T) {
	one, two := 1, 2
	matches := []*models.Match{
		{ID: 1, NextMatchID: &two, PrevMatchIDs: []int{2}, Slots: make([]models.Slot, 2)},
		{ID: 2, NextMatchID: &one, PrevMatchIDs: []int{1}, Slots: make([]models.Slot, 2)},
	}
	assert.ErrorIs(t, ValidateLinks(matches), ErrMatchGraphCycle)

	matches[1].PrevMatchIDs = nil
	assert.ErrorIs(t, ValidateLinks(matches), ErrInvalidLink)
}

package services

import (
	"testing"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePrizes(t *testing.T) {
	standings := []models.StandingEntry{
		{ParticipantID: "a", Position: 1, Seed: 2, Wins: 3, Tags: 4},
		{ParticipantID: "b", Position: 2, Seed: 1, Wins: 2, Tags: 4, SurvivalSeconds: 90, Eliminated: true},
		{ParticipantID: "c", Position: 3, Seed: 4, Wins: 2, Eliminated: true},
		{ParticipantID: "d", Position: 4, Seed: 3, Wins: 0, Eliminated: true},
	}

	t.Run("distribution", func(t *testing.T) {
		awards := CalculatePrizes(models.PrizeConfig{
			Pool:     999,
			Currency: "EUR",
			Distribution: []models.PrizeShare{
				{Place: 2, Percentage: 30},
				{Place: 1, Percentage: 60},
				{Place: 3, Percentage: 0},
				{Place: 7, Percentage: 10},
			},
		}, standings)
		require.Len(t, awards, 2)
		assert.Equal(t, "a", awards[0].ParticipantID)
		assert.Equal(t, int64(599), awards[0].Amount)
		assert.Equal(t, "b", awards[1].ParticipantID)
		assert.Equal(t, int64(299), awards[1].Amount)
		assert.Equal(t, "EUR", awards[1].Currency)
	})

	t.Run("specials", func(t *testing.T) {
		awards := CalculatePrizes(models.PrizeConfig{
			Currency: "EUR",
			Specials: []models.SpecialPrizeRule{
				{Criterion: models.CriterionMostTags, Amount: 50},
				{Criterion: models.CriterionLongestSurvival, Title: "Last one standing"},
				{Criterion: models.CriterionUnderdog, CosmeticID: "frame-gold"},
			},
		}, standings)
		require.Len(t, awards, 3)

		assert.Equal(t, "a", awards[0].ParticipantID, "tie on tags goes to the better standing")
		assert.Equal(t, "EUR", awards[0].Currency)
		assert.Equal(t, "b", awards[1].ParticipantID)
		assert.Empty(t, awards[1].Currency, "cosmetic-only awards carry no currency")
		assert.Equal(t, "c", awards[2].ParticipantID)
		assert.Equal(t, "frame-gold", awards[2].CosmeticID)
	})

	t.Run("special without a candidate", func(t *testing.T) {
		awards := CalculatePrizes(models.PrizeConfig{
			Specials: []models.SpecialPrizeRule{{Criterion: models.CriterionLongestSurvival}},
		}, standings[:1])
		assert.Empty(t, awards)
	})
}

func TestComputeStandingsElimination(t *testing.T) {
	tour := &models.Tournament{
		Format: models.FormatSingleElimination,
		Participants: []*models.Participant{
			{ID: "a", Seed: 1, Eliminated: true, EliminatedInRound: 1},
			{ID: "b", Seed: 2, Eliminated: true, EliminatedInRound: 2, Stats: models.ParticipantStats{Wins: 1}},
			{ID: "c", Seed: 3, Stats: models.ParticipantStats{Wins: 2}},
			{ID: "d", Seed: 4, Eliminated: true, EliminatedInRound: 1},
		},
	}
	standings := ComputeStandings(tour)
	order := make([]string, len(standings))
	for i, s := range standings {
		order[i] = s.ParticipantID
		assert.Equal(t, i+1, s.Position)
	}
	assert.Equal(t, []string{"c", "b", "a", "d"}, order)
}

func TestComputeStandingsDoubleEliminationPrefersDeeperRun(t *testing.T) {
	tour := &models.Tournament{
		Format: models.FormatDoubleElimination,
		Participants: []*models.Participant{
			{ID: "losers-final", Seed: 9, Eliminated: true, EliminatedInRound: 10, Stats: models.ParticipantStats{Wins: 5}},
			{ID: "champion", Seed: 1, Stats: models.ParticipantStats{Wins: 6}},
			{ID: "grand-final", Seed: 15, Eliminated: true, EliminatedInRound: 11, Stats: models.ParticipantStats{Wins: 4}},
			{ID: "early", Seed: 2, Eliminated: true, EliminatedInRound: 5, Stats: models.ParticipantStats{Wins: 2}},
		},
	}
	standings := ComputeStandings(tour)
	order := make([]string, len(standings))
	for i, s := range standings {
		order[i] = s.ParticipantID
	}
	assert.Equal(t, []string{"champion", "grand-final", "losers-final", "early"}, order)
}

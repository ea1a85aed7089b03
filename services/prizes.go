package services

import (
	"sort"

	"github.com/Dosada05/tournament-engine/models"
)

// CalculatePrizes distributes the pool over the standings and evaluates the
// special prizes. The same participant may receive several awards.
func CalculatePrizes(cfg models.PrizeConfig, standings []models.StandingEntry) []models.PrizeAward {
	var awards []models.PrizeAward

	shares := append([]models.PrizeShare(nil), cfg.Distribution...)
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].Place < shares[j].Place })
	for _, share := range shares {
		if share.Place < 1 || share.Place > len(standings) {
			continue
		}
		amount := cfg.Pool * int64(share.Percentage) / 100
		if amount <= 0 {
			continue
		}
		awards = append(awards, models.PrizeAward{
			Place:         share.Place,
			Criterion:     models.CriterionPlacement,
			ParticipantID: standings[share.Place-1].ParticipantID,
			Amount:        amount,
			Currency:      cfg.Currency,
		})
	}

	for _, rule := range cfg.Specials {
		winner, ok := specialWinner(rule.Criterion, standings)
		if !ok {
			continue
		}
		award := models.PrizeAward{
			Criterion:     rule.Criterion,
			ParticipantID: winner.ParticipantID,
			Amount:        rule.Amount,
			CosmeticID:    rule.CosmeticID,
			Title:         rule.Title,
		}
		if rule.Amount > 0 {
			award.Currency = cfg.Currency
		}
		awards = append(awards, award)
	}
	return awards
}

// specialWinner picks the recipient of a special prize. Ties go to the better
// standing since standings are already ordered.
func specialWinner(c models.SpecialCriterion, standings []models.StandingEntry) (models.StandingEntry, bool) {
	best := -1
	for i, s := range standings {
		switch c {
		case models.CriterionMostTags:
			if s.Tags > 0 && (best < 0 || s.Tags > standings[best].Tags) {
				best = i
			}
		case models.CriterionLongestSurvival:
			if s.SurvivalSeconds > 0 && (best < 0 || s.SurvivalSeconds > standings[best].SurvivalSeconds) {
				best = i
			}
		case models.CriterionUnderdog:
			// самый низкий посев, дошедший до двух побед или не выбывший
			if (s.Wins >= 2 || !s.Eliminated) && (best < 0 || s.Seed > standings[best].Seed) {
				best = i
			}
		}
	}
	if best < 0 {
		return models.StandingEntry{}, false
	}
	return standings[best], true
}

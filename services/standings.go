package services

import (
	"sort"

	"github.com/Dosada05/tournament-engine/models"
)

// ComputeStandings ранжирует участников по правилам формата. Турнир не изменяется.
//
//	single elim:     still alive first, wins desc, later elimination first, seed
//	double elim:     still alive first, later elimination first, wins desc, seed
//	round robin/swiss: points (wins*3 + draws) desc, tags desc, seed
//	battle royale:   recorded placement, unplaced last
func ComputeStandings(t *models.Tournament) []models.StandingEntry {
	entries := make([]models.StandingEntry, 0, len(t.Participants))
	index := make(map[string]int, len(t.Participants))
	eliminatedIn := make(map[string]int, len(t.Participants))

	for _, p := range t.Participants {
		index[p.ID] = len(entries)
		eliminatedIn[p.ID] = p.EliminatedInRound
		var placement *int
		if p.FinalPlacement != nil {
			v := *p.FinalPlacement
			placement = &v
		}
		entries = append(entries, models.StandingEntry{
			ParticipantID:   p.ID,
			DisplayName:     p.DisplayName,
			Seed:            p.Seed,
			Points:          p.Stats.Points(),
			Wins:            p.Stats.Wins,
			Draws:           p.Stats.Draws,
			Losses:          p.Stats.Losses,
			Tags:            p.Stats.Tags,
			SurvivalSeconds: p.Stats.SurvivalSeconds,
			Eliminated:      p.Eliminated,
			Placement:       placement,
		})
	}

	for _, m := range t.Matches {
		if m.Status != models.MatchCompleted && m.Status != models.MatchForfeit {
			continue
		}
		if len(m.Placements) > 0 {
			for _, id := range m.Placements {
				if i, ok := index[id]; ok {
					entries[i].GamesPlayed++
				}
			}
			continue
		}
		ids := m.ParticipantIDs()
		if len(ids) != 2 {
			continue
		}
		for k, id := range ids {
			i, ok := index[id]
			if !ok {
				continue
			}
			opp := ids[1-k]
			entries[i].GamesPlayed++
			entries[i].ScoreFor += m.Scores[id]
			entries[i].ScoreAgainst += m.Scores[opp]
		}
	}
	for i := range entries {
		entries[i].ScoreDifference = entries[i].ScoreFor - entries[i].ScoreAgainst
	}

	var less func(a, b *models.StandingEntry) bool
	switch t.Format {
	case models.FormatSingleElimination, models.FormatDoubleElimination:
		// В double elimination глубина вылета важнее побед: проигравший финал
		// нижней сетки может набрать больше побед, чем проигравший гранд-финал.
		roundFirst := t.Format == models.FormatDoubleElimination
		less = func(a, b *models.StandingEntry) bool {
			if a.Eliminated != b.Eliminated {
				return !a.Eliminated
			}
			ea, eb := eliminatedIn[a.ParticipantID], eliminatedIn[b.ParticipantID]
			if roundFirst && ea != eb {
				return ea > eb
			}
			if a.Wins != b.Wins {
				return a.Wins > b.Wins
			}
			if ea != eb {
				return ea > eb
			}
			return a.Seed < b.Seed
		}
	case models.FormatBattleRoyale:
		less = func(a, b *models.StandingEntry) bool {
			switch {
			case a.Placement != nil && b.Placement != nil:
				if *a.Placement != *b.Placement {
					return *a.Placement < *b.Placement
				}
			case a.Placement != nil:
				return true
			case b.Placement != nil:
				return false
			}
			if a.Eliminated != b.Eliminated {
				return !a.Eliminated
			}
			if a.Wins != b.Wins {
				return a.Wins > b.Wins
			}
			return a.Seed < b.Seed
		}
	default:
		less = func(a, b *models.StandingEntry) bool {
			if a.Points != b.Points {
				return a.Points > b.Points
			}
			if a.Tags != b.Tags {
				return a.Tags > b.Tags
			}
			return a.Seed < b.Seed
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return less(&entries[i], &entries[j])
	})
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

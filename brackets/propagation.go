package brackets

import (
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

// Resolution lists matches whose status changed while outcomes were pushed
// through the graph.
type Resolution struct {
	Ready []*models.Match
	Byes  []*models.Match
	// Forfeits - матчи, сданные до прихода соперника; победитель определился сейчас.
	Forfeits []*models.Match
}

func (r *Resolution) merge(o Resolution) {
	r.Ready = append(r.Ready, o.Ready...)
	r.Byes = append(r.Byes, o.Byes...)
	r.Forfeits = append(r.Forfeits, o.Forfeits...)
}

func lookup(matches []*models.Match, id int) (*models.Match, error) {
	if id <= 0 || id > len(matches) || matches[id-1].ID != id {
		return nil, fmt.Errorf("%w: unknown match %d", ErrInvalidLink, id)
	}
	return matches[id-1], nil
}

// Settle evaluates a pending match whose slots may all be settled: it becomes
// ready when every slot is filled, otherwise a bye for whoever is present.
// Byes are pushed forward immediately.
func Settle(matches []*models.Match, m *models.Match) (Resolution, error) {
	var res Resolution
	switch settle(m) {
	case models.MatchReady:
		res.Ready = append(res.Ready, m)
	case models.MatchBye, models.MatchForfeit:
		if m.Status == models.MatchBye {
			res.Byes = append(res.Byes, m)
		} else {
			res.Forfeits = append(res.Forfeits, m)
		}
		more, err := Propagate(matches, m)
		if err != nil {
			return res, err
		}
		res.merge(more)
	}
	return res, nil
}

// AwaitingOpponent reports whether m was forfeited before its last slot was
// settled, so its winner is still unknown.
func AwaitingOpponent(m *models.Match) bool {
	return m.Status == models.MatchForfeit && m.WinnerID == "" && !m.AllSlotsSettled()
}

func settle(m *models.Match) models.MatchStatus {
	if !m.AllSlotsSettled() {
		return ""
	}
	if m.Status == models.MatchForfeit && m.WinnerID == "" && m.LoserID != "" {
		// Сданный заранее матч достается тому, кто пришел в свободный слот.
		m.WinnerID = m.Opponent(m.LoserID)
		return models.MatchForfeit
	}
	if m.Status != models.MatchPending {
		return ""
	}
	if m.AllSlotsFilled() {
		m.Status = models.MatchReady
		return models.MatchReady
	}
	m.Status = models.MatchBye
	if ids := m.ParticipantIDs(); len(ids) > 0 {
		m.WinnerID = ids[0]
	}
	return models.MatchBye
}

// Propagate delivers the winner and loser of a decided match to the matches it
// links to, cascading through any byes this creates. A match still awaiting
// its opponent after an early forfeit propagates nothing until it resolves.
func Propagate(matches []*models.Match, from *models.Match) (Resolution, error) {
	var res Resolution
	if AwaitingOpponent(from) {
		return res, nil
	}
	queue := []*models.Match{from}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]

		outs := []struct {
			next    *int
			outcome models.Outcome
			pid     string
		}{
			{m.NextMatchID, models.OutcomeWinner, m.WinnerID},
			{m.LoserNextMatchID, models.OutcomeLoser, m.LoserID},
		}
		for _, out := range outs {
			if out.next == nil {
				continue
			}
			next, err := lookup(matches, *out.next)
			if err != nil {
				return res, err
			}
			if err := deliver(next, m.ID, out.outcome, out.pid); err != nil {
				return res, err
			}
			switch settle(next) {
			case models.MatchReady:
				res.Ready = append(res.Ready, next)
			case models.MatchBye:
				res.Byes = append(res.Byes, next)
				queue = append(queue, next)
			case models.MatchForfeit:
				res.Forfeits = append(res.Forfeits, next)
				queue = append(queue, next)
			}
		}
	}
	return res, nil
}

// deliver fills the slot fed by (source, outcome), or the first open slot with no
// declared source. An empty pid settles the slot without a participant.
func deliver(m *models.Match, source int, outcome models.Outcome, pid string) error {
	idx := -1
	for i, s := range m.Slots {
		if !s.Settled && s.SourceMatchID != nil && *s.SourceMatchID == source && s.SourceOutcome == outcome {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, s := range m.Slots {
			if !s.Settled && s.SourceMatchID == nil {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: match %d has no open slot for the %s of match %d", ErrInvalidLink, m.ID, outcome, source)
	}
	m.Slots[idx].ParticipantID = pid
	m.Slots[idx].Settled = true
	return nil
}

// ValidateLinks checks that every forward link points at an existing match that
// expects it and that the graph has no cycles.
func ValidateLinks(matches []*models.Match) error {
	for i, m := range matches {
		if m.ID != i+1 {
			return fmt.Errorf("%w: match at index %d has id %d", ErrInvalidLink, i, m.ID)
		}
		for _, next := range []*int{m.NextMatchID, m.LoserNextMatchID} {
			if next == nil {
				continue
			}
			target, err := lookup(matches, *next)
			if err != nil {
				return err
			}
			if !containsInt(target.PrevMatchIDs, m.ID) {
				return fmt.Errorf("%w: match %d links to %d without a back link", ErrInvalidLink, m.ID, target.ID)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(matches))
	var visit func(m *models.Match) error
	visit = func(m *models.Match) error {
		switch state[m.ID-1] {
		case visiting:
			return fmt.Errorf("%w: through match %d", ErrMatchGraphCycle, m.ID)
		case done:
			return nil
		}
		state[m.ID-1] = visiting
		for _, next := range []*int{m.NextMatchID, m.LoserNextMatchID} {
			if next == nil {
				continue
			}
			if err := visit(matches[*next-1]); err != nil {
				return err
			}
		}
		state[m.ID-1] = done
		return nil
	}
	for _, m := range matches {
		if err := visit(m); err != nil {
			return err
		}
	}
	return nil
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

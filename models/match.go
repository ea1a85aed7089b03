package models

import "time"

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchReady      MatchStatus = "ready"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchBye        MatchStatus = "bye"
	MatchForfeit    MatchStatus = "forfeit"
)

// IsTerminal reports whether the match has been decided one way or another.
func (s MatchStatus) IsTerminal() bool {
	return s == MatchCompleted || s == MatchBye || s == MatchForfeit
}

// BracketSide разделяет верхнюю и нижнюю сетки в double elimination.
type BracketSide string

const (
	BracketMain        BracketSide = "main"
	BracketWinners     BracketSide = "winners"
	BracketLosers      BracketSide = "losers"
	BracketGrandFinals BracketSide = "grand_finals"
)

// Outcome selects which result of a source match feeds a slot.
type Outcome string

const (
	OutcomeWinner Outcome = "winner"
	OutcomeLoser  Outcome = "loser"
)

// Slot is one participant position of a match. A slot either holds a participant
// fixed at generation time or waits for the outcome of SourceMatchID.
type Slot struct {
	ParticipantID string  `json:"participant_id,omitempty"`
	SourceMatchID *int    `json:"source_match_id,omitempty"`
	SourceOutcome Outcome `json:"source_outcome,omitempty"`
	// Settled is true once the slot can no longer change, even if it stayed empty.
	Settled bool `json:"settled"`
}

func (s Slot) Filled() bool {
	return s.ParticipantID != ""
}

type Match struct {
	ID               int            `json:"id"`
	Round            int            `json:"round"`
	Position         int            `json:"position"`
	Bracket          BracketSide    `json:"bracket"`
	Slots            []Slot         `json:"slots"`
	Status           MatchStatus    `json:"status"`
	Scores           map[string]int `json:"scores,omitempty"`
	WinnerID         string         `json:"winner_id,omitempty"`
	LoserID          string         `json:"loser_id,omitempty"`
	Draw             bool           `json:"draw,omitempty"`
	NextMatchID      *int           `json:"next_match_id,omitempty"`
	LoserNextMatchID *int           `json:"loser_next_match_id,omitempty"`
	PrevMatchIDs     []int          `json:"prev_match_ids,omitempty"`
	IsBracketReset   bool           `json:"is_bracket_reset,omitempty"`

	// Battle royale groups.
	QualifyCount int      `json:"qualify_count,omitempty"`
	Placements   []string `json:"placements,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ParticipantIDs returns the filled slots in slot order.
func (m *Match) ParticipantIDs() []string {
	ids := make([]string, 0, len(m.Slots))
	for _, s := range m.Slots {
		if s.Filled() {
			ids = append(ids, s.ParticipantID)
		}
	}
	return ids
}

func (m *Match) HasParticipant(id string) bool {
	if id == "" {
		return false
	}
	for _, s := range m.Slots {
		if s.ParticipantID == id {
			return true
		}
	}
	return false
}

// AllSlotsFilled - матч готов к игре, только если заняты все слоты.
func (m *Match) AllSlotsFilled() bool {
	if len(m.Slots) == 0 {
		return false
	}
	for _, s := range m.Slots {
		if !s.Filled() {
			return false
		}
	}
	return true
}

func (m *Match) AllSlotsSettled() bool {
	for _, s := range m.Slots {
		if !s.Settled {
			return false
		}
	}
	return true
}

// Opponent returns the other participant of a two-slot match.
func (m *Match) Opponent(id string) string {
	for _, s := range m.Slots {
		if s.Filled() && s.ParticipantID != id {
			return s.ParticipantID
		}
	}
	return ""
}

func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Slots = make([]Slot, len(m.Slots))
	for i, s := range m.Slots {
		cp.Slots[i] = s
		cp.Slots[i].SourceMatchID = cloneInt(s.SourceMatchID)
	}
	if m.Scores != nil {
		cp.Scores = make(map[string]int, len(m.Scores))
		for k, v := range m.Scores {
			cp.Scores[k] = v
		}
	}
	cp.NextMatchID = cloneInt(m.NextMatchID)
	cp.LoserNextMatchID = cloneInt(m.LoserNextMatchID)
	cp.PrevMatchIDs = append([]int(nil), m.PrevMatchIDs...)
	cp.Placements = append([]string(nil), m.Placements...)
	cp.StartedAt = cloneTime(m.StartedAt)
	cp.CompletedAt = cloneTime(m.CompletedAt)
	return &cp
}

// Round - номер, подпись и упорядоченный список матчей раунда.
type Round struct {
	Number   int         `json:"number"`
	Name     string      `json:"name"`
	Bracket  BracketSide `json:"bracket"`
	MatchIDs []int       `json:"match_ids"`
}

func (r *Round) Clone() *Round {
	if r == nil {
		return nil
	}
	cp := *r
	cp.MatchIDs = append([]int(nil), r.MatchIDs...)
	return &cp
}

package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrNotEnoughParticipants = errors.New("not enough participants to generate a bracket (minimum 2)")
	ErrInvalidSettings       = errors.New("invalid format settings")
	ErrMatchGraphCycle       = errors.New("match graph contains a cycle")
	ErrInvalidLink           = errors.New("invalid match link")
)

type GenerateBracketParams struct {
	Settings models.FormatSettings
	// Participants must already be seeded (Seed = index + 1).
	Participants []*models.Participant
}

// Bracket is the initial match graph. Match IDs are arena keys starting at 1.
type Bracket struct {
	Rounds      []*models.Round
	Matches     []*models.Match
	BracketSize int
	Byes        int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error)

	GetName() string
}

// NextRoundParams carries the state a lazily generated round is built from.
type NextRoundParams struct {
	Settings models.FormatSettings
	// Participants still in contention, in the order the generator should treat as ranking.
	Participants []*models.Participant
	History      []*models.Match
	RoundNumber  int
	Final        bool
}

// RoundGenerator is implemented by formats whose later rounds depend on results
// (Swiss, battle royale). NextRound returns unnumbered matches; the caller adds
// them to the arena.
type RoundGenerator interface {
	BracketGenerator
	NextRound(ctx context.Context, params NextRoundParams) (*models.Round, []*models.Match, error)
}

// NewGenerator выбирает генератор по типу настроек.
func NewGenerator(settings models.FormatSettings) (BracketGenerator, error) {
	switch s := settings.(type) {
	case *models.SingleEliminationSettings:
		return NewSingleEliminationGenerator(), nil
	case *models.DoubleEliminationSettings:
		return NewDoubleEliminationGenerator(), nil
	case *models.RoundRobinSettings:
		return NewRoundRobinGenerator(), nil
	case *models.SwissSettings:
		return NewSwissGenerator(), nil
	case *models.BattleRoyaleSettings:
		if s.PlayersPerMatch < 2 {
			return nil, fmt.Errorf("%w: players_per_match must be at least 2, got %d", ErrInvalidSettings, s.PlayersPerMatch)
		}
		return NewBattleRoyaleGenerator(), nil
	case nil:
		return nil, fmt.Errorf("%w: settings are missing", ErrInvalidSettings)
	default:
		return nil, fmt.Errorf("%w: unsupported settings type %T", ErrInvalidSettings, settings)
	}
}

// arena builds a fresh match graph with sequential ids.
type arena struct {
	matches []*models.Match
	rounds  []*models.Round
}

func (a *arena) addRound(name string, side models.BracketSide) *models.Round {
	r := &models.Round{Number: len(a.rounds) + 1, Name: name, Bracket: side}
	a.rounds = append(a.rounds, r)
	return r
}

func (a *arena) addMatch(r *models.Round, slots int) *models.Match {
	m := &models.Match{
		ID:       len(a.matches) + 1,
		Round:    r.Number,
		Position: len(r.MatchIDs) + 1,
		Bracket:  r.Bracket,
		Slots:    make([]models.Slot, slots),
		Status:   models.MatchPending,
	}
	a.matches = append(a.matches, m)
	r.MatchIDs = append(r.MatchIDs, m.ID)
	return m
}

// link routes the given outcome of from into slot idx of to.
func link(from *models.Match, outcome models.Outcome, to *models.Match, idx int) {
	id := to.ID
	switch outcome {
	case models.OutcomeWinner:
		from.NextMatchID = &id
	case models.OutcomeLoser:
		from.LoserNextMatchID = &id
	}
	src := from.ID
	to.Slots[idx] = models.Slot{SourceMatchID: &src, SourceOutcome: outcome}
	to.PrevMatchIDs = append(to.PrevMatchIDs, from.ID)
}

func seat(m *models.Match, idx int, p *models.Participant) {
	m.Slots[idx].Settled = true
	if p != nil {
		m.Slots[idx].ParticipantID = p.ID
	}
}

func (a *arena) bracket() *Bracket {
	return &Bracket{Rounds: a.rounds, Matches: a.matches}
}

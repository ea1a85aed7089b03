package events

import (
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/rs/xid"
)

type Type string

const (
	RegistrationOpened  Type = "registration_opened"
	PlayerRegistered    Type = "player_registered"
	PlayerPromoted      Type = "player_promoted"
	TournamentStarted   Type = "tournament_started"
	MatchReady          Type = "match_ready"
	MatchCompleted      Type = "match_completed"
	RoundComplete       Type = "round_complete"
	TournamentCompleted Type = "tournament_completed"
	TournamentCancelled Type = "tournament_cancelled"
)

// Event - уведомление о смене состояния турнира.
type Event struct {
	ID           string    `json:"id"`
	Type         Type      `json:"type"`
	TournamentID string    `json:"tournament_id"`
	OccurredAt   time.Time `json:"occurred_at"`
	Payload      any       `json:"payload"`
}

func New(t Type, tournamentID string, at time.Time, payload any) Event {
	return Event{
		ID:           xid.New().String(),
		Type:         t,
		TournamentID: tournamentID,
		OccurredAt:   at,
		Payload:      payload,
	}
}

type RegistrationOpenedPayload struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`
}

type PlayerRegisteredPayload struct {
	Participant      *models.Participant `json:"participant"`
	Accepted         bool                `json:"accepted"`
	WaitlistPosition int                 `json:"waitlist_position,omitempty"`
}

type PlayerPromotedPayload struct {
	Participant *models.Participant `json:"participant"`
	ReplacedID  string              `json:"replaced_id"`
}

type TournamentStartedPayload struct {
	Format       models.Format `json:"format"`
	Participants int           `json:"participants"`
	Rounds       int           `json:"rounds"`
	BracketSize  int           `json:"bracket_size,omitempty"`
	Byes         int           `json:"byes,omitempty"`
}

type MatchReadyPayload struct {
	Match *models.Match `json:"match"`
}

type MatchCompletedPayload struct {
	Match        *models.Match  `json:"match"`
	RatingChange map[string]int `json:"rating_change,omitempty"`
}

type RoundCompletePayload struct {
	Round int    `json:"round"`
	Name  string `json:"name"`
}

type TournamentCompletedPayload struct {
	Slug      string                 `json:"slug"`
	Name      string                 `json:"name"`
	Standings []models.StandingEntry `json:"standings"`
	Awards    []models.PrizeAward    `json:"awards"`
}

type TournamentCancelledPayload struct {
	Refunds []models.Refund `json:"refunds,omitempty"`
}

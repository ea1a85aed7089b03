package models

import "time"

// ParticipantStats - накопленная статистика участника в рамках одного турнира.
type ParticipantStats struct {
	Wins            int   `json:"wins"`
	Losses          int   `json:"losses"`
	Draws           int   `json:"draws"`
	Byes            int   `json:"byes"`
	Tags            int   `json:"tags"`
	SurvivalSeconds int64 `json:"survival_seconds"`
	RatingDelta     int   `json:"rating_delta"`
}

// Points is the league score: wins*3 + draws.
func (s ParticipantStats) Points() int {
	return s.Wins*3 + s.Draws
}

// StatDelta is a per-match increment reported alongside a result.
type StatDelta struct {
	Tags            int   `json:"tags,omitempty"`
	SurvivalSeconds int64 `json:"survival_seconds,omitempty"`
}

type Participant struct {
	ID                string           `json:"id"`
	DisplayName       string           `json:"display_name"`
	AvatarURL         string           `json:"avatar_url,omitempty"`
	Rating            int              `json:"rating"`
	RegistrationOrder int              `json:"registration_order"`
	RegisteredAt      time.Time        `json:"registered_at"`
	FeePaid           bool             `json:"fee_paid"`
	Seed              int              `json:"seed,omitempty"`
	CheckedIn         bool             `json:"checked_in"`
	Eliminated        bool             `json:"eliminated"`
	EliminatedInRound int              `json:"eliminated_in_round,omitempty"`
	FinalPlacement    *int             `json:"final_placement,omitempty"`
	Stats             ParticipantStats `json:"stats"`
}

func (p *Participant) Clone() *Participant {
	if p == nil {
		return nil
	}
	cp := *p
	cp.FinalPlacement = cloneInt(p.FinalPlacement)
	return &cp
}

// WaitlistEntry - заявка сверх maxPlayers, ожидающая освобождения места.
type WaitlistEntry struct {
	Participant *Participant `json:"participant"`
	QueuedAt    time.Time    `json:"queued_at"`
}

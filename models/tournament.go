package models

import (
	"encoding/json"
	"time"
)

// TournamentStatus представляет жизненный цикл турнира.
type TournamentStatus string

const (
	StatusDraft        TournamentStatus = "draft"
	StatusRegistration TournamentStatus = "registration"
	StatusReady        TournamentStatus = "ready"
	StatusInProgress   TournamentStatus = "in_progress"
	StatusCompleted    TournamentStatus = "completed"
	StatusCancelled    TournamentStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are possible.
func (s TournamentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type SeedingPolicy string

const (
	SeedByRating            SeedingPolicy = "rating"
	SeedRandom              SeedingPolicy = "random"
	SeedByRegistrationOrder SeedingPolicy = "registration_order"
)

// Schedule - окно регистрации и старта. Все поля опциональны.
type Schedule struct {
	RegistrationOpensAt  *time.Time `json:"registration_opens_at,omitempty"`
	RegistrationClosesAt *time.Time `json:"registration_closes_at,omitempty"`
	StartsAt             *time.Time `json:"starts_at,omitempty"`
	EndsAt               *time.Time `json:"ends_at,omitempty"`
	AutoStart            bool       `json:"auto_start"`
	// AutoStartFailedAt - когда автостарт не удался; повторно он не запускается.
	AutoStartFailedAt *time.Time `json:"auto_start_failed_at,omitempty"`
}

type EntryFee struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

type Refund struct {
	ParticipantID string    `json:"participant_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency,omitempty"`
	Reason        string    `json:"reason"`
	At            time.Time `json:"at"`
}

// Tournament - агрегат, которым владеет реестр. Опубликованный снимок не изменяется,
// все мутации выполняются над копией (см. Clone).
type Tournament struct {
	ID             string           `json:"id"`
	Slug           string           `json:"slug"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	OrganizerID    string           `json:"organizer_id"`
	Format         Format           `json:"format"`
	Status         TournamentStatus `json:"status"`
	Schedule       Schedule         `json:"schedule"`
	MinPlayers     int              `json:"min_players"`
	MaxPlayers     int              `json:"max_players"`
	EntryFee       EntryFee         `json:"entry_fee"`
	Prizes         PrizeConfig      `json:"prizes"`
	Seeding        SeedingPolicy    `json:"seeding"`
	Settings       FormatSettings   `json:"-"`
	AccessCodeHash string           `json:"access_code_hash,omitempty"`

	Participants    []*Participant   `json:"participants"`
	NoShows         []*Participant   `json:"no_shows,omitempty"`
	Waitlist        []*WaitlistEntry `json:"waitlist"`
	Refunds         []Refund         `json:"refunds,omitempty"`
	RegistrationSeq int              `json:"registration_seq"`
	Rounds          []*Round         `json:"rounds"`
	Matches         []*Match         `json:"matches"`
	CurrentRound    int              `json:"current_round"`
	BracketSize     int              `json:"bracket_size,omitempty"`
	Byes            int              `json:"byes,omitempty"`
	RequiresReset   bool             `json:"requires_reset,omitempty"`
	Standings       []StandingEntry  `json:"standings,omitempty"`
	Awards          []PrizeAward     `json:"awards,omitempty"`

	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type tournamentAlias Tournament

type tournamentJSON struct {
	*tournamentAlias
	Settings settingsEnvelope `json:"settings"`
}

func (t *Tournament) MarshalJSON() ([]byte, error) {
	env, err := wrapSettings(t.Settings)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tournamentJSON{tournamentAlias: (*tournamentAlias)(t), Settings: env})
}

func (t *Tournament) UnmarshalJSON(data []byte) error {
	aux := tournamentJSON{tournamentAlias: (*tournamentAlias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	settings, err := aux.Settings.unwrap()
	if err != nil {
		return err
	}
	t.Settings = settings
	if settings != nil {
		t.Format = settings.Format()
	}
	return nil
}

// MatchByID возвращает матч из арены. ID матча - его позиция в Matches плюс один.
func (t *Tournament) MatchByID(id int) (*Match, bool) {
	if id <= 0 || id > len(t.Matches) {
		return nil, false
	}
	return t.Matches[id-1], true
}

// AddMatch appends m to the arena and assigns its stable id.
func (t *Tournament) AddMatch(m *Match) *Match {
	m.ID = len(t.Matches) + 1
	t.Matches = append(t.Matches, m)
	return m
}

func (t *Tournament) Participant(id string) (*Participant, bool) {
	for _, p := range t.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (t *Tournament) WaitlistPosition(id string) int {
	for i, w := range t.Waitlist {
		if w.Participant.ID == id {
			return i + 1
		}
	}
	return 0
}

// CurrentRoundRef returns the round the tournament is currently playing, if any.
func (t *Tournament) CurrentRoundRef() *Round {
	if t.CurrentRound <= 0 || t.CurrentRound > len(t.Rounds) {
		return nil
	}
	return t.Rounds[t.CurrentRound-1]
}

// Public returns a shallow copy safe to expose outside the service.
func (t *Tournament) Public() *Tournament {
	cp := *t
	cp.AccessCodeHash = ""
	return &cp
}

func (t *Tournament) IsPrivate() bool {
	return t.AccessCodeHash != ""
}

// Clone делает глубокую копию агрегата.
func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Schedule = t.Schedule.clone()
	cp.Prizes = t.Prizes.clone()
	cp.Settings = cloneSettings(t.Settings)

	cp.Participants = make([]*Participant, len(t.Participants))
	for i, p := range t.Participants {
		cp.Participants[i] = p.Clone()
	}
	cp.NoShows = make([]*Participant, len(t.NoShows))
	for i, p := range t.NoShows {
		cp.NoShows[i] = p.Clone()
	}
	cp.Waitlist = make([]*WaitlistEntry, len(t.Waitlist))
	for i, w := range t.Waitlist {
		wc := *w
		wc.Participant = w.Participant.Clone()
		cp.Waitlist[i] = &wc
	}
	cp.Refunds = append([]Refund(nil), t.Refunds...)
	cp.Rounds = make([]*Round, len(t.Rounds))
	for i, r := range t.Rounds {
		cp.Rounds[i] = r.Clone()
	}
	cp.Matches = make([]*Match, len(t.Matches))
	for i, m := range t.Matches {
		cp.Matches[i] = m.Clone()
	}
	cp.Standings = append([]StandingEntry(nil), t.Standings...)
	cp.Awards = append([]PrizeAward(nil), t.Awards...)
	cp.StartedAt = cloneTime(t.StartedAt)
	cp.CompletedAt = cloneTime(t.CompletedAt)
	return &cp
}

func (s Schedule) clone() Schedule {
	return Schedule{
		RegistrationOpensAt:  cloneTime(s.RegistrationOpensAt),
		RegistrationClosesAt: cloneTime(s.RegistrationClosesAt),
		StartsAt:             cloneTime(s.StartsAt),
		EndsAt:               cloneTime(s.EndsAt),
		AutoStart:            s.AutoStart,
		AutoStartFailedAt:    cloneTime(s.AutoStartFailedAt),
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

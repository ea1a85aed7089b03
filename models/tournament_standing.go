package models

// StandingEntry - строка итоговой (или текущей) таблицы турнира.
type StandingEntry struct {
	Position        int    `json:"position"`
	ParticipantID   string `json:"participant_id"`
	DisplayName     string `json:"display_name"`
	Seed            int    `json:"seed"`
	Points          int    `json:"points"`
	GamesPlayed     int    `json:"games_played"`
	Wins            int    `json:"wins"`
	Draws           int    `json:"draws"`
	Losses          int    `json:"losses"`
	Tags            int    `json:"tags"`
	SurvivalSeconds int64  `json:"survival_seconds"`
	ScoreFor        int    `json:"score_for"`
	ScoreAgainst    int    `json:"score_against"`
	ScoreDifference int    `json:"score_difference"`
	Eliminated      bool   `json:"eliminated"`
	Placement       *int   `json:"placement,omitempty"`
}

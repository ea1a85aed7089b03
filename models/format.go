package models

import (
	"encoding/json"
	"fmt"
)

type Format string

const (
	FormatSingleElimination Format = "single_elimination"
	FormatDoubleElimination Format = "double_elimination"
	FormatRoundRobin        Format = "round_robin"
	FormatSwiss             Format = "swiss"
	FormatBattleRoyale      Format = "battle_royale"
)

// IsElimination reports whether losing a match can knock a participant out.
func (f Format) IsElimination() bool {
	return f == FormatSingleElimination || f == FormatDoubleElimination
}

// MatchRules are shared by every format.
type MatchRules struct {
	MatchDurationMinutes int `json:"match_duration_minutes,omitempty"`
	BestOf               int `json:"best_of,omitempty"`
}

// FormatSettings - закрытое объединение настроек по форматам.
// Реализации: *SingleEliminationSettings, *DoubleEliminationSettings,
// *RoundRobinSettings, *SwissSettings, *BattleRoyaleSettings.
type FormatSettings interface {
	Format() Format
	Rules() MatchRules
	isFormatSettings()
}

type SingleEliminationSettings struct {
	MatchRules
}

type DoubleEliminationSettings struct {
	MatchRules
	// DisableBracketReset makes the first grand final decisive.
	DisableBracketReset bool `json:"disable_bracket_reset,omitempty"`
}

type RoundRobinSettings struct {
	MatchRules
}

type SwissSettings struct {
	MatchRules
	// Rounds defaults to ceil(log2(n)) when zero.
	Rounds int `json:"rounds,omitempty"`
}

type BattleRoyaleSettings struct {
	MatchRules
	PlayersPerMatch int `json:"players_per_match"`
}

func (*SingleEliminationSettings) Format() Format { return FormatSingleElimination }
func (*DoubleEliminationSettings) Format() Format { return FormatDoubleElimination }
func (*RoundRobinSettings) Format() Format        { return FormatRoundRobin }
func (*SwissSettings) Format() Format             { return FormatSwiss }
func (*BattleRoyaleSettings) Format() Format      { return FormatBattleRoyale }

func (s *SingleEliminationSettings) Rules() MatchRules { return s.MatchRules }
func (s *DoubleEliminationSettings) Rules() MatchRules { return s.MatchRules }
func (s *RoundRobinSettings) Rules() MatchRules        { return s.MatchRules }
func (s *SwissSettings) Rules() MatchRules             { return s.MatchRules }
func (s *BattleRoyaleSettings) Rules() MatchRules      { return s.MatchRules }

func (*SingleEliminationSettings) isFormatSettings() {}
func (*DoubleEliminationSettings) isFormatSettings() {}
func (*RoundRobinSettings) isFormatSettings()        {}
func (*SwissSettings) isFormatSettings()             {}
func (*BattleRoyaleSettings) isFormatSettings()      {}

// DefaultSettings returns zero-valued settings for a format.
func DefaultSettings(f Format) (FormatSettings, error) {
	switch f {
	case FormatSingleElimination:
		return &SingleEliminationSettings{}, nil
	case FormatDoubleElimination:
		return &DoubleEliminationSettings{}, nil
	case FormatRoundRobin:
		return &RoundRobinSettings{}, nil
	case FormatSwiss:
		return &SwissSettings{}, nil
	case FormatBattleRoyale:
		return &BattleRoyaleSettings{PlayersPerMatch: 4}, nil
	default:
		return nil, fmt.Errorf("unknown tournament format %q", f)
	}
}

// DecodeSettings builds typed settings for f from raw JSON; empty raw yields defaults.
func DecodeSettings(f Format, raw json.RawMessage) (FormatSettings, error) {
	s, err := DefaultSettings(f)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return s, nil
	}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("invalid %s settings: %w", f, err)
	}
	return s, nil
}

type settingsEnvelope struct {
	Format Format          `json:"format"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func wrapSettings(s FormatSettings) (settingsEnvelope, error) {
	if s == nil {
		return settingsEnvelope{}, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return settingsEnvelope{}, err
	}
	return settingsEnvelope{Format: s.Format(), Data: data}, nil
}

func (e settingsEnvelope) unwrap() (FormatSettings, error) {
	if e.Format == "" {
		return nil, nil
	}
	return DecodeSettings(e.Format, e.Data)
}

func cloneSettings(s FormatSettings) FormatSettings {
	switch v := s.(type) {
	case *SingleEliminationSettings:
		c := *v
		return &c
	case *DoubleEliminationSettings:
		c := *v
		return &c
	case *RoundRobinSettings:
		c := *v
		return &c
	case *SwissSettings:
		c := *v
		return &c
	case *BattleRoyaleSettings:
		c := *v
		return &c
	default:
		return nil
	}
}

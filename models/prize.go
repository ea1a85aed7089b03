package models

type PrizeShare struct {
	Place      int `json:"place"`
	Percentage int `json:"percentage"`
}

type SpecialCriterion string

const (
	CriterionMostTags        SpecialCriterion = "most_tags"
	CriterionLongestSurvival SpecialCriterion = "longest_survival"
	CriterionUnderdog        SpecialCriterion = "underdog"
)

// CriterionPlacement marks awards coming from the distribution table.
const CriterionPlacement SpecialCriterion = "placement"

type SpecialPrizeRule struct {
	Criterion  SpecialCriterion `json:"criterion"`
	Amount     int64            `json:"amount,omitempty"`
	CosmeticID string           `json:"cosmetic_id,omitempty"`
	Title      string           `json:"title,omitempty"`
}

type PrizeConfig struct {
	Pool         int64              `json:"pool"`
	Currency     string             `json:"currency,omitempty"`
	Distribution []PrizeShare       `json:"distribution,omitempty"`
	Specials     []SpecialPrizeRule `json:"specials,omitempty"`
}

func (c PrizeConfig) clone() PrizeConfig {
	cp := c
	cp.Distribution = append([]PrizeShare(nil), c.Distribution...)
	cp.Specials = append([]SpecialPrizeRule(nil), c.Specials...)
	return cp
}

// PrizeAward вычисляется один раз при завершении турнира и больше не меняется.
type PrizeAward struct {
	Place         int              `json:"place,omitempty"`
	Criterion     SpecialCriterion `json:"criterion"`
	ParticipantID string           `json:"participant_id"`
	Amount        int64            `json:"amount,omitempty"`
	Currency      string           `json:"currency,omitempty"`
	CosmeticID    string           `json:"cosmetic_id,omitempty"`
	Title         string           `json:"title,omitempty"`
}

// Package model defines the lead data model shared by the scoring engine,
// the harvesters, persistence, and exports.
package model

import "slices"

// Tier is the triage bucket derived from a composite probability score.
type Tier string

const (
	TierHot    Tier = "Hot Lead"
	TierHigh   Tier = "High Priority"
	TierMedium Tier = "Medium Priority"
	TierLow    Tier = "Low Priority"
	TierCold   Tier = "Cold Lead"
)

// Lead is a candidate contact produced by a harvester or loader. Every field
// is optional; a zero value means "no signal" and never an error.
type Lead struct {
	Name                string   `json:"name,omitempty"`
	Title               string   `json:"title,omitempty"`
	Company             string   `json:"company,omitempty"`
	CompanyType         string   `json:"company_type,omitempty"`
	Location            string   `json:"location,omitempty"`
	HQLocation          string   `json:"hq_location,omitempty"`
	Email               string   `json:"email,omitempty" validate:"omitempty,email"`
	LinkedIn            string   `json:"linkedin,omitempty"`
	FundingStatus       string   `json:"funding_status,omitempty"`
	RecentPublication   string   `json:"recent_publication,omitempty"`
	PublicationKeywords []string `json:"publication_keywords,omitempty"`
	UsesInvitro         bool     `json:"uses_invitro,omitempty"`
	Source              string   `json:"source,omitempty"`
}

// Clone returns a deep copy of the lead. Scoring copies records rather than
// aliasing them so the input batch is never mutated.
func (l Lead) Clone() Lead {
	c := l
	c.PublicationKeywords = slices.Clone(l.PublicationKeywords)
	return c
}

// ScoreBreakdown holds the five signal sub-scores and the clamped total.
// Sub-score bounds: scientific_intent 0-40, role_fit 0-30, company_intent
// 0-20, technographic 0-15, location 0-10. Total is min(100, sum); the five
// maxima sum to 115, so the clamp matters.
type ScoreBreakdown struct {
	ScientificIntent int `json:"scientific_intent"`
	RoleFit          int `json:"role_fit"`
	CompanyIntent    int `json:"company_intent"`
	Technographic    int `json:"technographic"`
	Location         int `json:"location"`
	Total            int `json:"total"`
}

// Sum returns the unclamped sum of the five sub-scores.
func (b ScoreBreakdown) Sum() int {
	return b.ScientificIntent + b.RoleFit + b.CompanyIntent + b.Technographic + b.Location
}

// ScoredLead is a copy of the original lead plus its probability score,
// per-signal breakdown, tier, and 1-based batch rank.
type ScoredLead struct {
	Lead
	ProbabilityScore int            `json:"probability_score"`
	ScoreBreakdown   ScoreBreakdown `json:"score_breakdown"`
	Tier             Tier           `json:"tier"`
	Rank             int            `json:"rank"`
}

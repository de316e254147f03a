package model

import "time"

// Run records one scoring pass over a lead batch.
type Run struct {
	ID         string       `json:"id"`
	Label      string       `json:"label"`
	LeadCount  int          `json:"lead_count"`
	AvgScore   float64      `json:"avg_score"`
	TierCounts map[Tier]int `json:"tier_counts,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Summarize computes batch statistics for a scored result set.
func Summarize(scored []ScoredLead) (avg float64, tiers map[Tier]int) {
	tiers = make(map[Tier]int)
	if len(scored) == 0 {
		return 0, tiers
	}
	var sum int
	for _, s := range scored {
		sum += s.ProbabilityScore
		tiers[s.Tier]++
	}
	return float64(sum) / float64(len(scored)), tiers
}

package scorer

import (
	"sort"

	"go.uber.org/zap"

	"github.com/bioleads/bioleads-cli/internal/model"
)

// Rank scores every lead in the batch, sorts descending by probability score,
// and assigns 1-based ranks. The sort is stable: leads with equal scores keep
// their relative input order. The input slice and its records are never
// mutated; an empty batch returns an empty result.
func (e *Engine) Rank(leads []model.Lead) []model.ScoredLead {
	if len(leads) == 0 {
		return []model.ScoredLead{}
	}

	scored := make([]model.ScoredLead, 0, len(leads))
	for _, lead := range leads {
		breakdown := e.Score(lead)
		scored = append(scored, model.ScoredLead{
			Lead:             lead.Clone(),
			ProbabilityScore: breakdown.Total,
			ScoreBreakdown:   breakdown,
			Tier:             TierFor(breakdown.Total),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].ProbabilityScore > scored[j].ProbabilityScore
	})

	for i := range scored {
		scored[i].Rank = i + 1
	}

	zap.L().Debug("scorer: ranked batch",
		zap.Int("leads", len(scored)),
		zap.Int("top_score", scored[0].ProbabilityScore),
	)

	return scored
}

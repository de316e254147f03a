package scorer

import (
	"strings"

	"github.com/bioleads/bioleads-cli/internal/model"
)

// Engine scores leads against an immutable vocabulary. It holds no mutable
// state, so a single Engine is safe for concurrent use across leads.
type Engine struct {
	cfg Config
}

// New creates an Engine with the given config.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// NewDefault creates an Engine with the canonical vocabulary.
func NewDefault() *Engine {
	return New(Default())
}

// normalize lower-cases and trims text for matching. Absent input yields "".
func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// containsAny reports whether the normalized haystack contains any of the
// keywords as a contiguous substring. Deliberately not word-boundary matching:
// the substring semantics are part of the scoring contract and changing them
// changes scores.
func containsAny(haystack string, keywords []string) bool {
	h := normalize(haystack)
	if h == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(h, normalize(kw)) {
			return true
		}
	}
	return false
}

// Score computes the full breakdown for a single lead. The lead is read-only;
// every extractor tolerates missing fields.
func (e *Engine) Score(lead model.Lead) model.ScoreBreakdown {
	b := model.ScoreBreakdown{
		ScientificIntent: e.scoreScientificIntent(lead),
		RoleFit:          e.scoreRoleFit(lead),
		CompanyIntent:    e.scoreCompanyIntent(lead),
		Technographic:    e.scoreTechnographic(lead),
		Location:         e.scoreLocation(lead),
	}
	b.Total = min(MaxTotal, b.Sum())
	return b
}

// scoreScientificIntent scores recent publication signal, max 40.
// First match wins: keyword in the publication title, keyword in the joined
// keyword list, partial credit for any publication at all.
func (e *Engine) scoreScientificIntent(lead model.Lead) int {
	if lead.RecentPublication == "" && len(lead.PublicationKeywords) == 0 {
		return 0
	}

	if containsAny(lead.RecentPublication, e.cfg.ScientificKeywords) {
		return MaxScientificIntent
	}

	joined := strings.Join(lead.PublicationKeywords, " ")
	if containsAny(joined, e.cfg.ScientificKeywords) {
		return MaxScientificIntent
	}

	if lead.RecentPublication != "" {
		return partialPublicationScore
	}
	return 0
}

// scoreRoleFit scores job title relevance, max 30.
func (e *Engine) scoreRoleFit(lead model.Lead) int {
	title := normalize(lead.Title)
	if title == "" {
		return 0
	}

	hasHighTitle := containsAny(title, e.cfg.SeniorityMarkers)
	hasRoleKeyword := containsAny(title, e.cfg.RoleKeywords)

	switch {
	case hasHighTitle && hasRoleKeyword:
		return MaxRoleFit
	case hasRoleKeyword:
		return 25
	case hasHighTitle:
		return 20
	case containsAny(title, e.cfg.FallbackTitles):
		return 10
	}
	return 0
}

// scoreCompanyIntent scores employer funding stage, max 20. The ladder is
// checked in priority order, first match wins rather than best match.
func (e *Engine) scoreCompanyIntent(lead model.Lead) int {
	funding := normalize(lead.FundingStatus)
	if funding == "" {
		return 0
	}
	for _, rung := range e.cfg.FundingLadder {
		if containsAny(funding, rung.Keywords) {
			return rung.Points
		}
	}
	return 0
}

// scoreTechnographic scores current in-vitro adoption, max 15. The NAMs bonus
// only matters when the base is 0: an adopter already sits at the cap and the
// bonus is absorbed by the clamp.
func (e *Engine) scoreTechnographic(lead model.Lead) int {
	base := 0
	if lead.UsesInvitro {
		base = MaxTechnographic
	}

	joined := strings.Join(lead.PublicationKeywords, " ")
	if containsAny(joined, e.cfg.NAMsMarkers) {
		return min(MaxTechnographic, base+namsBonus)
	}
	return base
}

// scoreLocation scores biotech-hub proximity, max 10. Both the person and HQ
// locations are checked; matching either (or both) awards the same flat bonus.
func (e *Engine) scoreLocation(lead model.Lead) int {
	for _, loc := range []string{lead.Location, lead.HQLocation} {
		if containsAny(loc, e.cfg.HubLocations) {
			return MaxLocation
		}
	}
	return 0
}

// TierFor maps a composite score to its triage tier. Thresholds are inclusive
// at the lower bound.
func TierFor(score int) model.Tier {
	switch {
	case score >= 80:
		return model.TierHot
	case score >= 60:
		return model.TierHigh
	case score >= 40:
		return model.TierMedium
	case score >= 20:
		return model.TierLow
	default:
		return model.TierCold
	}
}

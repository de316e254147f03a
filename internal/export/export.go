// Package export writes ranked lead batches to files and external systems.
package export

import (
	"strconv"
	"strings"

	"github.com/bioleads/bioleads-cli/internal/model"
)

// Header is the column set shared by the CSV and XLSX writers.
var Header = []string{
	"rank", "name", "title", "company", "company_type", "location",
	"funding_status", "score", "tier", "scientific_intent", "role_fit",
	"company_intent", "technographic", "location_score", "keywords",
}

func leadRow(sl model.ScoredLead) []string {
	b := sl.ScoreBreakdown
	return []string{
		strconv.Itoa(sl.Rank),
		sl.Name,
		sl.Title,
		sl.Company,
		sl.CompanyType,
		sl.Location,
		sl.FundingStatus,
		strconv.Itoa(sl.ProbabilityScore),
		string(sl.Tier),
		strconv.Itoa(b.ScientificIntent),
		strconv.Itoa(b.RoleFit),
		strconv.Itoa(b.CompanyIntent),
		strconv.Itoa(b.Technographic),
		strconv.Itoa(b.Location),
		strings.Join(sl.PublicationKeywords, "; "),
	}
}

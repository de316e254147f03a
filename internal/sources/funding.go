package sources

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bioleads/bioleads-cli/internal/fetcher"
	"github.com/bioleads/bioleads-cli/internal/model"
)

// DefaultFundingFeeds are public RSS feeds carrying biotech funding news.
func DefaultFundingFeeds() []string {
	return []string{
		"https://www.fiercebiotech.com/rss/xml",
		"https://www.biopharmadive.com/feeds/news/",
	}
}

// fundingKeywords mark an item as funding news.
var fundingKeywords = []string{
	"series a", "series b", "series c", "series d",
	"raises", "funding", "investment", "ipo",
	"million", "billion", "investors",
}

var fundingRounds = []string{"series a", "series b", "series c", "series d", "seed"}

// FundingSource harvests recently funded companies from news feeds. Entries
// carry no contact name; Merge folds their funding status into named leads at
// the same company.
type FundingSource struct {
	Fetcher fetcher.Fetcher
	Feeds   []string
}

func (s *FundingSource) Name() string { return "funding_news" }

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

func (s *FundingSource) Fetch(ctx context.Context) ([]model.Lead, error) {
	var leads []model.Lead
	seenCompanies := make(map[string]struct{})

	for _, feed := range s.Feeds {
		items, err := s.fetchFeed(ctx, feed)
		if err != nil {
			zap.L().Warn("funding feed unavailable",
				zap.String("feed", feed),
				zap.Error(err),
			)
			continue
		}
		for _, item := range items {
			if !isFundingNews(item) {
				continue
			}
			lead := leadFromFundingNews(item)
			key := strings.ToLower(lead.Company)
			if _, ok := seenCompanies[key]; ok {
				continue
			}
			seenCompanies[key] = struct{}{}
			leads = append(leads, lead)
		}
	}
	return leads, nil
}

func (s *FundingSource) fetchFeed(ctx context.Context, url string) ([]rssItem, error) {
	body, err := s.Fetcher.Get(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "funding source: fetch %s", url)
	}
	defer body.Close() //nolint:errcheck

	itemCh, errCh := fetcher.StreamXML[rssItem](ctx, body, "item")

	var items []rssItem
	for item := range itemCh {
		items = append(items, item)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "funding source: parse %s", url)
	}
	return items, nil
}

func isFundingNews(item rssItem) bool {
	text := strings.ToLower(item.Title + " " + item.Description)
	for _, kw := range fundingKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

var (
	millionPattern = regexp.MustCompile(`(?i)\$(\d+(?:\.\d+)?)\s*(?:million|M\b)`)
	billionPattern = regexp.MustCompile(`(?i)\$(\d+(?:\.\d+)?)\s*(?:billion|B\b)`)
	roundTitler    = cases.Title(language.AmericanEnglish)
)

// parseFundingAmount extracts a short amount string like "$50M" or "$1.2B".
func parseFundingAmount(text string) string {
	if m := billionPattern.FindStringSubmatch(text); m != nil {
		return "$" + m[1] + "B"
	}
	if m := millionPattern.FindStringSubmatch(text); m != nil {
		return "$" + m[1] + "M"
	}
	return "Unknown"
}

// leadFromFundingNews builds a company-only lead from a funding headline.
// Headlines usually open with the company name ("Acme Bio raises $50M...").
func leadFromFundingNews(item rssItem) model.Lead {
	company := item.Title
	for _, cut := range []string{" raise", " secure", " close"} {
		if i := strings.Index(company, cut); i >= 0 {
			company = company[:i]
		}
	}
	company = truncate(strings.TrimSpace(company), maxCompanyLen)

	text := strings.ToLower(item.Title + " " + item.Description)
	round := ""
	for _, r := range fundingRounds {
		if strings.Contains(text, r) {
			round = roundTitler.String(r)
			break
		}
	}

	amount := parseFundingAmount(item.Title + " " + item.Description)

	status := "Recently Funded"
	companyType := "Biotech"
	if round != "" {
		status = round
		companyType = round + " Biotech"
	}
	if amount != "Unknown" {
		status += " (" + amount + ")"
	}

	return model.Lead{
		Company:       company,
		CompanyType:   companyType,
		FundingStatus: status,
		UsesInvitro:   true,
		Source:        "funding_news",
	}
}

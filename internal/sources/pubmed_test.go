package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioleads/bioleads-cli/pkg/pubmed"
)

type fakePubMed struct {
	idsByTerm map[string][]string
	articles  []pubmed.Article
	searchErr error
}

func (f *fakePubMed) Search(ctx context.Context, query string, maxResults, lookbackDays int) ([]string, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.idsByTerm[query], nil
}

func (f *fakePubMed) FetchArticles(ctx context.Context, pmids []string) ([]pubmed.Article, error) {
	return f.articles, nil
}

func TestPubMedSourceFetch(t *testing.T) {
	client := &fakePubMed{
		idsByTerm: map[string][]string{
			`"DILI"`:           {"1", "2"},
			`"liver organoid"`: {"2", "3"},
		},
		articles: []pubmed.Article{
			{
				PMID:  "1",
				Title: "Spheroid DILI assays",
				Year:  "2025",
				Authors: []pubmed.Author{
					{ForeName: "Ana", LastName: "Silva"},
					{ForeName: "Sarah", LastName: "Chen", Affiliations: []string{"Vertex Pharmaceuticals, Boston, MA, USA."}},
				},
				Keywords: []string{"DILI", "spheroid"},
			},
		},
	}

	src := &PubMedSource{Client: client, Terms: []string{`"DILI"`, `"liver organoid"`}, MaxPerTerm: 10, LookbackDays: 730}
	leads, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 1)

	l := leads[0]
	assert.Equal(t, "Dr. Sarah Chen", l.Name)
	assert.Equal(t, "Research Author", l.Title)
	assert.Equal(t, "Vertex Pharmaceuticals", l.Company)
	assert.Equal(t, "Biotech", l.CompanyType)
	assert.Equal(t, "USA.", l.Location)
	assert.Equal(t, "Spheroid DILI assays (2025)", l.RecentPublication)
	assert.Equal(t, []string{"DILI", "spheroid"}, l.PublicationKeywords)
	assert.True(t, l.UsesInvitro)
	assert.Equal(t, "pubmed", l.Source)
}

func TestPubMedSourceFetch_SearchError(t *testing.T) {
	src := &PubMedSource{
		Client: &fakePubMed{searchErr: assert.AnError},
		Terms:  []string{"x"},
	}
	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestLeadsFromArticles_CorrespondingAuthor(t *testing.T) {
	articles := []pubmed.Article{
		{
			Title: "Solo work", Year: "2024",
			Authors: []pubmed.Author{{ForeName: "Only", LastName: "Author"}},
		},
		{
			Title: "Team work", Year: "2024",
			Authors: []pubmed.Author{
				{ForeName: "First", LastName: "Author"},
				{ForeName: "Last", LastName: "Author"},
			},
		},
		{Title: "No authors", Year: "2024"},
	}

	leads := leadsFromArticles(articles)
	require.Len(t, leads, 2)
	assert.Equal(t, "Dr. Only Author", leads[0].Name)

	// The last listed author is the corresponding author.
	assert.Equal(t, "Dr. Last Author", leads[1].Name)
}

func TestLeadsFromArticles_DedupesAuthors(t *testing.T) {
	articles := []pubmed.Article{
		{Title: "One", Year: "2024", Authors: []pubmed.Author{{ForeName: "Sarah", LastName: "Chen"}}},
		{Title: "Two", Year: "2025", Authors: []pubmed.Author{{ForeName: "Sarah", LastName: "Chen"}}},
	}

	leads := leadsFromArticles(articles)
	require.Len(t, leads, 1)
	assert.Contains(t, leads[0].RecentPublication, "One")
}

func TestParseAffiliation(t *testing.T) {
	tests := []struct {
		name        string
		affiliation string
		company     string
		location    string
	}{
		{
			name:        "institution with US location",
			affiliation: "Vertex Pharmaceuticals, Boston, MA, USA.",
			company:     "Vertex Pharmaceuticals",
			location:    "USA.",
		},
		{
			name:        "european institution",
			affiliation: "Institute of Molecular Toxicology, Basel, Switzerland",
			company:     "Institute of Molecular Toxicology",
			location:    "Switzerland",
		},
		{
			name:        "empty",
			affiliation: "",
			company:     "Unknown Institution",
			location:    "Unknown",
		},
		{
			name:        "no recognizable location",
			affiliation: "Somewhere Labs",
			company:     "Somewhere Labs",
			location:    "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			company, location := parseAffiliation(tt.affiliation)
			assert.Equal(t, tt.company, company)
			assert.Equal(t, tt.location, location)
		})
	}
}

func TestParseAffiliation_Truncates(t *testing.T) {
	long := "An Extremely Long Institution Name That Goes On And On And On Forever, Boston, MA, USA"
	company, location := parseAffiliation(long)
	assert.LessOrEqual(t, len(company), maxCompanyLen)
	assert.LessOrEqual(t, len(location), maxLocationLen)
}

func TestClassifyCompanyType(t *testing.T) {
	tests := []struct {
		company     string
		affiliation string
		want        string
	}{
		{"Harvard Medical School", "", "Academic"},
		{"Pfizer Inc", "", "Large Pharma"},
		{"Hepatica Therapeutics", "", "Biotech"},
		{"NCATS", "NIH, Bethesda, MD", "Government"},
		{"Somewhere Labs", "", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.company, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyCompanyType(tt.company, tt.affiliation))
		})
	}
}

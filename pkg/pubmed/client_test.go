package pubmed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleArticleSet = `<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>12345</PMID>
      <Article>
        <Journal>
          <JournalIssue><PubDate><Year>2025</Year></PubDate></JournalIssue>
          <Title>Archives of Toxicology</Title>
        </Journal>
        <ArticleTitle>DILI prediction with 3D hepatic spheroids</ArticleTitle>
        <Abstract><AbstractText>We describe a model.</AbstractText></Abstract>
        <AuthorList>
          <Author>
            <LastName>Chen</LastName>
            <ForeName>Sarah</ForeName>
            <AffiliationInfo><Affiliation>Vertex Pharmaceuticals, Boston, MA, USA.</Affiliation></AffiliationInfo>
          </Author>
          <Author>
            <CollectiveName>DILI Consortium</CollectiveName>
          </Author>
        </AuthorList>
      </Article>
      <KeywordList><Keyword>DILI</Keyword><Keyword>spheroid</Keyword></KeywordList>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "esearch.fcgi")
		q := r.URL.Query()
		assert.Equal(t, "pubmed", q.Get("db"))
		assert.Equal(t, `"drug-induced liver injury"`, q.Get("term"))
		assert.Equal(t, "20", q.Get("retmax"))
		assert.Equal(t, "pdat", q.Get("datetype"))
		w.Write([]byte(`{"esearchresult":{"idlist":["111","222"]}}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
	ids, err := c.Search(context.Background(), `"drug-induced liver injury"`, 20, 730)
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222"}, ids)
}

func TestSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
	_, err := c.Search(context.Background(), "dili", 10, 30)
	assert.Error(t, err)
}

func TestFetchArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "efetch.fcgi")
		assert.Equal(t, "12345", r.URL.Query().Get("id"))
		w.Write([]byte(sampleArticleSet))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
	articles, err := c.FetchArticles(context.Background(), []string{"12345"})
	require.NoError(t, err)
	require.Len(t, articles, 1)

	a := articles[0]
	assert.Equal(t, "12345", a.PMID)
	assert.Equal(t, "DILI prediction with 3D hepatic spheroids", a.Title)
	assert.Equal(t, "Archives of Toxicology", a.Journal)
	assert.Equal(t, "2025", a.Year)
	assert.Equal(t, []string{"DILI", "spheroid"}, a.Keywords)

	// Collective authors without a LastName are dropped.
	require.Len(t, a.Authors, 1)
	assert.Equal(t, "Sarah Chen", a.Authors[0].Name())
	assert.Equal(t, "Vertex Pharmaceuticals, Boston, MA, USA.", a.Authors[0].Affiliations[0])
}

func TestFetchArticles_Empty(t *testing.T) {
	c := NewClient(WithRateLimit(0))
	articles, err := c.FetchArticles(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, articles)
}

func TestParseArticles_Malformed(t *testing.T) {
	_, err := ParseArticles(strings.NewReader("<PubmedArticleSet><PubmedArticle>"))
	assert.Error(t, err)
}

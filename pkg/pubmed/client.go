// Package pubmed wraps the NCBI E-utilities API for publication search.
package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// Client performs PubMed searches via the E-utilities endpoints.
type Client interface {
	// Search returns PMIDs matching the query, restricted to publications
	// from the last lookbackDays days, sorted by relevance.
	Search(ctx context.Context, query string, maxResults, lookbackDays int) ([]string, error)

	// FetchArticles returns article details for the given PMIDs.
	FetchArticles(ctx context.Context, pmids []string) ([]Article, error)
}

// Article is a parsed PubMed article.
type Article struct {
	PMID     string
	Title    string
	Abstract string
	Journal  string
	Year     string
	Authors  []Author
	Keywords []string
}

// Author is a single article author with their stated affiliations.
type Author struct {
	ForeName     string
	LastName     string
	Affiliations []string
}

// Name returns the author's display name.
func (a Author) Name() string {
	return strings.TrimSpace(a.ForeName + " " + a.LastName)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default E-utilities base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit overrides the default NCBI rate limit (3 req/s without an
// API key).
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewClient creates a PubMed E-utilities client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(3, 3),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// esearchResponse matches the JSON shape of esearch.fcgi with retmode=json.
type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

func (c *httpClient) Search(ctx context.Context, query string, maxResults, lookbackDays int) ([]string, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "pubmed: rate limit")
	}

	end := c.now()
	start := end.AddDate(0, 0, -lookbackDays)

	params := url.Values{
		"db":       {"pubmed"},
		"term":     {query},
		"retmax":   {strconv.Itoa(maxResults)},
		"retmode":  {"json"},
		"datetype": {"pdat"},
		"mindate":  {start.Format("2006/01/02")},
		"maxdate":  {end.Format("2006/01/02")},
		"sort":     {"relevance"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/esearch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "pubmed: create search request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "pubmed: search request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("pubmed: search returned status %d", resp.StatusCode)
	}

	var result esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, eris.Wrap(err, "pubmed: decode search response")
	}

	return result.ESearchResult.IDList, nil
}

// XML shapes for efetch.fcgi with retmode=xml.
type articleSetXML struct {
	Articles []articleXML `xml:"PubmedArticle"`
}

type articleXML struct {
	Citation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Title    string      `xml:"ArticleTitle"`
			Abstract string      `xml:"Abstract>AbstractText"`
			Authors  []authorXML `xml:"AuthorList>Author"`
			Journal  struct {
				Title string `xml:"Title"`
				Issue struct {
					PubDate struct {
						Year string `xml:"Year"`
					} `xml:"PubDate"`
				} `xml:"JournalIssue"`
			} `xml:"Journal"`
		} `xml:"Article"`
		Keywords []string `xml:"KeywordList>Keyword"`
	} `xml:"MedlineCitation"`
}

type authorXML struct {
	LastName     string   `xml:"LastName"`
	ForeName     string   `xml:"ForeName"`
	Affiliations []string `xml:"AffiliationInfo>Affiliation"`
}

func (c *httpClient) FetchArticles(ctx context.Context, pmids []string) ([]Article, error) {
	if len(pmids) == 0 {
		return nil, nil
	}

	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "pubmed: rate limit")
	}

	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"xml"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/efetch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "pubmed: create fetch request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "pubmed: fetch request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("pubmed: fetch returned status %d", resp.StatusCode)
	}

	return ParseArticles(resp.Body)
}

// ParseArticles decodes a PubmedArticleSet XML document.
func ParseArticles(r io.Reader) ([]Article, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "pubmed: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var set articleSetXML
	if err := decoder.Decode(&set); err != nil {
		return nil, eris.Wrap(err, "pubmed: decode article set")
	}

	articles := make([]Article, 0, len(set.Articles))
	for _, a := range set.Articles {
		art := Article{
			PMID:     a.Citation.PMID,
			Title:    a.Citation.Article.Title,
			Abstract: a.Citation.Article.Abstract,
			Journal:  a.Citation.Article.Journal.Title,
			Year:     a.Citation.Article.Journal.Issue.PubDate.Year,
			Keywords: a.Citation.Keywords,
		}
		for _, au := range a.Citation.Article.Authors {
			if au.LastName == "" {
				continue
			}
			art.Authors = append(art.Authors, Author{
				ForeName:     au.ForeName,
				LastName:     au.LastName,
				Affiliations: au.Affiliations,
			})
		}
		articles = append(articles, art)
	}
	return articles, nil
}

// Package reporter wraps the NIH RePORTER v2 projects API.
package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.reporter.nih.gov/v2"

// Client searches funded NIH projects.
type Client interface {
	// SearchProjects returns projects whose abstract or title matches the
	// given text, limited to the given fiscal years.
	SearchProjects(ctx context.Context, text string, fiscalYears []int, limit int) ([]Project, error)
}

// Project is a funded NIH award.
type Project struct {
	ProjectNum   string         `json:"project_num"`
	Title        string         `json:"project_title"`
	AbstractText string         `json:"abstract_text"`
	FiscalYear   int            `json:"fiscal_year"`
	AwardAmount  float64        `json:"award_amount"`
	Organization Organization   `json:"organization"`
	PrincipalPIs []Investigator `json:"principal_investigators"`
}

// Organization is the awardee institution.
type Organization struct {
	Name  string `json:"org_name"`
	City  string `json:"org_city"`
	State string `json:"org_state"`
}

// Investigator is a project principal investigator.
type Investigator struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Title     string `json:"title"`
}

// Name returns the investigator's display name.
func (i Investigator) Name() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default RePORTER base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit overrides the default rate limit of 1 req/s.
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
}

// NewClient creates a RePORTER API client.
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
		limiter: rate.NewLimiter(1, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchRequest struct {
	Criteria searchCriteria `json:"criteria"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
}

type searchCriteria struct {
	FiscalYears    []int          `json:"fiscal_years,omitempty"`
	AdvancedSearch advancedSearch `json:"advanced_text_search"`
}

type advancedSearch struct {
	Operator    string `json:"operator"`
	SearchField string `json:"search_field"`
	SearchText  string `json:"search_text"`
}

type searchResponse struct {
	Results []Project `json:"results"`
}

func (c *httpClient) SearchProjects(ctx context.Context, text string, fiscalYears []int, limit int) ([]Project, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "reporter: rate limit")
		}
	}

	body, err := json.Marshal(searchRequest{
		Criteria: searchCriteria{
			FiscalYears: fiscalYears,
			AdvancedSearch: advancedSearch{
				Operator:    "and",
				SearchField: "projecttitle,abstracttext",
				SearchText:  text,
			},
		},
		Limit: limit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "reporter: marshal search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/projects/search", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "reporter: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "reporter: search request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("reporter: search returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, eris.Wrap(err, "reporter: decode response")
	}
	return result.Results, nil
}

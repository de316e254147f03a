package reporter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/projects/search", r.URL.Path)

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []int{2024, 2025}, req.Criteria.FiscalYears)
		assert.Equal(t, "hepatotoxicity organoid", req.Criteria.AdvancedSearch.SearchText)
		assert.Equal(t, 50, req.Limit)

		w.Write([]byte(`{"results":[{
			"project_num":"5R01ES034567-02",
			"project_title":"Organoid models of hepatotoxicity",
			"fiscal_year":2025,
			"award_amount":2400000,
			"organization":{"org_name":"Hepatica Bio","org_city":"Cambridge","org_state":"MA"},
			"principal_investigators":[{"first_name":"James","last_name":"Wu","title":"PROFESSOR"}]
		}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
	projects, err := c.SearchProjects(context.Background(), "hepatotoxicity organoid", []int{2024, 2025}, 50)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	p := projects[0]
	assert.Equal(t, "5R01ES034567-02", p.ProjectNum)
	assert.Equal(t, float64(2400000), p.AwardAmount)
	assert.Equal(t, "Hepatica Bio", p.Organization.Name)
	require.Len(t, p.PrincipalPIs, 1)
	assert.Equal(t, "James Wu", p.PrincipalPIs[0].Name())
}

func TestSearchProjects_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
	_, err := c.SearchProjects(context.Background(), "x", nil, 10)
	assert.Error(t, err)
}

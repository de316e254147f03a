package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioleads/bioleads-cli/internal/config"
)

func withTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Sources: config.SourcesConfig{
			UserAgent:   "test-agent",
			TimeoutSecs: 5,
			PubMed: config.PubMedConfig{
				BaseURL:     "https://eutils.example.test",
				SearchTerms: []string{`"DILI"`},
				MaxPerTerm:  5,
			},
			Reporter: config.ReporterConfig{
				BaseURL:     "https://reporter.example.test",
				SearchTerms: []string{"hepatotoxicity"},
				FiscalYears: []int{2026},
			},
		},
	}
	t.Cleanup(func() { cfg = prev })
}

func sourceNames(t *testing.T, only []string) []string {
	t.Helper()
	srcs, err := buildSources(only)
	require.NoError(t, err)
	names := make([]string, len(srcs))
	for i, s := range srcs {
		names[i] = s.Name()
	}
	return names
}

func TestBuildSources_DefaultExcludesBaseline(t *testing.T) {
	withTestConfig(t)

	names := sourceNames(t, nil)
	assert.ElementsMatch(t, []string{"pubmed", "nih_reporter", "conference", "funding_news"}, names)
}

func TestBuildSources_Subset(t *testing.T) {
	withTestConfig(t)

	names := sourceNames(t, []string{"pubmed", "Funding_News"})
	assert.ElementsMatch(t, []string{"pubmed", "funding_news"}, names)
}

func TestBuildSources_BaselineOptIn(t *testing.T) {
	withTestConfig(t)

	names := sourceNames(t, []string{"pubmed_baseline"})
	assert.Equal(t, []string{"pubmed_baseline"}, names)
}

func TestBuildSources_UnknownNameYieldsNone(t *testing.T) {
	withTestConfig(t)

	srcs, err := buildSources([]string{"crunchbase"})
	require.NoError(t, err)
	assert.Empty(t, srcs)
}

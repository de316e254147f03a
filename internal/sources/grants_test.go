package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioleads/bioleads-cli/pkg/reporter"
)

type fakeReporter struct {
	projects []reporter.Project
	err      error
}

func (f *fakeReporter) SearchProjects(ctx context.Context, text string, fiscalYears []int, limit int) ([]reporter.Project, error) {
	return f.projects, f.err
}

func TestGrantsSourceFetch(t *testing.T) {
	client := &fakeReporter{projects: []reporter.Project{
		{
			Title:       "Organoid models of hepatotoxicity",
			AwardAmount: 2400000,
			Organization: reporter.Organization{
				Name: "Hepatica Bio", City: "Cambridge", State: "MA",
			},
			PrincipalPIs: []reporter.Investigator{{FirstName: "James", LastName: "Wu"}},
		},
	}}

	src := &GrantsSource{Client: client, Terms: []string{"hepatotoxicity"}, FiscalYears: []int{2025}, MaxPerTerm: 10}
	leads, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 1)

	l := leads[0]
	assert.Equal(t, "Dr. James Wu", l.Name)
	assert.Equal(t, "Principal Investigator", l.Title)
	assert.Equal(t, "Hepatica Bio", l.Company)
	assert.Equal(t, "Academic", l.CompanyType)
	assert.Equal(t, "Cambridge, MA", l.Location)
	assert.Equal(t, "NIH Grant ($2,400,000)", l.FundingStatus)
	assert.True(t, l.UsesInvitro)
}

func TestGrantsSourceFetch_DedupesPIsAcrossTerms(t *testing.T) {
	client := &fakeReporter{projects: []reporter.Project{
		{PrincipalPIs: []reporter.Investigator{{FirstName: "James", LastName: "Wu"}}},
	}}

	src := &GrantsSource{Client: client, Terms: []string{"a", "b"}}
	leads, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestGrantsSourceFetch_Error(t *testing.T) {
	src := &GrantsSource{Client: &fakeReporter{err: assert.AnError}, Terms: []string{"x"}}
	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestLeadFromProject_Defaults(t *testing.T) {
	l := leadFromProject(reporter.Project{})
	assert.Equal(t, "Unknown PI", l.Name)
	assert.Equal(t, "Unknown Institution", l.Company)
	assert.Equal(t, "Unknown", l.Location)
	assert.Equal(t, "NIH Grant", l.FundingStatus)
	assert.Empty(t, l.RecentPublication)
}

func TestLeadFromProject_TruncatesTitle(t *testing.T) {
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	l := leadFromProject(reporter.Project{Title: string(long)})
	assert.Len(t, l.RecentPublication, 100)
}

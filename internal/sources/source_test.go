package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioleads/bioleads-cli/internal/model"
)

type fakeSource struct {
	name  string
	leads []model.Lead
	err   error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context) ([]model.Lead, error) {
	return f.leads, f.err
}

func TestFetchAll(t *testing.T) {
	srcs := []Source{
		&fakeSource{name: "a", leads: []model.Lead{
			{Name: "Dr. Sarah Chen", Company: "Vertex Pharmaceuticals"},
		}},
		&fakeSource{name: "b", leads: []model.Lead{
			{Name: "Dr. Sarah Chen", Company: "Vertex Pharmaceuticals"},
			{Name: "Dr. James Wu", Company: "Hepatica Bio"},
		}},
	}

	leads, err := FetchAll(context.Background(), srcs)
	require.NoError(t, err)
	assert.Len(t, leads, 2)
}

func TestFetchAll_SourceError(t *testing.T) {
	srcs := []Source{
		&fakeSource{name: "ok"},
		&fakeSource{name: "broken", err: assert.AnError},
	}

	_, err := FetchAll(context.Background(), srcs)
	assert.Error(t, err)
}

func TestMerge_DedupesCaseInsensitively(t *testing.T) {
	a := []model.Lead{{Name: "Dr. Sarah Chen", Company: "Vertex", Title: "Director"}}
	b := []model.Lead{{Name: "dr. sarah chen", Company: "VERTEX", Title: "Scientist"}}

	merged := Merge(a, b)
	require.Len(t, merged, 1)
	assert.Equal(t, "Director", merged[0].Title)
}

func TestMerge_FoldsCompanyOnlyFunding(t *testing.T) {
	named := []model.Lead{
		{Name: "Dr. Sarah Chen", Company: "Hepatica Bio", FundingStatus: "Unknown"},
		{Name: "Dr. James Wu", Company: "Hepatica Bio", FundingStatus: "Series A ($40M)"},
	}
	funding := []model.Lead{
		{Company: "Hepatica Bio", FundingStatus: "Series B ($180M)"},
		{Company: "Unseen Therapeutics", FundingStatus: "Seed ($8M)"},
	}

	merged := Merge(named, funding)
	require.Len(t, merged, 3)

	// Unknown funding filled in, explicit funding left alone.
	assert.Equal(t, "Series B ($180M)", merged[0].FundingStatus)
	assert.Equal(t, "Series A ($40M)", merged[1].FundingStatus)

	// No named lead at the company, so the entry survives on its own.
	assert.Equal(t, "Unseen Therapeutics", merged[2].Company)
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge())
	assert.Empty(t, Merge(nil, nil))
}

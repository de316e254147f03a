package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioleads/bioleads-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testScoredLeads() []model.ScoredLead {
	return []model.ScoredLead{
		{
			Lead: model.Lead{
				Name:                "Dr. Sarah Chen",
				Title:               "Director of Toxicology",
				Company:             "Vertex Pharmaceuticals",
				PublicationKeywords: []string{"DILI", "spheroid"},
				UsesInvitro:         true,
			},
			ProbabilityScore: 100,
			ScoreBreakdown: model.ScoreBreakdown{
				ScientificIntent: 40, RoleFit: 30, CompanyIntent: 15,
				Technographic: 15, Location: 10, Total: 100,
			},
			Tier: model.TierHot,
			Rank: 1,
		},
		{
			Lead:             model.Lead{Name: "Dr. James Wu", Company: "Hepatica Bio"},
			ProbabilityScore: 45,
			Tier:             model.TierMedium,
			Rank:             2,
		},
	}
}

func TestSQLiteStore_SaveAndGetRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.SaveRun(ctx, "weekly", testScoredLeads())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "weekly", run.Label)
	assert.Equal(t, 2, run.LeadCount)
	assert.InDelta(t, 72.5, run.AvgScore, 0.001)
	assert.Equal(t, 1, run.TierCounts[model.TierHot])

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.LeadCount, got.LeadCount)
	assert.Equal(t, run.TierCounts, got.TierCounts)
}

func TestSQLiteStore_GetRunLeads_RoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	scored := testScoredLeads()
	run, err := s.SaveRun(ctx, "", scored)
	require.NoError(t, err)

	got, err := s.GetRunLeads(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, scored, got)
}

func TestSQLiteStore_GetRun_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetRun(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.SaveRun(ctx, "weekly", testScoredLeads())
	require.NoError(t, err)
	_, err = s.SaveRun(ctx, "adhoc", nil)
	require.NoError(t, err)

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	weekly, err := s.ListRuns(ctx, RunFilter{Label: "weekly"})
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	assert.Equal(t, "weekly", weekly[0].Label)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStore_DeleteRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.SaveRun(ctx, "", testScoredLeads())
	require.NoError(t, err)

	require.NoError(t, s.DeleteRun(ctx, run.ID))

	_, err = s.GetRun(ctx, run.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	leads, err := s.GetRunLeads(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, leads)

	assert.True(t, errors.Is(s.DeleteRun(ctx, run.ID), ErrNotFound))
}

func TestSQLiteStore_EmptyBatch(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.SaveRun(ctx, "empty", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, run.LeadCount)
	assert.Equal(t, float64(0), run.AvgScore)
}

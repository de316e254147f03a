// Package store persists scoring runs and their ranked lead batches.
package store

import (
	"context"
	"errors"

	"github.com/bioleads/bioleads-cli/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Label  string `json:"label,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for scoring runs. A run is
// immutable once saved: the scored batch is stored exactly as ranked.
type Store interface {
	SaveRun(ctx context.Context, label string, scored []model.ScoredLead) (*model.Run, error)
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)
	GetRunLeads(ctx context.Context, runID string) ([]model.ScoredLead, error)
	DeleteRun(ctx context.Context, runID string) error

	Migrate(ctx context.Context) error
	Close() error
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/bioleads/bioleads-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	label       TEXT NOT NULL DEFAULT '',
	lead_count  INTEGER NOT NULL,
	avg_score   REAL NOT NULL,
	tier_counts TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_leads (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	rank    INTEGER NOT NULL,
	score   INTEGER NOT NULL,
	tier    TEXT NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_runs_label ON runs(label);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_run_leads_run_id ON run_leads(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, label string, scored []model.ScoredLead) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	avg, tiers := model.Summarize(scored)

	tiersJSON, err := json.Marshal(tiers)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal tier counts")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, label, lead_count, avg_score, tier_counts, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, label, len(scored), avg, string(tiersJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	for _, sl := range scored {
		payload, err := json.Marshal(sl)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: marshal scored lead")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_leads (run_id, rank, score, tier, payload) VALUES (?, ?, ?, ?, ?)`,
			id, sl.Rank, sl.ProbabilityScore, string(sl.Tier), string(payload),
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert lead rank %d", sl.Rank)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit run")
	}

	return &model.Run{
		ID:         id,
		Label:      label,
		LeadCount:  len(scored),
		AvgScore:   avg,
		TierCounts: tiers,
		CreatedAt:  now,
	}, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, label, lead_count, avg_score, tier_counts, created_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, label, lead_count, avg_score, tier_counts, created_at FROM runs WHERE 1=1`
	var args []any

	if filter.Label != "" {
		query += ` AND label = ?`
		args = append(args, filter.Label)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) GetRunLeads(ctx context.Context, runID string) ([]model.ScoredLead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM run_leads WHERE run_id = ? ORDER BY rank`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get leads for run %s", runID)
	}
	defer rows.Close()

	var scored []model.ScoredLead
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead payload")
		}
		var sl model.ScoredLead
		if err := json.Unmarshal([]byte(payload), &sl); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal scored lead")
		}
		scored = append(scored, sl)
	}
	return scored, eris.Wrap(rows.Err(), "sqlite: leads iterate")
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_leads WHERE run_id = ?`, runID); err != nil {
		return eris.Wrapf(err, "sqlite: delete leads for run %s", runID)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete run %s", runID)
	}
	if err := checkRowsAffected(res, "run", runID); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit delete")
}

// helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var r model.Run
	var tiersJSON string
	err := row.Scan(&r.ID, &r.Label, &r.LeadCount, &r.AvgScore, &tiersJSON, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "run")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	if err := json.Unmarshal([]byte(tiersJSON), &r.TierCounts); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal tier counts")
	}
	return &r, nil
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

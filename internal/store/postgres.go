package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/bioleads/bioleads-cli/internal/db"
	"github.com/bioleads/bioleads-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":    `INSERT INTO runs (id, label, lead_count, avg_score, tier_counts, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"get_run":       `SELECT id, label, lead_count, avg_score, tier_counts, created_at FROM runs WHERE id = $1`,
	"get_run_leads": `SELECT payload FROM run_leads WHERE run_id = $1 ORDER BY rank`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	label       TEXT NOT NULL DEFAULT '',
	lead_count  INTEGER NOT NULL,
	avg_score   DOUBLE PRECISION NOT NULL,
	tier_counts JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_leads (
	run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	rank    INTEGER NOT NULL,
	score   INTEGER NOT NULL,
	tier    TEXT NOT NULL,
	payload JSONB NOT NULL,
	PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_runs_label ON runs(label);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_run_leads_score ON run_leads(run_id, score DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, label string, scored []model.ScoredLead) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	avg, tiers := model.Summarize(scored)

	tiersJSON, err := json.Marshal(tiers)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal tier counts")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, label, lead_count, avg_score, tier_counts, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, label, len(scored), avg, tiersJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	rows := make([][]any, 0, len(scored))
	for _, sl := range scored {
		payload, err := json.Marshal(sl)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: marshal scored lead")
		}
		rows = append(rows, []any{id, sl.Rank, sl.ProbabilityScore, string(sl.Tier), payload})
	}
	if _, err := db.CopyFrom(ctx, s.pool, "run_leads",
		[]string{"run_id", "rank", "score", "tier", "payload"}, rows); err != nil {
		return nil, eris.Wrapf(err, "postgres: copy leads for run %s", id)
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

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, label, lead_count, avg_score, tier_counts, created_at FROM runs WHERE id = $1`,
		runID,
	)

	var r model.Run
	var tiersJSON []byte
	err := row.Scan(&r.ID, &r.Label, &r.LeadCount, &r.AvgScore, &tiersJSON, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	if err := json.Unmarshal(tiersJSON, &r.TierCounts); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal tier counts")
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, label, lead_count, avg_score, tier_counts, created_at FROM runs WHERE 1=1`
	var args []any

	if filter.Label != "" {
		args = append(args, filter.Label)
		query += ` AND label = $1`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var tiersJSON []byte
		if err := rows.Scan(&r.ID, &r.Label, &r.LeadCount, &r.AvgScore, &tiersJSON, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(tiersJSON, &r.TierCounts); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal tier counts")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) GetRunLeads(ctx context.Context, runID string) ([]model.ScoredLead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM run_leads WHERE run_id = $1 ORDER BY rank`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get leads for run %s", runID)
	}
	defer rows.Close()

	var scored []model.ScoredLead
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead payload")
		}
		var sl model.ScoredLead
		if err := json.Unmarshal(payload, &sl); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal scored lead")
		}
		scored = append(scored, sl)
	}
	return scored, eris.Wrap(rows.Err(), "postgres: leads iterate")
}

func (s *PostgresStore) DeleteRun(ctx context.Context, runID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM runs WHERE id = $1`, runID)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

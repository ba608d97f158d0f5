package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/diligence-cli/internal/db"
	"github.com/sells-group/diligence-cli/internal/model"
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
	"insert_run": `INSERT INTO benchmark_runs
	 (id, company_name, industry, stage, peer_count, risk_score, flag_count, recommendation, status, result, error, created_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
	"get_run": `SELECT id, company_name, industry, stage, peer_count, risk_score, flag_count, recommendation, status, result, error, created_at
	 FROM benchmark_runs WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
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
CREATE TABLE IF NOT EXISTS benchmark_runs (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_name   TEXT NOT NULL,
	industry       TEXT NOT NULL,
	stage          TEXT NOT NULL,
	peer_count     INTEGER NOT NULL DEFAULT 0,
	risk_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
	flag_count     INTEGER NOT NULL DEFAULT 0,
	recommendation TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'complete',
	result         JSONB,
	error          TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS companies (
	name       TEXT PRIMARY KEY,
	industry   TEXT NOT NULL,
	stage      TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_benchmark_runs_industry ON benchmark_runs(industry);
CREATE INDEX IF NOT EXISTS idx_benchmark_runs_status ON benchmark_runs(status);
CREATE INDEX IF NOT EXISTS idx_benchmark_runs_created_at ON benchmark_runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_companies_industry ON companies(industry);
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

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.BenchmarkRun) error {
	var result []byte
	if run.Result != nil {
		b, err := json.Marshal(run.Result)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal result")
		}
		result = b
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO benchmark_runs
	 (id, company_name, industry, stage, peer_count, risk_score, flag_count, recommendation, status, result, error, created_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		run.ID, run.CompanyName, run.Industry, string(run.Stage), run.PeerCount,
		run.RiskScore, run.FlagCount, run.Recommendation, string(run.Status),
		result, run.Error, run.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert run %s", run.ID)
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.BenchmarkRun, error) {
	var r model.BenchmarkRun
	var result []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, company_name, industry, stage, peer_count, risk_score, flag_count, recommendation, status, result, error, created_at
	 FROM benchmark_runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.CompanyName, &r.Industry, &r.Stage, &r.PeerCount,
		&r.RiskScore, &r.FlagCount, &r.Recommendation, &r.Status,
		&result, &r.Error, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if result != nil {
		r.Result = &model.BenchmarkResult{}
		if err := json.Unmarshal(result, r.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.BenchmarkRun, error) {
	query := `SELECT id, company_name, industry, stage, peer_count, risk_score, flag_count, recommendation, status, result, error, created_at
	          FROM benchmark_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Industry != "" {
		query += fmt.Sprintf(` AND industry = $%d`, argIdx)
		args = append(args, filter.Industry)
		argIdx++
	}
	if filter.Stage != "" {
		query += fmt.Sprintf(` AND stage = $%d`, argIdx)
		args = append(args, string(filter.Stage))
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.MinRisk > 0 {
		query += fmt.Sprintf(` AND risk_score >= $%d`, argIdx)
		args = append(args, filter.MinRisk)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.BenchmarkRun
	for rows.Next() {
		var r model.BenchmarkRun
		var result []byte

		if err := rows.Scan(&r.ID, &r.CompanyName, &r.Industry, &r.Stage, &r.PeerCount,
			&r.RiskScore, &r.FlagCount, &r.Recommendation, &r.Status,
			&result, &r.Error, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if result != nil {
			r.Result = &model.BenchmarkResult{}
			if err := json.Unmarshal(result, r.Result); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal result")
			}
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// companyColumns is the column order for bulk archive writes.
var companyColumns = []string{"name", "industry", "stage", "data", "updated_at"}

func (s *PostgresStore) SaveCompanies(ctx context.Context, companies []model.Company) (int64, error) {
	if len(companies) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(companies))
	for _, c := range companies {
		data, err := json.Marshal(c)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal company %s", c.Name)
		}
		rows = append(rows, []any{c.Name, c.Industry, string(c.Stage), data, now})
	}

	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "companies",
		Columns:      companyColumns,
		ConflictKeys: []string{"name"},
	}, rows)
}

func (s *PostgresStore) ListCompanies(ctx context.Context, industry string) ([]model.Company, error) {
	query := `SELECT data FROM companies`
	args := []any{}
	if industry != "" {
		query += ` WHERE industry = $1`
		args = append(args, industry)
	}
	query += ` ORDER BY name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		var c model.Company
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "postgres: list companies iterate")
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/diligence-cli/internal/model"
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
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS benchmark_runs (
	id             TEXT PRIMARY KEY,
	company_name   TEXT NOT NULL,
	industry       TEXT NOT NULL,
	stage          TEXT NOT NULL,
	peer_count     INTEGER NOT NULL DEFAULT 0,
	risk_score     REAL NOT NULL DEFAULT 0,
	flag_count     INTEGER NOT NULL DEFAULT 0,
	recommendation TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'complete',
	result         TEXT,
	error          TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS companies (
	name       TEXT PRIMARY KEY,
	industry   TEXT NOT NULL,
	stage      TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_benchmark_runs_industry ON benchmark_runs(industry);
CREATE INDEX IF NOT EXISTS idx_benchmark_runs_status ON benchmark_runs(status);
CREATE INDEX IF NOT EXISTS idx_benchmark_runs_created_at ON benchmark_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_companies_industry ON companies(industry);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.BenchmarkRun) error {
	var result sql.NullString
	if run.Result != nil {
		b, err := json.Marshal(run.Result)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal result")
		}
		result = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO benchmark_runs
		 (id, company_name, industry, stage, peer_count, risk_score, flag_count, recommendation, status, result, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CompanyName, run.Industry, string(run.Stage), run.PeerCount,
		run.RiskScore, run.FlagCount, run.Recommendation, string(run.Status),
		result, run.Error, run.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.BenchmarkRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_name, industry, stage, peer_count, risk_score, flag_count, recommendation, status, result, error, created_at
		 FROM benchmark_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.BenchmarkRun, error) {
	query := `SELECT id, company_name, industry, stage, peer_count, risk_score, flag_count, recommendation, status, result, error, created_at
	          FROM benchmark_runs WHERE 1=1`
	var args []any

	if filter.Industry != "" {
		query += ` AND industry = ?`
		args = append(args, filter.Industry)
	}
	if filter.Stage != "" {
		query += ` AND stage = ?`
		args = append(args, string(filter.Stage))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.MinRisk > 0 {
		query += ` AND risk_score >= ?`
		args = append(args, filter.MinRisk)
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

	var runs []model.BenchmarkRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveCompanies(ctx context.Context, companies []model.Company) (int64, error) {
	if len(companies) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	var written int64
	for _, c := range companies {
		data, err := json.Marshal(c)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal company %s", c.Name)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO companies (name, industry, stage, data, updated_at) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (name) DO UPDATE SET
			   industry = excluded.industry, stage = excluded.stage,
			   data = excluded.data, updated_at = excluded.updated_at`,
			c.Name, c.Industry, string(c.Stage), string(data), now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert company %s", c.Name)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit companies")
	}
	return written, nil
}

func (s *SQLiteStore) ListCompanies(ctx context.Context, industry string) ([]model.Company, error) {
	query := `SELECT data FROM companies`
	var args []any
	if industry != "" {
		query += ` WHERE industry = ?`
		args = append(args, industry)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		var c model.Company
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "sqlite: list companies iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.BenchmarkRun, error) {
	var r model.BenchmarkRun
	var result sql.NullString

	err := row.Scan(&r.ID, &r.CompanyName, &r.Industry, &r.Stage, &r.PeerCount,
		&r.RiskScore, &r.FlagCount, &r.Recommendation, &r.Status, &result,
		&r.Error, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if result.Valid {
		r.Result = &model.BenchmarkResult{}
		if err := json.Unmarshal([]byte(result.String), r.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
	}
	return &r, nil
}

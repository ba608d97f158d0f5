// Package store persists benchmark run history and a shared company archive
// behind a driver-selectable Store interface. SQLite is the default backend;
// Postgres serves shared deployments.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/diligence-cli/internal/model"
)

// ErrRunNotFound is returned when a run ID has no stored record.
var ErrRunNotFound = eris.New("store: run not found")

// Store persists benchmark runs and reference companies.
type Store interface {
	// SaveRun inserts a completed or failed benchmark run.
	SaveRun(ctx context.Context, run *model.BenchmarkRun) error

	// GetRun fetches a single run by ID. Returns ErrRunNotFound when absent.
	GetRun(ctx context.Context, runID string) (*model.BenchmarkRun, error)

	// ListRuns returns runs matching the filter, newest first.
	ListRuns(ctx context.Context, filter RunFilter) ([]model.BenchmarkRun, error)

	// SaveCompanies upserts reference companies keyed by name and returns
	// the number of rows written.
	SaveCompanies(ctx context.Context, companies []model.Company) (int64, error)

	// ListCompanies returns archived companies ordered by name, optionally
	// filtered to one industry.
	ListCompanies(ctx context.Context, industry string) ([]model.Company, error)

	// Migrate creates or updates the schema. Safe to call repeatedly.
	Migrate(ctx context.Context) error

	Close() error
}

// RunFilter narrows ListRuns results. Zero values mean no constraint.
type RunFilter struct {
	Industry string
	Stage    model.Stage
	Status   model.RunStatus
	MinRisk  float64
	Limit    int
	Offset   int
}

// NewRun builds the persisted record for a finished benchmark.
func NewRun(result *model.BenchmarkResult) *model.BenchmarkRun {
	return &model.BenchmarkRun{
		ID:             uuid.New().String(),
		CompanyName:    result.Company.Name,
		Industry:       result.Company.Industry,
		Stage:          result.Company.Stage,
		PeerCount:      len(result.PeerCompanies),
		RiskScore:      result.RiskScore,
		FlagCount:      len(result.RedFlags),
		Recommendation: result.Recommendation,
		Status:         model.RunStatusComplete,
		Result:         result,
		CreatedAt:      time.Now().UTC(),
	}
}

// NewFailedRun records a benchmark attempt that errored before producing a
// result.
func NewFailedRun(company model.Company, cause error) *model.BenchmarkRun {
	return &model.BenchmarkRun{
		ID:          uuid.New().String(),
		CompanyName: company.Name,
		Industry:    company.Industry,
		Stage:       company.Stage,
		Status:      model.RunStatusFailed,
		Error:       cause.Error(),
		CreatedAt:   time.Now().UTC(),
	}
}

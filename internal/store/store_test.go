package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/diligence-cli/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleResult(name string) *model.BenchmarkResult {
	return &model.BenchmarkResult{
		Company: model.Company{
			Name:     name,
			Industry: "Payments",
			Stage:    model.StageSeriesA,
			ARR:      model.Ptr(500000.0),
		},
		PeerCompanies: []model.Company{
			{Name: "Peer One", Industry: "Payments", Stage: model.StageSeriesA},
			{Name: "Peer Two", Industry: "Payments", Stage: model.StageSeriesA},
		},
		RedFlags:       []string{"Low ARR: $500,000 vs peer 25th percentile $1,000,000"},
		Insights:       []string{"ARR growth opportunity: $500,000 is below 75% of similar companies"},
		RiskScore:      0.7,
		Recommendation: "MEDIUM RISK - Some concerns identified. Requires additional due diligence and monitoring.",
	}
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("SaveAndGetRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run := NewRun(sampleResult("PayFlow Technologies"))
		require.NoError(t, s.SaveRun(ctx, run))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.ID, got.ID)
		assert.Equal(t, "PayFlow Technologies", got.CompanyName)
		assert.Equal(t, "Payments", got.Industry)
		assert.Equal(t, model.StageSeriesA, got.Stage)
		assert.Equal(t, 2, got.PeerCount)
		assert.InDelta(t, 0.7, got.RiskScore, 1e-9)
		assert.Equal(t, 1, got.FlagCount)
		assert.Equal(t, model.RunStatusComplete, got.Status)
		require.NotNil(t, got.Result)
		assert.Equal(t, run.Recommendation, got.Result.Recommendation)
		assert.Len(t, got.Result.PeerCompanies, 2)
	})

	t.Run("GetRunMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetRun(context.Background(), "no-such-run")
		require.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("SaveFailedRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		company := model.Company{Name: "Broken Co", Industry: "Lending", Stage: model.StageSeed}
		run := NewFailedRun(company, errors.New("no companies found for industry"))
		require.NoError(t, s.SaveRun(ctx, run))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusFailed, got.Status)
		assert.Contains(t, got.Error, "no companies found")
		assert.Nil(t, got.Result)
	})

	t.Run("ListRunsFilters", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

		payments := NewRun(sampleResult("Alpha Pay"))
		payments.CreatedAt = base

		lending := NewRun(sampleResult("Beta Loans"))
		lending.Industry = "Lending"
		lending.Stage = model.StageSeriesB
		lending.RiskScore = 0.2
		lending.CreatedAt = base.Add(time.Minute)

		failed := NewFailedRun(model.Company{Name: "Gamma", Industry: "Payments", Stage: model.StageSeed}, errors.New("index not trained"))
		failed.CreatedAt = base.Add(2 * time.Minute)

		for _, r := range []*model.BenchmarkRun{payments, lending, failed} {
			require.NoError(t, s.SaveRun(ctx, r))
		}

		all, err := s.ListRuns(ctx, RunFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, failed.ID, all[0].ID) // newest first

		byIndustry, err := s.ListRuns(ctx, RunFilter{Industry: "Lending"})
		require.NoError(t, err)
		require.Len(t, byIndustry, 1)
		assert.Equal(t, "Beta Loans", byIndustry[0].CompanyName)

		byStage, err := s.ListRuns(ctx, RunFilter{Stage: model.StageSeriesB})
		require.NoError(t, err)
		require.Len(t, byStage, 1)
		assert.Equal(t, lending.ID, byStage[0].ID)

		byStatus, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
		require.NoError(t, err)
		require.Len(t, byStatus, 1)
		assert.Equal(t, "Gamma", byStatus[0].CompanyName)

		risky, err := s.ListRuns(ctx, RunFilter{MinRisk: 0.5})
		require.NoError(t, err)
		require.Len(t, risky, 1)
		assert.Equal(t, "Alpha Pay", risky[0].CompanyName)

		limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, failed.ID, limited[0].ID)

		offset, err := s.ListRuns(ctx, RunFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, offset, 1)
		assert.Equal(t, lending.ID, offset[0].ID)
	})

	t.Run("SaveAndListCompanies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		companies := []model.Company{
			{Name: "Acme Payments", Industry: "Payments", Stage: model.StageSeriesA, ARR: model.Ptr(2e6)},
			{Name: "Globex Lending", Industry: "Lending", Stage: model.StageSeriesB, ARR: model.Ptr(5e6)},
		}
		n, err := s.SaveCompanies(ctx, companies)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		all, err := s.ListCompanies(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Acme Payments", all[0].Name) // ordered by name
		require.NotNil(t, all[0].ARR)
		assert.Equal(t, 2e6, *all[0].ARR)

		lending, err := s.ListCompanies(ctx, "Lending")
		require.NoError(t, err)
		require.Len(t, lending, 1)
		assert.Equal(t, "Globex Lending", lending[0].Name)
	})

	t.Run("SaveCompaniesUpsertsByName", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.SaveCompanies(ctx, []model.Company{
			{Name: "Acme Payments", Industry: "Payments", Stage: model.StageSeed, ARR: model.Ptr(1e6)},
		})
		require.NoError(t, err)

		_, err = s.SaveCompanies(ctx, []model.Company{
			{Name: "Acme Payments", Industry: "Payments", Stage: model.StageSeriesA, ARR: model.Ptr(3e6)},
		})
		require.NoError(t, err)

		all, err := s.ListCompanies(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, model.StageSeriesA, all[0].Stage)
		require.NotNil(t, all[0].ARR)
		assert.Equal(t, 3e6, *all[0].ARR)
	})

	t.Run("SaveCompaniesEmpty", func(t *testing.T) {
		s := newStore(t)

		n, err := s.SaveCompanies(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
}

func TestSQLiteStoreSuite(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}

package peers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/diligence-cli/internal/model"
)

func benchmarkCorpus(t *testing.T) *Index {
	t.Helper()
	idx := NewAt(2024)
	require.NoError(t, idx.Add([]model.Company{
		{Name: "Pay A", Industry: "Payments", Stage: model.StageSeed, ARR: model.Ptr(1_000_000.0), CAC: model.Ptr(100.0)},
		{Name: "Pay B", Industry: "Payments", Stage: model.StageSeriesA, ARR: model.Ptr(2_000_000.0), CAC: model.Ptr(200.0)},
		{Name: "Pay C", Industry: "Payments", Stage: model.StageSeriesA, ARR: model.Ptr(3_000_000.0), CAC: model.Ptr(300.0)},
		{Name: "Pay D", Industry: "Payments", Stage: model.StageSeriesB, ARR: model.Ptr(4_000_000.0)},
		{Name: "Lend A", Industry: "Lending", Stage: model.StageSeriesA, ARR: model.Ptr(10_000_000.0)},
	}))
	return idx
}

func TestIndustryBenchmarks(t *testing.T) {
	idx := benchmarkCorpus(t)

	b := idx.IndustryBenchmarks("payments")

	arr, ok := b["arr"]
	require.True(t, ok)
	assert.Equal(t, 2_500_000.0, arr.Median)
	assert.Equal(t, 2_500_000.0, arr.Mean)
	assert.InDelta(t, 1_750_000, arr.P25, 1)
	assert.InDelta(t, 3_250_000, arr.P75, 1)

	// Only three Payments companies carry a CAC.
	cac, ok := b["cac"]
	require.True(t, ok)
	assert.Equal(t, 200.0, cac.Median)

	// No Payments company has churn data, so the metric is omitted.
	_, ok = b["churn_rate"]
	assert.False(t, ok)
}

func TestIndustryBenchmarksNoMatch(t *testing.T) {
	idx := benchmarkCorpus(t)

	b := idx.IndustryBenchmarks("Insurance")
	assert.NotNil(t, b)
	assert.Empty(t, b)
}

func TestIndustryBenchmarksIdempotent(t *testing.T) {
	idx := benchmarkCorpus(t)

	first := idx.IndustryBenchmarks("payments")
	second := idx.IndustryBenchmarks("payments")
	assert.Equal(t, first, second)
}

func TestIndustryCohort(t *testing.T) {
	idx := benchmarkCorpus(t)

	cohort := idx.IndustryCohort("lending")
	require.Len(t, cohort, 1)
	assert.Equal(t, "Lend A", cohort[0].Name)

	assert.Empty(t, idx.IndustryCohort("Banking"))
}

func TestStats(t *testing.T) {
	idx := benchmarkCorpus(t)

	st := idx.Stats()
	assert.Equal(t, 5, st.TotalCompanies)
	assert.Equal(t, 5, st.IndexSize)
	assert.Equal(t, 1, st.Stages[model.StageSeed])
	assert.Equal(t, 3, st.Stages[model.StageSeriesA])
	assert.Equal(t, 4, st.Industries["Payments"])
	assert.Equal(t, 1, st.Industries["Lending"])
}

func TestStatsEmpty(t *testing.T) {
	st := New().Stats()
	assert.Equal(t, 0, st.TotalCompanies)
	assert.Equal(t, 0, st.IndexSize)
	assert.Nil(t, st.Stages)
	assert.Nil(t, st.Industries)
}

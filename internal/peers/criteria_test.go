package peers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/diligence-cli/internal/model"
)

func criteriaCorpus(t *testing.T) *Index {
	t.Helper()
	idx := NewAt(2024)
	require.NoError(t, idx.Add([]model.Company{
		{Name: "PayFast", Industry: "Payments", Stage: model.StageSeed, ARR: model.Ptr(400_000.0), EmployeeCount: model.Ptr(8)},
		{Name: "LendLoop", Industry: "Lending", Stage: model.StageSeriesA, ARR: model.Ptr(2_000_000.0), EmployeeCount: model.Ptr(40)},
		{Name: "PayGrid", Industry: "Payments Infrastructure", Stage: model.StageSeriesB, ARR: model.Ptr(8_000_000.0), EmployeeCount: model.Ptr(120)},
		{Name: "Stealth", Industry: "Payments", Stage: model.StageSeed}, // no ARR, no headcount
	}))
	return idx
}

func TestFindByCriteriaStage(t *testing.T) {
	idx := criteriaCorpus(t)

	entries, err := idx.FindByCriteria(Criteria{Stage: model.StageSeed})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "PayFast", entries[0].Company.Name)
	assert.Equal(t, "Stealth", entries[1].Company.Name)
}

func TestFindByCriteriaIndustrySubstring(t *testing.T) {
	idx := criteriaCorpus(t)

	entries, err := idx.FindByCriteria(Criteria{Industry: "payments"})
	require.NoError(t, err)
	assert.Len(t, entries, 3) // substring match includes "Payments Infrastructure"

	entries, err = idx.FindByCriteria(Criteria{Industry: "INFRA"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "PayGrid", entries[0].Company.Name)
}

func TestFindByCriteriaARRRange(t *testing.T) {
	idx := criteriaCorpus(t)

	entries, err := idx.FindByCriteria(Criteria{
		MinARR: model.Ptr(500_000.0),
		MaxARR: model.Ptr(5_000_000.0),
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "LendLoop", entries[0].Company.Name)

	// Bounds are inclusive.
	entries, err = idx.FindByCriteria(Criteria{MinARR: model.Ptr(2_000_000.0), MaxARR: model.Ptr(2_000_000.0)})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "LendLoop", entries[0].Company.Name)
}

func TestFindByCriteriaZeroBoundIsReal(t *testing.T) {
	idx := criteriaCorpus(t)

	// MinARR of 0 is a constraint: companies without an ARR drop out.
	entries, err := idx.FindByCriteria(Criteria{MinARR: model.Ptr(0.0)})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	for _, e := range entries {
		assert.NotNil(t, e.Company.ARR)
	}
}

func TestFindByCriteriaEmployeeRange(t *testing.T) {
	idx := criteriaCorpus(t)

	entries, err := idx.FindByCriteria(Criteria{
		MinEmployees: model.Ptr(10),
		MaxEmployees: model.Ptr(100),
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "LendLoop", entries[0].Company.Name)
}

func TestFindByCriteriaConjunction(t *testing.T) {
	idx := criteriaCorpus(t)

	entries, err := idx.FindByCriteria(Criteria{
		Industry: "payments",
		MinARR:   model.Ptr(1_000_000.0),
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "PayGrid", entries[0].Company.Name)
}

func TestFindByCriteriaNoFilters(t *testing.T) {
	idx := criteriaCorpus(t)

	entries, err := idx.FindByCriteria(Criteria{})
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestFindByCriteriaInvalidRange(t *testing.T) {
	idx := criteriaCorpus(t)

	_, err := idx.FindByCriteria(Criteria{MinARR: model.Ptr(10.0), MaxARR: model.Ptr(5.0)})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = idx.FindByCriteria(Criteria{MinEmployees: model.Ptr(50), MaxEmployees: model.Ptr(10)})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

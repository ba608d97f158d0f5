package corpus

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/diligence-cli/internal/model"
)

func TestGenerateDeterministic(t *testing.T) {
	a := New(42).Generate(20)
	b := New(42).Generate(20)
	require.Len(t, a, 20)

	for i := range a {
		a[i].LastUpdated = time.Time{}
		b[i].LastUpdated = time.Time{}
	}
	assert.Equal(t, a, b)
}

func TestGenerateDifferentSeeds(t *testing.T) {
	a := New(1).Generate(10)
	b := New(2).Generate(10)

	same := true
	for i := range a {
		if a[i].Name != b[i].Name || *a[i].ARR != *b[i].ARR {
			same = false
			break
		}
	}
	assert.False(t, same, "different seeds should produce different companies")
}

func TestGeneratePlausibleRanges(t *testing.T) {
	companies := New(7).Generate(200)
	require.Len(t, companies, 200)

	for _, c := range companies {
		params, ok := paramsByIndustry[c.Industry]
		require.True(t, ok, "unknown industry %q", c.Industry)

		mult, ok := stageMultipliers[c.Stage]
		require.True(t, ok, "unknown stage %q", c.Stage)

		require.NotNil(t, c.ARR)
		assert.GreaterOrEqual(t, *c.ARR, params.arr.lo*mult)
		assert.LessOrEqual(t, *c.ARR, params.arr.hi*mult)

		require.NotNil(t, c.CAC)
		assert.GreaterOrEqual(t, *c.CAC, params.cac.lo)
		assert.LessOrEqual(t, *c.CAC, params.cac.hi)

		require.NotNil(t, c.LTV)
		require.NotNil(t, c.LTVCACRatio)
		assert.InDelta(t, *c.LTV / *c.CAC, *c.LTVCACRatio, 1e-9)

		require.NotNil(t, c.ChurnRate)
		assert.GreaterOrEqual(t, *c.ChurnRate, params.churn.lo)
		assert.LessOrEqual(t, *c.ChurnRate, params.churn.hi)

		require.NotNil(t, c.EmployeeCount)
		base := int(*c.ARR / 50000)
		assert.GreaterOrEqual(t, *c.EmployeeCount, base+5)
		assert.LessOrEqual(t, *c.EmployeeCount, base+20)

		require.NotNil(t, c.FoundedYear)
		years := foundedYears[c.Stage]
		assert.GreaterOrEqual(t, *c.FoundedYear, years[0])
		assert.LessOrEqual(t, *c.FoundedYear, years[1])

		assert.Equal(t, []string{"sample_data"}, c.DataSources)
		require.NotNil(t, c.ConfidenceScore)
		assert.GreaterOrEqual(t, *c.ConfidenceScore, 0.7)
		assert.Less(t, *c.ConfidenceScore, 0.95)

		assert.True(t, strings.HasSuffix(c.Domain, ".com"), "domain %q", c.Domain)
		assert.NotContains(t, c.Domain, " ")
		assert.NotEmpty(t, c.Description)
		assert.NotEmpty(t, c.BusinessModel)
		assert.NotEmpty(t, c.CompetitiveAdvantage)
	}
}

func TestGenerateZero(t *testing.T) {
	assert.Empty(t, New(1).Generate(0))
}

func TestScenario(t *testing.T) {
	c, ok := Scenario("PayFlow")
	require.True(t, ok)
	assert.Equal(t, "PayFlow", c.Name)
	assert.Equal(t, model.StageSeriesA, c.Stage)
	assert.InDelta(t, 500000, *c.ARR, 1e-9)
	assert.InDelta(t, 2.0, *c.LTVCACRatio, 1e-9)

	_, ok = Scenario("unknown")
	assert.False(t, ok)

	assert.Equal(t, []string{"lendtech", "payflow", "wealthai"}, ScenarioNames())
}

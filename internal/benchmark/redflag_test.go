package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/stats"
)

func paymentsBenchmarks() map[string]stats.Benchmark {
	return map[string]stats.Benchmark{
		"arr":         {Median: 2e6, Mean: 2.2e6, P25: 1.5e6, P75: 3e6},
		"cac":         {Median: 300, Mean: 320, P25: 200, P75: 400},
		"ltv":         {Median: 5000, Mean: 5200, P25: 3000, P75: 8000},
		"churn_rate":  {Median: 0.03, Mean: 0.032, P25: 0.02, P75: 0.04},
		"growth_rate": {Median: 0.1, Mean: 0.11, P25: 0.08, P75: 0.14},
	}
}

func TestDetectStrugglingCompany(t *testing.T) {
	company := model.Company{
		Name:        "PayFlow Solutions",
		Industry:    "Payments",
		Stage:       model.StageSeriesA,
		ARR:         model.Ptr(500000.0),
		CAC:         model.Ptr(500.0),
		LTV:         model.Ptr(1000.0),
		LTVCACRatio: model.Ptr(2.0),
		ChurnRate:   model.Ptr(0.08),
		GrowthRate:  model.Ptr(0.05),
	}

	flags := NewDetector(nil).Detect(company, paymentsBenchmarks())
	require.Len(t, flags, 4)

	assert.Equal(t, model.RedFlag{
		Type:           "Low ARR",
		Severity:       model.SeverityHigh,
		Description:    "ARR of $500,000 is significantly below industry 25th percentile",
		Metric:         "arr",
		Value:          500000,
		Threshold:      1.5e6,
		Recommendation: "Focus on revenue growth and customer acquisition",
	}, flags[0])

	assert.Equal(t, model.RedFlag{
		Type:           "Low LTV",
		Severity:       model.SeverityHigh,
		Description:    "LTV of $1,000 is significantly below industry 25th percentile",
		Metric:         "ltv",
		Value:          1000,
		Threshold:      3000,
		Recommendation: "Improve customer retention and increase customer value",
	}, flags[1])

	assert.Equal(t, model.RedFlag{
		Type:           "Poor LTV/CAC Ratio",
		Severity:       model.SeverityCritical,
		Description:    "LTV/CAC ratio of 2.0 is below sustainable threshold of 3:1",
		Metric:         "ltv_cac_ratio",
		Value:          2,
		Threshold:      3,
		Recommendation: "Critical: Either reduce CAC or increase LTV to achieve sustainable unit economics",
	}, flags[2])

	assert.Equal(t, model.RedFlag{
		Type:           "High Churn Rate",
		Severity:       model.SeverityHigh,
		Description:    "Monthly churn rate of 8.0% is significantly above industry 75th percentile",
		Metric:         "churn_rate",
		Value:          0.08,
		Threshold:      0.04,
		Recommendation: "Implement customer retention strategies and improve product-market fit",
	}, flags[3])

	// Growth of exactly 5% sits on the threshold and must not fire.
	assert.InDelta(t, 0.775, RiskScore(flags), 1e-9)
}

func TestDetectHealthyCompany(t *testing.T) {
	company := model.Company{
		Name:        "LendTech Pro",
		Industry:    "Payments",
		Stage:       model.StageSeriesA,
		ARR:         model.Ptr(2e6),
		CAC:         model.Ptr(150.0),
		LTV:         model.Ptr(5000.0),
		LTVCACRatio: model.Ptr(8.0),
		ChurnRate:   model.Ptr(0.01),
		GrowthRate:  model.Ptr(0.2),
	}

	flags := NewDetector(nil).Detect(company, paymentsBenchmarks())
	assert.Empty(t, flags)
	assert.Zero(t, RiskScore(flags))
}

func TestDetectOutlierRules(t *testing.T) {
	tests := []struct {
		name     string
		company  model.Company
		wantType string
		wantDesc string
	}{
		{
			name:     "unusually high arr",
			company:  model.Company{ARR: model.Ptr(7e6)},
			wantType: "Unusually High ARR",
			wantDesc: "ARR of $7,000,000 is unusually high for stage",
		},
		{
			name:     "high cac",
			company:  model.Company{CAC: model.Ptr(900.0)},
			wantType: "High CAC",
			wantDesc: "CAC of $900 is significantly above industry 75th percentile",
		},
		{
			name:     "unusually high ratio",
			company:  model.Company{LTVCACRatio: model.Ptr(33.3)},
			wantType: "Unusually High LTV/CAC",
			wantDesc: "LTV/CAC ratio of 33.3 is unusually high",
		},
		{
			name:     "low growth",
			company:  model.Company{GrowthRate: model.Ptr(0.02)},
			wantType: "Low Growth Rate",
			wantDesc: "Monthly growth rate of 2.0% is below healthy threshold",
		},
	}

	detector := NewDetector(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := detector.Detect(tt.company, paymentsBenchmarks())
			require.Len(t, flags, 1)
			assert.Equal(t, tt.wantType, flags[0].Type)
			assert.Equal(t, tt.wantDesc, flags[0].Description)
		})
	}
}

func TestDetectSkipsWithoutBenchmark(t *testing.T) {
	// Percentile rules need the cohort benchmark; constant rules do not.
	company := model.Company{
		ARR:         model.Ptr(100.0),
		CAC:         model.Ptr(1e9),
		LTVCACRatio: model.Ptr(2.0),
	}

	flags := NewDetector(nil).Detect(company, map[string]stats.Benchmark{})
	require.Len(t, flags, 1)
	assert.Equal(t, "Poor LTV/CAC Ratio", flags[0].Type)
}

func TestDetectSkipsMissingMetrics(t *testing.T) {
	flags := NewDetector(nil).Detect(model.Company{Name: "Stealth"}, paymentsBenchmarks())
	assert.Empty(t, flags)
}

func TestRiskScore(t *testing.T) {
	flag := func(s model.Severity) model.RedFlag { return model.RedFlag{Severity: s} }

	tests := []struct {
		name  string
		flags []model.RedFlag
		want  float64
	}{
		{"no flags", nil, 0},
		{"single low", []model.RedFlag{flag(model.SeverityLow)}, 0.2},
		{"single critical", []model.RedFlag{flag(model.SeverityCritical)}, 1},
		{"high and critical", []model.RedFlag{flag(model.SeverityHigh), flag(model.SeverityCritical)}, 0.85},
		{"unknown severity", []model.RedFlag{flag(model.Severity("weird"))}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RiskScore(tt.flags), 1e-9)
		})
	}
}

func TestRecommendationBands(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.9, "HIGH RISK - Multiple red flags detected. Proceed with extreme caution or consider passing."},
		{0.71, "HIGH RISK - Multiple red flags detected. Proceed with extreme caution or consider passing."},
		{0.7, "MEDIUM RISK - Some concerns identified. Requires additional due diligence and monitoring."},
		{0.5, "MEDIUM RISK - Some concerns identified. Requires additional due diligence and monitoring."},
		{0.4, "LOW RISK - Minor concerns. Standard due diligence recommended."},
		{0.21, "LOW RISK - Minor concerns. Standard due diligence recommended."},
		{0.2, "LOW RISK - Strong metrics across the board. Consider for investment with standard monitoring."},
		{0, "LOW RISK - Strong metrics across the board. Consider for investment with standard monitoring."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Recommendation(tt.score), "score %v", tt.score)
	}
}

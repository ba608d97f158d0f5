package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/diligence-cli/internal/model"
)

func TestInsights(t *testing.T) {
	tests := []struct {
		name       string
		comparison map[string]model.MetricComparison
		want       []string
	}{
		{
			name: "top quartile arr",
			comparison: map[string]model.MetricComparison{
				"arr": {CompanyValue: 8e6, CompanyPercentile: 80},
			},
			want: []string{"Strong ARR performance: $8,000,000 is in the top 25% of similar companies"},
		},
		{
			name: "bottom quartile arr",
			comparison: map[string]model.MetricComparison{
				"arr": {CompanyValue: 500000, CompanyPercentile: 10},
			},
			want: []string{"ARR growth opportunity: $500,000 is below 75% of similar companies"},
		},
		{
			name: "excellent unit economics",
			comparison: map[string]model.MetricComparison{
				"ltv_cac_ratio": {CompanyValue: 50, CompanyPercentile: 90},
			},
			want: []string{"Excellent unit economics: LTV/CAC ratio of 50.0 indicates strong profitability potential"},
		},
		{
			name: "unit economics concern",
			comparison: map[string]model.MetricComparison{
				"ltv_cac_ratio": {CompanyValue: 2, CompanyPercentile: 5},
			},
			want: []string{"Unit economics concern: LTV/CAC ratio of 2.0 may indicate unsustainable growth"},
		},
		{
			name: "exceptional growth",
			comparison: map[string]model.MetricComparison{
				"growth_rate": {CompanyValue: 0.2, CompanyPercentile: 95},
			},
			want: []string{"Exceptional growth: 20.0% monthly growth is in the top 25% of peers"},
		},
		{
			name: "growth needed",
			comparison: map[string]model.MetricComparison{
				"growth_rate": {CompanyValue: 0.01, CompanyPercentile: 5},
			},
			want: []string{"Growth acceleration needed: 1.0% monthly growth is below 75% of peers"},
		},
		{
			name: "excellent retention",
			comparison: map[string]model.MetricComparison{
				"churn_rate": {CompanyValue: 0.005, CompanyPercentile: 10},
			},
			want: []string{"Excellent retention: 0.5% monthly churn is in the bottom 25% (best retention)"},
		},
		{
			name: "retention needed",
			comparison: map[string]model.MetricComparison{
				"churn_rate": {CompanyValue: 0.08, CompanyPercentile: 90},
			},
			want: []string{"Retention improvement needed: 8.0% monthly churn is in the top 25% (highest churn)"},
		},
		{
			name: "quartile boundaries are exclusive",
			comparison: map[string]model.MetricComparison{
				"arr":         {CompanyValue: 2e6, CompanyPercentile: 75},
				"growth_rate": {CompanyValue: 0.1, CompanyPercentile: 25},
				"churn_rate":  {CompanyValue: 0.03, CompanyPercentile: 50},
			},
			want: nil,
		},
		{
			name:       "empty comparison",
			comparison: nil,
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Insights(tt.comparison))
		})
	}
}

func TestInsightsOrder(t *testing.T) {
	comparison := map[string]model.MetricComparison{
		"arr":           {CompanyValue: 500000, CompanyPercentile: 10},
		"ltv_cac_ratio": {CompanyValue: 2, CompanyPercentile: 10},
		"growth_rate":   {CompanyValue: 0.01, CompanyPercentile: 5},
		"churn_rate":    {CompanyValue: 0.08, CompanyPercentile: 90},
	}

	assert.Equal(t, []string{
		"ARR growth opportunity: $500,000 is below 75% of similar companies",
		"Unit economics concern: LTV/CAC ratio of 2.0 may indicate unsustainable growth",
		"Growth acceleration needed: 1.0% monthly growth is below 75% of peers",
		"Retention improvement needed: 8.0% monthly churn is in the top 25% (highest churn)",
	}, Insights(comparison))
}

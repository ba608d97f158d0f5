package benchmark

import (
	"fmt"

	"github.com/sells-group/diligence-cli/internal/model"
)

// Insights derives headline observations from the peer comparison. At most
// one insight per metric, in report order: ARR, unit economics, growth,
// churn.
func Insights(comparison map[string]model.MetricComparison) []string {
	var insights []string

	if c, ok := comparison["arr"]; ok {
		amount := FormatUSD.render(c.CompanyValue)
		switch {
		case c.CompanyPercentile > 75:
			insights = append(insights, fmt.Sprintf("Strong ARR performance: %s is in the top 25%% of similar companies", amount))
		case c.CompanyPercentile < 25:
			insights = append(insights, fmt.Sprintf("ARR growth opportunity: %s is below 75%% of similar companies", amount))
		}
	}

	if c, ok := comparison["ltv_cac_ratio"]; ok {
		ratio := FormatRatio.render(c.CompanyValue)
		switch {
		case c.CompanyValue > 5:
			insights = append(insights, fmt.Sprintf("Excellent unit economics: LTV/CAC ratio of %s indicates strong profitability potential", ratio))
		case c.CompanyValue < 3:
			insights = append(insights, fmt.Sprintf("Unit economics concern: LTV/CAC ratio of %s may indicate unsustainable growth", ratio))
		}
	}

	if c, ok := comparison["growth_rate"]; ok {
		rate := FormatPercent.render(c.CompanyValue)
		switch {
		case c.CompanyPercentile > 75:
			insights = append(insights, fmt.Sprintf("Exceptional growth: %s monthly growth is in the top 25%% of peers", rate))
		case c.CompanyPercentile < 25:
			insights = append(insights, fmt.Sprintf("Growth acceleration needed: %s monthly growth is below 75%% of peers", rate))
		}
	}

	if c, ok := comparison["churn_rate"]; ok {
		rate := FormatPercent.render(c.CompanyValue)
		switch {
		case c.CompanyPercentile < 25:
			insights = append(insights, fmt.Sprintf("Excellent retention: %s monthly churn is in the bottom 25%% (best retention)", rate))
		case c.CompanyPercentile > 75:
			insights = append(insights, fmt.Sprintf("Retention improvement needed: %s monthly churn is in the top 25%% (highest churn)", rate))
		}
	}

	return insights
}

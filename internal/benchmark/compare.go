package benchmark

import (
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/stats"
)

// ComparisonMetrics are the metrics compared against the peer group, in
// report order.
var ComparisonMetrics = []string{"arr", "cac", "ltv", "ltv_cac_ratio", "churn_rate", "growth_rate"}

// Compare positions the company against its peer group on each comparison
// metric. Metrics the company lacks, or for which no peer reports a value,
// are left out of the result.
func Compare(company model.Company, peerCompanies []model.Company) map[string]model.MetricComparison {
	comparison := make(map[string]model.MetricComparison)
	for _, metric := range ComparisonMetrics {
		value, ok := company.Metric(metric)
		if !ok {
			continue
		}

		var peerValues []float64
		for _, p := range peerCompanies {
			if v, ok := p.Metric(metric); ok {
				peerValues = append(peerValues, v)
			}
		}
		if len(peerValues) == 0 {
			continue
		}

		mc := model.MetricComparison{
			CompanyValue:      value,
			PeerMedian:        stats.Median(peerValues),
			PeerMean:          stats.Mean(peerValues),
			PeerP25:           stats.Percentile(peerValues, 25),
			PeerP75:           stats.Percentile(peerValues, 75),
			CompanyPercentile: stats.PercentileRank(value, peerValues),
		}
		if mc.PeerMedian != 0 {
			mc.VsMedian = (value - mc.PeerMedian) / mc.PeerMedian
		}
		if mc.PeerMean != 0 {
			mc.VsMean = (value - mc.PeerMean) / mc.PeerMean
		}
		comparison[metric] = mc
	}
	return comparison
}

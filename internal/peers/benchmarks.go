package peers

import (
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/stats"
)

// BenchmarkMetrics lists the metrics industry benchmarks cover.
var BenchmarkMetrics = []string{"arr", "cac", "ltv", "churn_rate", "growth_rate", "ltv_cac_ratio"}

// IndustryBenchmarks computes cohort benchmarks over the stored companies
// whose industry contains the given string (case-insensitive). Metrics
// with no observations in the cohort are omitted; an industry with no
// matching companies yields an empty map. With no intervening Add, two
// calls return identical results.
func (idx *Index) IndustryBenchmarks(industry string) map[string]stats.Benchmark {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var cohort []model.Company
	for _, c := range idx.companies {
		if industryMatches(c.Industry, industry) {
			cohort = append(cohort, c)
		}
	}

	benchmarks := make(map[string]stats.Benchmark)
	if len(cohort) == 0 {
		return benchmarks
	}

	for _, metric := range BenchmarkMetrics {
		var values []float64
		for _, c := range cohort {
			if v, ok := c.Metric(metric); ok {
				values = append(values, v)
			}
		}
		if b, ok := stats.BenchmarkOf(values); ok {
			benchmarks[metric] = b
		}
	}
	return benchmarks
}

// IndustryCohort returns the stored companies whose industry contains the
// given string, in insertion order.
func (idx *Index) IndustryCohort(industry string) []model.Company {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var cohort []model.Company
	for _, c := range idx.companies {
		if industryMatches(c.Industry, industry) {
			cohort = append(cohort, c)
		}
	}
	return cohort
}

// IndexStats summarizes the index contents.
type IndexStats struct {
	TotalCompanies int                 `json:"total_companies"`
	Stages         map[model.Stage]int `json:"stages,omitempty"`
	Industries     map[string]int      `json:"industries,omitempty"`
	IndexSize      int                 `json:"index_size"`
}

// Stats returns corpus counts by stage and industry plus the stored vector
// count.
func (idx *Index) Stats() IndexStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	st := IndexStats{
		TotalCompanies: len(idx.companies),
		IndexSize:      len(idx.vectors),
	}
	if len(idx.companies) == 0 {
		return st
	}

	st.Stages = make(map[model.Stage]int)
	st.Industries = make(map[string]int)
	for _, c := range idx.companies {
		st.Stages[c.Stage]++
		st.Industries[c.Industry]++
	}
	return st
}

package benchmark

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/peers"
	"github.com/sells-group/diligence-cli/internal/stats"
)

// DefaultPeerCount is the peer group size used when the caller does not ask
// for a specific one.
const DefaultPeerCount = 10

// ErrNoCohort is returned by IndustryAnalysis when the index holds no
// companies for the requested industry.
var ErrNoCohort = eris.New("benchmark: no companies found for industry")

// Engine runs the full benchmark pipeline against a peer index.
type Engine struct {
	index    *peers.Index
	detector *Detector
}

// NewEngine builds an engine over the given index. A nil rule slice selects
// the built-in red-flag table.
func NewEngine(index *peers.Index, rules []Rule) *Engine {
	return &Engine{index: index, detector: NewDetector(rules)}
}

// BenchmarkCompany retrieves the peer group, compares the company against
// it, evaluates red flags against the industry cohort and assembles the
// final result. peerCount values below 1 fall back to DefaultPeerCount.
func (e *Engine) BenchmarkCompany(company model.Company, peerCount int) *model.BenchmarkResult {
	if peerCount < 1 {
		peerCount = DefaultPeerCount
	}

	matches := e.index.Search(company, peerCount)
	peerCompanies := make([]model.Company, 0, len(matches))
	for _, m := range matches {
		peerCompanies = append(peerCompanies, m.Company)
	}

	industryBench := e.index.IndustryBenchmarks(company.Industry)
	comparison := Compare(company, peerCompanies)
	flags := e.detector.Detect(company, industryBench)
	risk := RiskScore(flags)

	descriptions := make([]string, 0, len(flags))
	for _, f := range flags {
		descriptions = append(descriptions, f.Description)
	}

	zap.L().Debug("benchmark complete",
		zap.String("company", company.Name),
		zap.Int("peers", len(peerCompanies)),
		zap.Int("red_flags", len(flags)),
		zap.Float64("risk_score", risk))

	return &model.BenchmarkResult{
		Company:           company,
		PeerCompanies:     peerCompanies,
		MetricsComparison: comparison,
		RedFlags:          descriptions,
		Insights:          Insights(comparison),
		RiskScore:         risk,
		Recommendation:    Recommendation(risk),
	}
}

// Flags exposes the detailed red-flag evaluation for report rendering.
func (e *Engine) Flags(company model.Company) []model.RedFlag {
	return e.detector.Detect(company, e.index.IndustryBenchmarks(company.Industry))
}

// IndustryAnalysis summarises every tracked metric across one industry
// cohort.
type IndustryAnalysis struct {
	TotalCompanies int                `json:"total_companies"`
	ARRStats       map[string]float64 `json:"arr_stats"`
	CACStats       map[string]float64 `json:"cac_stats"`
	LTVStats       map[string]float64 `json:"ltv_stats"`
	ChurnStats     map[string]float64 `json:"churn_stats"`
	GrowthStats    map[string]float64 `json:"growth_stats"`
}

// IndustryAnalysis computes descriptive statistics over the industry
// cohort. It fails with ErrNoCohort when the index has no matching
// companies.
func (e *Engine) IndustryAnalysis(industry string) (*IndustryAnalysis, error) {
	cohort := e.index.IndustryCohort(industry)
	if len(cohort) == 0 {
		return nil, eris.Wrap(ErrNoCohort, industry)
	}

	return &IndustryAnalysis{
		TotalCompanies: len(cohort),
		ARRStats:       describeMetric(cohort, "arr"),
		CACStats:       describeMetric(cohort, "cac"),
		LTVStats:       describeMetric(cohort, "ltv"),
		ChurnStats:     describeMetric(cohort, "churn_rate"),
		GrowthStats:    describeMetric(cohort, "growth_rate"),
	}, nil
}

func describeMetric(cohort []model.Company, metric string) map[string]float64 {
	var values []float64
	for _, c := range cohort {
		if v, ok := c.Metric(metric); ok {
			values = append(values, v)
		}
	}
	return stats.Describe(values)
}

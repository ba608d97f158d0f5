package model

import "time"

// Severity classifies how serious a red flag is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight returns the risk contribution of a severity on a 0..1 scale.
// Unrecognized severities weigh 0.5 so a bad rule file degrades the score
// instead of silently dropping flags.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityLow:
		return 0.2
	case SeverityMedium:
		return 0.4
	case SeverityHigh:
		return 0.7
	case SeverityCritical:
		return 1.0
	default:
		return 0.5
	}
}

// RedFlag is a single anomaly finding tied to one metric.
type RedFlag struct {
	Type           string   `json:"flag_type"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Metric         string   `json:"metric"`
	Value          float64  `json:"value"`
	Threshold      float64  `json:"threshold"`
	Recommendation string   `json:"recommendation"`
}

// MetricComparison positions one company metric against its peer cohort.
// VsMedian and VsMean are relative deviations, zero when the denominator
// is zero.
type MetricComparison struct {
	CompanyValue      float64 `json:"company_value"`
	PeerMedian        float64 `json:"peer_median"`
	PeerMean          float64 `json:"peer_mean"`
	PeerP25           float64 `json:"peer_p25"`
	PeerP75           float64 `json:"peer_p75"`
	CompanyPercentile float64 `json:"company_percentile"`
	VsMedian          float64 `json:"vs_median"`
	VsMean            float64 `json:"vs_mean"`
}

// BenchmarkResult is the full outcome of benchmarking one company.
type BenchmarkResult struct {
	Company           Company                     `json:"company"`
	PeerCompanies     []Company                   `json:"peer_companies"`
	MetricsComparison map[string]MetricComparison `json:"metrics_comparison"`
	RedFlags          []string                    `json:"red_flags"`
	Insights          []string                    `json:"insights"`
	RiskScore         float64                     `json:"risk_score"`
	Recommendation    string                      `json:"recommendation"`
}

// ExtractionResult is the output of document extraction: a partially
// populated Company plus how much of it the extractor is confident about.
type ExtractionResult struct {
	Company              Company  `json:"company"`
	RawText              string   `json:"raw_text,omitempty"`
	Source               string   `json:"source"`
	ExtractionConfidence float64  `json:"extraction_confidence"`
	MissingFields        []string `json:"missing_fields,omitempty"`
}

// RunStatus represents the current state of a benchmark run.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// BenchmarkRun is the persisted record of one benchmarking invocation.
type BenchmarkRun struct {
	ID             string           `json:"id"`
	CompanyName    string           `json:"company_name"`
	Industry       string           `json:"industry"`
	Stage          Stage            `json:"stage"`
	PeerCount      int              `json:"peer_count"`
	RiskScore      float64          `json:"risk_score"`
	FlagCount      int              `json:"flag_count"`
	Recommendation string           `json:"recommendation"`
	Status         RunStatus        `json:"status"`
	Result         *BenchmarkResult `json:"result,omitempty"`
	Error          string           `json:"error,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

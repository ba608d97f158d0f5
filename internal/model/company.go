package model

import "time"

// Stage represents a company's funding stage.
type Stage string

const (
	StageSeed    Stage = "seed"
	StageSeriesA Stage = "series_a"
	StageSeriesB Stage = "series_b"
	StageSeriesC Stage = "series_c"
	StageSeriesD Stage = "series_d"
	StageLate    Stage = "late_stage"
)

// Stages lists every valid funding stage in progression order.
var Stages = []Stage{StageSeed, StageSeriesA, StageSeriesB, StageSeriesC, StageSeriesD, StageLate}

// IsValid reports whether s is a known funding stage.
func (s Stage) IsValid() bool {
	for _, v := range Stages {
		if s == v {
			return true
		}
	}
	return false
}

// Company represents a company under evaluation. All metric fields are
// pointers: nil means the value is unknown, which every downstream
// computation treats as skip-or-zero rather than an error. Enrichment may
// fill nil fields but never overwrites a populated one.
type Company struct {
	Name        string `json:"name"`
	Domain      string `json:"domain,omitempty"`
	FoundedYear *int   `json:"founded_year,omitempty"`
	Location    string `json:"location,omitempty"`
	Industry    string `json:"industry"`
	Stage       Stage  `json:"stage"`

	// Financial metrics (annual USD).
	ARR           *float64 `json:"arr,omitempty"`
	Revenue       *float64 `json:"revenue,omitempty"`
	FundingRaised *float64 `json:"funding_raised,omitempty"`
	Valuation     *float64 `json:"valuation,omitempty"`

	// Growth metrics. Churn and growth are monthly fractions.
	CAC         *float64 `json:"cac,omitempty"`
	LTV         *float64 `json:"ltv,omitempty"`
	LTVCACRatio *float64 `json:"ltv_cac_ratio,omitempty"`
	ChurnRate   *float64 `json:"churn_rate,omitempty"`
	GrowthRate  *float64 `json:"growth_rate,omitempty"`

	// Team metrics.
	EmployeeCount *int `json:"employee_count,omitempty"`
	FoundersCount *int `json:"founders_count,omitempty"`

	Description          string `json:"description,omitempty"`
	BusinessModel        string `json:"business_model,omitempty"`
	CompetitiveAdvantage string `json:"competitive_advantage,omitempty"`

	DataSources     []string  `json:"data_sources,omitempty"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
	LastUpdated     time.Time `json:"last_updated,omitzero"`
}

// Metric returns the named comparison metric and whether it is present.
// Valid names are arr, cac, ltv, ltv_cac_ratio, churn_rate and growth_rate.
func (c Company) Metric(name string) (float64, bool) {
	var p *float64
	switch name {
	case "arr":
		p = c.ARR
	case "cac":
		p = c.CAC
	case "ltv":
		p = c.LTV
	case "ltv_cac_ratio":
		p = c.LTVCACRatio
	case "churn_rate":
		p = c.ChurnRate
	case "growth_rate":
		p = c.GrowthRate
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Ptr returns a pointer to v. Convenience for building Company literals.
func Ptr[T any](v T) *T { return &v }

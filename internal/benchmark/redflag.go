package benchmark

import (
	"fmt"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/stats"
)

// Detector evaluates a rule table against a company and its industry cohort
// benchmarks.
type Detector struct {
	rules []Rule
}

// NewDetector builds a detector. A nil rule slice falls back to the built-in
// table.
func NewDetector(rules []Rule) *Detector {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Detector{rules: rules}
}

// Detect runs every rule and returns the flags that fired, in rule-table
// order. A rule is skipped when the company lacks the metric, or when the
// rule needs a cohort percentile the benchmark map does not carry.
func (d *Detector) Detect(c model.Company, benchmarks map[string]stats.Benchmark) []model.RedFlag {
	var flags []model.RedFlag
	for _, r := range d.rules {
		value, ok := c.Metric(r.Metric)
		if !ok {
			continue
		}

		threshold := r.Constant
		limit := r.Constant
		if r.Baseline != "" {
			b, ok := benchmarks[r.Metric]
			if !ok {
				continue
			}
			switch r.Baseline {
			case "p25":
				threshold = b.P25
			case "p75":
				threshold = b.P75
			}
			limit = threshold * r.Multiplier
		}

		fired := false
		switch r.Compare {
		case Below:
			fired = value < limit
		case Above:
			fired = value > limit
		}
		if !fired {
			continue
		}

		flags = append(flags, model.RedFlag{
			Type:           r.Name,
			Severity:       r.Severity,
			Description:    fmt.Sprintf(r.Description, r.Format.render(value)),
			Metric:         r.Metric,
			Value:          value,
			Threshold:      threshold,
			Recommendation: r.Recommendation,
		})
	}
	return flags
}

// RiskScore averages the severity weights of the fired flags and caps the
// result at 1. No flags means zero risk.
func RiskScore(flags []model.RedFlag) float64 {
	if len(flags) == 0 {
		return 0
	}
	var total float64
	for _, f := range flags {
		total += f.Severity.Weight()
	}
	score := total / float64(len(flags))
	if score > 1 {
		score = 1
	}
	return score
}

// Recommendation maps a risk score to an overall recommendation band.
func Recommendation(riskScore float64) string {
	switch {
	case riskScore > 0.7:
		return "HIGH RISK - Multiple red flags detected. Proceed with extreme caution or consider passing."
	case riskScore > 0.4:
		return "MEDIUM RISK - Some concerns identified. Requires additional due diligence and monitoring."
	case riskScore > 0.2:
		return "LOW RISK - Minor concerns. Standard due diligence recommended."
	default:
		return "LOW RISK - Strong metrics across the board. Consider for investment with standard monitoring."
	}
}

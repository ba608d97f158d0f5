// Package benchmark implements the statistical benchmarking engine: peer
// metric comparison, the red-flag rule table, risk scoring and the
// orchestration that assembles a full benchmark result.
package benchmark

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/diligence-cli/internal/model"
)

// Comparator is the direction of a rule condition.
type Comparator string

const (
	Below Comparator = "lt"
	Above Comparator = "gt"
)

// ValueFormat selects how a rule renders the observed value inside its
// description.
type ValueFormat string

const (
	FormatUSD     ValueFormat = "usd"     // $1,234,567
	FormatRatio   ValueFormat = "ratio"   // 2.5
	FormatPercent ValueFormat = "percent" // 8.0%
)

// Rule is one declarative red-flag rule. The threshold is either a cohort
// percentile (Baseline "p25" or "p75", scaled by Multiplier) or a plain
// Constant when Baseline is empty. Percentile rules are skipped when the
// cohort benchmark lacks the metric; constant rules always evaluate.
type Rule struct {
	Name           string         `yaml:"name"`
	Metric         string         `yaml:"metric"`
	Severity       model.Severity `yaml:"severity"`
	Compare        Comparator     `yaml:"compare"`
	Baseline       string         `yaml:"baseline,omitempty"`
	Multiplier     float64        `yaml:"multiplier,omitempty"`
	Constant       float64        `yaml:"constant,omitempty"`
	Format         ValueFormat    `yaml:"format"`
	Description    string         `yaml:"description"`
	Recommendation string         `yaml:"recommendation"`
}

// DefaultRules returns the built-in red-flag rule table.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:           "Low ARR",
			Metric:         "arr",
			Severity:       model.SeverityHigh,
			Compare:        Below,
			Baseline:       "p25",
			Multiplier:     0.5,
			Format:         FormatUSD,
			Description:    "ARR of %s is significantly below industry 25th percentile",
			Recommendation: "Focus on revenue growth and customer acquisition",
		},
		{
			Name:           "Unusually High ARR",
			Metric:         "arr",
			Severity:       model.SeverityMedium,
			Compare:        Above,
			Baseline:       "p75",
			Multiplier:     2,
			Format:         FormatUSD,
			Description:    "ARR of %s is unusually high for stage",
			Recommendation: "Verify revenue metrics and business model sustainability",
		},
		{
			Name:           "High CAC",
			Metric:         "cac",
			Severity:       model.SeverityHigh,
			Compare:        Above,
			Baseline:       "p75",
			Multiplier:     2,
			Format:         FormatUSD,
			Description:    "CAC of %s is significantly above industry 75th percentile",
			Recommendation: "Optimize customer acquisition channels and reduce CAC",
		},
		{
			Name:           "Low LTV",
			Metric:         "ltv",
			Severity:       model.SeverityHigh,
			Compare:        Below,
			Baseline:       "p25",
			Multiplier:     0.5,
			Format:         FormatUSD,
			Description:    "LTV of %s is significantly below industry 25th percentile",
			Recommendation: "Improve customer retention and increase customer value",
		},
		{
			Name:           "Poor LTV/CAC Ratio",
			Metric:         "ltv_cac_ratio",
			Severity:       model.SeverityCritical,
			Compare:        Below,
			Constant:       3,
			Format:         FormatRatio,
			Description:    "LTV/CAC ratio of %s is below sustainable threshold of 3:1",
			Recommendation: "Critical: Either reduce CAC or increase LTV to achieve sustainable unit economics",
		},
		{
			Name:           "Unusually High LTV/CAC",
			Metric:         "ltv_cac_ratio",
			Severity:       model.SeverityMedium,
			Compare:        Above,
			Constant:       10,
			Format:         FormatRatio,
			Description:    "LTV/CAC ratio of %s is unusually high",
			Recommendation: "Verify LTV and CAC calculations for accuracy",
		},
		{
			Name:           "High Churn Rate",
			Metric:         "churn_rate",
			Severity:       model.SeverityHigh,
			Compare:        Above,
			Baseline:       "p75",
			Multiplier:     1.5,
			Format:         FormatPercent,
			Description:    "Monthly churn rate of %s is significantly above industry 75th percentile",
			Recommendation: "Implement customer retention strategies and improve product-market fit",
		},
		{
			Name:           "Low Growth Rate",
			Metric:         "growth_rate",
			Severity:       model.SeverityMedium,
			Compare:        Below,
			Constant:       0.05,
			Format:         FormatPercent,
			Description:    "Monthly growth rate of %s is below healthy threshold",
			Recommendation: "Focus on growth strategies and market expansion",
		},
	}
}

// LoadRules reads a rule table from a YAML file, replacing the built-in
// table wholesale.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "benchmark: read rules file")
	}

	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "benchmark: parse rules file")
	}
	if len(doc.Rules) == 0 {
		return nil, eris.New("benchmark: rules file defines no rules")
	}

	for i, r := range doc.Rules {
		if err := r.validate(); err != nil {
			return nil, eris.Wrapf(err, "benchmark: rule %d (%s)", i, r.Name)
		}
	}
	return doc.Rules, nil
}

func (r Rule) validate() error {
	if r.Name == "" {
		return eris.New("missing name")
	}
	if r.Metric == "" {
		return eris.New("missing metric")
	}
	if r.Compare != Below && r.Compare != Above {
		return eris.Errorf("unknown comparator %q", r.Compare)
	}
	switch r.Baseline {
	case "", "p25", "p75":
	default:
		return eris.Errorf("unknown baseline %q", r.Baseline)
	}
	if r.Baseline != "" && r.Multiplier == 0 {
		return eris.New("percentile rule needs a multiplier")
	}
	switch r.Format {
	case FormatUSD, FormatRatio, FormatPercent:
	default:
		return eris.Errorf("unknown value format %q", r.Format)
	}
	return nil
}

// usd prints dollar amounts with thousands separators.
var usd = message.NewPrinter(language.English)

func (f ValueFormat) render(v float64) string {
	switch f {
	case FormatUSD:
		return usd.Sprintf("$%.0f", v)
	case FormatPercent:
		return fmt.Sprintf("%.1f%%", v*100)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

// Package estimate fills missing ARR figures from peer cohort ratios.
package estimate

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/peers"
	"github.com/sells-group/diligence-cli/internal/stats"
)

// minCohort is the smallest cohort a ratio may be derived from.
const minCohort = 3

// Estimate holds an ARR figure derived from peer ARR-per-employee
// ratios.
type Estimate struct {
	ARR        float64 `json:"arr"`
	Confidence float64 `json:"confidence"`  // 0.1-0.9
	Method     string  `json:"method"`      // "peer_arr_per_employee"
	Cohort     string  `json:"cohort"`      // cohort that supplied the ratio
	SampleSize int     `json:"sample_size"` // companies behind the ratio
}

// Estimator derives ARR-per-employee ratios from an indexed peer universe.
type Estimator struct {
	index *peers.Index
}

// NewEstimator creates an estimator over the index. Returns nil if index
// is nil.
func NewEstimator(index *peers.Index) *Estimator {
	if index == nil {
		return nil
	}
	return &Estimator{index: index}
}

// cohortLevel names one slice of the index to draw ratios from.
type cohortLevel struct {
	name     string
	criteria peers.Criteria
}

// ARR estimates annual recurring revenue for a company from its employee
// count and the median ARR-per-employee of its peer cohort.
//
// Cohort fallback: tries industry+stage, then industry, then the whole
// index when the more specific cohort has too little ARR data.
func (e *Estimator) ARR(company model.Company) (*Estimate, error) {
	if company.EmployeeCount == nil || *company.EmployeeCount <= 0 {
		return nil, eris.New("estimate: employee count must be positive")
	}

	levels := cohortLevels(company)
	for i, level := range levels {
		entries, err := e.index.FindByCriteria(level.criteria)
		if err != nil {
			return nil, eris.Wrapf(err, "estimate: cohort %s", level.name)
		}

		ratios := arrPerEmployee(entries, company.Name)
		if len(ratios) < minCohort {
			continue
		}

		estimated := stats.Median(ratios) * float64(*company.EmployeeCount)
		confidence := cohortConfidence(len(ratios), i > 0)

		zap.L().Info("estimate: arr computed",
			zap.String("company", company.Name),
			zap.String("cohort", level.name),
			zap.Int("sample_size", len(ratios)),
			zap.Int("employee_count", *company.EmployeeCount),
			zap.Float64("estimated_arr", estimated),
			zap.Float64("confidence", confidence),
		)

		return &Estimate{
			ARR:        estimated,
			Confidence: confidence,
			Method:     "peer_arr_per_employee",
			Cohort:     level.name,
			SampleSize: len(ratios),
		}, nil
	}

	return nil, eris.Errorf("estimate: no cohort with enough ARR data for %s", company.Name)
}

// cohortLevels returns cohorts from most specific to least specific,
// skipping levels the company has no attributes for.
func cohortLevels(company model.Company) []cohortLevel {
	var levels []cohortLevel
	if company.Industry != "" && company.Stage != "" {
		levels = append(levels, cohortLevel{
			name:     "industry+stage",
			criteria: peers.Criteria{Industry: company.Industry, Stage: company.Stage},
		})
	}
	if company.Industry != "" {
		levels = append(levels, cohortLevel{
			name:     "industry",
			criteria: peers.Criteria{Industry: company.Industry},
		})
	}
	levels = append(levels, cohortLevel{name: "index"})
	return levels
}

// arrPerEmployee collects the ratio for every entry that reports both
// figures, excluding the company being estimated.
func arrPerEmployee(entries []peers.Entry, exclude string) []float64 {
	var ratios []float64
	for _, entry := range entries {
		c := entry.Company
		if strings.EqualFold(c.Name, exclude) {
			continue
		}
		if c.ARR == nil || c.EmployeeCount == nil || *c.EmployeeCount <= 0 {
			continue
		}
		ratios = append(ratios, *c.ARR/float64(*c.EmployeeCount))
	}
	return ratios
}

// cohortConfidence scores an estimate by how much data backed it and how
// far the cohort fell back.
func cohortConfidence(sampleSize int, fellBack bool) float64 {
	confidence := 0.6
	if sampleSize >= 10 {
		confidence += 0.1
	}
	if sampleSize >= 25 {
		confidence += 0.1
	}
	if fellBack {
		confidence -= 0.1
	} else {
		confidence += 0.1
	}
	confidence = math.Min(confidence, 0.9)
	return math.Max(confidence, 0.1)
}

// FormatARR formats an ARR amount in human-readable form.
func FormatARR(amount float64) string {
	switch {
	case amount >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", amount/1_000_000_000)
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.1fM", amount/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("$%.0fK", amount/1_000)
	default:
		return fmt.Sprintf("$%.0f", amount)
	}
}

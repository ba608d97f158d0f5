// Package vector turns company records into fixed-dimension feature vectors
// and normalizes them into a comparable coordinate system.
package vector

import (
	"time"

	"github.com/sells-group/diligence-cli/internal/model"
)

// Dimensions is the fixed width of every feature vector.
const Dimensions = 12

// FeatureNames lists the encoded features in vector order.
var FeatureNames = [Dimensions]string{
	"arr", "revenue", "funding_raised", "valuation",
	"cac", "ltv", "ltv_cac_ratio", "churn_rate", "growth_rate",
	"employee_count", "founders_count", "company_age",
}

// Vector is one company's features in the fixed order of FeatureNames.
type Vector [Dimensions]float64

// Encoder maps companies onto feature vectors. The reference year anchors
// the company-age feature and is frozen together with the index's
// normalization parameters, so vectors stay comparable across process
// restarts.
type Encoder struct {
	ReferenceYear int
}

// NewEncoder returns an encoder anchored at the given reference year, or at
// the current year when 0 is passed.
func NewEncoder(referenceYear int) Encoder {
	if referenceYear == 0 {
		referenceYear = time.Now().UTC().Year()
	}
	return Encoder{ReferenceYear: referenceYear}
}

// Encode converts a company to its feature vector. Absent fields encode as
// zero; a missing founded year yields age zero. Encode is total: it never
// fails, whatever the input.
func (e Encoder) Encode(c model.Company) Vector {
	founded := e.ReferenceYear
	if c.FoundedYear != nil {
		founded = *c.FoundedYear
	}

	return Vector{
		orZero(c.ARR),
		orZero(c.Revenue),
		orZero(c.FundingRaised),
		orZero(c.Valuation),
		orZero(c.CAC),
		orZero(c.LTV),
		orZero(c.LTVCACRatio),
		orZero(c.ChurnRate),
		orZero(c.GrowthRate),
		intOrZero(c.EmployeeCount),
		intOrZero(c.FoundersCount),
		float64(e.ReferenceYear - founded),
	}
}

// EncodeAll converts a batch of companies, preserving order.
func (e Encoder) EncodeAll(companies []model.Company) []Vector {
	vecs := make([]Vector, len(companies))
	for i, c := range companies {
		vecs[i] = e.Encode(c)
	}
	return vecs
}

func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func intOrZero(p *int) float64 {
	if p == nil {
		return 0
	}
	return float64(*p)
}

// SquaredL2 returns the squared Euclidean distance between two vectors.
// The peer index ranks by this distance and derives similarity from it.
func SquaredL2(a, b Vector) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

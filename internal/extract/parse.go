package extract

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/diligence-cli/internal/model"
)

// payload mirrors the JSON object the extraction prompts request. Pointer
// fields distinguish "null" from a real zero.
type payload struct {
	Name                  *string  `json:"name"`
	Stage                 *string  `json:"stage"`
	Industry              *string  `json:"industry"`
	FoundedYear           *int     `json:"founded_year"`
	Location              *string  `json:"location"`
	ARR                   *float64 `json:"arr"`
	Revenue               *float64 `json:"revenue"`
	FundingRaised         *float64 `json:"funding_raised"`
	Valuation             *float64 `json:"valuation"`
	CAC                   *float64 `json:"cac"`
	LTV                   *float64 `json:"ltv"`
	LTVCACRatio           *float64 `json:"ltv_cac_ratio"`
	ChurnRate             *float64 `json:"churn_rate"`
	GrowthRate            *float64 `json:"growth_rate"`
	EmployeeCount         *int     `json:"employee_count"`
	FoundersCount         *int     `json:"founders_count"`
	Description           *string  `json:"description"`
	BusinessModel         *string  `json:"business_model"`
	CompetitiveAdvantages []string `json:"competitive_advantages"`
}

// parsePayload pulls the JSON object out of a model response. The response
// may wrap the object in prose, so everything outside the outermost braces
// is discarded.
func parsePayload(text string) (payload, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return payload{}, eris.New("extract: no JSON object in response")
	}

	var p payload
	if err := json.Unmarshal([]byte(text[start:end+1]), &p); err != nil {
		return payload{}, eris.Wrap(err, "extract: parse response JSON")
	}
	return p, nil
}

// toCompany maps a parsed payload onto the company model. Unknown or
// missing stages fall back to seed.
func (p payload) toCompany() model.Company {
	c := model.Company{
		Name:          "Unknown",
		Industry:      "Unknown",
		Stage:         model.StageSeed,
		FoundedYear:   p.FoundedYear,
		ARR:           p.ARR,
		Revenue:       p.Revenue,
		FundingRaised: p.FundingRaised,
		Valuation:     p.Valuation,
		CAC:           p.CAC,
		LTV:           p.LTV,
		LTVCACRatio:   p.LTVCACRatio,
		ChurnRate:     p.ChurnRate,
		GrowthRate:    p.GrowthRate,
		EmployeeCount: p.EmployeeCount,
		FoundersCount: p.FoundersCount,
		DataSources:   []string{"llm_extraction"},
	}
	if p.Name != nil && *p.Name != "" {
		c.Name = *p.Name
	}
	if p.Industry != nil && *p.Industry != "" {
		c.Industry = *p.Industry
	}
	if p.Stage != nil && model.Stage(*p.Stage).IsValid() {
		c.Stage = model.Stage(*p.Stage)
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.BusinessModel != nil {
		c.BusinessModel = *p.BusinessModel
	}
	if len(p.CompetitiveAdvantages) > 0 {
		c.CompetitiveAdvantage = strings.Join(p.CompetitiveAdvantages, ", ")
	}
	return c
}

var (
	requiredFields = []string{"name", "industry", "stage"}
	optionalFields = []string{"arr", "revenue", "cac", "ltv", "churn_rate", "growth_rate"}
	keyFields      = []string{"arr", "cac", "ltv", "churn_rate", "growth_rate", "funding_raised"}
)

func (p payload) has(field string) bool {
	switch field {
	case "name":
		return p.Name != nil
	case "industry":
		return p.Industry != nil
	case "stage":
		return p.Stage != nil
	case "arr":
		return p.ARR != nil
	case "revenue":
		return p.Revenue != nil
	case "funding_raised":
		return p.FundingRaised != nil
	case "cac":
		return p.CAC != nil
	case "ltv":
		return p.LTV != nil
	case "churn_rate":
		return p.ChurnRate != nil
	case "growth_rate":
		return p.GrowthRate != nil
	default:
		return false
	}
}

// confidence scores extraction completeness: required fields carry 70% of
// the weight, the key financial metrics the remaining 30%.
func (p payload) confidence() float64 {
	var required, optional int
	for _, f := range requiredFields {
		if p.has(f) {
			required++
		}
	}
	for _, f := range optionalFields {
		if p.has(f) {
			optional++
		}
	}
	return float64(required)/float64(len(requiredFields))*0.7 +
		float64(optional)/float64(len(optionalFields))*0.3
}

// missingFields lists the key metrics the extraction did not surface.
func (p payload) missingFields() []string {
	var missing []string
	for _, f := range keyFields {
		if !p.has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

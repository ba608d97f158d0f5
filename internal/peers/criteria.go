package peers

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/diligence-cli/internal/model"
)

// ErrInvalidRange is returned when a criteria range has its minimum above
// its maximum.
var ErrInvalidRange = eris.New("peers: criteria range minimum exceeds maximum")

// Criteria filters stored companies. Every field is optional; zero values
// (empty string, nil pointer) mean no constraint, and a pointer to 0 is a
// real bound. All set filters must match (conjunction). Ranges are
// inclusive.
type Criteria struct {
	Stage        model.Stage
	Industry     string // case-insensitive substring
	MinARR       *float64
	MaxARR       *float64
	MinEmployees *int
	MaxEmployees *int
}

func (c Criteria) validate() error {
	if c.MinARR != nil && c.MaxARR != nil && *c.MinARR > *c.MaxARR {
		return eris.Wrap(ErrInvalidRange, "arr")
	}
	if c.MinEmployees != nil && c.MaxEmployees != nil && *c.MinEmployees > *c.MaxEmployees {
		return eris.Wrap(ErrInvalidRange, "employee_count")
	}
	return nil
}

func (c Criteria) matches(company model.Company) bool {
	if c.Stage != "" && company.Stage != c.Stage {
		return false
	}
	if c.Industry != "" && !industryMatches(company.Industry, c.Industry) {
		return false
	}
	// A company without the metric never matches a set range bound.
	if c.MinARR != nil && (company.ARR == nil || *company.ARR < *c.MinARR) {
		return false
	}
	if c.MaxARR != nil && (company.ARR == nil || *company.ARR > *c.MaxARR) {
		return false
	}
	if c.MinEmployees != nil && (company.EmployeeCount == nil || *company.EmployeeCount < *c.MinEmployees) {
		return false
	}
	if c.MaxEmployees != nil && (company.EmployeeCount == nil || *company.EmployeeCount > *c.MaxEmployees) {
		return false
	}
	return true
}

// FindByCriteria returns every stored company matching the criteria, in
// insertion order.
func (idx *Index) FindByCriteria(c Criteria) ([]Entry, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []Entry
	for i, company := range idx.companies {
		if c.matches(company) {
			out = append(out, Entry{ID: idx.ids[i], Company: company})
		}
	}
	return out, nil
}

func industryMatches(industry, query string) bool {
	return strings.Contains(strings.ToLower(industry), strings.ToLower(query))
}

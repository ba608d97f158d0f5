package corpus

import (
	"sort"
	"strings"

	"github.com/sells-group/diligence-cli/internal/model"
)

// Demo scenario companies: one struggling, one strong, one premium. They
// exercise very different corners of the red-flag table against the same
// sample corpus.
var scenarios = map[string]model.Company{
	"payflow": {
		Name:          "PayFlow",
		Stage:         model.StageSeriesA,
		Industry:      "Payments",
		ARR:           model.Ptr(500000.0),
		CAC:           model.Ptr(500.0),
		LTV:           model.Ptr(1000.0),
		LTVCACRatio:   model.Ptr(2.0),
		ChurnRate:     model.Ptr(0.08),
		GrowthRate:    model.Ptr(0.05),
		EmployeeCount: model.Ptr(25),
		FoundersCount: model.Ptr(2),
	},
	"lendtech": {
		Name:          "LendTech",
		Stage:         model.StageSeriesA,
		Industry:      "Lending",
		ARR:           model.Ptr(2000000.0),
		CAC:           model.Ptr(150.0),
		LTV:           model.Ptr(5000.0),
		LTVCACRatio:   model.Ptr(33.3),
		ChurnRate:     model.Ptr(0.01),
		GrowthRate:    model.Ptr(0.20),
		EmployeeCount: model.Ptr(45),
		FoundersCount: model.Ptr(3),
	},
	"wealthai": {
		Name:          "WealthAI",
		Stage:         model.StageSeriesB,
		Industry:      "Wealth Management",
		ARR:           model.Ptr(8000000.0),
		CAC:           model.Ptr(400.0),
		LTV:           model.Ptr(20000.0),
		LTVCACRatio:   model.Ptr(50.0),
		ChurnRate:     model.Ptr(0.005),
		GrowthRate:    model.Ptr(0.12),
		EmployeeCount: model.Ptr(80),
		FoundersCount: model.Ptr(2),
	},
}

// Scenario looks up a demo company by name, case-insensitively.
func Scenario(name string) (model.Company, bool) {
	c, ok := scenarios[strings.ToLower(name)]
	return c, ok
}

// ScenarioNames lists the available demo scenarios in sorted order.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

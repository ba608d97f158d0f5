// Package corpus produces and persists company datasets: a parameterized
// synthetic generator for seeding the index, canned demo scenarios and JSON
// file round-tripping.
package corpus

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sells-group/diligence-cli/internal/model"
)

// metricRange is a half-open uniform sampling range.
type metricRange struct {
	lo, hi float64
}

func (r metricRange) sample(rng *rand.Rand) float64 {
	return r.lo + (r.hi-r.lo)*rng.Float64()
}

// industryParams hold per-industry sampling ranges for the core metrics.
type industryParams struct {
	arr    metricRange
	cac    metricRange
	ltv    metricRange
	churn  metricRange
	growth metricRange
}

// Industries lists the fintech verticals the generator draws from.
var Industries = []string{"Payments", "Lending", "Wealth Management", "Insurance", "Banking", "Crypto/DeFi"}

var paramsByIndustry = map[string]industryParams{
	"Payments": {
		arr:    metricRange{100000, 10000000},
		cac:    metricRange{50, 300},
		ltv:    metricRange{1000, 8000},
		churn:  metricRange{0.01, 0.05},
		growth: metricRange{0.08, 0.25},
	},
	"Lending": {
		arr:    metricRange{500000, 15000000},
		cac:    metricRange{100, 500},
		ltv:    metricRange{2000, 15000},
		churn:  metricRange{0.005, 0.03},
		growth: metricRange{0.10, 0.30},
	},
	"Wealth Management": {
		arr:    metricRange{1000000, 20000000},
		cac:    metricRange{300, 1000},
		ltv:    metricRange{5000, 50000},
		churn:  metricRange{0.002, 0.01},
		growth: metricRange{0.05, 0.15},
	},
	"Insurance": {
		arr:    metricRange{200000, 8000000},
		cac:    metricRange{200, 800},
		ltv:    metricRange{3000, 20000},
		churn:  metricRange{0.01, 0.04},
		growth: metricRange{0.06, 0.20},
	},
	"Banking": {
		arr:    metricRange{500000, 25000000},
		cac:    metricRange{150, 600},
		ltv:    metricRange{2000, 25000},
		churn:  metricRange{0.005, 0.02},
		growth: metricRange{0.08, 0.18},
	},
	"Crypto/DeFi": {
		arr:    metricRange{100000, 5000000},
		cac:    metricRange{100, 400},
		ltv:    metricRange{1500, 10000},
		churn:  metricRange{0.02, 0.08},
		growth: metricRange{0.10, 0.40},
	},
}

// stageMultipliers scale ARR and LTV down for earlier stages.
var stageMultipliers = map[model.Stage]float64{
	model.StageSeed:    0.3,
	model.StageSeriesA: 0.6,
	model.StageSeriesB: 1.0,
	model.StageSeriesC: 1.5,
}

var generatorStages = []model.Stage{model.StageSeed, model.StageSeriesA, model.StageSeriesB, model.StageSeriesC}

var locations = []string{"San Francisco, CA", "New York, NY", "Toronto, ON", "Austin, TX", "Boston, MA", "Seattle, WA"}

var namePool = []string{
	"PayFlow", "LendTech", "WealthAI", "InsureTech", "BankFlow", "CryptoPay",
	"FinTech Pro", "MoneyFlow", "InvestAI", "LoanFlow", "PayTech", "WealthFlow",
	"InsureFlow", "BankTech", "CryptoFlow", "FinFlow", "MoneyAI", "InvestFlow",
	"LoanAI", "PayAI", "WealthTech", "InsureAI", "BankAI", "CryptoTech",
}

var businessModels = map[string][]string{
	"Payments":          {"SaaS", "Transaction-based", "Freemium"},
	"Lending":           {"Marketplace", "Direct lending", "P2P"},
	"Wealth Management": {"AUM-based", "Subscription", "Commission"},
	"Insurance":         {"Commission", "Subscription", "Direct"},
	"Banking":           {"Transaction fees", "Interest spread", "Subscription"},
	"Crypto/DeFi":       {"Token-based", "Trading fees", "Staking"},
}

var advantages = []string{
	"AI-powered", "Low fees", "Fast processing", "Easy integration",
	"Advanced analytics", "Mobile-first", "API-first", "Real-time",
	"Automated", "Scalable", "Secure", "User-friendly",
}

var descriptionAudiences = map[string]struct {
	template  string
	audiences []string
}{
	"Payments":          {"AI-powered payment processing platform for %s", []string{"SMBs", "enterprises", "marketplaces"}},
	"Lending":           {"Digital lending platform for %s", []string{"small businesses", "consumers", "real estate"}},
	"Wealth Management": {"AI-powered wealth management platform for %s", []string{"individuals", "advisors", "institutions"}},
	"Insurance":         {"Digital insurance platform for %s", []string{"SMBs", "individuals", "enterprises"}},
	"Banking":           {"Digital banking platform for %s", []string{"SMBs", "consumers", "enterprises"}},
	"Crypto/DeFi":       {"Crypto and DeFi platform for %s", []string{"trading", "lending", "yield farming"}},
}

// foundedYears bound the founding year sampled for each stage.
var foundedYears = map[model.Stage][2]int{
	model.StageSeed:    {2022, 2024},
	model.StageSeriesA: {2020, 2023},
	model.StageSeriesB: {2019, 2022},
	model.StageSeriesC: {2018, 2021},
}

// Generator produces synthetic fintech companies with industry-plausible
// metrics. It is deterministic for a fixed seed.
type Generator struct {
	rng *rand.Rand
}

// New returns a generator. Seed 0 picks a time-based seed.
func New(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Generate returns n synthetic companies tagged with the sample_data source.
func (g *Generator) Generate(n int) []model.Company {
	companies := make([]model.Company, 0, n)
	for range n {
		companies = append(companies, g.one())
	}
	return companies
}

func (g *Generator) one() model.Company {
	industry := pick(g.rng, Industries)
	stage := pick(g.rng, generatorStages)
	params := paramsByIndustry[industry]
	mult := stageMultipliers[stage]

	arr := params.arr.sample(g.rng) * mult
	cac := params.cac.sample(g.rng)
	ltv := params.ltv.sample(g.rng) * mult
	churn := params.churn.sample(g.rng)
	growth := params.growth.sample(g.rng)

	ratio := 0.0
	if cac > 0 {
		ratio = ltv / cac
	}
	revenue := arr * uniform(g.rng, 0.8, 1.2)
	funding := arr * uniform(g.rng, 2, 8)
	valuation := funding * uniform(g.rng, 3, 10)

	// Roughly one employee per $50k ARR plus a small base team.
	employees := int(arr/50000) + g.intBetween(5, 20)
	founders := g.intBetween(1, 4)

	name := fmt.Sprintf("%s %d", pick(g.rng, namePool), g.intBetween(1, 999))
	desc := descriptionAudiences[industry]
	yearRange := foundedYears[stage]

	return model.Company{
		Name:                 name,
		Domain:               strings.ReplaceAll(strings.ToLower(name), " ", "") + ".com",
		Stage:                stage,
		Industry:             industry,
		FoundedYear:          model.Ptr(g.intBetween(yearRange[0], yearRange[1])),
		Location:             pick(g.rng, locations),
		ARR:                  model.Ptr(arr),
		Revenue:              model.Ptr(revenue),
		FundingRaised:        model.Ptr(funding),
		Valuation:            model.Ptr(valuation),
		CAC:                  model.Ptr(cac),
		LTV:                  model.Ptr(ltv),
		LTVCACRatio:          model.Ptr(ratio),
		ChurnRate:            model.Ptr(churn),
		GrowthRate:           model.Ptr(growth),
		EmployeeCount:        model.Ptr(employees),
		FoundersCount:        model.Ptr(founders),
		Description:          fmt.Sprintf(desc.template, pick(g.rng, desc.audiences)),
		BusinessModel:        pick(g.rng, businessModels[industry]),
		CompetitiveAdvantage: strings.Join(g.sampleAdvantages(), ", "),
		DataSources:          []string{"sample_data"},
		ConfidenceScore:      model.Ptr(uniform(g.rng, 0.7, 0.95)),
		LastUpdated:          time.Now().UTC(),
	}
}

// sampleAdvantages draws two to four distinct advantages.
func (g *Generator) sampleAdvantages() []string {
	n := g.intBetween(2, 4)
	perm := g.rng.Perm(len(advantages))
	picked := make([]string, 0, n)
	for _, i := range perm[:n] {
		picked = append(picked, advantages[i])
	}
	return picked
}

// intBetween returns a uniform integer in [lo, hi].
func (g *Generator) intBetween(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func pick[T any](rng *rand.Rand, options []T) T {
	return options[rng.IntN(len(options))]
}

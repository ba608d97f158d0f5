package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/benchmark"
	"github.com/sells-group/diligence-cli/internal/corpus"
	"github.com/sells-group/diligence-cli/internal/fetcher"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/peers"
	"github.com/sells-group/diligence-cli/internal/store"
)

// initStore opens and migrates the run-history store configured in cfg.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)

	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "diligence.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// loadIndex restores the peer index snapshot at pathPrefix, falling back
// to the configured path when pathPrefix is empty.
func loadIndex(pathPrefix string) (*peers.Index, error) {
	if pathPrefix == "" {
		pathPrefix = cfg.Index.Path
	}

	idx := peers.New()
	if _, err := idx.LoadSnapshot(pathPrefix); err != nil {
		return nil, eris.Wrapf(err, "load index %s (seed one with 'diligence-cli seed --index' or 'diligence-cli index save')", pathPrefix)
	}

	zap.L().Debug("index loaded",
		zap.String("path", pathPrefix),
		zap.Int("companies", idx.Count()))
	return idx, nil
}

// engineRules loads the configured red-flag rule file, or nil for the
// built-in table.
func engineRules() ([]benchmark.Rule, error) {
	if cfg.Benchmark.RulesFile == "" {
		return nil, nil
	}
	rules, err := benchmark.LoadRules(cfg.Benchmark.RulesFile)
	if err != nil {
		return nil, eris.Wrapf(err, "load rules %s", cfg.Benchmark.RulesFile)
	}
	return rules, nil
}

// addCompanyFlags registers the flags that describe a target company.
func addCompanyFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("name", "", "company name")
	f.String("industry", "", "industry (e.g. Payments, Lending)")
	f.String("stage", "", "funding stage (seed, series_a, series_b, series_c, series_d, late_stage)")
	f.String("location", "", "headquarters location")
	f.Float64("arr", 0, "annual recurring revenue (USD)")
	f.Float64("revenue", 0, "total revenue (USD)")
	f.Float64("funding", 0, "total funding raised (USD)")
	f.Float64("valuation", 0, "last valuation (USD)")
	f.Float64("cac", 0, "customer acquisition cost (USD)")
	f.Float64("ltv", 0, "customer lifetime value (USD)")
	f.Float64("churn", 0, "monthly churn rate (0-1)")
	f.Float64("growth", 0, "monthly growth rate (0-1)")
	f.Int("employees", 0, "employee count")
	f.Int("founders", 0, "founder count")
	f.Int("founded", 0, "founding year")
}

// companyFromFlags builds a Company from whichever company flags were
// actually set. Unset metric flags stay nil so they read as unknown.
func companyFromFlags(cmd *cobra.Command) (model.Company, error) {
	f := cmd.Flags()
	var c model.Company

	c.Name, _ = f.GetString("name")
	c.Industry, _ = f.GetString("industry")
	c.Location, _ = f.GetString("location")

	if stage, _ := f.GetString("stage"); stage != "" {
		c.Stage = model.Stage(stage)
		if !c.Stage.IsValid() {
			return c, eris.Errorf("unknown stage %q", stage)
		}
	}

	floatFlags := map[string]**float64{
		"arr":       &c.ARR,
		"revenue":   &c.Revenue,
		"funding":   &c.FundingRaised,
		"valuation": &c.Valuation,
		"cac":       &c.CAC,
		"ltv":       &c.LTV,
		"churn":     &c.ChurnRate,
		"growth":    &c.GrowthRate,
	}
	for name, dst := range floatFlags {
		if f.Changed(name) {
			v, _ := f.GetFloat64(name)
			*dst = &v
		}
	}

	intFlags := map[string]**int{
		"employees": &c.EmployeeCount,
		"founders":  &c.FoundersCount,
		"founded":   &c.FoundedYear,
	}
	for name, dst := range intFlags {
		if f.Changed(name) {
			v, _ := f.GetInt(name)
			*dst = &v
		}
	}

	if c.LTVCACRatio == nil && c.LTV != nil && c.CAC != nil && *c.CAC != 0 {
		ratio := *c.LTV / *c.CAC
		c.LTVCACRatio = &ratio
	}

	return c, nil
}

// resolveCompany picks the benchmark target: --scenario wins, then --file
// (first row), then the company flags.
func resolveCompany(cmd *cobra.Command) (model.Company, error) {
	if name, _ := cmd.Flags().GetString("scenario"); name != "" {
		c, ok := corpus.Scenario(name)
		if !ok {
			return model.Company{}, eris.Errorf("unknown scenario %q (available: %v)", name, corpus.ScenarioNames())
		}
		return c, nil
	}

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		companies, err := fetcher.ReadCompanies(path)
		if err != nil {
			return model.Company{}, err
		}
		if len(companies) == 0 {
			return model.Company{}, eris.Errorf("%s holds no companies", path)
		}
		return companies[0], nil
	}

	return companyFromFlags(cmd)
}

// fillCompany copies fields from src into dst where dst has no value.
// Populated fields are never overwritten.
func fillCompany(dst *model.Company, src model.Company) {
	if dst.Industry == "" {
		dst.Industry = src.Industry
	}
	if dst.Stage == "" {
		dst.Stage = src.Stage
	}
	if dst.Location == "" {
		dst.Location = src.Location
	}
	if dst.Domain == "" {
		dst.Domain = src.Domain
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
	if dst.BusinessModel == "" {
		dst.BusinessModel = src.BusinessModel
	}

	floatFields := []struct {
		dst **float64
		src *float64
	}{
		{&dst.ARR, src.ARR},
		{&dst.Revenue, src.Revenue},
		{&dst.FundingRaised, src.FundingRaised},
		{&dst.Valuation, src.Valuation},
		{&dst.CAC, src.CAC},
		{&dst.LTV, src.LTV},
		{&dst.LTVCACRatio, src.LTVCACRatio},
		{&dst.ChurnRate, src.ChurnRate},
		{&dst.GrowthRate, src.GrowthRate},
	}
	for _, fld := range floatFields {
		if *fld.dst == nil && fld.src != nil {
			v := *fld.src
			*fld.dst = &v
		}
	}

	if dst.EmployeeCount == nil && src.EmployeeCount != nil {
		v := *src.EmployeeCount
		dst.EmployeeCount = &v
	}
	if dst.FoundersCount == nil && src.FoundersCount != nil {
		v := *src.FoundersCount
		dst.FoundersCount = &v
	}
	if dst.FoundedYear == nil && src.FoundedYear != nil {
		v := *src.FoundedYear
		dst.FoundedYear = &v
	}

	dst.DataSources = append(dst.DataSources, src.DataSources...)
}

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openOutput returns the file at path, or os.Stdout when path is empty.
// The returned closer is a no-op for stdout.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "create output file %s", path)
	}
	return f, func() { _ = f.Close() }, nil
}

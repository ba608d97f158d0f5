// Package enrich fills gaps in company records from external data sources.
// Merging is fill-only: a populated field is never overwritten, so manual
// input always wins over third-party data.
package enrich

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/resilience"
	"github.com/sells-group/diligence-cli/pkg/crunchbase"
	"github.com/sells-group/diligence-cli/pkg/linkedin"
)

// employeeRangeMidpoints maps provider headcount buckets to point
// estimates. Crunchbase and LinkedIn slice the 50-1000 band differently,
// so both bucket sets appear.
var employeeRangeMidpoints = map[string]int{
	"1-10":       5,
	"11-50":      30,
	"51-100":     75,
	"51-200":     125,
	"101-250":    175,
	"201-500":    350,
	"251-500":    375,
	"501-1000":   750,
	"1001-5000":  3000,
	"5001-10000": 7500,
	"10001+":     15000,
}

// Aggregator queries each configured source in turn and merges the results.
type Aggregator struct {
	crunchbase crunchbase.Client
	linkedin   linkedin.Client
	retry      resilience.RetryConfig
}

// New builds an aggregator over the given source clients.
func New(cb crunchbase.Client, li linkedin.Client) *Aggregator {
	return &Aggregator{
		crunchbase: cb,
		linkedin:   li,
		retry:      resilience.DefaultRetryConfig(),
	}
}

// retryFor clones the retry config with logging attributed to the source.
func (a *Aggregator) retryFor(source string) resilience.RetryConfig {
	cfg := a.retry
	cfg.OnRetry = resilience.RetryLogger(source, "search")
	return cfg
}

// Enrich looks the company up on every source and returns a copy with
// absent fields filled. Transient source failures are retried with backoff;
// failures that survive the retries are logged and skipped, so the only
// error returned is context cancellation.
func (a *Aggregator) Enrich(ctx context.Context, company model.Company) (model.Company, error) {
	contributed := false

	cb, err := resilience.DoVal(ctx, a.retryFor("crunchbase"), func(ctx context.Context) (*crunchbase.Organization, error) {
		return a.crunchbase.SearchOrganization(ctx, company.Name)
	})
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return company, ctx.Err()
		}
		zap.L().Warn("crunchbase lookup failed", zap.String("company", company.Name), zap.Error(err))
	case cb != nil:
		mergeCrunchbase(&company, cb)
		company.DataSources = append(company.DataSources, sourceTag("crunchbase", a.crunchbase.Offline()))
		contributed = true
	}

	li, err := resilience.DoVal(ctx, a.retryFor("linkedin"), func(ctx context.Context) (*linkedin.Organization, error) {
		return a.linkedin.SearchOrganization(ctx, company.Name)
	})
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return company, ctx.Err()
		}
		zap.L().Warn("linkedin lookup failed", zap.String("company", company.Name), zap.Error(err))
	case li != nil:
		mergeLinkedIn(&company, li)
		company.DataSources = append(company.DataSources, sourceTag("linkedin", a.linkedin.Offline()))
		contributed = true
	}

	if contributed {
		if company.ConfidenceScore == nil {
			company.ConfidenceScore = model.Ptr(0.8)
		}
		company.LastUpdated = time.Now().UTC()
	}
	return company, nil
}

func mergeCrunchbase(c *model.Company, org *crunchbase.Organization) {
	if c.FoundedYear == nil && len(org.FoundedOn) >= 4 {
		if year, err := strconv.Atoi(org.FoundedOn[:4]); err == nil {
			c.FoundedYear = model.Ptr(year)
		}
	}
	if c.EmployeeCount == nil {
		if mid, ok := employeeRangeMidpoints[org.EmployeeRange]; ok {
			c.EmployeeCount = model.Ptr(mid)
		}
	}
	if c.FundingRaised == nil && org.TotalFundingUSD != nil {
		c.FundingRaised = model.Ptr(*org.TotalFundingUSD)
	}
}

func mergeLinkedIn(c *model.Company, org *linkedin.Organization) {
	if c.Description == "" {
		c.Description = org.Description
	}
	if c.EmployeeCount == nil {
		if mid, ok := employeeRangeMidpoints[org.EmployeeRange]; ok {
			c.EmployeeCount = model.Ptr(mid)
		}
	}
}

func sourceTag(source string, offline bool) string {
	if offline {
		return source + "_mock"
	}
	return source
}

// Package crunchbase provides a client for the Crunchbase v4 organization
// API. Without an API key the client serves deterministic offline profiles
// so enrichment stays usable in demos and tests.
package crunchbase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/diligence-cli/internal/resilience"
)

// Client defines the Crunchbase operations used for enrichment.
type Client interface {
	// SearchOrganization finds the best organization match for a company
	// name. It returns (nil, nil) when nothing matches.
	SearchOrganization(ctx context.Context, name string) (*Organization, error)
	// Offline reports whether the client serves canned profiles because no
	// API key is configured.
	Offline() bool
}

// Organization is the subset of Crunchbase organization data the
// enrichment pipeline consumes.
type Organization struct {
	UUID             string   `json:"uuid"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Categories       []string `json:"categories,omitempty"`
	FoundedOn        string   `json:"founded_on,omitempty"` // YYYY-MM-DD
	EmployeeRange    string   `json:"employee_range,omitempty"`
	TotalFundingUSD  *float64 `json:"total_funding_usd,omitempty"`
	LastFundingRound string   `json:"last_funding_round,omitempty"`
}

// Option configures the Crunchbase client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate (5 req/s).
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Crunchbase client. An empty API key switches the
// client to offline mode.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.crunchbase.com/api/v4",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(5, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Offline() bool {
	return c.apiKey == ""
}

// orgProperties mirrors the Crunchbase v4 property card.
type orgProperties struct {
	Name                 string   `json:"name"`
	ShortDescription     string   `json:"short_description"`
	CategoryList         []string `json:"category_list"`
	FoundedOn            string   `json:"founded_on"`
	NumEmployeesEnum     string   `json:"num_employees_enum"`
	TotalFundingUSD      *float64 `json:"total_funding_usd"`
	LastFundingRoundType string   `json:"last_funding_round_type"`
}

// employeeEnums translates the v4 num_employees_enum values into plain
// headcount ranges.
var employeeEnums = map[string]string{
	"c_00001_00010": "1-10",
	"c_00011_00050": "11-50",
	"c_00051_00100": "51-100",
	"c_00101_00250": "101-250",
	"c_00251_00500": "251-500",
	"c_00501_01000": "501-1000",
	"c_01001_05000": "1001-5000",
	"c_05001_10000": "5001-10000",
	"c_10001_max":   "10001+",
}

func (p orgProperties) mergeInto(org *Organization) {
	if p.Name != "" {
		org.Name = p.Name
	}
	if p.ShortDescription != "" {
		org.Description = p.ShortDescription
	}
	if len(p.CategoryList) > 0 {
		org.Categories = p.CategoryList
	}
	if p.FoundedOn != "" {
		org.FoundedOn = p.FoundedOn
	}
	if p.NumEmployeesEnum != "" {
		if r, ok := employeeEnums[p.NumEmployeesEnum]; ok {
			org.EmployeeRange = r
		} else {
			org.EmployeeRange = p.NumEmployeesEnum
		}
	}
	if p.TotalFundingUSD != nil {
		org.TotalFundingUSD = p.TotalFundingUSD
	}
	if p.LastFundingRoundType != "" {
		org.LastFundingRound = p.LastFundingRoundType
	}
}

func (c *httpClient) SearchOrganization(ctx context.Context, name string) (*Organization, error) {
	if c.Offline() {
		return mockOrganization(name), nil
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "crunchbase: rate limit")
		}
	}

	reqURL := fmt.Sprintf("%s/searches/organizations?query=%s&limit=1", c.baseURL, url.QueryEscape(name))
	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var search struct {
		Entities []struct {
			UUID       string        `json:"uuid"`
			Properties orgProperties `json:"properties"`
		} `json:"entities"`
	}
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, eris.Wrap(err, "crunchbase: unmarshal search response")
	}
	if len(search.Entities) == 0 {
		return nil, nil
	}

	org := &Organization{UUID: search.Entities[0].UUID}
	search.Entities[0].Properties.mergeInto(org)

	// The search card omits funding fields; the entity lookup has them.
	if org.UUID != "" {
		if err := c.fetchDetails(ctx, org); err != nil {
			return org, eris.Wrap(err, "crunchbase: fetch details")
		}
	}
	return org, nil
}

func (c *httpClient) fetchDetails(ctx context.Context, org *Organization) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "crunchbase: rate limit")
		}
	}

	reqURL := fmt.Sprintf("%s/entities/organizations/%s", c.baseURL, url.PathEscape(org.UUID))
	body, err := c.get(ctx, reqURL)
	if err != nil {
		return err
	}

	var details struct {
		Properties orgProperties `json:"properties"`
	}
	if err := json.Unmarshal(body, &details); err != nil {
		return eris.Wrap(err, "crunchbase: unmarshal entity response")
	}
	details.Properties.mergeInto(org)
	return nil
}

func (c *httpClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "crunchbase: create request")
	}
	req.Header.Set("X-cb-user-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "crunchbase: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "crunchbase: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("crunchbase: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.RetryableStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}
	return body, nil
}

// mockOrganization is the deterministic offline profile for a name.
func mockOrganization(name string) *Organization {
	funding := 5000000.0
	return &Organization{
		UUID:             "mock-" + slug(name),
		Name:             name,
		Description:      "Mock description for " + name,
		Categories:       []string{"Financial Services", "Technology"},
		FoundedOn:        "2020-01-01",
		EmployeeRange:    "11-50",
		TotalFundingUSD:  &funding,
		LastFundingRound: "Series A",
	}
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

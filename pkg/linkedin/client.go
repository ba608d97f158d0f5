// Package linkedin provides a client for the LinkedIn organization search
// API. Without an API key the client serves deterministic offline profiles.
package linkedin

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

// Client defines the LinkedIn operations used for enrichment.
type Client interface {
	// SearchOrganization finds the best organization match for a company
	// name. It returns (nil, nil) when nothing matches.
	SearchOrganization(ctx context.Context, name string) (*Organization, error)
	// Offline reports whether the client serves canned profiles because no
	// API key is configured.
	Offline() bool
}

// Organization is the subset of LinkedIn organization data the enrichment
// pipeline consumes.
type Organization struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Industry      string `json:"industry,omitempty"`
	EmployeeRange string `json:"employee_range,omitempty"`
}

// Option configures the LinkedIn client.
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

// WithRateLimit overrides the default request rate (2 req/s).
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

// NewClient creates a LinkedIn client. An empty API key switches the client
// to offline mode.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.linkedin.com/v2",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(2, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Offline() bool {
	return c.apiKey == ""
}

func (c *httpClient) SearchOrganization(ctx context.Context, name string) (*Organization, error) {
	if c.Offline() {
		return mockOrganization(name), nil
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "linkedin: rate limit")
		}
	}

	reqURL := fmt.Sprintf("%s/organizationSearch?q=%s&count=1", c.baseURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("linkedin: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.RetryableStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var search struct {
		Elements []struct {
			ID                 string `json:"id"`
			Name               string `json:"name"`
			Description        string `json:"description"`
			Industry           string `json:"industry"`
			EmployeeCountRange string `json:"employeeCountRange"`
		} `json:"elements"`
	}
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, eris.Wrap(err, "linkedin: unmarshal response")
	}
	if len(search.Elements) == 0 {
		return nil, nil
	}

	el := search.Elements[0]
	return &Organization{
		ID:            el.ID,
		Name:          el.Name,
		Description:   el.Description,
		Industry:      el.Industry,
		EmployeeRange: el.EmployeeCountRange,
	}, nil
}

// mockOrganization is the deterministic offline profile for a name.
func mockOrganization(name string) *Organization {
	return &Organization{
		ID:            "mock-linkedin-" + strings.ReplaceAll(strings.ToLower(name), " ", "-"),
		Name:          name,
		Description:   "Mock LinkedIn description for " + name,
		Industry:      "Financial Services",
		EmployeeRange: "11-50",
	}
}

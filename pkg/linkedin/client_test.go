package linkedin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/diligence-cli/internal/resilience"
)

func TestSearchOrganization_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/organizationSearch", r.URL.Path)
		assert.Equal(t, "LendTech", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("count"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"elements":[{
			"id":"li-789",
			"name":"LendTech",
			"description":"Digital lending platform",
			"industry":"Financial Services",
			"employeeCountRange":"51-200"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	org, err := client.SearchOrganization(context.Background(), "LendTech")

	require.NoError(t, err)
	require.NotNil(t, org)
	assert.Equal(t, "li-789", org.ID)
	assert.Equal(t, "Digital lending platform", org.Description)
	assert.Equal(t, "51-200", org.EmployeeRange)
	assert.False(t, client.Offline())
}

func TestSearchOrganization_NoMatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"elements":[]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	org, err := client.SearchOrganization(context.Background(), "Nobody Inc")

	require.NoError(t, err)
	assert.Nil(t, org)
}

func TestSearchOrganization_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"forbidden"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.SearchOrganization(context.Background(), "LendTech")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.False(t, resilience.IsTransient(err))
}

func TestSearchOrganization_TransientStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.SearchOrganization(context.Background(), "LendTech")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.True(t, resilience.IsTransient(err))
}

func TestSearchOrganization_Offline(t *testing.T) {
	t.Parallel()

	client := NewClient("")
	require.True(t, client.Offline())

	org, err := client.SearchOrganization(context.Background(), "LendTech Pro")
	require.NoError(t, err)
	require.NotNil(t, org)

	assert.Equal(t, "mock-linkedin-lendtech-pro", org.ID)
	assert.Equal(t, "Mock LinkedIn description for LendTech Pro", org.Description)
	assert.Equal(t, "Financial Services", org.Industry)
	assert.Equal(t, "11-50", org.EmployeeRange)
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient("my-key")
	hc := c.(*httpClient)
	assert.Equal(t, "my-key", hc.apiKey)
	assert.Equal(t, "https://api.linkedin.com/v2", hc.baseURL)
	assert.NotNil(t, hc.limiter)
}

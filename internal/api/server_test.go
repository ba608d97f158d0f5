package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/diligence-cli/internal/benchmark"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/peers"
	"github.com/sells-group/diligence-cli/internal/store"
)

func corpusCompany(name, industry string, stage model.Stage, arr, cac, ltv float64, employees int) model.Company {
	return model.Company{
		Name:          name,
		Industry:      industry,
		Stage:         stage,
		ARR:           model.Ptr(arr),
		CAC:           model.Ptr(cac),
		LTV:           model.Ptr(ltv),
		LTVCACRatio:   model.Ptr(ltv / cac),
		ChurnRate:     model.Ptr(0.03),
		GrowthRate:    model.Ptr(0.15),
		EmployeeCount: model.Ptr(employees),
		FoundedYear:   model.Ptr(2020),
	}
}

func testIndex(t *testing.T) *peers.Index {
	t.Helper()
	idx := peers.New()
	err := idx.Add([]model.Company{
		corpusCompany("PayFlow", "Payments", model.StageSeriesA, 500000, 400, 1600, 25),
		corpusCompany("ChargeStack", "Payments", model.StageSeriesA, 650000, 450, 1800, 30),
		corpusCompany("SwipeRight", "Payments", model.StageSeriesB, 2200000, 500, 2400, 80),
		corpusCompany("Billify", "Payments", model.StageSeed, 150000, 350, 1200, 10),
		corpusCompany("Settld", "Payments", model.StageSeriesA, 800000, 420, 2000, 35),
		corpusCompany("LendTech", "Lending", model.StageSeriesB, 3000000, 600, 3000, 95),
		corpusCompany("CreditCore", "Lending", model.StageSeriesA, 900000, 550, 2200, 40),
	})
	require.NoError(t, err)
	return idx
}

func newTestRouter(t *testing.T, st store.Store) http.Handler {
	t.Helper()
	idx := testIndex(t)
	engine := benchmark.NewEngine(idx, nil)
	return NewServer(engine, idx, st).Router()
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestBenchmark_ReturnsResult(t *testing.T) {
	query := corpusCompany("QueryPay", "Payments", model.StageSeriesA, 550000, 430, 1700, 28)
	rec := doJSON(t, newTestRouter(t, nil), http.MethodPost, "/api/v1/benchmark?peers=3", query)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result model.BenchmarkResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "QueryPay", result.Company.Name)
	assert.LessOrEqual(t, len(result.PeerCompanies), 3)
	assert.NotEmpty(t, result.PeerCompanies)
	assert.GreaterOrEqual(t, result.RiskScore, 0.0)
	assert.LessOrEqual(t, result.RiskScore, 1.0)
	assert.NotEmpty(t, result.Recommendation)
}

func TestBenchmark_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/benchmark", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	newTestRouter(t, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decodeError(t, rec))
}

func TestBenchmark_MissingName(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodPost, "/api/v1/benchmark", model.Company{Industry: "Payments"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", decodeError(t, rec))
}

func TestBenchmark_UnknownStage(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodPost, "/api/v1/benchmark", model.Company{
		Name:  "Acme",
		Stage: model.Stage("mezzanine"),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "unknown stage")
}

func TestBenchmark_BadPeersParam(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodPost, "/api/v1/benchmark?peers=abc", model.Company{Name: "Acme"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "peers")
}

func TestBenchmark_EmptyIndex(t *testing.T) {
	idx := peers.New()
	router := NewServer(benchmark.NewEngine(idx, nil), idx, nil).Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/benchmark", model.Company{Name: "Acme"})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "index is empty", decodeError(t, rec))
}

func TestBenchmark_RecordsRun(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	query := corpusCompany("QueryPay", "Payments", model.StageSeriesA, 550000, 430, 1700, 28)
	rec := doJSON(t, newTestRouter(t, st), http.MethodPost, "/api/v1/benchmark", query)
	require.Equal(t, http.StatusOK, rec.Code)

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "QueryPay", runs[0].CompanyName)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
}

func TestIndustry_Found(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/api/v1/industries/Payments", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var analysis benchmark.IndustryAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, 5, analysis.TotalCompanies)
	assert.NotEmpty(t, analysis.ARRStats)
}

func TestIndustry_NotFound(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/api/v1/industries/Quantum", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No companies found for industry: Quantum", decodeError(t, rec))
}

func TestPeers_Filters(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/api/v1/peers?industry=payments&min_arr=400000&stage=series_a", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total   int           `json:"total"`
		Results []peers.Entry `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, len(body.Results), body.Total)
	require.NotEmpty(t, body.Results)
	for _, e := range body.Results {
		assert.Equal(t, "Payments", e.Company.Industry)
		assert.Equal(t, model.StageSeriesA, e.Company.Stage)
		require.NotNil(t, e.Company.ARR)
		assert.GreaterOrEqual(t, *e.Company.ARR, 400000.0)
	}
}

func TestPeers_NoMatchesIsEmptyList(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/api/v1/peers?industry=quantum", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":[]`)
}

func TestPeers_InvalidRange(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/api/v1/peers?min_arr=100&max_arr=50", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "minimum exceeds maximum")
}

func TestPeers_BadNumber(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/api/v1/peers?min_arr=abc", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "min_arr must be a number", decodeError(t, rec))
}

func TestPeers_UnknownStage(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/api/v1/peers?stage=mezzanine", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "unknown stage")
}

func TestStats(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/api/v1/stats", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats peers.IndexStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 7, stats.TotalCompanies)
	assert.Equal(t, 7, stats.IndexSize)
	assert.Equal(t, 5, stats.Industries["Payments"])
}

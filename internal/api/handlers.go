package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/benchmark"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/peers"
	"github.com/sells-group/diligence-cli/internal/store"
)

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleBenchmark runs the full pipeline for the company in the request
// body. The peer group size can be overridden with ?peers=N.
func (s *Server) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	var company model.Company
	if err := json.NewDecoder(r.Body).Decode(&company); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if company.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if company.Stage != "" && !company.Stage.IsValid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown stage: %s", company.Stage))
		return
	}
	if !s.index.Trained() {
		writeError(w, http.StatusServiceUnavailable, "index is empty")
		return
	}

	peerCount := 0
	if v := r.URL.Query().Get("peers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "peers must be a positive integer")
			return
		}
		peerCount = n
	}

	result := s.engine.BenchmarkCompany(company, peerCount)

	if s.store != nil {
		if err := s.store.SaveRun(r.Context(), store.NewRun(result)); err != nil {
			zap.L().Warn("save run", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleIndustry(w http.ResponseWriter, r *http.Request) {
	industry := chi.URLParam(r, "industry")

	analysis, err := s.engine.IndustryAnalysis(industry)
	if err != nil {
		if errors.Is(err, benchmark.ErrNoCohort) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("No companies found for industry: %s", industry))
			return
		}
		writeError(w, http.StatusInternalServerError, "industry analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// handlePeers filters the corpus by the criteria given as query
// parameters: stage, industry, min_arr, max_arr, min_employees,
// max_employees.
func (s *Server) handlePeers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	criteria := peers.Criteria{
		Industry: q.Get("industry"),
	}
	if v := q.Get("stage"); v != "" {
		stage := model.Stage(v)
		if !stage.IsValid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown stage: %s", v))
			return
		}
		criteria.Stage = stage
	}

	var parseErr error
	floatParam := func(name string) *float64 {
		v := q.Get(name)
		if v == "" || parseErr != nil {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			parseErr = fmt.Errorf("%s must be a number", name)
			return nil
		}
		return &f
	}
	intParam := func(name string) *int {
		v := q.Get(name)
		if v == "" || parseErr != nil {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			parseErr = fmt.Errorf("%s must be an integer", name)
			return nil
		}
		return &n
	}

	criteria.MinARR = floatParam("min_arr")
	criteria.MaxARR = floatParam("max_arr")
	criteria.MinEmployees = intParam("min_employees")
	criteria.MaxEmployees = intParam("max_employees")
	if parseErr != nil {
		writeError(w, http.StatusBadRequest, parseErr.Error())
		return
	}

	entries, err := s.index.FindByCriteria(criteria)
	if err != nil {
		if errors.Is(err, peers.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "criteria search failed")
		return
	}
	if entries == nil {
		entries = []peers.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":   len(entries),
		"results": entries,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.index.Stats())
}

// Package api exposes the benchmark engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/benchmark"
	"github.com/sells-group/diligence-cli/internal/peers"
	"github.com/sells-group/diligence-cli/internal/store"
)

// Server holds the handlers' shared dependencies. The store is optional;
// when present every completed benchmark is recorded as a run.
type Server struct {
	engine *benchmark.Engine
	index  *peers.Index
	store  store.Store

	// AllowedOrigins overrides the CORS origin list. Empty means any.
	AllowedOrigins []string
}

// NewServer builds a Server over a trained (or in-progress) index. st may
// be nil to disable run recording.
func NewServer(engine *benchmark.Engine, index *peers.Index, st store.Store) *Server {
	return &Server{engine: engine, index: index, store: st}
}

// Router assembles the route tree with its middleware stack.
func (s *Server) Router() http.Handler {
	origins := s.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/benchmark", s.handleBenchmark)
		api.Get("/industries/{industry}", s.handleIndustry)
		api.Get("/peers", s.handlePeers)
		api.Get("/stats", s.handleStats)
	})

	return r
}

// requestLogger logs one line per request after it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())))
	})
}

// Package api exposes the report evaluators over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/research-gate/internal/config"
)

// Server holds the request defaults and limits for the evaluation API.
type Server struct {
	eval   config.EvaluationConfig
	server config.ServerConfig
	now    func() time.Time
}

// NewServer builds a Server from application config.
func NewServer(cfg *config.Config) *Server {
	return &Server{
		eval:   cfg.Evaluation,
		server: cfg.Server,
		now:    time.Now,
	}
}

// Handler returns the routed handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{evaluationIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		if s.server.RateLimitRPS > 0 {
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(s.server.RateLimitRPS), s.server.RateLimitBurst)))
		}
		r.Post("/quality", s.quality)
		r.Post("/traceability", s.traceability)
		r.Post("/gate", s.gate)
	})

	return r
}

type errResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

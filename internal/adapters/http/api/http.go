// Package api exposes finished seasons over HTTP as read-only JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/rally/internal/adapters/http/swagger"
	"github.com/okian/rally/internal/adapters/repository"
	"github.com/okian/rally/internal/domain/contestant"
	"github.com/okian/rally/internal/season"
	"github.com/okian/rally/pkg/metrics"
)

// DefaultMaxLimit caps the standings page size.
const DefaultMaxLimit = 1000

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Seasons(ctx context.Context) ([]string, error)
	Report(ctx context.Context, seasonID string) (*season.Report, error)
	TopN(ctx context.Context, seasonID string, n int) ([]repository.Entry, error)
	Rank(ctx context.Context, seasonID string, id contestant.ID) (repository.Entry, error)
}

// Server wires HTTP routes for the standings API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	seasonsHandler   *SeasonsHandler
	standingsHandler *StandingsHandler
	rankHandler      *RankHandler
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxLimit int
}

// WithMaxLimit caps the limit accepted by the standings endpoint.
func WithMaxLimit(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxLimit: DefaultMaxLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		seasonsHandler:   NewSeasonsHandler(deps),
		standingsHandler: NewStandingsHandler(deps, cfg.maxLimit),
		rankHandler:      NewRankHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /seasons", MetricsMiddleware(s.seasonsHandler.HandleList, "seasons"))
	mux.HandleFunc("GET /seasons/{season}", MetricsMiddleware(s.seasonsHandler.HandleGet, "season"))
	mux.HandleFunc("GET /seasons/{season}/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("GET /seasons/{season}/rank/{contestant}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.Handle("GET /metrics", metrics.Handler())
	swagger.Register(mux)
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeLookupError maps store errors onto status codes.
func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrSeasonNotFound) ||
		errors.Is(err, repository.ErrNotFound)
}

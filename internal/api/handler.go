package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/punchamoorthee/payflow/internal/ledger"
	"github.com/punchamoorthee/payflow/internal/service"
	"github.com/punchamoorthee/payflow/internal/store"
	"github.com/punchamoorthee/payflow/internal/worker"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payflow_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payflow_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

// Handler exposes the onboarding, transfer, and statement endpoints.
type Handler struct {
	users    *store.UserDirectory
	banks    *store.BankDirectory
	accounts *store.AccountRegistry
	recorder *ledger.Recorder
	engine   *service.Engine
	pool     *worker.Pool
	logger   *slog.Logger
}

func NewHandler(users *store.UserDirectory, banks *store.BankDirectory, accounts *store.AccountRegistry, rec *ledger.Recorder, engine *service.Engine, pool *worker.Pool, logger *slog.Logger) *Handler {
	return &Handler{
		users:    users,
		banks:    banks,
		accounts: accounts,
		recorder: rec,
		engine:   engine,
		pool:     pool,
		logger:   logger,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

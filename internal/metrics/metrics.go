package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/ErlanBelekov/superlists/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics

	LoginEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "superlists",
		Name:      "login_emails_total",
		Help:      "Login emails requested, by outcome.",
	}, []string{"outcome"})

	AuthenticationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "superlists",
		Name:      "authentications_total",
		Help:      "Token redemptions, by outcome (existing_user, new_user, unknown_token, error).",
	}, []string{"outcome"})

	// Lists

	ItemsAddedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "superlists",
		Name:      "list_items_total",
		Help:      "List item submissions, by outcome.",
	}, []string{"outcome"})

	// Reaper metrics

	ReaperDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "superlists",
		Name:      "reaper_tokens_deleted_total",
		Help:      "Login tokens deleted by the reaper for exceeding their max age.",
	})

	ReaperCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "superlists",
		Name:      "reaper_cycle_duration_seconds",
		Help:      "Time taken for one reaper cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "superlists",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "superlists",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		LoginEmailsTotal,
		AuthenticationsTotal,
		ItemsAddedTotal,
		ReaperDeletedTotal,
		ReaperCycleDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}

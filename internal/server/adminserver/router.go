package adminserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/linekv/internal/telemetry/metric"
)

// RouterConfig holds configuration for the admin router.
type RouterConfig struct {
	// NodeID and Version are reported by /health.
	NodeID  string
	Version string

	// Ready reports whether the line server accepts clients. Nil means
	// never ready.
	Ready func() bool

	// Metrics is served on /metrics. Nil disables the route.
	Metrics *metric.Registry

	Logger *slog.Logger
}

// NewRouter creates the admin mux with its middleware chain.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	started := time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "healthy",
			"node_id":        cfg.NodeID,
			"version":        cfg.Version,
			"uptime_seconds": int64(time.Since(started).Seconds()),
			"time":           time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready == nil || !cfg.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	return Chain(mux, Recover(log), RequestID(), AccessLog(log))
}

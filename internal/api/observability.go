package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-room or per-player labels, to
// prevent a room churner from exploding label cardinality).
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rts_tick_duration_seconds",
		Help:    "Time spent running one engine tick",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.016, 0.033},
	})

	snapshotBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rts_snapshot_build_duration_seconds",
		Help:    "Time spent building and filtering one snapshot frame",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.02},
	})

	roomsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rts_rooms_active",
		Help: "Current number of rooms by lifecycle status",
	}, []string{"status"}) // bounded: waiting, playing, paused, ended

	playersConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rts_players_connected",
		Help: "Current number of connected players across all rooms",
	})

	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rts_actions_total",
		Help: "Total actions processed by outcome",
	}, []string{"outcome"}) // bounded: accepted, rejected

	anticheatFindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rts_anticheat_findings_total",
		Help: "Total anti-cheat findings by severity",
	}, []string{"severity"}) // bounded: suspicious, confirmed

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rts_connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // bounded: rate_limit, origin, invalid, ws_limit

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rts_websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rts_websocket_messages_total",
		Help: "Total WebSocket messages exchanged",
	})
)

// ObservabilityConfig configures the debug server.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // MUST be "127.0.0.1:6060" in production
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// StartDebugServer starts the internal observability server.
// CRITICAL: this must bind to localhost only to prevent pprof-based DoS.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("debug server forced to localhost for security")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	go func() {
		log.Printf("debug server starting on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("debug server error: %v", err)
		}
	}()

	return nil
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordTick records one engine tick's duration.
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// RecordSnapshotBuild records one snapshot build-and-filter pass.
func RecordSnapshotBuild(duration time.Duration) {
	snapshotBuildDuration.Observe(duration.Seconds())
}

// UpdateRoomCounts sets the active-room gauge for one lifecycle status.
func UpdateRoomCounts(status string, count int) {
	roomsActive.WithLabelValues(status).Set(float64(count))
}

// UpdatePlayersConnected updates the connected-player gauge.
func UpdatePlayersConnected(count int) {
	playersConnected.Set(float64(count))
}

// RecordAction increments the action outcome counter. outcome must be
// "accepted" or "rejected".
func RecordAction(outcome string) {
	actionsTotal.WithLabelValues(outcome).Inc()
}

// RecordAnticheatFinding increments the anti-cheat finding counter.
// severity must be "suspicious" or "confirmed".
func RecordAnticheatFinding(severity string) {
	anticheatFindingsTotal.WithLabelValues(severity).Inc()
}

// RecordConnectionRejected increments the rejection counter.
// reason must be one of: "rate_limit", "origin", "invalid", "ws_limit".
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics.
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates the active WebSocket connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments the WebSocket message counter.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}

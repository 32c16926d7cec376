package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "abyss_connections_active",
		Help: "Open player connections",
	})

	connectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abyss_connections_rejected_total",
			Help: "Connections refused by the connection limiter",
		},
		[]string{"reason"},
	)

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "abyss_sessions_active",
		Help: "Logged-in save slots",
	})

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abyss_logins_total",
			Help: "Slot logins by result",
		},
		[]string{"result"},
	)

	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abyss_commands_total",
			Help: "Commands executed by name",
		},
		[]string{"command"},
	)

	commandsThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "abyss_commands_throttled_total",
		Help: "Commands refused by the per-connection throttle",
	})

	expeditionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abyss_expeditions_total",
			Help: "Finished expeditions by outcome",
		},
		[]string{"outcome"},
	)

	expeditionDepth = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "abyss_expedition_depth",
		Help:    "Depth reached by finished expeditions",
		Buckets: []float64{5, 10, 20, 30, 50, 75, 100},
	})

	bossKillsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "abyss_boss_kills_total",
		Help: "Bosses slain",
	})

	savesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abyss_saves_total",
			Help: "Save writes by result",
		},
		[]string{"result"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abyss_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "abyss_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// commandLabels maps accepted command names and aliases to the label
// they are counted under
var commandLabels = map[string]string{
	"help": "help", "?": "help",
	"status": "status", "score": "status", "st": "status",
	"stats": "stats", "statistics": "stats",
	"bag": "bag", "inventory": "bag", "inv": "bag", "i": "bag",
	"shop": "shop", "list": "shop",
	"buy": "buy", "purchase": "buy",
	"forge": "forge", "craft": "forge",
	"equip": "equip", "wear": "equip", "wield": "equip",
	"unequip": "unequip", "remove": "unequip",
	"sell":  "sell",
	"enter": "enter", "descend": "enter",
	"proceed": "proceed", "next": "proceed", "p": "proceed",
	"fight": "fight", "attack": "fight",
	"strike": "strike", "hit": "strike",
	"withdraw": "withdraw", "retreat": "withdraw",
	"revive":      "revive",
	"log":         "log",
	"history":     "history",
	"leaderboard": "leaderboard", "top": "leaderboard",
	"who":    "who",
	"uptime": "uptime",
	"save":   "save",
	"grant":  "grant", "supplies": "grant",
	"quit": "quit", "exit": "quit",
}

func observeCommand(name string) {
	if name == "" {
		return
	}
	label, ok := commandLabels[name]
	if !ok {
		label = "unknown"
	}
	commandsTotal.WithLabelValues(label).Inc()
}

// metricsMiddleware records request counts and latency per route pattern
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		}()

		next.ServeHTTP(ww, r)
	})
}

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
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daybook",
		Subsystem: "server",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests, by route and status.",
	}, []string{"route", "status"})

	httpDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "daybook",
		Subsystem: "server",
		Name:      "http_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	entriesAppendedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "daybook",
		Subsystem: "server",
		Name:      "entries_appended_total",
		Help:      "Total journal entries appended through the API.",
	})

	wsStreamsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "daybook",
		Subsystem: "server",
		Name:      "ws_streams_active",
		Help:      "Number of reply streams currently served over websocket.",
	})

	wsStreamsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daybook",
		Subsystem: "server",
		Name:      "ws_streams_total",
		Help:      "Total reply streams, by outcome.",
	}, []string{"outcome"})
)

// instrument records request counts and durations per route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		httpDurationSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

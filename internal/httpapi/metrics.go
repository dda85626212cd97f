package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var requestLabels = []string{"route", "method", "code"}

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forge3d",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, requestLabels)

	requestSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "forge3d",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency. Event streams are observed when they end.",
		Buckets:   prometheus.DefBuckets,
	}, requestLabels)

	inflightRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "forge3d",
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Requests currently being served.",
	})

	sseClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "forge3d",
		Subsystem: "http",
		Name:      "event_stream_clients",
		Help:      "Connected /events subscribers.",
	})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestSeconds, inflightRequests, sseClients)
}

// MetricsMiddleware counts and times requests per route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inflightRequests.Inc()
		defer inflightRequests.Dec()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		began := time.Now()
		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		// the pattern is only known once chi has routed the request
		labels := prometheus.Labels{"route": routeLabel(r), "method": r.Method, "code": strconv.Itoa(code)}
		requestsTotal.With(labels).Inc()
		requestSeconds.With(labels).Observe(time.Since(began).Seconds())
	})
}

// routeLabel keeps label cardinality bounded: unmatched paths collapse to one value.
func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

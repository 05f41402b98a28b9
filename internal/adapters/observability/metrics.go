package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pms", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pms", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pms", Name: "external_requests_total", Help: "Outbound vendor API requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pms", Name: "external_request_duration_seconds",
			Help:    "Outbound vendor API request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pms", Name: "cache_events_total", Help: "Cache hits, misses and sets."},
		[]string{"cache", "event"},
	)
	Webhooks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pms", Name: "webhooks_total", Help: "Webhook deliveries by outcome."},
		[]string{"pms", "result"}, // result: ok|rejected|invalid|no_driver|error
	)
	Reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pms", Name: "reservations_total", Help: "Reservations merged or skipped."},
		[]string{"pms", "result"}, // result: ok|skipped
	)
	VendorRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pms", Name: "vendor_retries_total", Help: "Retried vendor API calls."},
		[]string{"endpoint"},
	)
	GuestResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pms", Name: "guest_resolutions_total", Help: "Guest identity decisions."},
		[]string{"outcome"}, // reused|created|relocated|suffixed|failed
	)
)

// Serve exposes the default registry on addr in the background. Empty addr disables it.
func Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(InitRegistry()))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry returns the process registry, creating it on first use.
func InitRegistry() *prometheus.Registry {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
			Webhooks, Reservations, VendorRetries, GuestResolutions)
	})
	return registry
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveWebhook(pms, result string) { Webhooks.WithLabelValues(pms, result).Inc() }

func ObserveReservation(pms, result string) { Reservations.WithLabelValues(pms, result).Inc() }

func ObserveRetry(endpoint string) { VendorRetries.WithLabelValues(endpoint).Inc() }

func ObserveGuest(outcome string) { GuestResolutions.WithLabelValues(outcome).Inc() }

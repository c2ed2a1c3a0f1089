package metric

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "authshell"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Session controller
	LoginTotal  *prometheus.CounterVec
	LogoutTotal *prometheus.CounterVec
	VerifyTotal *prometheus.CounterVec

	// HTTP surfaces (web shell, dev server)
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with every application metric registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		LoginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_total",
			Help:      "Login attempts by outcome.",
		}, []string{"result"}),
		LogoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logout_total",
			Help:      "Logouts by outcome of the remote call.",
		}, []string{"remote"}),
		VerifyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verify_total",
			Help:      "Startup verifications of a persisted session.",
		}, []string{"result"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		r.LoginTotal,
		r.LogoutTotal,
		r.VerifyTotal,
		r.RequestsTotal,
		r.RequestDuration,
	)
	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() { global = NewRegistry() })
	return global
}

// Handler serves the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler serves this registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registerer exposes the registry to components that own their metrics.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer exposes the registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveLogin records a login outcome.
func (r *Registry) ObserveLogin(result string) {
	r.LoginTotal.WithLabelValues(result).Inc()
}

// ObserveLogout records the outcome of the remote logout call.
func (r *Registry) ObserveLogout(remote string) {
	r.LogoutTotal.WithLabelValues(remote).Inc()
}

// ObserveVerify records a startup verification outcome.
func (r *Registry) ObserveVerify(result string) {
	r.VerifyTotal.WithLabelValues(result).Inc()
}

// ObserveRequest records one served HTTP request.
func (r *Registry) ObserveRequest(method, route, code string, d time.Duration) {
	r.RequestsTotal.WithLabelValues(method, route, code).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

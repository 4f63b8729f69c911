// Package metrics collects Prometheus metrics and serves the scrape
// endpoint.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records service-level counters. Services treat a nil Collector
// as disabled, so tests can skip it.
type Collector struct {
	issuesCreated    *prometheus.CounterVec
	stateTransitions *prometheus.CounterVec
	loginFailures    prometheus.Counter
	authDenied       *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     prometheus.Histogram
}

// NewCollector registers all metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		issuesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_issues_created_total",
			Help: "Issues created, by submitter origin (guest or user).",
		}, []string{"origin"}),
		stateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_issue_transitions_total",
			Help: "Issue state transitions applied, by target state.",
		}, []string{"to"}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crm_login_failures_total",
			Help: "Failed authentication attempts.",
		}),
		authDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_authz_denied_total",
			Help: "Access-control denials, by reason.",
		}, []string{"reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "HTTP responses, by method and status code.",
		}, []string{"method", "status"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crm_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		c.issuesCreated,
		c.stateTransitions,
		c.loginFailures,
		c.authDenied,
		c.httpRequests,
		c.httpDuration,
	)
	return c
}

func (c *Collector) RecordIssueCreated(guest bool) {
	origin := "user"
	if guest {
		origin = "guest"
	}
	c.issuesCreated.WithLabelValues(origin).Inc()
}

func (c *Collector) RecordTransition(to string) {
	c.stateTransitions.WithLabelValues(to).Inc()
}

func (c *Collector) RecordLoginFailure() {
	c.loginFailures.Inc()
}

func (c *Collector) RecordAuthzDenied(reason string) {
	c.authDenied.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordHTTP(method string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.httpDuration.Observe(d.Seconds())
}

// Handler serves the Prometheus scrape endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

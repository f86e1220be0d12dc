package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing, so components can be built without a registry in tests.
type Metrics struct {
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	tenantResolutions    *prometheus.CounterVec
	trialActions         *prometheus.CounterVec
	limitChecks          *prometheus.CounterVec
	auditWriteFailures   *prometheus.CounterVec
	subdomainCacheLookup *prometheus.CounterVec
	dbConnectionStatus   prometheus.Gauge
}

// New registers the collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenancy_service_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tenancy_service_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		tenantResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenancy_service_tenant_resolutions_total",
				Help: "Tenant resolution attempts by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		trialActions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenancy_service_trial_actions_total",
				Help: "Trial lifecycle actions by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		limitChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenancy_service_limit_checks_total",
				Help: "Plan limit checks by resource and decision",
			},
			[]string{"resource", "decision"},
		),
		auditWriteFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenancy_service_audit_write_failures_total",
				Help: "Admin activity log writes that failed and were discarded",
			},
			[]string{"action"},
		),
		subdomainCacheLookup: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenancy_service_subdomain_cache_lookups_total",
				Help: "Subdomain cache lookups by result",
			},
			[]string{"result"},
		),
		dbConnectionStatus: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tenancy_service_db_connection_status",
			Help: "Database connection status (1 = connected, 0 = disconnected)",
		}),
	}
}

// RecordResolution records a tenant resolution attempt
func (m *Metrics) RecordResolution(source string, resolved bool) {
	if m == nil {
		return
	}
	outcome := "resolved"
	if !resolved {
		outcome = "unresolved"
	}
	m.tenantResolutions.WithLabelValues(source, outcome).Inc()
}

// RecordTrialAction records the outcome of a trial lifecycle action
func (m *Metrics) RecordTrialAction(action string, success bool) {
	if m == nil {
		return
	}
	m.trialActions.WithLabelValues(action, outcome(success)).Inc()
}

// RecordLimitCheck records a plan limit decision
func (m *Metrics) RecordLimitCheck(resource string, allowed bool) {
	if m == nil {
		return
	}
	decision := "allowed"
	if !allowed {
		decision = "denied"
	}
	m.limitChecks.WithLabelValues(resource, decision).Inc()
}

// RecordAuditWriteFailure counts a discarded audit entry
func (m *Metrics) RecordAuditWriteFailure(action string) {
	if m == nil {
		return
	}
	m.auditWriteFailures.WithLabelValues(action).Inc()
}

// RecordCacheLookup counts a subdomain cache hit, miss or error
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.subdomainCacheLookup.WithLabelValues(result).Inc()
}

// SetDBStatus reports database connectivity
func (m *Metrics) SetDBStatus(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.dbConnectionStatus.Set(1)
		return
	}
	m.dbConnectionStatus.Set(0)
}

// Middleware records HTTP request metrics
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		if m == nil {
			return
		}

		// Skip probes to avoid noise
		if path == "/health" || path == "/ready" || path == "/metrics" {
			return
		}

		status := http.StatusText(c.Writer.Status())
		if status == "" {
			status = "unknown"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

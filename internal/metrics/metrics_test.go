package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordResolution("subdomain", true)
		m.RecordTrialAction("extend_trial", false)
		m.RecordLimitCheck("products", true)
		m.RecordAuditWriteFailure("TRIAL_EXTENDED")
		m.RecordCacheLookup("hit")
		m.SetDBStatus(true)
	})
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordResolution("subdomain", true)
	m.RecordResolution("subdomain", true)
	m.RecordResolution("token", false)
	m.RecordLimitCheck("products", false)
	m.RecordAuditWriteFailure("TRIAL_ENDED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.tenantResolutions.WithLabelValues("subdomain", "resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tenantResolutions.WithLabelValues("token", "unresolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.limitChecks.WithLabelValues("products", "denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditWriteFailures.WithLabelValues("TRIAL_ENDED")))
}

func TestMiddlewareSkipsProbes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/things", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/health", "/api/v1/things", "/api/v1/things"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/things", "OK")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/health", "OK")))
}

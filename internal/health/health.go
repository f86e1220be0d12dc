package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/metrics"
)

const checkTimeout = 2 * time.Second

// Check probes one dependency
type Check func(ctx context.Context) error

// HealthChecker manages readiness state and dependency probes
type HealthChecker struct {
	service   string
	version   string
	database  Check
	optional  map[string]Check
	metrics   *metrics.Metrics
	ready     atomic.Bool
	startTime time.Time
}

// NewHealthChecker creates a health checker. The database check gates
// readiness; optional checks are reported but never fail it.
func NewHealthChecker(service, version string, database Check, m *metrics.Metrics) *HealthChecker {
	return &HealthChecker{
		service:   service,
		version:   version,
		database:  database,
		optional:  make(map[string]Check),
		metrics:   m,
		startTime: time.Now(),
	}
}

// AddOptional registers a non-critical dependency such as redis or NATS
func (h *HealthChecker) AddOptional(name string, check Check) {
	h.optional[name] = check
}

// SetReady marks the service as ready to receive traffic
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the service is ready
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// CheckDatabase verifies database connectivity
func (h *HealthChecker) CheckDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	err := h.database(ctx)
	h.metrics.SetDBStatus(err == nil)
	return err
}

// HealthHandler reports process health and dependency status. It always
// answers 200 while the process is alive.
// GET /health
func (h *HealthChecker) HealthHandler(c *gin.Context) {
	checks := gin.H{"database": "connected"}
	if err := h.CheckDatabase(c.Request.Context()); err != nil {
		checks["database"] = "disconnected"
	}

	for name, check := range h.optional {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		if err := check(ctx); err != nil {
			checks[name] = "unavailable"
		} else {
			checks[name] = "connected"
		}
		cancel()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   h.service,
		"version":   h.version,
		"uptime":    time.Since(h.startTime).String(),
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	})
}

// ReadyHandler returns 200 only if the service can handle traffic
// GET /ready
func (h *HealthChecker) ReadyHandler(c *gin.Context) {
	if !h.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "service not initialized",
		})
		return
	}

	if err := h.CheckDatabase(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// MetricsHandler returns the Prometheus metrics handler for a gatherer
func MetricsHandler(gatherer prometheus.Gatherer) gin.HandlerFunc {
	h := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

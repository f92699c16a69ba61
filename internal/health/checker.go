package health

import (
	"context"
	"sync"
	"time"

	"github.com/csp2hub/plugin-repository/internal/domain"
)

// SystemHealthChecker aggregates component health for the catalog server
type SystemHealthChecker struct {
	catalog domain.CatalogRepository
	extra   map[string]domain.HealthReporter

	timeout   time.Duration
	startTime time.Time

	// Cached health status to avoid repeated checks under load
	lastCheck   time.Time
	lastHealth  domain.SystemHealth
	cacheTTL    time.Duration
	healthMutex sync.Mutex
}

// NewSystemHealthChecker creates a new system health checker
func NewSystemHealthChecker(catalog domain.CatalogRepository) *SystemHealthChecker {
	return &SystemHealthChecker{
		catalog:   catalog,
		extra:     make(map[string]domain.HealthReporter),
		timeout:   5 * time.Second,
		cacheTTL:  5 * time.Second,
		startTime: time.Now(),
	}
}

// CheckHealth returns the aggregated health, reusing a recent result
func (h *SystemHealthChecker) CheckHealth(ctx context.Context) domain.SystemHealth {
	h.healthMutex.Lock()
	defer h.healthMutex.Unlock()

	if !h.lastCheck.IsZero() && time.Since(h.lastCheck) < h.cacheTTL {
		return h.lastHealth
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	now := time.Now()
	components := map[string]domain.HealthStatus{
		"catalog": h.catalog.HealthCheck(checkCtx),
	}
	for name, r := range h.extra {
		components[name] = r.HealthCheck(checkCtx)
	}

	overall := domain.HealthStatusHealthy
	for _, c := range components {
		overall = aggregateStatus(overall, c.Status)
	}

	systemHealth := domain.SystemHealth{
		Status:     overall,
		Timestamp:  now,
		Components: components,
		Uptime:     time.Since(h.startTime),
	}

	h.lastCheck = now
	h.lastHealth = systemHealth

	return systemHealth
}

// Register adds a component to every subsequent check under name
func (h *SystemHealthChecker) Register(name string, r domain.HealthReporter) {
	h.healthMutex.Lock()
	defer h.healthMutex.Unlock()
	h.extra[name] = r
	h.lastCheck = time.Time{}
}

// Invalidate drops the cached result so the next check runs fresh
func (h *SystemHealthChecker) Invalidate() {
	h.healthMutex.Lock()
	defer h.healthMutex.Unlock()
	h.lastCheck = time.Time{}
}

// aggregateStatus keeps the worse of two statuses.
// Priority: unhealthy > degraded > healthy
func aggregateStatus(current, componentStatus string) string {
	statusPriority := map[string]int{
		domain.HealthStatusHealthy:   0,
		domain.HealthStatusDegraded:  1,
		domain.HealthStatusUnhealthy: 2,
	}

	if statusPriority[componentStatus] > statusPriority[current] {
		return componentStatus
	}
	return current
}

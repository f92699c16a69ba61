package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/csp2hub/plugin-repository/internal/domain"
)

type stubCatalog struct {
	status string
	calls  int
}

func (s *stubCatalog) Manifest(ctx context.Context) (*domain.Manifest, error) {
	return &domain.Manifest{}, nil
}

func (s *stubCatalog) Reload(ctx context.Context) error {
	return nil
}

func (s *stubCatalog) HealthCheck(ctx context.Context) domain.HealthStatus {
	s.calls++
	return domain.HealthStatus{Status: s.status, Timestamp: time.Now()}
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		component string
		expected  string
	}{
		{domain.HealthStatusHealthy, domain.HealthStatusHealthy},
		{domain.HealthStatusDegraded, domain.HealthStatusDegraded},
		{domain.HealthStatusUnhealthy, domain.HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.component, func(t *testing.T) {
			checker := NewSystemHealthChecker(&stubCatalog{status: tt.component})

			health := checker.CheckHealth(context.Background())
			assert.Equal(t, tt.expected, health.Status)
			assert.Contains(t, health.Components, "catalog")
		})
	}
}

func TestCheckHealth_CachesResult(t *testing.T) {
	catalog := &stubCatalog{status: domain.HealthStatusHealthy}
	checker := NewSystemHealthChecker(catalog)

	checker.CheckHealth(context.Background())
	checker.CheckHealth(context.Background())
	assert.Equal(t, 1, catalog.calls)

	checker.Invalidate()
	checker.CheckHealth(context.Background())
	assert.Equal(t, 2, catalog.calls)
}

func TestAggregateStatus(t *testing.T) {
	assert.Equal(t, "degraded", aggregateStatus("healthy", "degraded"))
	assert.Equal(t, "unhealthy", aggregateStatus("degraded", "unhealthy"))
	assert.Equal(t, "unhealthy", aggregateStatus("unhealthy", "healthy"))
}

type stubReporter string

func (s stubReporter) HealthCheck(ctx context.Context) domain.HealthStatus {
	return domain.HealthStatus{Status: string(s), Timestamp: time.Now()}
}

func TestCheckHealth_RegisteredComponents(t *testing.T) {
	checker := NewSystemHealthChecker(&stubCatalog{status: domain.HealthStatusHealthy})
	assert.Equal(t, domain.HealthStatusHealthy, checker.CheckHealth(context.Background()).Status)

	checker.Register("rate_limiter", stubReporter(domain.HealthStatusDegraded))

	health := checker.CheckHealth(context.Background())
	assert.Equal(t, domain.HealthStatusDegraded, health.Status)
	assert.Contains(t, health.Components, "catalog")
	assert.Equal(t, domain.HealthStatusDegraded, health.Components["rate_limiter"].Status)
}

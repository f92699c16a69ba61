// Package middleware holds Fiber middleware shared by the catalog server.
package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/csp2hub/plugin-repository/internal/domain"
)

const (
	// DefaultClass is the bucket shared by every path without its own limit
	DefaultClass = "default"

	// DefaultMaxBuckets bounds the client table
	DefaultMaxBuckets = 10000

	idleAfter     = time.Hour
	sweepInterval = 10 * time.Minute
)

// Limit is the shape of a token bucket: Burst tokens refilled at Rate per second
type Limit struct {
	Burst int
	Rate  float64
}

// bucket is guarded by the owning RateLimiter's mutex
type bucket struct {
	limit  Limit
	tokens float64
	seen   time.Time
}

func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.seen).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(float64(b.limit.Burst), b.tokens+elapsed*b.limit.Rate)
	}
	b.seen = now
}

// retryAfter is the whole number of seconds until one token is available
func (b *bucket) retryAfter() int {
	if b.limit.Rate <= 0 {
		return int(idleAfter.Seconds())
	}
	return max(1, int(math.Ceil((1-b.tokens)/b.limit.Rate)))
}

// decision is the outcome of one request against its bucket
type decision struct {
	allowed    bool
	limit      int
	remaining  int
	retryAfter int
}

// RateLimiter throttles requests per client address. Paths listed in the
// class table get their own bucket; all other paths of a client share
// DefaultClass, so varying a path parameter never yields a fresh bucket.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	classes    map[string]Limit
	fallback   Limit
	maxBuckets int
	evictions  int
	now        func() time.Time
}

// NewRateLimiter creates a limiter allowing burst requests at once and rps
// sustained requests per second on ordinary paths
func NewRateLimiter(rps, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		classes: map[string]Limit{
			// Clients poll the manifest far more than anything else
			"/manifest.json": {Burst: burst * 2, Rate: float64(rps * 2)},
			// Each reload re-reads the file from disk
			"/v1/reload": {Burst: 2, Rate: 1},
			"/health":    {Burst: 20, Rate: 2},
		},
		fallback:   Limit{Burst: burst, Rate: float64(rps)},
		maxBuckets: DefaultMaxBuckets,
		now:        time.Now,
	}
}

// classFor maps a request path to its bucket class
func (rl *RateLimiter) classFor(path string) (string, Limit) {
	if limit, ok := rl.classes[path]; ok {
		return path, limit
	}
	return DefaultClass, rl.fallback
}

func (rl *RateLimiter) take(client, path string) decision {
	class, limit := rl.classFor(path)
	key := client + "|" + class
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		rl.makeRoom(now)
		b = &bucket{limit: limit, tokens: float64(limit.Burst), seen: now}
		rl.buckets[key] = b
	}
	b.refill(now)

	d := decision{limit: limit.Burst}
	if b.tokens >= 1 {
		b.tokens--
		d.allowed = true
		d.remaining = int(b.tokens)
		return d
	}
	d.retryAfter = b.retryAfter()
	return d
}

// makeRoom keeps the table below maxBuckets, first by dropping idle clients
// and then by evicting the least recently seen one. Callers hold rl.mu.
func (rl *RateLimiter) makeRoom(now time.Time) {
	if rl.maxBuckets <= 0 || len(rl.buckets) < rl.maxBuckets {
		return
	}
	rl.sweep(now)

	for len(rl.buckets) >= rl.maxBuckets {
		var oldestKey string
		var oldest time.Time
		for key, b := range rl.buckets {
			if oldestKey == "" || b.seen.Before(oldest) {
				oldestKey, oldest = key, b.seen
			}
		}
		delete(rl.buckets, oldestKey)
		rl.evictions++
	}
}

// sweep drops buckets idle for longer than idleAfter. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, b := range rl.buckets {
		if now.Sub(b.seen) > idleAfter {
			delete(rl.buckets, key)
		}
	}
}

// Middleware returns a Fiber handler enforcing the limits. Rejections are
// returned as RATE_LIMITED errors for the app's error handler to render.
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		d := rl.take(c.IP(), c.Path())

		c.Set("X-RateLimit-Limit", strconv.Itoa(d.limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))

		if d.allowed {
			return c.Next()
		}

		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(d.retryAfter))
		class, _ := rl.classFor(c.Path())
		return domain.NewAppError(
			domain.ErrRateLimited,
			"Rate limit exceeded",
			map[string]any{
				"bucket":      class,
				"retry_after": d.retryAfter,
			},
		).WithOperation("rate_limit")
	}
}

// StartCleanupRoutine periodically drops idle buckets until the returned
// stop function is called
func (rl *RateLimiter) StartCleanupRoutine() (stop func()) {
	ticker := time.NewTicker(sweepInterval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.mu.Lock()
				rl.sweep(rl.now())
				rl.mu.Unlock()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// HealthCheck reports the client table. A full table means clients are being
// evicted before they go idle, which is reported as degraded.
func (rl *RateLimiter) HealthCheck(ctx context.Context) domain.HealthStatus {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	status := domain.HealthStatusHealthy
	message := "Rate limiter tracking clients"
	if len(rl.buckets) >= rl.maxBuckets {
		status = domain.HealthStatusDegraded
		message = "Client table is full, evicting least recently seen clients"
	}

	return domain.HealthStatus{
		Status:  status,
		Message: message,
		Details: map[string]any{
			"active_buckets": len(rl.buckets),
			"max_buckets":    rl.maxBuckets,
			"evictions":      rl.evictions,
		},
		Timestamp: rl.now(),
	}
}

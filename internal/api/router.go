package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/csp2hub/plugin-repository/internal/domain"
	"github.com/csp2hub/plugin-repository/internal/middleware"
)

// RouterConfig contains configuration for the HTTP router
type RouterConfig struct {
	CORSOrigins    []string
	BodyLimit      int
	RateLimitRPS   int
	RateLimitBurst int
}

// RouterResult contains the configured app and cleanup function
type RouterResult struct {
	App     *fiber.App
	Cleanup func()
}

// registrar is implemented by health checkers that accept extra components
type registrar interface {
	Register(name string, r domain.HealthReporter)
}

// SetupRouter builds the catalog server. Requests pass through request ids,
// access logging, panic recovery, response headers, the optional rate
// limiter and CORS before reaching a handler. Every error, whether returned
// by a handler or raised by fiber itself, is rendered by renderError.
func SetupRouter(catalog Catalog, healthChecker domain.HealthChecker, config RouterConfig) *RouterResult {
	app := fiber.New(fiber.Config{
		BodyLimit:             config.BodyLimit,
		ErrorHandler:          renderError,
		DisableStartupMessage: true,
	})

	h := NewHandlers(catalog, healthChecker)
	cleanup := func() {}

	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: func() string { return uuid.New().String() },
	}))
	app.Use(accessLog())
	app.Use(recover.New(recover.Config{
		EnableStackTrace:  true,
		StackTraceHandler: logPanic,
	}))
	app.Use(responseHeaders())

	if config.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst)
		cleanup = limiter.StartCleanupRoutine()
		if r, ok := healthChecker.(registrar); ok {
			r.Register("rate_limiter", limiter)
		}
		app.Use(limiter.Middleware())
	}

	if len(config.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:  strings.Join(config.CORSOrigins, ","),
			AllowMethods:  "GET,POST,OPTIONS",
			AllowHeaders:  "Origin,Content-Type,Accept,If-None-Match,X-Request-ID",
			ExposeHeaders: "ETag,Retry-After,X-Request-ID",
			MaxAge:        86400,
		}))
	}

	// Polling clients revalidate with If-None-Match and get an empty 304
	// while the catalog is unchanged
	app.Get("/manifest.json", etag.New(), h.ManifestHandler)

	v1 := app.Group("/v1")
	v1.Get("/plugins", h.ListPluginsHandler)
	v1.Get("/plugins/:id", h.GetPluginHandler)
	v1.Get("/categories", h.ListCategoriesHandler)
	v1.Get("/statistics", h.StatisticsHandler)
	v1.Post("/reload", h.ReloadHandler)

	app.Get("/health", h.HealthHandler)
	app.Get("/swagger/*", swagger.HandlerDefault)

	return &RouterResult{App: app, Cleanup: cleanup}
}

// renderError writes err as an ErrorResponse. Fiber errors are translated to
// the closest domain code; anything unrecognised is logged and hidden
// behind INTERNAL_ERROR.
func renderError(c *fiber.Ctx, err error) error {
	var appErr *domain.AppError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &appErr):
	case errors.As(err, &fiberErr):
		appErr = domain.NewAppError(codeForStatus(fiberErr.Code), fiberErr.Message, nil)
	default:
		log.Error().Err(err).Str("request_id", requestIDFrom(c)).Msg("Unexpected handler error")
		appErr = domain.NewAppErrorWithCause(domain.ErrInternal, "Internal Server Error", err, nil)
	}

	status := statusFor(appErr.Code)
	if fiberErr != nil {
		status = fiberErr.Code
	}

	return c.Status(status).JSON(ErrorResponse{
		Status:  "error",
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// codeForStatus is the inverse of statusFor for statuses fiber raises itself
func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return domain.ErrNotFound
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusMethodNotAllowed:
		return domain.ErrInvalidInput
	case fiber.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return domain.ErrInternal
	}
}

// accessLog writes one line per request. Errors from further down the chain
// are rendered here first so the logged status is the one the client sees.
func accessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if renderErr := c.App().ErrorHandler(c, err); renderErr != nil {
				return renderErr
			}
		}

		status := c.Response().StatusCode()
		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}

		event.
			Str("request_id", requestIDFrom(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Int("bytes", len(c.Response().Body())).
			Msg("HTTP request processed")

		return nil
	}
}

func logPanic(c *fiber.Ctx, e any) {
	log.Error().
		Str("request_id", requestIDFrom(c)).
		Interface("panic", e).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("Panic recovered")
}

// responseHeaders sets headers shared by every JSON response. The catalog is
// public data fetched cross-origin by plugin managers.
func responseHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set(fiber.HeaderXFrameOptions, "DENY")
		c.Set(fiber.HeaderReferrerPolicy, "no-referrer")
		c.Set("Cross-Origin-Resource-Policy", "cross-origin")
		return c.Next()
	}
}

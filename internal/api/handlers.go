package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/csp2hub/plugin-repository/internal/domain"
	"github.com/csp2hub/plugin-repository/internal/storage"
)

// Catalog is the read side of the catalog store used by the handlers
type Catalog interface {
	domain.CatalogRepository
	Plugins(ctx context.Context, filter storage.PluginFilter) ([]domain.PluginEntry, error)
	Plugin(ctx context.Context, id string) (*domain.PluginEntry, error)
}

// invalidator is implemented by health checkers that cache their result
type invalidator interface {
	Invalidate()
}

// Handlers contains all HTTP handlers for the catalog server
type Handlers struct {
	catalog       Catalog
	healthChecker domain.HealthChecker
}

// NewHandlers creates a new instance of API handlers
func NewHandlers(catalog Catalog, healthChecker domain.HealthChecker) *Handlers {
	return &Handlers{
		catalog:       catalog,
		healthChecker: healthChecker,
	}
}

// ErrorResponse represents the standard error response format
// @Description Standard error response format
type ErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Code    string `json:"code" example:"NOT_FOUND"`
	Message string `json:"message" example:"plugin not found"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse represents the standard success response format
// @Description Standard success response format
type SuccessResponse struct {
	Status string `json:"status" example:"success"`
	Data   any    `json:"data"`
}

// PluginListResponse represents the response for listing plugins
// @Description Response containing a filtered list of plugins
type PluginListResponse struct {
	Plugins []domain.PluginEntry `json:"plugins"`
	Count   int                  `json:"count" example:"5"`
}

// CategoryCount is a category together with the number of published plugins in it
// @Description Category with its plugin count
type CategoryCount struct {
	domain.Category
	Plugins int `json:"plugins" example:"3"`
}

// CategoryListResponse represents the response for listing categories
// @Description Response containing the category list
type CategoryListResponse struct {
	Categories []CategoryCount `json:"categories"`
}

// StatisticsResponse represents the catalog statistics response
// @Description Catalog statistics
type StatisticsResponse struct {
	Statistics     domain.Statistics `json:"statistics"`
	Version        string            `json:"version" example:"2.0"`
	LastUpdated    string            `json:"lastUpdated" example:"2025-01-01T12:00:00Z"`
	UpdateInterval int               `json:"updateInterval" example:"3600"`
}

// ReloadResponse represents the response after reloading the catalog
// @Description Result of a catalog reload
type ReloadResponse struct {
	Plugins     int    `json:"plugins" example:"12"`
	LastUpdated string `json:"lastUpdated" example:"2025-01-01T12:00:00Z"`
}

// HealthResponse represents the health check response
// @Description Health check response
type HealthResponse struct {
	Status     string                         `json:"status" example:"healthy"`
	Timestamp  string                         `json:"timestamp" example:"2023-01-01T12:00:00Z"`
	Components map[string]domain.HealthStatus `json:"components"`
	Uptime     time.Duration                  `json:"uptime" swaggertype:"integer"`
}

// ManifestHandler handles GET /manifest.json requests
// @Summary      Published manifest
// @Description  Returns the persisted catalog exactly as clients consume it
// @Tags         Catalog
// @Produce      json
// @Param        If-None-Match header string false "ETag from a previous response"
// @Success      200 {object} domain.Manifest "Current manifest"
// @Success      304 "Manifest unchanged"
// @Failure      503 {object} ErrorResponse "Catalog not loaded"
// @Router       /manifest.json [get]
func (h *Handlers) ManifestHandler(c *fiber.Ctx) error {
	m, err := h.catalog.Manifest(c.Context())
	if err != nil {
		return renderError(c, err)
	}

	c.Set(fiber.HeaderCacheControl, "public, max-age="+strconv.Itoa(maxAge(m)))
	if updated, err := time.Parse(time.RFC3339, m.LastUpdated); err == nil {
		c.Set(fiber.HeaderLastModified, updated.UTC().Format(http.TimeFormat))
	}
	return c.Status(fiber.StatusOK).JSON(m)
}

// ListPluginsHandler handles GET /v1/plugins requests
// @Summary      List plugins
// @Description  Lists published plugins in catalog order, optionally filtered
// @Tags         Plugins
// @Produce      json
// @Param        category query string false "Category id"
// @Param        featured query bool   false "Only featured (true) or non-featured (false) plugins"
// @Param        q        query string false "Case-insensitive search over id, name, descriptions and tags"
// @Success      200 {object} SuccessResponse{data=PluginListResponse} "Matching plugins"
// @Failure      400 {object} ErrorResponse "Invalid filter"
// @Failure      503 {object} ErrorResponse "Catalog not loaded"
// @Router       /v1/plugins [get]
func (h *Handlers) ListPluginsHandler(c *fiber.Ctx) error {
	filter := storage.PluginFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}

	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return renderError(c, domain.NewAppError(
				domain.ErrInvalidInput,
				"featured must be a boolean",
				map[string]any{"featured": raw},
			))
		}
		filter.Featured = &featured
	}

	plugins, err := h.catalog.Plugins(c.Context(), filter)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data: PluginListResponse{
			Plugins: plugins,
			Count:   len(plugins),
		},
	})
}

// GetPluginHandler handles GET /v1/plugins/:id requests
// @Summary      Get plugin
// @Description  Returns a single published plugin by id
// @Tags         Plugins
// @Produce      json
// @Param        id path string true "Plugin id"
// @Success      200 {object} SuccessResponse{data=object{plugin=domain.PluginEntry}} "Plugin found"
// @Failure      404 {object} ErrorResponse "Plugin not found"
// @Failure      503 {object} ErrorResponse "Catalog not loaded"
// @Router       /v1/plugins/{id} [get]
func (h *Handlers) GetPluginHandler(c *fiber.Ctx) error {
	entry, err := h.catalog.Plugin(c.Context(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data: map[string]any{
			"plugin": entry,
		},
	})
}

// ListCategoriesHandler handles GET /v1/categories requests
// @Summary      List categories
// @Description  Returns the category list with the number of published plugins in each
// @Tags         Catalog
// @Produce      json
// @Success      200 {object} SuccessResponse{data=CategoryListResponse} "Categories"
// @Failure      503 {object} ErrorResponse "Catalog not loaded"
// @Router       /v1/categories [get]
func (h *Handlers) ListCategoriesHandler(c *fiber.Ctx) error {
	m, err := h.catalog.Manifest(c.Context())
	if err != nil {
		return renderError(c, err)
	}

	counts := make(map[string]int, len(m.Categories))
	for _, p := range m.Plugins {
		counts[p.Category]++
	}

	categories := make([]CategoryCount, 0, len(m.Categories))
	for _, cat := range m.Categories {
		categories = append(categories, CategoryCount{Category: cat, Plugins: counts[cat.ID]})
	}

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data:   CategoryListResponse{Categories: categories},
	})
}

// StatisticsHandler handles GET /v1/statistics requests
// @Summary      Catalog statistics
// @Description  Returns aggregate counts and freshness information for the catalog
// @Tags         Catalog
// @Produce      json
// @Success      200 {object} SuccessResponse{data=StatisticsResponse} "Statistics"
// @Failure      503 {object} ErrorResponse "Catalog not loaded"
// @Router       /v1/statistics [get]
func (h *Handlers) StatisticsHandler(c *fiber.Ctx) error {
	m, err := h.catalog.Manifest(c.Context())
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data: StatisticsResponse{
			Statistics:     m.Statistics,
			Version:        m.Version,
			LastUpdated:    m.LastUpdated,
			UpdateInterval: m.UpdateInterval,
		},
	})
}

// ReloadHandler handles POST /v1/reload requests
// @Summary      Reload catalog
// @Description  Re-reads the manifest from disk. On failure the previous catalog stays in service.
// @Tags         System
// @Produce      json
// @Success      200 {object} SuccessResponse{data=ReloadResponse} "Catalog reloaded"
// @Failure      400 {object} ErrorResponse "Manifest is not valid JSON"
// @Failure      503 {object} ErrorResponse "Manifest file missing"
// @Router       /v1/reload [post]
func (h *Handlers) ReloadHandler(c *fiber.Ctx) error {
	ctx := c.Context()
	requestID := requestIDFrom(c)

	err := h.catalog.Reload(ctx)
	if inv, ok := h.healthChecker.(invalidator); ok {
		inv.Invalidate()
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", requestID).
			Msg("Failed to reload catalog")
		return renderError(c, err)
	}

	m, err := h.catalog.Manifest(ctx)
	if err != nil {
		return renderError(c, err)
	}

	log.Info().
		Str("request_id", requestID).
		Int("plugins", len(m.Plugins)).
		Msg("Catalog reloaded")

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data: ReloadResponse{
			Plugins:     len(m.Plugins),
			LastUpdated: m.LastUpdated,
		},
	})
}

// HealthHandler handles GET /health requests
// @Summary      Health check
// @Description  Returns the health status of the service. Degraded still answers 200.
// @Tags         System
// @Produce      json
// @Success      200 {object} HealthResponse "Service is healthy or degraded"
// @Failure      503 {object} HealthResponse "Service is unhealthy"
// @Router       /health [get]
func (h *Handlers) HealthHandler(c *fiber.Ctx) error {
	health := h.healthChecker.CheckHealth(c.Context())

	status := fiber.StatusOK
	if health.Status == domain.HealthStatusUnhealthy {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(HealthResponse{
		Status:     health.Status,
		Timestamp:  health.Timestamp.Format(time.RFC3339),
		Components: health.Components,
		Uptime:     health.Uptime,
	})
}

// statusFor maps an error code to its HTTP status
func statusFor(code string) int {
	switch code {
	case domain.ErrInvalidInput:
		return fiber.StatusBadRequest
	case domain.ErrValidationFailed:
		return fiber.StatusUnprocessableEntity
	case domain.ErrNotFound:
		return fiber.StatusNotFound
	case domain.ErrRateLimited:
		return fiber.StatusTooManyRequests
	case domain.ErrResourceMissing:
		return fiber.StatusServiceUnavailable
	case domain.ErrUpstreamUnavailable:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func requestIDFrom(c *fiber.Ctx) string {
	if rid, ok := c.Locals("requestid").(string); ok {
		return rid
	}
	return ""
}

func maxAge(m *domain.Manifest) int {
	if m.UpdateInterval > 0 {
		return m.UpdateInterval
	}
	return domain.DefaultUpdateInterval
}

package handler

import (
	"errors"
	"net/http"

	"returns-portal/internal/core/logger"
	"returns-portal/internal/features/settings/domain"
	"returns-portal/internal/features/settings/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DefaultTenant is used when no X-Tenant-ID header is provided.
const DefaultTenant = "default"

// SettingsHandler handles HTTP requests for tenant settings.
type SettingsHandler struct {
	service ports.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(service ports.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		service: service,
	}
}

// GetSettings handles GET /settings.
// @Summary Get tenant settings
// @Description Returns the tenant's returns configuration, defaults when none saved.
// @Tags Settings
// @Produce json
// @Param X-Tenant-ID header string false "Tenant identifier"
// @Success 200 {object} domain.TenantSettings
// @Failure 500 {object} map[string]string
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	tenantID := c.Get("X-Tenant-ID", DefaultTenant)

	settings, err := h.service.Get(c.Context(), tenantID)
	if err != nil {
		logger.Get().Error("Failed to get settings", zap.String("tenant_id", tenantID), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load settings",
		})
	}

	return c.Status(http.StatusOK).JSON(settings)
}

// UpdateSettings handles PUT /settings.
// @Summary Update tenant settings
// @Description Validates and persists the tenant's returns configuration.
// @Tags Settings
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string false "Tenant identifier"
// @Param settings body domain.TenantSettings true "Settings"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /settings [put]
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	tenantID := c.Get("X-Tenant-ID", DefaultTenant)

	var settings domain.TenantSettings
	if err := c.BodyParser(&settings); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	settings.TenantID = tenantID

	if err := h.service.Update(c.Context(), &settings); err != nil {
		if errors.Is(err, domain.ErrInvalidReturnWindow) || errors.Is(err, domain.ErrInvalidThreshold) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		logger.Get().Error("Failed to update settings", zap.String("tenant_id", tenantID), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save settings",
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Settings updated",
	})
}

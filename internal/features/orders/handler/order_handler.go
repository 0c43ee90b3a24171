package handler

import (
	"errors"
	"strings"

	"returns-portal/internal/core/logger"
	"returns-portal/internal/core/ratelimit"
	"returns-portal/internal/features/orders/domain"
	"returns-portal/internal/features/orders/service"
	settingsports "returns-portal/internal/features/settings/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DefaultTenant is used when no X-Tenant-ID header is provided.
const DefaultTenant = "default"

// OrderHandler handles HTTP requests for order lookup.
type OrderHandler struct {
	orders   *service.OrderService
	settings settingsports.SettingsService
	limiter  *ratelimit.FixedWindowLimiter
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *service.OrderService, settings settingsports.SettingsService, limiter *ratelimit.FixedWindowLimiter) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		settings: settings,
		limiter:  limiter,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// Code is a stable machine-readable error identifier.
	Code string `json:"code"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// LookupResponse pairs the order with its eligibility partition.
type LookupResponse struct {
	// Order is the matched order.
	Order *domain.Order `json:"order"`
	// Eligibility partitions the order's items into returnable and not.
	Eligibility *domain.EligibilityResult `json:"eligibility"`
}

// GetOrder godoc
// @Summary Look up an order for the returns portal
// @Description Fetches the order, verifies the customer email, and partitions its line items by return eligibility
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Param email query string true "Customer email on the order"
// @Param X-Tenant-ID header string false "Tenant identifier"
// @Success 200 {object} LookupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	tenantID := c.Get("X-Tenant-ID", DefaultTenant)

	if !h.limiter.Allow(clientKey(c)) {
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
			Message: "too many lookups, try again later",
			Code:    "rate_limited",
			RayID:   c.Locals("requestid").(string),
		})
	}

	orderID := c.Params("id")
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "email query parameter is required",
			Code:    "validation_error",
			RayID:   c.Locals("requestid").(string),
		})
	}

	settings, err := h.settings.Get(c.Context(), tenantID)
	if err != nil {
		logger.Get().Error("Failed to load settings for lookup",
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to load tenant settings",
			Code:    "internal_error",
			RayID:   c.Locals("requestid").(string),
		})
	}

	order, eligibility, err := h.orders.Lookup(c.Context(), orderID, email, settings.ReturnWindowDays)
	if err != nil {
		return h.lookupError(c, err)
	}

	return c.JSON(LookupResponse{Order: order, Eligibility: eligibility})
}

// lookupError maps lookup failures onto HTTP statuses and stable codes.
func (h *OrderHandler) lookupError(c *fiber.Ctx, err error) error {
	rayID := c.Locals("requestid").(string)

	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Message: "order not found",
			Code:    "order_not_found",
			RayID:   rayID,
		})
	case errors.Is(err, service.ErrEmailMismatch):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Message: "email does not match order record",
			Code:    "email_mismatch",
			RayID:   rayID,
		})
	}

	var ineligible *domain.OrderIneligibleError
	if errors.As(err, &ineligible) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: ineligible.Error(),
			Code:    "order_not_eligible",
			RayID:   rayID,
		})
	}

	logger.Get().Error("Order lookup failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Message: "order lookup failed",
		Code:    "internal_error",
		RayID:   rayID,
	})
}

// clientKey picks the rate-limiting key for the request: the first entry of
// X-Forwarded-For when present, otherwise the connection address.
func clientKey(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.IP()
}

package handler

import (
	"errors"
	"strings"

	"returns-portal/internal/core/logger"
	"returns-portal/internal/core/ratelimit"
	orderports "returns-portal/internal/features/orders/ports"
	"returns-portal/internal/features/returns/domain"
	"returns-portal/internal/features/returns/ports"
	"returns-portal/internal/features/returns/service"
	settingsports "returns-portal/internal/features/settings/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DefaultTenant is used when no X-Tenant-ID header is provided.
const DefaultTenant = "default"

// ReturnHandler handles HTTP requests for return submissions.
type ReturnHandler struct {
	submissions *service.SubmissionService
	settings    settingsports.SettingsService
	limiter     *ratelimit.FixedWindowLimiter
}

// NewReturnHandler creates a new ReturnHandler.
func NewReturnHandler(submissions *service.SubmissionService, settings settingsports.SettingsService, limiter *ratelimit.FixedWindowLimiter) *ReturnHandler {
	return &ReturnHandler{
		submissions: submissions,
		settings:    settings,
		limiter:     limiter,
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

// SubmitRequest is the POST /returns request body.
type SubmitRequest struct {
	// Items are the requested returns and exchanges, all for one order.
	Items []domain.SubmissionItem `json:"items"`
}

// SubmitReturn godoc
// @Summary Submit a batch of returns and exchanges
// @Description Validates the batch, scores it for fraud, and runs the per-item return or exchange workflow against the store platform
// @Tags returns
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string false "Tenant identifier"
// @Param request body SubmitRequest true "Items to return or exchange"
// @Success 200 {object} domain.SubmissionResult "All items succeeded"
// @Success 207 {object} domain.SubmissionResult "Some items failed"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /returns [post]
func (h *ReturnHandler) SubmitReturn(c *fiber.Ctx) error {
	tenantID := c.Get("X-Tenant-ID", DefaultTenant)

	if !h.limiter.Allow(clientKey(c)) {
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
			Message: "too many submissions, try again later",
			Code:    "rate_limited",
			RayID:   c.Locals("requestid").(string),
		})
	}

	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			Code:    "validation_error",
			RayID:   c.Locals("requestid").(string),
		})
	}

	settings, err := h.settings.Get(c.Context(), tenantID)
	if err != nil {
		logger.Get().Error("Failed to load settings for submission",
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to load tenant settings",
			Code:    "internal_error",
			RayID:   c.Locals("requestid").(string),
		})
	}

	result, err := h.submissions.Submit(c.Context(), tenantID, settings, req.Items)
	if err != nil {
		return h.submitError(c, err)
	}

	status := fiber.StatusOK
	if !result.AllSucceeded() {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(result)
}

// submitError maps submission failures onto HTTP statuses and stable codes.
func (h *ReturnHandler) submitError(c *fiber.Ctx, err error) error {
	rayID := c.Locals("requestid").(string)

	switch {
	case errors.Is(err, domain.ErrEmptyBatch),
		errors.Is(err, domain.ErrBatchTooLarge),
		errors.Is(err, domain.ErrInvalidItem):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: err.Error(),
			Code:    "validation_error",
			RayID:   rayID,
		})
	case errors.Is(err, domain.ErrCrossOrderBatch):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Message: err.Error(),
			Code:    "validation_error",
			RayID:   rayID,
		})
	case errors.Is(err, service.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Message: "order not found",
			Code:    "order_not_found",
			RayID:   rayID,
		})
	case errors.Is(err, service.ErrManualReviewRequired):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Message: "submission flagged for manual review",
			Code:    "manual_review",
			RayID:   rayID,
		})
	}

	var platformErr *ports.PlatformError
	if errors.As(err, &platformErr) {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Message: platformErr.Error(),
			Code:    "upstream_error",
			RayID:   rayID,
		})
	}

	var upstreamErr *orderports.UpstreamError
	if errors.As(err, &upstreamErr) {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Message: "commerce platform unavailable",
			Code:    "upstream_error",
			RayID:   rayID,
		})
	}

	logger.Get().Error("Submission failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Message: "submission failed",
		Code:    "internal_error",
		RayID:   rayID,
	})
}

// ListReturns godoc
// @Summary List return requests
// @Description Lists the tenant's return requests, newest first
// @Tags returns
// @Produce json
// @Param X-Tenant-ID header string false "Tenant identifier"
// @Success 200 {array} domain.ReturnRequest
// @Failure 500 {object} ErrorResponse
// @Router /returns [get]
func (h *ReturnHandler) ListReturns(c *fiber.Ctx) error {
	tenantID := c.Get("X-Tenant-ID", DefaultTenant)

	requests, err := h.submissions.ListReturnRequests(c.Context(), tenantID)
	if err != nil {
		logger.Get().Error("Failed to list return requests",
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to list return requests",
			Code:    "internal_error",
			RayID:   c.Locals("requestid").(string),
		})
	}

	return c.JSON(requests)
}

// GetReturn godoc
// @Summary Get one return request
// @Description Retrieves a single return request by its record id
// @Tags returns
// @Produce json
// @Param id path string true "Return request ID"
// @Param X-Tenant-ID header string false "Tenant identifier"
// @Success 200 {object} domain.ReturnRequest
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /returns/{id} [get]
func (h *ReturnHandler) GetReturn(c *fiber.Ctx) error {
	tenantID := c.Get("X-Tenant-ID", DefaultTenant)
	id := c.Params("id")

	request, err := h.submissions.GetReturnRequest(c.Context(), tenantID, id)
	if err != nil {
		logger.Get().Error("Failed to get return request",
			zap.String("tenant_id", tenantID),
			zap.String("id", id),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: "failed to get return request",
			Code:    "internal_error",
			RayID:   c.Locals("requestid").(string),
		})
	}
	if request == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Message: "return request not found",
			Code:    "not_found",
			RayID:   c.Locals("requestid").(string),
		})
	}

	return c.JSON(request)
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

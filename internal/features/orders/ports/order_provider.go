package ports

import (
	"context"
	"errors"
	"fmt"

	"returns-portal/internal/features/orders/domain"
)

// ErrNotFound is returned by providers when the order does not exist.
var ErrNotFound = errors.New("order not found")

// UpstreamError is returned by providers when the commerce platform fails
// for any reason other than the order being absent.
type UpstreamError struct {
	// StatusCode is the HTTP status the platform answered with, 0 when the
	// request never completed.
	StatusCode int
	// Message describes the failure.
	Message string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
	}
	return "upstream error: " + e.Message
}

// OrderProvider defines the interface for retrieving external order information.
// This is a Secondary Port (Driven Port).
type OrderProvider interface {
	// GetOrder retrieves an order by its platform identifier, including line
	// items, fulfillments and refunds. Returns ErrNotFound when absent.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// HealthCheck verifies the platform API is reachable and credentials are valid.
	HealthCheck(ctx context.Context) error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"returns-portal/internal/features/orders/domain"
	"returns-portal/internal/features/orders/ports"
)

// ErrOrderNotFound is returned when the order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// ErrEmailMismatch is returned when the provided email does not match the order's email.
var ErrEmailMismatch = errors.New("email does not match order record")

// OrderService handles the business logic for looking up orders and
// evaluating which of their items may be returned.
type OrderService struct {
	// provider is the interface for fetching order data from the commerce platform.
	provider ports.OrderProvider
	// now is replaceable for tests.
	now func() time.Time
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(provider ports.OrderProvider) *OrderService {
	return &OrderService{
		provider: provider,
		now:      time.Now,
	}
}

// Lookup retrieves an order by ID, validates that the provided email matches
// the order's email, and partitions its line items by return eligibility
// using the tenant's return window.
func (s *OrderService) Lookup(ctx context.Context, orderID, email string, returnWindowDays int) (*domain.Order, *domain.EligibilityResult, error) {
	order, err := s.provider.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, nil, ErrOrderNotFound
		}
		return nil, nil, fmt.Errorf("failed to fetch order: %w", err)
	}

	if order == nil {
		return nil, nil, ErrOrderNotFound
	}

	if !strings.EqualFold(strings.TrimSpace(order.Email), strings.TrimSpace(email)) {
		return nil, nil, ErrEmailMismatch
	}

	eligibility, err := domain.Evaluate(order, returnWindowDays, s.now())
	if err != nil {
		return nil, nil, err
	}

	return order, eligibility, nil
}

package ports

import (
	"context"
	"strings"
	"time"

	"returns-portal/internal/features/returns/domain"
)

// PlatformError carries the structured error list returned by the commerce
// platform's mutation API.
type PlatformError struct {
	// Errors are the platform's error messages.
	Errors []string
}

func (e *PlatformError) Error() string {
	return "platform error: " + strings.Join(e.Errors, "; ")
}

// ReturnPlatform defines the mutation surface of the commerce platform used
// by the return and exchange workflows. This is a Secondary Port (Driven Port).
type ReturnPlatform interface {
	// RequestReturn opens a return for the given fulfillment line item handle
	// and quantity, returning the platform's return identifier.
	RequestReturn(ctx context.Context, orderID, fulfillmentLineItemID string, quantity int, reason string) (string, error)

	// ApproveReturn approves a previously requested return.
	ApproveReturn(ctx context.Context, returnID string) error

	// CreateExchangeOrder creates a zero-discounted draft order for the
	// replacement variant and returns the draft order identifier.
	CreateExchangeOrder(ctx context.Context, variantID string, quantity int) (string, error)

	// CompleteExchangeOrder completes the draft order, turning it into a real
	// order, and returns the new order's identifier.
	CompleteExchangeOrder(ctx context.Context, draftOrderID string) (string, error)

	// AnnotateOrder replaces the order's note text.
	AnnotateOrder(ctx context.Context, orderID, note string) error

	// UpdateOrderTags replaces the order's tag list.
	UpdateOrderTags(ctx context.Context, orderID string, tags []string) error
}

// ReturnRepository defines the secondary port for return request audit storage.
type ReturnRepository interface {
	// Save persists the audit record.
	Save(ctx context.Context, request *domain.ReturnRequest) error

	// Get returns the record, or nil when it does not exist.
	Get(ctx context.Context, tenantID, id string) (*domain.ReturnRequest, error)

	// ListByTenant returns the tenant's records, newest first.
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.ReturnRequest, error)

	// CountByCustomerSince returns how many requests the customer has
	// submitted for the tenant since the given time.
	CountByCustomerSince(ctx context.Context, tenantID, email string, since time.Time) (int, error)
}

// ReturnHistory is the narrow view of the repository the fraud scorer needs.
type ReturnHistory interface {
	CountByCustomerSince(ctx context.Context, tenantID, email string, since time.Time) (int, error)
}

package domain

import (
	"errors"
	"fmt"
)

// MaxBatchSize bounds a single submission to block abuse via oversized batches.
const MaxBatchSize = 20

// ReturnOption is the customer's chosen resolution for an item.
type ReturnOption string

const (
	// OptionReturn requests a plain return and refund.
	OptionReturn ReturnOption = "return"
	// OptionExchange requests a replacement variant instead of a refund.
	OptionExchange ReturnOption = "exchange"
)

var (
	// ErrEmptyBatch is returned when the submission contains no items.
	ErrEmptyBatch = errors.New("submission contains no items")
	// ErrBatchTooLarge is returned when the submission exceeds MaxBatchSize.
	ErrBatchTooLarge = fmt.Errorf("submission exceeds the maximum of %d items", MaxBatchSize)
	// ErrCrossOrderBatch is returned when items reference different orders.
	ErrCrossOrderBatch = errors.New("all items in a submission must belong to the same order")
	// ErrInvalidItem wraps per-item structural validation failures.
	ErrInvalidItem = errors.New("invalid submission item")
)

// SubmissionItem is one requested return or exchange within a batch.
type SubmissionItem struct {
	// LineItemID identifies the order line item being returned.
	LineItemID string `json:"line_item_id"`
	// OrderID is the parent order. Every item in a batch must share it.
	OrderID string `json:"order_id"`
	// Option is the chosen resolution: return or exchange.
	Option ReturnOption `json:"option"`
	// Quantity is the number of units to return.
	Quantity int `json:"quantity"`
	// ExchangeVariantID is the replacement variant, required for exchanges.
	ExchangeVariantID string `json:"exchange_variant_id,omitempty"`
}

// ValidateBatch checks the structural and single-order invariants of a
// submission. It runs before any external call, so a failure here guarantees
// no side effects have occurred.
func ValidateBatch(items []SubmissionItem) error {
	if len(items) == 0 {
		return ErrEmptyBatch
	}
	if len(items) > MaxBatchSize {
		return ErrBatchTooLarge
	}

	orderID := items[0].OrderID

	for i, item := range items {
		if item.LineItemID == "" {
			return fmt.Errorf("item %d: missing line item id: %w", i, ErrInvalidItem)
		}
		if item.OrderID == "" {
			return fmt.Errorf("item %d: missing order id: %w", i, ErrInvalidItem)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive: %w", i, ErrInvalidItem)
		}
		switch item.Option {
		case OptionReturn:
		case OptionExchange:
			if item.ExchangeVariantID == "" {
				return fmt.Errorf("item %d: exchange requires a variant id: %w", i, ErrInvalidItem)
			}
		default:
			return fmt.Errorf("item %d: option must be %q or %q: %w", i, OptionReturn, OptionExchange, ErrInvalidItem)
		}

		if item.OrderID != orderID {
			return ErrCrossOrderBatch
		}
	}

	return nil
}

// Deduplicate returns the batch with repeated line item IDs removed, keeping
// only the first occurrence of each and preserving order.
func Deduplicate(items []SubmissionItem) []SubmissionItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]SubmissionItem, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.LineItemID]; ok {
			continue
		}
		seen[item.LineItemID] = struct{}{}
		out = append(out, item)
	}
	return out
}

// FraudAssessment is the outcome of fraud scoring for one submission attempt.
type FraudAssessment struct {
	// RiskScore is the additive weighted score across triggered indicators.
	// It is reported for analytics; the high-risk decision uses the
	// indicator count, not the score.
	RiskScore int `json:"risk_score"`
	// IsHighRisk marks the submission for mandatory review when the number
	// of triggered indicators reaches the tenant's threshold.
	IsHighRisk bool `json:"is_high_risk"`
	// RiskFactors lists the triggered indicators in evaluation order.
	RiskFactors []string `json:"risk_factors"`
}

// SubmissionStatus is the aggregate outcome of a batch.
type SubmissionStatus string

const (
	// StatusCompleted means every item's workflow succeeded.
	StatusCompleted SubmissionStatus = "completed"
	// StatusPartial means at least one item failed while others succeeded.
	StatusPartial SubmissionStatus = "partial"
	// StatusManualReview means the batch was held for fraud review before
	// any item was processed.
	StatusManualReview SubmissionStatus = "manual_review"
)

// ItemResult is the per-item outcome within a submission.
type ItemResult struct {
	// LineItemID identifies the item this result belongs to.
	LineItemID string `json:"line_item_id"`
	// Option is the resolution that was attempted.
	Option ReturnOption `json:"option"`
	// Success reports whether the item's workflow completed.
	Success bool `json:"success"`
	// ReturnID is the platform return identifier on success.
	ReturnID string `json:"return_id,omitempty"`
	// ExchangeOrderID is the replacement order identifier for exchanges.
	ExchangeOrderID string `json:"exchange_order_id,omitempty"`
	// Error describes the failure for unsuccessful items.
	Error string `json:"error,omitempty"`
}

// SubmissionResult aggregates the outcome of one batch submission.
type SubmissionResult struct {
	// OrderID is the parent order of the batch.
	OrderID string `json:"order_id"`
	// Status is completed when all items succeeded, partial otherwise.
	Status SubmissionStatus `json:"status"`
	// Items holds the per-item outcomes in processing order.
	Items []ItemResult `json:"items"`
	// Fraud is the assessment computed for this submission attempt.
	Fraud FraudAssessment `json:"fraud"`
}

// AllSucceeded reports whether every item in the result succeeded.
func (r *SubmissionResult) AllSucceeded() bool {
	for _, item := range r.Items {
		if !item.Success {
			return false
		}
	}
	return true
}

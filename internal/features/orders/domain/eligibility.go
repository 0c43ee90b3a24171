package domain

import (
	"fmt"
	"strings"
	"time"
)

// Ineligibility reasons surfaced to the customer. Per-item rules are checked
// in a fixed precedence order and the first match wins.
const (
	ReasonNotFulfilled     = "not fulfilled"
	ReasonAlreadyRefunded  = "already refunded"
	ReasonOutsideWindow    = "outside return window"
	ReasonFinalSale        = "final sale item"
	ReasonGift             = "gift item"
	ReasonReturnInProgress = "return already in progress"
)

// financial statuses that allow returns.
var returnableFinancialStatuses = map[string]struct{}{
	"paid":               {},
	"partially_refunded": {},
	"partially_paid":     {},
}

// order tags that block returns entirely.
var blockingTags = []string{"final-sale", "no-returns", "no-return"}

// OrderIneligibleError is returned when an order-level rule rejects the whole
// order before any per-item evaluation.
type OrderIneligibleError struct {
	// Reason is the human-readable rejection reason.
	Reason string
}

func (e *OrderIneligibleError) Error() string {
	return fmt.Sprintf("order not eligible for returns: %s", e.Reason)
}

// IneligibleItem pairs a line item with the reason it cannot be returned.
type IneligibleItem struct {
	LineItem
	// Reason explains why the item is not returnable.
	Reason string `json:"reason"`
}

// EligibilityResult partitions an order's line items into returnable and
// non-returnable sets. Every line item appears in exactly one of the two.
type EligibilityResult struct {
	// Eligible are the items the customer may return or exchange.
	Eligible []LineItem `json:"eligible"`
	// Ineligible are the items that cannot be returned, each with a reason.
	Ineligible []IneligibleItem `json:"ineligible"`
}

// Evaluate partitions the order's line items into eligible and ineligible
// sets. It is a pure function of the order, the tenant's return window and
// the reference time, so repeated evaluation yields identical results.
//
// Order-level gates run first; when one fails the whole order is rejected
// with an OrderIneligibleError and no item breakdown is produced.
func Evaluate(order *Order, returnWindowDays int, now time.Time) (*EligibilityResult, error) {
	if _, ok := returnableFinancialStatuses[order.FinancialStatus]; !ok {
		return nil, &OrderIneligibleError{Reason: "order is not paid"}
	}

	if order.CancelledAt != nil {
		return nil, &OrderIneligibleError{Reason: "order was cancelled"}
	}

	for _, tag := range blockingTags {
		if order.HasTag(tag) {
			return nil, &OrderIneligibleError{Reason: "order is marked as non-returnable"}
		}
	}

	windowStart := now.AddDate(0, 0, -returnWindowDays)
	refunded := order.RefundedLineItemIDs()

	result := &EligibilityResult{}

	for _, item := range order.LineItems {
		if reason := itemIneligibilityReason(order, item, refunded, windowStart); reason != "" {
			result.Ineligible = append(result.Ineligible, IneligibleItem{LineItem: item, Reason: reason})
			continue
		}
		result.Eligible = append(result.Eligible, item)
	}

	return result, nil
}

// itemIneligibilityReason returns the first matching rejection reason for the
// item, or "" when the item is eligible. The precedence order is fixed:
// fulfillment missing > already refunded > outside window > final sale >
// gift > return in progress.
func itemIneligibilityReason(order *Order, item LineItem, refunded map[string]struct{}, windowStart time.Time) string {
	fulfillment := order.FulfillmentFor(item.ID)
	if fulfillment == nil {
		return ReasonNotFulfilled
	}

	if _, ok := refunded[item.ID]; ok {
		return ReasonAlreadyRefunded
	}

	// A fulfillment created exactly at the window boundary is still in window.
	if fulfillment.CreatedAt.Before(windowStart) {
		return ReasonOutsideWindow
	}

	if hasFlagProperty(item.Properties, "final sale", "final_sale", "final-sale", "_final_sale") {
		return ReasonFinalSale
	}

	if hasFlagProperty(item.Properties, "gift", "is_gift", "_gift") {
		return ReasonGift
	}

	if hasProperty(item.Properties, "retorno en progreso", "devolución en curso", "devolucion en curso", "return_in_progress", "return-in-progress") {
		return ReasonReturnInProgress
	}

	return ""
}

// hasFlagProperty reports whether any property matches one of the names and
// carries a truthy value. Names and values are compared case-insensitively
// with surrounding whitespace ignored.
func hasFlagProperty(props []Property, names ...string) bool {
	for _, p := range props {
		if !matchesName(p.Name, names) {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(p.Value)) {
		case "yes", "true", "1", "si", "sí":
			return true
		}
	}
	return false
}

// hasProperty reports whether any property matches one of the names,
// regardless of value.
func hasProperty(props []Property, names ...string) bool {
	for _, p := range props {
		if matchesName(p.Name, names) {
			return true
		}
	}
	return false
}

func matchesName(name string, candidates []string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range candidates {
		if name == c {
			return true
		}
	}
	return false
}

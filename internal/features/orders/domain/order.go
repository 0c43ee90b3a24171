package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a customer order fetched from the commerce platform.
// Adapters normalize the platform's wire shapes into this canonical form
// before it reaches any business logic.
type Order struct {
	// ID is the unique identifier for the order.
	ID string `json:"order_id"`
	// Name is the customer-facing order number (e.g., #1001).
	Name string `json:"name"`
	// FinancialStatus is the payment state (paid, partially_paid, refunded, voided, ...).
	FinancialStatus string `json:"financial_status"`
	// CancelledAt is the cancellation timestamp, nil when the order is active.
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	// Tags are the merchant-assigned order tags.
	Tags []string `json:"tags"`
	// Note is the free-form merchant note on the order.
	Note string `json:"note,omitempty"`
	// Email is the contact email for the customer.
	Email string `json:"email"`
	// CustomerCreatedAt is when the customer account was created, nil for guest checkouts.
	CustomerCreatedAt *time.Time `json:"customer_created_at,omitempty"`
	// ShippingAddress is the order's shipping destination.
	ShippingAddress Address `json:"shipping_address"`
	// BillingAddress is the order's billing address.
	BillingAddress Address `json:"billing_address"`
	// TotalPrice is the order total.
	TotalPrice decimal.Decimal `json:"total_price"`
	// CreatedAt is when the order was placed.
	CreatedAt time.Time `json:"created_at"`
	// LineItems contains the purchased products.
	LineItems []LineItem `json:"line_items"`
	// Fulfillments contains the shipment records for the order.
	Fulfillments []Fulfillment `json:"fulfillments"`
	// Refunds contains the refunds already issued against the order.
	Refunds []Refund `json:"refunds"`
}

// HasTag reports whether the order carries the given tag, case-insensitively.
func (o *Order) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

// RefundedLineItemIDs returns the union of line item IDs across all refunds.
func (o *Order) RefundedLineItemIDs() map[string]struct{} {
	refunded := make(map[string]struct{})
	for _, r := range o.Refunds {
		for _, id := range r.LineItemIDs {
			refunded[id] = struct{}{}
		}
	}
	return refunded
}

// FulfillmentFor returns the fulfillment that shipped the given line item,
// or nil when the item has not been fulfilled.
func (o *Order) FulfillmentFor(lineItemID string) *Fulfillment {
	for i := range o.Fulfillments {
		for _, fli := range o.Fulfillments[i].LineItems {
			if fli.LineItemID == lineItemID {
				return &o.Fulfillments[i]
			}
		}
	}
	return nil
}

// FulfillmentLineItemFor returns the platform handle for the shipped unit of
// the given line item, or nil when no fulfillment references it.
func (o *Order) FulfillmentLineItemFor(lineItemID string) *FulfillmentLineItem {
	for i := range o.Fulfillments {
		for j := range o.Fulfillments[i].LineItems {
			if o.Fulfillments[i].LineItems[j].LineItemID == lineItemID {
				return &o.Fulfillments[i].LineItems[j]
			}
		}
	}
	return nil
}

// LineItemByID returns the line item with the given ID, or nil.
func (o *Order) LineItemByID(id string) *LineItem {
	for i := range o.LineItems {
		if o.LineItems[i].ID == id {
			return &o.LineItems[i]
		}
	}
	return nil
}

// LineItem represents a purchased product within an order.
type LineItem struct {
	// ID is the unique identifier for the line item.
	ID string `json:"id"`
	// Title is the product title.
	Title string `json:"title"`
	// VariantID identifies the purchased product variant.
	VariantID string `json:"variant_id"`
	// SKU is the Stock Keeping Unit identifier for the variant.
	SKU string `json:"sku,omitempty"`
	// Price is the unit price.
	Price decimal.Decimal `json:"price"`
	// Quantity is the number of units purchased.
	Quantity int `json:"quantity"`
	// ImageURL is the product image, when the platform provides one.
	ImageURL string `json:"image_url,omitempty"`
	// Properties are free-form key/value pairs attached at checkout
	// (used by storefronts to flag final-sale, gift, and similar states).
	Properties []Property `json:"properties,omitempty"`
}

// TotalPrice returns price times quantity for the line item.
func (li *LineItem) TotalPrice() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Property is a free-form name/value pair on a line item.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Fulfillment represents a shipment of one or more line items.
type Fulfillment struct {
	// ID is the fulfillment identifier.
	ID string `json:"id"`
	// CreatedAt is when the fulfillment was created; the return window
	// starts here, not at order creation.
	CreatedAt time.Time `json:"created_at"`
	// TrackingNumber is the carrier tracking number, when available.
	TrackingNumber string `json:"tracking_number,omitempty"`
	// LineItems are the shipped units covered by this fulfillment.
	LineItems []FulfillmentLineItem `json:"line_items"`
}

// FulfillmentLineItem is the platform-specific handle for a shipped unit of a
// line item. Returns are requested against this handle, not the line item.
type FulfillmentLineItem struct {
	// ID is the fulfillment line item identifier.
	ID string `json:"id"`
	// LineItemID references the order line item this unit belongs to.
	LineItemID string `json:"line_item_id"`
	// Quantity is the number of units shipped.
	Quantity int `json:"quantity"`
}

// Refund represents a refund already issued against the order.
type Refund struct {
	// ID is the refund identifier.
	ID string `json:"id"`
	// CreatedAt is when the refund was issued.
	CreatedAt time.Time `json:"created_at"`
	// LineItemIDs are the refunded line items.
	LineItemIDs []string `json:"line_item_ids"`
	// Transactions are the settlement transactions for the refund.
	Transactions []RefundTransaction `json:"transactions,omitempty"`
}

// RefundTransaction is a settlement transaction within a refund.
type RefundTransaction struct {
	// Amount is the refunded amount.
	Amount decimal.Decimal `json:"amount"`
}

// Address represents a shipping or billing address.
type Address struct {
	Line1    string `json:"address_1"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// Matches reports whether two addresses refer to the same location,
// compared case-insensitively field by field. Empty addresses match nothing.
func (a Address) Matches(other Address) bool {
	if a.IsEmpty() || other.IsEmpty() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(a.Line1), strings.TrimSpace(other.Line1)) &&
		strings.EqualFold(strings.TrimSpace(a.City), strings.TrimSpace(other.City)) &&
		strings.EqualFold(strings.TrimSpace(a.Zip), strings.TrimSpace(other.Zip)) &&
		strings.EqualFold(strings.TrimSpace(a.Country), strings.TrimSpace(other.Country))
}

// IsEmpty reports whether the address has no usable fields.
func (a Address) IsEmpty() bool {
	return a.Line1 == "" && a.City == "" && a.Zip == ""
}

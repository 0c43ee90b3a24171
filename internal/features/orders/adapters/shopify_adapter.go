package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"returns-portal/internal/core/config"
	"returns-portal/internal/core/httpclient"
	"returns-portal/internal/core/logger"
	"returns-portal/internal/features/orders/domain"
	"returns-portal/internal/features/orders/ports"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ShopifyAdapter implements the OrderProvider interface using the Shopify
// Admin REST API.
type ShopifyAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the Shopify connection details.
	config config.ShopifyConfig
}

// NewShopifyAdapter creates a new instance of ShopifyAdapter.
func NewShopifyAdapter(cfg config.ShopifyConfig) *ShopifyAdapter {
	return &ShopifyAdapter{
		client: httpclient.NewClient(10 * time.Second),
		config: cfg,
	}
}

// GetOrder fetches an order from Shopify and maps it to the domain entity.
func (a *ShopifyAdapter) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	url := fmt.Sprintf("%s/admin/api/%s/orders/%s.json", a.config.StoreURL, a.config.APIVersion, orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", a.config.AccessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &ports.UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("order %s: %w", orderID, ports.ErrNotFound)
		}
		return nil, &ports.UpstreamError{StatusCode: resp.StatusCode, Message: "order fetch rejected"}
	}

	var envelope shopifyOrderEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return mapToDomain(envelope.Order), nil
}

// HealthCheck verifies that the Shopify API is reachable and credentials are valid.
func (a *ShopifyAdapter) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/admin/api/%s/shop.json", a.config.StoreURL, a.config.APIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("health check failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", a.config.AccessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}

	return nil
}

// mapToDomain converts a raw Shopify order payload into the canonical domain
// Order. All of the platform's shape quirks (numeric IDs, string prices,
// untyped property values) are normalized here so the core never sees them.
func mapToDomain(so shopifyOrder) *domain.Order {
	order := &domain.Order{
		ID:              strconv.FormatInt(so.ID, 10),
		Name:            so.Name,
		FinancialStatus: so.FinancialStatus,
		CancelledAt:     so.CancelledAt,
		Tags:            splitTags(so.Tags),
		Note:            so.Note,
		Email:           so.Email,
		ShippingAddress: mapAddress(so.ShippingAddress),
		BillingAddress:  mapAddress(so.BillingAddress),
		TotalPrice:      parsePrice(so.TotalPrice),
		CreatedAt:       so.CreatedAt,
	}

	if so.Customer != nil && so.Customer.CreatedAt != nil {
		order.CustomerCreatedAt = so.Customer.CreatedAt
	}

	for _, li := range so.LineItems {
		order.LineItems = append(order.LineItems, domain.LineItem{
			ID:         strconv.FormatInt(li.ID, 10),
			Title:      li.Title,
			VariantID:  strconv.FormatInt(li.VariantID, 10),
			SKU:        li.SKU,
			Price:      parsePrice(li.Price),
			Quantity:   li.Quantity,
			Properties: mapProperties(li.Properties),
		})
	}

	for _, f := range so.Fulfillments {
		fulfillment := domain.Fulfillment{
			ID:             strconv.FormatInt(f.ID, 10),
			CreatedAt:      f.CreatedAt,
			TrackingNumber: f.TrackingNumber,
		}
		for _, fli := range f.LineItems {
			fulfillment.LineItems = append(fulfillment.LineItems, domain.FulfillmentLineItem{
				ID:         strconv.FormatInt(fli.ID, 10),
				LineItemID: strconv.FormatInt(fli.LineItemID, 10),
				Quantity:   fli.Quantity,
			})
		}
		order.Fulfillments = append(order.Fulfillments, fulfillment)
	}

	for _, r := range so.Refunds {
		refund := domain.Refund{
			ID:        strconv.FormatInt(r.ID, 10),
			CreatedAt: r.CreatedAt,
		}
		for _, rli := range r.RefundLineItems {
			refund.LineItemIDs = append(refund.LineItemIDs, strconv.FormatInt(rli.LineItemID, 10))
		}
		for _, tx := range r.Transactions {
			refund.Transactions = append(refund.Transactions, domain.RefundTransaction{
				Amount: parsePrice(tx.Amount),
			})
		}
		order.Refunds = append(order.Refunds, refund)
	}

	return order
}

// splitTags converts Shopify's comma-separated tag string into a slice.
func splitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}

	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parsePrice converts Shopify's string-encoded money into a decimal.
// Unparseable values map to zero rather than failing the whole order.
func parsePrice(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		logger.Get().Warn("Failed to parse price", zap.String("price", s), zap.Error(err))
		return decimal.Zero
	}
	return d
}

// mapProperties normalizes Shopify's untyped property values into strings.
func mapProperties(props []shopifyProperty) []domain.Property {
	if len(props) == 0 {
		return nil
	}

	out := make([]domain.Property, 0, len(props))
	for _, p := range props {
		var value string
		switch v := p.Value.(type) {
		case string:
			value = v
		case nil:
			value = ""
		default:
			value = fmt.Sprint(v)
		}
		out = append(out, domain.Property{Name: p.Name, Value: value})
	}
	return out
}

func mapAddress(sa *shopifyAddress) domain.Address {
	if sa == nil {
		return domain.Address{}
	}
	return domain.Address{
		Line1:    sa.Address1,
		City:     sa.City,
		Province: sa.Province,
		Zip:      sa.Zip,
		Country:  sa.Country,
	}
}

// internal structs for mapping

// shopifyOrderEnvelope wraps the order payload returned by the REST API.
type shopifyOrderEnvelope struct {
	Order shopifyOrder `json:"order"`
}

// shopifyOrder represents the JSON structure of an order from the Shopify Admin API.
type shopifyOrder struct {
	// ID is the unique numeric order ID.
	ID int64 `json:"id"`
	// Name is the customer-facing order number.
	Name string `json:"name"`
	// Email is the customer's contact email.
	Email string `json:"email"`
	// FinancialStatus is the payment state of the order.
	FinancialStatus string `json:"financial_status"`
	// CancelledAt is the cancellation timestamp, null for active orders.
	CancelledAt *time.Time `json:"cancelled_at"`
	// Tags is a comma-separated list of merchant tags.
	Tags string `json:"tags"`
	// Note is the merchant note on the order.
	Note string `json:"note"`
	// TotalPrice is the order total as a string.
	TotalPrice string `json:"total_price"`
	// CreatedAt is when the order was placed.
	CreatedAt time.Time `json:"created_at"`
	// Customer holds the customer record, null for guest checkouts.
	Customer *shopifyCustomer `json:"customer"`
	// ShippingAddress is the delivery address.
	ShippingAddress *shopifyAddress `json:"shipping_address"`
	// BillingAddress is the billing address.
	BillingAddress *shopifyAddress `json:"billing_address"`
	// LineItems contains the products ordered.
	LineItems []shopifyLineItem `json:"line_items"`
	// Fulfillments contains shipment records.
	Fulfillments []shopifyFulfillment `json:"fulfillments"`
	// Refunds contains refunds issued against the order.
	Refunds []shopifyRefund `json:"refunds"`
}

// shopifyCustomer holds the customer record attached to an order.
type shopifyCustomer struct {
	ID        int64      `json:"id"`
	CreatedAt *time.Time `json:"created_at"`
}

// shopifyAddress holds a shipping or billing address.
type shopifyAddress struct {
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// shopifyLineItem represents a product in the Shopify order.
type shopifyLineItem struct {
	ID         int64             `json:"id"`
	Title      string            `json:"title"`
	VariantID  int64             `json:"variant_id"`
	SKU        string            `json:"sku"`
	Price      string            `json:"price"`
	Quantity   int               `json:"quantity"`
	Properties []shopifyProperty `json:"properties"`
}

// shopifyProperty is a checkout-time key/value pair whose value can be of
// various JSON types.
type shopifyProperty struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// shopifyFulfillment represents a shipment record.
type shopifyFulfillment struct {
	ID             int64                        `json:"id"`
	CreatedAt      time.Time                    `json:"created_at"`
	TrackingNumber string                       `json:"tracking_number"`
	LineItems      []shopifyFulfillmentLineItem `json:"line_items"`
}

// shopifyFulfillmentLineItem ties a shipped unit to its order line item.
type shopifyFulfillmentLineItem struct {
	ID         int64 `json:"id"`
	LineItemID int64 `json:"line_item_id"`
	Quantity   int   `json:"quantity"`
}

// shopifyRefund represents a refund issued against the order.
type shopifyRefund struct {
	ID              int64                   `json:"id"`
	CreatedAt       time.Time               `json:"created_at"`
	RefundLineItems []shopifyRefundLineItem `json:"refund_line_items"`
	Transactions    []shopifyTransaction    `json:"transactions"`
}

// shopifyRefundLineItem references a refunded order line item.
type shopifyRefundLineItem struct {
	LineItemID int64 `json:"line_item_id"`
	Quantity   int   `json:"quantity"`
}

// shopifyTransaction is a settlement transaction within a refund.
type shopifyTransaction struct {
	Amount string `json:"amount"`
	Kind   string `json:"kind"`
}

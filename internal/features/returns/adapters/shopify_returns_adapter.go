package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"returns-portal/internal/core/config"
	"returns-portal/internal/core/httpclient"
	"returns-portal/internal/features/returns/ports"
)

// ShopifyReturnsAdapter implements the ReturnPlatform interface using the
// Shopify Admin REST API.
type ShopifyReturnsAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the Shopify connection details.
	config config.ShopifyConfig
}

// NewShopifyReturnsAdapter creates a new instance of ShopifyReturnsAdapter.
func NewShopifyReturnsAdapter(cfg config.ShopifyConfig) *ShopifyReturnsAdapter {
	return &ShopifyReturnsAdapter{
		client: httpclient.NewClient(10 * time.Second),
		config: cfg,
	}
}

// RequestReturn opens a return for a fulfillment line item handle.
func (a *ShopifyReturnsAdapter) RequestReturn(ctx context.Context, orderID, fulfillmentLineItemID string, quantity int, reason string) (string, error) {
	fliID, err := strconv.ParseInt(fulfillmentLineItemID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid fulfillment line item id %q: %w", fulfillmentLineItemID, err)
	}

	body := map[string]interface{}{
		"return": map[string]interface{}{
			"return_line_items": []map[string]interface{}{
				{
					"fulfillment_line_item_id": fliID,
					"quantity":                 quantity,
					"return_reason":            reason,
				},
			},
		},
	}

	var resp struct {
		Return struct {
			ID int64 `json:"id"`
		} `json:"return"`
	}

	path := fmt.Sprintf("orders/%s/returns.json", orderID)
	if err := a.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return "", err
	}

	if resp.Return.ID == 0 {
		return "", nil
	}
	return strconv.FormatInt(resp.Return.ID, 10), nil
}

// ApproveReturn approves a previously requested return.
func (a *ShopifyReturnsAdapter) ApproveReturn(ctx context.Context, returnID string) error {
	path := fmt.Sprintf("returns/%s/approve.json", returnID)
	return a.do(ctx, http.MethodPost, path, nil, nil)
}

// CreateExchangeOrder creates a draft order for the replacement variant,
// discounted to zero so the exchange carries no charge.
func (a *ShopifyReturnsAdapter) CreateExchangeOrder(ctx context.Context, variantID string, quantity int) (string, error) {
	vID, err := strconv.ParseInt(variantID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid variant id %q: %w", variantID, err)
	}

	body := map[string]interface{}{
		"draft_order": map[string]interface{}{
			"line_items": []map[string]interface{}{
				{"variant_id": vID, "quantity": quantity},
			},
			"applied_discount": map[string]interface{}{
				"value_type": "percentage",
				"value":      "100.0",
				"title":      "Exchange",
			},
			"tags": "exchange",
		},
	}

	var resp struct {
		DraftOrder struct {
			ID int64 `json:"id"`
		} `json:"draft_order"`
	}

	if err := a.do(ctx, http.MethodPost, "draft_orders.json", body, &resp); err != nil {
		return "", err
	}

	return strconv.FormatInt(resp.DraftOrder.ID, 10), nil
}

// CompleteExchangeOrder completes the draft order and returns the new order's ID.
func (a *ShopifyReturnsAdapter) CompleteExchangeOrder(ctx context.Context, draftOrderID string) (string, error) {
	var resp struct {
		DraftOrder struct {
			OrderID int64 `json:"order_id"`
		} `json:"draft_order"`
	}

	path := fmt.Sprintf("draft_orders/%s/complete.json", draftOrderID)
	if err := a.do(ctx, http.MethodPut, path, nil, &resp); err != nil {
		return "", err
	}

	return strconv.FormatInt(resp.DraftOrder.OrderID, 10), nil
}

// AnnotateOrder replaces the order's note text.
func (a *ShopifyReturnsAdapter) AnnotateOrder(ctx context.Context, orderID, note string) error {
	body := map[string]interface{}{
		"order": map[string]interface{}{
			"id":   orderID,
			"note": note,
		},
	}
	path := fmt.Sprintf("orders/%s.json", orderID)
	return a.do(ctx, http.MethodPut, path, body, nil)
}

// UpdateOrderTags replaces the order's tag list.
func (a *ShopifyReturnsAdapter) UpdateOrderTags(ctx context.Context, orderID string, tags []string) error {
	body := map[string]interface{}{
		"order": map[string]interface{}{
			"id":   orderID,
			"tags": strings.Join(tags, ", "),
		},
	}
	path := fmt.Sprintf("orders/%s.json", orderID)
	return a.do(ctx, http.MethodPut, path, body, nil)
}

// do executes one authenticated Admin API call and decodes the response into
// out when provided. Non-2xx responses are turned into a PlatformError
// carrying the API's structured error list when one is present.
func (a *ShopifyReturnsAdapter) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	url := fmt.Sprintf("%s/admin/api/%s/%s", a.config.StoreURL, a.config.APIVersion, path)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", a.config.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return a.platformError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// platformError extracts the structured error list from a failed response.
// Shopify reports errors as a string, a list, or a field map depending on
// the endpoint; all shapes collapse into a flat message list.
func (a *ShopifyReturnsAdapter) platformError(resp *http.Response) error {
	var payload struct {
		Errors interface{} `json:"errors"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Errors == nil {
		return &ports.PlatformError{Errors: []string{fmt.Sprintf("status %d", resp.StatusCode)}}
	}

	var messages []string
	switch v := payload.Errors.(type) {
	case string:
		messages = []string{v}
	case []interface{}:
		for _, e := range v {
			messages = append(messages, fmt.Sprint(e))
		}
	case map[string]interface{}:
		for field, e := range v {
			messages = append(messages, fmt.Sprintf("%s: %v", field, e))
		}
	default:
		messages = []string{fmt.Sprint(v)}
	}

	return &ports.PlatformError{Errors: messages}
}

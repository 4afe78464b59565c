package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/hiho-nelson/go-shopify-storefront/internal/shopify"
)

// Client talks to the local /api/cart routes on behalf of the store.
// Bodies mirror the route contracts: {cart} on success, {error} on
// failure.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
}

type cartEnvelope struct {
	Cart  *shopify.Cart `json:"cart"`
	Error string        `json:"error"`
}

type createCartRequest struct {
	Items []shopify.CartItem `json:"items"`
}

type addLinesRequest struct {
	CartID string             `json:"cartId"`
	Items  []shopify.CartItem `json:"items"`
}

type updateLinesRequest struct {
	CartID      string               `json:"cartId"`
	LineUpdates []shopify.LineUpdate `json:"lineUpdates"`
}

type removeLinesRequest struct {
	CartID  string   `json:"cartId"`
	LineIDs []string `json:"lineIds"`
}

func (c *Client) CreateCart(ctx context.Context, items []shopify.CartItem) (*shopify.Cart, error) {
	return c.do(ctx, http.MethodPost, "/api/cart", createCartRequest{Items: items})
}

func (c *Client) GetCart(ctx context.Context, cartID string) (*shopify.Cart, error) {
	path := "/api/cart?id=" + url.QueryEscape(cartID)
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) AddLines(ctx context.Context, cartID string, items []shopify.CartItem) (*shopify.Cart, error) {
	return c.do(ctx, http.MethodPost, "/api/cart/add", addLinesRequest{CartID: cartID, Items: items})
}

func (c *Client) UpdateLines(ctx context.Context, cartID string, updates []shopify.LineUpdate) (*shopify.Cart, error) {
	return c.do(ctx, http.MethodPut, "/api/cart/update", updateLinesRequest{CartID: cartID, LineUpdates: updates})
}

func (c *Client) RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*shopify.Cart, error) {
	return c.do(ctx, http.MethodDelete, "/api/cart/remove", removeLinesRequest{CartID: cartID, LineIDs: lineIDs})
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*shopify.Cart, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope cartEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode cart response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, shopify.ErrCartNotFound
	}
	if resp.StatusCode != http.StatusOK {
		msg := envelope.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("cart api %s %s: %s", method, path, msg)
	}
	if envelope.Cart == nil {
		return nil, fmt.Errorf("cart api %s %s: no cart in response", method, path)
	}
	return envelope.Cart, nil
}

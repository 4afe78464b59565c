package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const apiVersion = "2025-01"

// Client is the Remote API Gateway: it translates internal intents into
// Storefront GraphQL requests and responses back into view types. All
// retry, backoff and breaker behavior lives here; callers see either a
// transformed result or the last attempt's error.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	policy     Policy
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *zap.Logger
}

func NewClient(storeDomain, accessToken string, policy Policy, logger *zap.Logger) *Client {
	return &Client{
		endpoint: fmt.Sprintf("https://%s/api/%s/graphql.json", storeDomain, apiVersion),
		token:    accessToken,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		policy: policy,
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name: "shopify-storefront",
		}),
		logger: logger,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// execute runs one document against the Storefront endpoint under the
// retry policy and returns the raw data object.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		data, attemptErr := c.attempt(ctx, payload)
		if attemptErr == nil {
			return data, nil
		}
		lastErr = attemptErr

		if attempt == c.policy.MaxAttempts {
			break
		}
		class := classify(attemptErr)
		if class == classFatal {
			return nil, attemptErr
		}
		backoff := c.policy.delay(class, attempt)
		c.logger.Warn("shopify request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(attemptErr))
		if sleepErr := c.policy.sleep(ctx, backoff); sleepErr != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, payload []byte) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.policy.AttemptTimeout)
	defer cancel()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if reqErr != nil {
			return nil, reqErr
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		defer resp.Body.Close()

		raw, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &HTTPError{Status: resp.StatusCode, Body: string(raw)}
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			msgs[i] = e.Message
		}
		return nil, &GraphQLError{Messages: msgs}
	}
	return gqlResp.Data, nil
}

func firstUserError(errs []gqlUserError) error {
	if len(errs) == 0 {
		return nil
	}
	return &UserError{Message: errs[0].Message}
}

// CreateCart creates a new remote cart seeded with the given items.
func (c *Client) CreateCart(ctx context.Context, items []CartItem) (*Cart, error) {
	lines := make([]map[string]any, len(items))
	for i, item := range items {
		lines[i] = map[string]any{
			"merchandiseId": item.VariantID,
			"quantity":      item.Quantity,
		}
	}
	data, err := c.execute(ctx, cartCreateMutation, map[string]any{
		"input": map[string]any{"lines": lines},
	})
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	var result struct {
		CartCreate struct {
			Cart       *gqlCart       `json:"cart"`
			UserErrors []gqlUserError `json:"userErrors"`
		} `json:"cartCreate"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse cartCreate response: %w", err)
	}
	if err := firstUserError(result.CartCreate.UserErrors); err != nil {
		return nil, err
	}
	return transformCart(result.CartCreate.Cart), nil
}

// GetCart fetches the current remote state of a cart. A null cart in the
// response means it expired or was purged: ErrCartNotFound.
func (c *Client) GetCart(ctx context.Context, cartID string) (*Cart, error) {
	data, err := c.execute(ctx, cartQuery, map[string]any{"id": cartID})
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	var result struct {
		Cart *gqlCart `json:"cart"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse cart response: %w", err)
	}
	if result.Cart == nil {
		return nil, ErrCartNotFound
	}
	return transformCart(result.Cart), nil
}

// AddToCart adds line items to an existing cart.
func (c *Client) AddToCart(ctx context.Context, cartID string, items []CartItem) (*Cart, error) {
	lines := make([]map[string]any, len(items))
	for i, item := range items {
		lines[i] = map[string]any{
			"merchandiseId": item.VariantID,
			"quantity":      item.Quantity,
		}
	}
	data, err := c.execute(ctx, cartLinesAddMutation, map[string]any{
		"cartId": cartID,
		"lines":  lines,
	})
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	var result struct {
		CartLinesAdd struct {
			Cart       *gqlCart       `json:"cart"`
			UserErrors []gqlUserError `json:"userErrors"`
		} `json:"cartLinesAdd"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse cartLinesAdd response: %w", err)
	}
	if err := firstUserError(result.CartLinesAdd.UserErrors); err != nil {
		return nil, err
	}
	return transformCart(result.CartLinesAdd.Cart), nil
}

// UpdateCartLines changes quantities on existing lines.
func (c *Client) UpdateCartLines(ctx context.Context, cartID string, updates []LineUpdate) (*Cart, error) {
	lines := make([]map[string]any, len(updates))
	for i, u := range updates {
		lines[i] = map[string]any{
			"id":       u.ID,
			"quantity": u.Quantity,
		}
	}
	data, err := c.execute(ctx, cartLinesUpdateMutation, map[string]any{
		"cartId": cartID,
		"lines":  lines,
	})
	if err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	var result struct {
		CartLinesUpdate struct {
			Cart       *gqlCart       `json:"cart"`
			UserErrors []gqlUserError `json:"userErrors"`
		} `json:"cartLinesUpdate"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse cartLinesUpdate response: %w", err)
	}
	if err := firstUserError(result.CartLinesUpdate.UserErrors); err != nil {
		return nil, err
	}
	return transformCart(result.CartLinesUpdate.Cart), nil
}

// RemoveFromCart deletes lines from a cart.
func (c *Client) RemoveFromCart(ctx context.Context, cartID string, lineIDs []string) (*Cart, error) {
	data, err := c.execute(ctx, cartLinesRemoveMutation, map[string]any{
		"cartId":  cartID,
		"lineIds": lineIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("remove from cart: %w", err)
	}
	var result struct {
		CartLinesRemove struct {
			Cart       *gqlCart       `json:"cart"`
			UserErrors []gqlUserError `json:"userErrors"`
		} `json:"cartLinesRemove"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse cartLinesRemove response: %w", err)
	}
	if err := firstUserError(result.CartLinesRemove.UserErrors); err != nil {
		return nil, err
	}
	return transformCart(result.CartLinesRemove.Cart), nil
}

// Products returns a page of products with pagination info.
func (c *Client) Products(ctx context.Context, first int, after string) ([]Product, PageInfo, error) {
	vars := map[string]any{"first": first}
	if after != "" {
		vars["after"] = after
	}
	data, err := c.execute(ctx, productsQuery, vars)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("get products: %w", err)
	}
	var result struct {
		Products struct {
			Edges []struct {
				Node gqlProduct `json:"node"`
			} `json:"edges"`
			PageInfo PageInfo `json:"pageInfo"`
		} `json:"products"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, PageInfo{}, fmt.Errorf("parse products response: %w", err)
	}
	products := make([]Product, len(result.Products.Edges))
	for i, e := range result.Products.Edges {
		products[i] = transformProduct(&e.Node)
	}
	return products, result.Products.PageInfo, nil
}

// ProductByHandle returns a single product, or nil when unknown.
func (c *Client) ProductByHandle(ctx context.Context, handle string) (*Product, error) {
	data, err := c.execute(ctx, productByHandleQuery, map[string]any{"handle": handle})
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", handle, err)
	}
	var result struct {
		Product *gqlProduct `json:"product"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse product response: %w", err)
	}
	if result.Product == nil {
		return nil, nil
	}
	p := transformProduct(result.Product)
	return &p, nil
}

// SearchProducts runs a free-text product search.
func (c *Client) SearchProducts(ctx context.Context, query string, first int) ([]Product, error) {
	data, err := c.execute(ctx, searchProductsQuery, map[string]any{
		"query": query,
		"first": first,
	})
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	var result struct {
		Products struct {
			Edges []struct {
				Node gqlProduct `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	products := make([]Product, len(result.Products.Edges))
	for i, e := range result.Products.Edges {
		products[i] = transformProduct(&e.Node)
	}
	return products, nil
}

// Collections returns the store's collections.
func (c *Client) Collections(ctx context.Context, first int) ([]Collection, error) {
	data, err := c.execute(ctx, collectionsQuery, map[string]any{"first": first})
	if err != nil {
		return nil, fmt.Errorf("get collections: %w", err)
	}
	var result struct {
		Collections struct {
			Edges []struct {
				Node gqlCollection `json:"node"`
			} `json:"edges"`
		} `json:"collections"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse collections response: %w", err)
	}
	collections := make([]Collection, len(result.Collections.Edges))
	for i, e := range result.Collections.Edges {
		collections[i] = transformCollection(&e.Node)
	}
	return collections, nil
}

// BlogArticles returns recent articles from a blog handle.
func (c *Client) BlogArticles(ctx context.Context, handle string, first int) ([]Article, error) {
	data, err := c.execute(ctx, blogArticlesQuery, map[string]any{
		"handle": handle,
		"first":  first,
	})
	if err != nil {
		return nil, fmt.Errorf("get blog articles: %w", err)
	}
	var result struct {
		Blog *struct {
			Articles struct {
				Edges []struct {
					Node gqlArticle `json:"node"`
				} `json:"edges"`
			} `json:"articles"`
		} `json:"blog"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse blog response: %w", err)
	}
	if result.Blog == nil {
		return nil, nil
	}
	articles := make([]Article, len(result.Blog.Articles.Edges))
	for i, e := range result.Blog.Articles.Edges {
		articles[i] = transformArticle(&e.Node)
	}
	return articles, nil
}

// CustomerCreate registers a new customer account.
func (c *Client) CustomerCreate(ctx context.Context, input CustomerCreateInput) (*Customer, error) {
	data, err := c.execute(ctx, customerCreateMutation, map[string]any{"input": input})
	if err != nil {
		return nil, fmt.Errorf("customer create: %w", err)
	}
	var result struct {
		CustomerCreate struct {
			Customer   *Customer      `json:"customer"`
			UserErrors []gqlUserError `json:"customerUserErrors"`
		} `json:"customerCreate"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse customerCreate response: %w", err)
	}
	if err := firstUserError(result.CustomerCreate.UserErrors); err != nil {
		return nil, err
	}
	return result.CustomerCreate.Customer, nil
}

// AccessTokenCreate exchanges credentials for a customer access token.
func (c *Client) AccessTokenCreate(ctx context.Context, email, password string) (*AccessToken, error) {
	data, err := c.execute(ctx, customerAccessTokenCreateMutation, map[string]any{
		"input": map[string]any{"email": email, "password": password},
	})
	if err != nil {
		return nil, fmt.Errorf("access token create: %w", err)
	}
	var result struct {
		CustomerAccessTokenCreate struct {
			CustomerAccessToken *gqlAccessToken `json:"customerAccessToken"`
			UserErrors          []gqlUserError  `json:"customerUserErrors"`
		} `json:"customerAccessTokenCreate"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse customerAccessTokenCreate response: %w", err)
	}
	if err := firstUserError(result.CustomerAccessTokenCreate.UserErrors); err != nil {
		return nil, err
	}
	if result.CustomerAccessTokenCreate.CustomerAccessToken == nil {
		return nil, &UserError{Message: "Login failed"}
	}
	return transformAccessToken(result.CustomerAccessTokenCreate.CustomerAccessToken)
}

// AccessTokenRenew extends the lifetime of an existing token.
func (c *Client) AccessTokenRenew(ctx context.Context, token string) (*AccessToken, error) {
	data, err := c.execute(ctx, customerAccessTokenRenewMutation, map[string]any{
		"customerAccessToken": token,
	})
	if err != nil {
		return nil, fmt.Errorf("access token renew: %w", err)
	}
	var result struct {
		CustomerAccessTokenRenew struct {
			CustomerAccessToken *gqlAccessToken `json:"customerAccessToken"`
			UserErrors          []gqlUserError  `json:"userErrors"`
		} `json:"customerAccessTokenRenew"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse customerAccessTokenRenew response: %w", err)
	}
	if err := firstUserError(result.CustomerAccessTokenRenew.UserErrors); err != nil {
		return nil, err
	}
	if result.CustomerAccessTokenRenew.CustomerAccessToken == nil {
		return nil, &UserError{Message: "Failed to renew"}
	}
	return transformAccessToken(result.CustomerAccessTokenRenew.CustomerAccessToken)
}

// AccessTokenDelete invalidates a token on logout. Best effort.
func (c *Client) AccessTokenDelete(ctx context.Context, token string) error {
	_, err := c.execute(ctx, customerAccessTokenDeleteMutation, map[string]any{
		"customerAccessToken": token,
	})
	if err != nil {
		return fmt.Errorf("access token delete: %w", err)
	}
	return nil
}

// CustomerByToken returns the customer a token belongs to, or nil when
// the token is expired or unknown.
func (c *Client) CustomerByToken(ctx context.Context, token string) (*Customer, error) {
	data, err := c.execute(ctx, customerByTokenQuery, map[string]any{
		"customerAccessToken": token,
	})
	if err != nil {
		return nil, fmt.Errorf("customer by token: %w", err)
	}
	var result struct {
		Customer *Customer `json:"customer"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse customer response: %w", err)
	}
	return result.Customer, nil
}

// CustomerUpdate changes profile fields (or the password) of the customer
// a token belongs to.
func (c *Client) CustomerUpdate(ctx context.Context, token string, update CustomerUpdateInput) (*Customer, error) {
	data, err := c.execute(ctx, customerUpdateMutation, map[string]any{
		"customerAccessToken": token,
		"customer":            update,
	})
	if err != nil {
		return nil, fmt.Errorf("customer update: %w", err)
	}
	var result struct {
		CustomerUpdate struct {
			Customer   *Customer      `json:"customer"`
			UserErrors []gqlUserError `json:"customerUserErrors"`
		} `json:"customerUpdate"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse customerUpdate response: %w", err)
	}
	if err := firstUserError(result.CustomerUpdate.UserErrors); err != nil {
		return nil, err
	}
	return result.CustomerUpdate.Customer, nil
}

// CustomerOrders lists the most recent orders of the token's customer.
func (c *Client) CustomerOrders(ctx context.Context, token string, first int) ([]Order, error) {
	data, err := c.execute(ctx, customerOrdersQuery, map[string]any{
		"customerAccessToken": token,
		"first":               first,
	})
	if err != nil {
		return nil, fmt.Errorf("customer orders: %w", err)
	}
	var result struct {
		Customer *struct {
			Orders struct {
				Edges []struct {
					Node gqlOrder `json:"node"`
				} `json:"edges"`
			} `json:"orders"`
		} `json:"customer"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse orders response: %w", err)
	}
	if result.Customer == nil {
		return nil, nil
	}
	orders := make([]Order, len(result.Customer.Orders.Edges))
	for i, e := range result.Customer.Orders.Edges {
		orders[i] = transformOrder(&e.Node)
	}
	return orders, nil
}

// CustomerRecover triggers the remote password-recovery email.
func (c *Client) CustomerRecover(ctx context.Context, email string) error {
	data, err := c.execute(ctx, customerRecoverMutation, map[string]any{"email": email})
	if err != nil {
		return fmt.Errorf("customer recover: %w", err)
	}
	var result struct {
		CustomerRecover struct {
			UserErrors []gqlUserError `json:"customerUserErrors"`
		} `json:"customerRecover"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("parse customerRecover response: %w", err)
	}
	return firstUserError(result.CustomerRecover.UserErrors)
}

// CustomerReset completes a password reset using the emailed token.
func (c *Client) CustomerReset(ctx context.Context, id, resetToken, password string) error {
	data, err := c.execute(ctx, customerResetMutation, map[string]any{
		"id": id,
		"input": map[string]any{
			"resetToken": resetToken,
			"password":   password,
		},
	})
	if err != nil {
		return fmt.Errorf("customer reset: %w", err)
	}
	var result struct {
		CustomerReset struct {
			UserErrors []gqlUserError `json:"customerUserErrors"`
		} `json:"customerReset"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("parse customerReset response: %w", err)
	}
	return firstUserError(result.CustomerReset.UserErrors)
}

func transformAccessToken(t *gqlAccessToken) (*AccessToken, error) {
	expires, err := time.Parse(time.RFC3339, t.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("parse token expiry: %w", err)
	}
	return &AccessToken{Token: t.AccessToken, ExpiresAt: expires}, nil
}

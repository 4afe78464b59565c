package httpapi

import (
	"context"
	"sync"

	"github.com/hiho-nelson/go-shopify-storefront/internal/catalog"
	"github.com/hiho-nelson/go-shopify-storefront/internal/shopify"
)

type mockCartGateway struct {
	m     sync.Mutex
	cart  *shopify.Cart
	err   error
	calls []string
}

func (g *mockCartGateway) record(op string) {
	g.m.Lock()
	defer g.m.Unlock()
	g.calls = append(g.calls, op)
}

func (g *mockCartGateway) result() (*shopify.Cart, error) {
	g.m.Lock()
	defer g.m.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.cart, nil
}

func (g *mockCartGateway) seen() []string {
	g.m.Lock()
	defer g.m.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *mockCartGateway) CreateCart(context.Context, []shopify.CartItem) (*shopify.Cart, error) {
	g.record("CreateCart")
	return g.result()
}

func (g *mockCartGateway) GetCart(context.Context, string) (*shopify.Cart, error) {
	g.record("GetCart")
	return g.result()
}

func (g *mockCartGateway) AddToCart(context.Context, string, []shopify.CartItem) (*shopify.Cart, error) {
	g.record("AddToCart")
	return g.result()
}

func (g *mockCartGateway) UpdateCartLines(context.Context, string, []shopify.LineUpdate) (*shopify.Cart, error) {
	g.record("UpdateCartLines")
	return g.result()
}

func (g *mockCartGateway) RemoveFromCart(context.Context, string, []string) (*shopify.Cart, error) {
	g.record("RemoveFromCart")
	return g.result()
}

type mockCustomerGateway struct {
	m        sync.Mutex
	customer *shopify.Customer
	token    *shopify.AccessToken
	orders   []shopify.Order
	err      error
	deleted  []string
}

func (g *mockCustomerGateway) CustomerCreate(context.Context, shopify.CustomerCreateInput) (*shopify.Customer, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.customer, nil
}

func (g *mockCustomerGateway) AccessTokenCreate(context.Context, string, string) (*shopify.AccessToken, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.token, nil
}

func (g *mockCustomerGateway) AccessTokenRenew(context.Context, string) (*shopify.AccessToken, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.token, nil
}

func (g *mockCustomerGateway) AccessTokenDelete(_ context.Context, token string) error {
	g.m.Lock()
	defer g.m.Unlock()
	g.deleted = append(g.deleted, token)
	return g.err
}

func (g *mockCustomerGateway) CustomerByToken(context.Context, string) (*shopify.Customer, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.customer, nil
}

func (g *mockCustomerGateway) CustomerUpdate(context.Context, string, shopify.CustomerUpdateInput) (*shopify.Customer, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.customer, nil
}

func (g *mockCustomerGateway) CustomerOrders(context.Context, string, int) ([]shopify.Order, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.orders, nil
}

func (g *mockCustomerGateway) CustomerRecover(context.Context, string) error {
	return g.err
}

func (g *mockCustomerGateway) CustomerReset(context.Context, string, string, string) error {
	return g.err
}

type stubCatalogGateway struct {
	products []shopify.Product
	product  *shopify.Product
	err      error
}

func (g *stubCatalogGateway) Products(context.Context, int, string) ([]shopify.Product, shopify.PageInfo, error) {
	return g.products, shopify.PageInfo{}, g.err
}

func (g *stubCatalogGateway) ProductByHandle(context.Context, string) (*shopify.Product, error) {
	return g.product, g.err
}

func (g *stubCatalogGateway) SearchProducts(context.Context, string, int) ([]shopify.Product, error) {
	return g.products, g.err
}

func (g *stubCatalogGateway) Collections(context.Context, int) ([]shopify.Collection, error) {
	return nil, g.err
}

// missCache never holds anything; reads always fall through to the
// gateway. DeleteByPrefix calls are recorded for webhook tests.
type missCache struct {
	m       sync.Mutex
	deleted []string
}

func (c *missCache) Get(context.Context, string) ([]byte, error) {
	return nil, catalog.ErrCacheMiss
}

func (c *missCache) Set(context.Context, string, []byte) error {
	return nil
}

func (c *missCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.deleted = append(c.deleted, prefix)
	return nil
}

func (c *missCache) deletedPrefixes() []string {
	c.m.Lock()
	defer c.m.Unlock()
	return append([]string(nil), c.deleted...)
}

type mockMailer struct {
	m        sync.Mutex
	err      error
	subjects []string
	bodies   []string
}

func (mm *mockMailer) Send(_ context.Context, _, _, subject, body string) error {
	mm.m.Lock()
	defer mm.m.Unlock()
	if mm.err != nil {
		return mm.err
	}
	mm.subjects = append(mm.subjects, subject)
	mm.bodies = append(mm.bodies, body)
	return nil
}

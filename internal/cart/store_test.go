package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hiho-nelson/go-shopify-storefront/internal/shopify"
)

// fakeRoutes scripts the local cart routes: one response for every hit,
// with optional error status and a gate to hold requests in flight.
type fakeRoutes struct {
	mu       sync.Mutex
	requests []string
	cart     *shopify.Cart
	status   int
	errMsg   string
	block    chan struct{}
}

func (f *fakeRoutes) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	block := f.block
	status := f.status
	errMsg := f.errMsg
	cart := f.cart
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": errMsg})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"cart": cart})
}

func (f *fakeRoutes) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func newTestStore(t *testing.T, routes *fakeRoutes) (*Store, *MemoryStorage) {
	srv := httptest.NewServer(routes)
	t.Cleanup(srv.Close)
	storage := NewMemoryStorage()
	return NewStore(NewClient(srv.URL), storage, zap.NewNop()), storage
}

func twoLineCart() *shopify.Cart {
	return &shopify.Cart{
		ID:          "gid://shopify/Cart/abc",
		CheckoutURL: "https://shop.example/checkout",
		Lines: []shopify.CartLine{
			{
				ID:       "line-1",
				Quantity: 1,
				Merchandise: shopify.Merchandise{
					ID:      "gid://shopify/ProductVariant/9",
					Title:   "Small",
					Product: shopify.ProductRef{ID: "gid://shopify/Product/5", Title: "Tee", Handle: "tee"},
				},
				Cost: shopify.LineCost{TotalAmount: shopify.Money{Amount: "14.00", CurrencyCode: "USD"}},
			},
			{
				ID:       "line-2",
				Quantity: 2,
				Merchandise: shopify.Merchandise{
					ID:      "gid://shopify/ProductVariant/11",
					Title:   "Large",
					Product: shopify.ProductRef{ID: "gid://shopify/Product/6", Title: "Hoodie", Handle: "hoodie"},
				},
				Cost: shopify.LineCost{TotalAmount: shopify.Money{Amount: "60.00", CurrencyCode: "USD"}},
			},
		},
		TotalQuantity: 3,
		Cost:          shopify.CartCost{TotalAmount: shopify.Money{Amount: "74.00", CurrencyCode: "USD"}},
	}
}

func TestAddItem_NoCart_CreatesRemoteCart(t *testing.T) {
	confirmed := twoLineCart()
	routes := &fakeRoutes{cart: confirmed}
	sut, _ := newTestStore(t, routes)

	err := sut.AddItem(context.Background(), shopify.CartItem{VariantID: "gid://shopify/ProductVariant/9", Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"POST /api/cart"}, routes.seen())
	assert.Equal(t, confirmed, sut.Cart())
	assert.False(t, sut.Loading())
	assert.Empty(t, sut.LastError())
}

func TestAddItem_ExistingCart_AddsLines(t *testing.T) {
	confirmed := twoLineCart()
	routes := &fakeRoutes{cart: confirmed}
	sut, _ := newTestStore(t, routes)
	sut.cart = twoLineCart()

	err := sut.AddItem(context.Background(), shopify.CartItem{VariantID: "gid://shopify/ProductVariant/11", Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"POST /api/cart/add"}, routes.seen())
	assert.Equal(t, confirmed, sut.Cart())
}

func TestAddItem_Failure_SetsLastError(t *testing.T) {
	routes := &fakeRoutes{status: http.StatusInternalServerError, errMsg: "Failed to add to cart"}
	sut, _ := newTestStore(t, routes)
	prev := twoLineCart()
	sut.cart = prev.Clone()

	err := sut.AddItem(context.Background(), shopify.CartItem{VariantID: "gid://shopify/ProductVariant/9", Quantity: 1})
	require.Error(t, err)

	assert.Contains(t, sut.LastError(), "Failed to add to cart")
	assert.False(t, sut.Loading())
	assert.Equal(t, prev, sut.Cart())
}

func TestUpdateQuantity_OptimisticWhileInFlight(t *testing.T) {
	confirmed := twoLineCart()
	confirmed.Lines[0].Quantity = 5
	confirmed.TotalQuantity = 7
	confirmed.Cost.TotalAmount.Amount = "130.00"

	gate := make(chan struct{})
	routes := &fakeRoutes{cart: confirmed, block: gate}
	sut, _ := newTestStore(t, routes)
	sut.cart = twoLineCart()

	done := make(chan error, 1)
	go func() {
		done <- sut.UpdateQuantity(context.Background(), "line-1", 5)
	}()

	// While the round trip is held open, the optimistic quantity is
	// already visible and the line is marked pending. Monetary totals
	// stay at the last confirmed values.
	require.Eventually(t, func() bool {
		c := sut.Cart()
		return c.Line("line-1") != nil && c.Line("line-1").Quantity == 5 && sut.IsLineUpdating("line-1")
	}, time.Second, 5*time.Millisecond)

	optimistic := sut.Cart()
	assert.Equal(t, 7, optimistic.TotalQuantity)
	assert.Equal(t, "74.00", optimistic.Cost.TotalAmount.Amount)

	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, confirmed, sut.Cart())
	assert.False(t, sut.IsLineUpdating("line-1"))
	assert.Equal(t, "130.00", sut.Cart().Cost.TotalAmount.Amount)
}

func TestUpdateQuantity_Failure_RollsBack(t *testing.T) {
	routes := &fakeRoutes{status: http.StatusInternalServerError, errMsg: "Failed to update cart"}
	sut, _ := newTestStore(t, routes)
	sut.cart = twoLineCart()
	prev := sut.Cart()

	err := sut.UpdateQuantity(context.Background(), "line-1", 5)
	require.Error(t, err)

	assert.Equal(t, prev, sut.Cart())
	assert.Contains(t, sut.LastError(), "Failed to update cart")
	assert.False(t, sut.IsLineUpdating("line-1"))
	assert.Equal(t, []string{"PUT /api/cart/update"}, routes.seen())
}

func TestUpdateQuantity_Zero_IsRemoval(t *testing.T) {
	confirmed := twoLineCart()
	confirmed.Lines = confirmed.Lines[1:]
	confirmed.TotalQuantity = 2
	routes := &fakeRoutes{cart: confirmed}
	sut, _ := newTestStore(t, routes)
	sut.cart = twoLineCart()

	err := sut.UpdateQuantity(context.Background(), "line-1", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"DELETE /api/cart/remove"}, routes.seen())
	assert.Equal(t, confirmed, sut.Cart())
	assert.Nil(t, sut.Cart().Line("line-1"))
}

func TestUpdateQuantity_UnknownLine_NoOp(t *testing.T) {
	routes := &fakeRoutes{cart: twoLineCart()}
	sut, _ := newTestStore(t, routes)
	sut.cart = twoLineCart()

	err := sut.UpdateQuantity(context.Background(), "no-such-line", 4)
	require.NoError(t, err)
	assert.Empty(t, routes.seen())
}

func TestRemoveItem_Failure_RollsBack(t *testing.T) {
	routes := &fakeRoutes{status: http.StatusInternalServerError, errMsg: "Failed to remove from cart"}
	sut, _ := newTestStore(t, routes)
	sut.cart = twoLineCart()
	prev := sut.Cart()

	err := sut.RemoveItem(context.Background(), "line-2")
	require.Error(t, err)

	assert.Equal(t, prev, sut.Cart())
	assert.Contains(t, sut.LastError(), "Failed to remove from cart")
	assert.False(t, sut.IsLineUpdating("line-2"))
}

func TestRemoveItem_OptimisticRemovalWhileInFlight(t *testing.T) {
	confirmed := twoLineCart()
	confirmed.Lines = confirmed.Lines[1:]
	confirmed.TotalQuantity = 2
	gate := make(chan struct{})
	routes := &fakeRoutes{cart: confirmed, block: gate}
	sut, _ := newTestStore(t, routes)
	sut.cart = twoLineCart()

	done := make(chan error, 1)
	go func() {
		done <- sut.RemoveItem(context.Background(), "line-1")
	}()

	require.Eventually(t, func() bool {
		return sut.Cart().Line("line-1") == nil && sut.IsLineUpdating("line-1")
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, sut.Cart().TotalQuantity)

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, confirmed, sut.Cart())
}

func TestClearCart_RemovesEachLine(t *testing.T) {
	// The confirmed cart still carries line-2 after the first removal,
	// so the second remove intent still has a line to target.
	remaining := twoLineCart()
	remaining.Lines = remaining.Lines[1:]
	remaining.TotalQuantity = 2
	routes := &fakeRoutes{cart: remaining}
	sut, _ := newTestStore(t, routes)
	sut.cart = twoLineCart()

	err := sut.ClearCart(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"DELETE /api/cart/remove", "DELETE /api/cart/remove"}, routes.seen())
}

func TestLoad_RevalidatesPersistedCart(t *testing.T) {
	confirmed := twoLineCart()
	routes := &fakeRoutes{cart: confirmed}
	sut, storage := newTestStore(t, routes)

	require.NoError(t, storage.Save(context.Background(), &Shell{
		Cart:   &ShellCart{ID: confirmed.ID, Cost: confirmed.Cost},
		IsOpen: true,
	}))

	sut.Load(context.Background())

	assert.Equal(t, []string{"GET /api/cart"}, routes.seen())
	assert.Equal(t, confirmed, sut.Cart())
	assert.True(t, sut.IsOpen())
	assert.Empty(t, sut.LastError())
}

func TestLoad_ExpiredRemoteCart_ResetsSilently(t *testing.T) {
	routes := &fakeRoutes{status: http.StatusNotFound, errMsg: "Cart not found"}
	sut, storage := newTestStore(t, routes)

	require.NoError(t, storage.Save(context.Background(), &Shell{
		Cart: &ShellCart{ID: "gid://shopify/Cart/expired"},
	}))

	sut.Load(context.Background())

	assert.Nil(t, sut.Cart())
	assert.Empty(t, sut.LastError())

	// The stale identifier is gone from storage too.
	shell, err := storage.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, shell.Cart)
}

func TestLoad_TransientFailure_KeepsState(t *testing.T) {
	routes := &fakeRoutes{status: http.StatusInternalServerError, errMsg: "Failed to fetch cart"}
	sut, storage := newTestStore(t, routes)
	prev := twoLineCart()
	sut.cart = prev.Clone()

	require.NoError(t, storage.Save(context.Background(), &Shell{
		Cart: &ShellCart{ID: prev.ID},
	}))

	sut.Load(context.Background())

	assert.Equal(t, prev, sut.Cart())
	assert.Empty(t, sut.LastError())
}

func TestLoad_NothingPersisted(t *testing.T) {
	routes := &fakeRoutes{}
	sut, _ := newTestStore(t, routes)

	sut.Load(context.Background())

	assert.Nil(t, sut.Cart())
	assert.Empty(t, routes.seen())
}

func TestToggleCart_PersistsOpenFlag(t *testing.T) {
	routes := &fakeRoutes{}
	sut, storage := newTestStore(t, routes)

	sut.ToggleCart(context.Background())
	assert.True(t, sut.IsOpen())

	shell, err := storage.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, shell.IsOpen)

	sut.ToggleCart(context.Background())
	assert.False(t, sut.IsOpen())
}

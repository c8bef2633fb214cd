package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/view"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type stubSource []domain.Product

func (s stubSource) Fetch(context.Context) ([]domain.Product, error) {
	return s, nil
}

func testProducts() stubSource {
	return stubSource{
		{ID: 1, Title: "Fjallraven Backpack", Price: decimal.RequireFromString("12.49"), Category: "men's clothing", Image: "https://fakestoreapi.com/img/1.jpg"},
		{ID: 9, Title: "WD 2TB Elements", Price: decimal.RequireFromString("64"), Category: "electronics"},
		{ID: 10, Title: "SanDisk SSD PLUS 1TB", Price: decimal.RequireFromString("109"), Category: "electronics"},
	}
}

// failingRepository loads an empty cart and refuses every write.
type failingRepository struct{}

func (failingRepository) Load(context.Context) (*domain.Cart, error) {
	return domain.NewCart(nil), nil
}

func (failingRepository) Save(context.Context, *domain.Cart) error {
	return errors.New("READONLY You can't write against a read only replica")
}

// unreadableRepository fails every read.
type unreadableRepository struct{}

func (unreadableRepository) Load(context.Context) (*domain.Cart, error) {
	return nil, errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

func (unreadableRepository) Save(context.Context, *domain.Cart) error {
	return nil
}

type testEnv struct {
	router  http.Handler
	manager *service.CartManager
	badge   *view.Badge
}

func newTestEnv(t *testing.T, repo repository.CartRepository) *testEnv {
	t.Helper()
	logger := testLogger()

	store := catalog.NewStore(testProducts(), logger)
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	manager := service.NewCartManager(repo, store, domain.DefaultShippingSurcharge, logger)
	badge := view.NewBadge(manager, logger)
	cartPage := view.NewCartPage(manager, logger)
	manager.Subscribe(badge)
	manager.Subscribe(cartPage)

	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	router := NewRouter(
		NewStorefrontHandler(store, manager, badge, cartPage, renderer, logger),
		NewAPIHandler(store, manager, logger),
		health.NewHandler(),
		logger,
		RouterConfig{CORS: middleware.DefaultCORSConfig()},
	)

	return &testEnv{router: router, manager: manager, badge: badge}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type cartEnvelope struct {
	Data  *CartResponse `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartEnvelope {
	t.Helper()
	var env cartEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// ============================================================================
// Catalog endpoints
// ============================================================================

func TestListProducts(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	tests := []struct {
		query string
		want  int
	}{
		{query: "", want: 3},
		{query: "?category=all", want: 3},
		{query: "?category=ALL", want: 3},
		{query: "?category=Electronics", want: 2},
		{query: "?category=jewelery", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/products"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))

			var body struct {
				Data []domain.Product `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Len(t, body.Data, tt.want)
		})
	}
}

func TestListCategories(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	rec := env.do(t, http.MethodGet, "/api/v1/categories", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":["men's clothing","electronics"]}`, rec.Body.String())
}

// ============================================================================
// Cart API
// ============================================================================

func TestGetCart_EmptyTotals(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	rec := env.do(t, http.MethodGet, "/api/v1/cart", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	body := decodeCart(t, rec)
	require.NotNil(t, body.Data)
	assert.Empty(t, body.Data.Items)
	assert.Equal(t, 0, body.Data.Totals.ItemCount)
	assert.Equal(t, "$0", body.Data.Totals.SubtotalDisplay)
	assert.Equal(t, "$30", body.Data.Totals.GrandTotalDisplay)
	assert.Equal(t, "30.00", body.Data.Totals.GrandTotal)
}

func TestAddItem_TwiceMerges(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Fjallraven Backpack added to the cart!", decodeCart(t, rec).Data.Message)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeCart(t, rec)
	require.Len(t, body.Data.Items, 1)
	assert.Equal(t, 2, body.Data.Items[0].Quantity)
	assert.Equal(t, "24.98", body.Data.Items[0].LineTotal)
	assert.Equal(t, "$24.98", body.Data.Totals.SubtotalDisplay)
	assert.Equal(t, "$54.98", body.Data.Totals.GrandTotalDisplay)
	assert.Equal(t, 2, env.badge.Count())
}

func TestAddItem_UnknownProductIsNoop(t *testing.T) {
	repo := memory.NewCartRepository()
	env := newTestEnv(t, repo)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":404}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeCart(t, rec)
	assert.Empty(t, body.Data.Items)
	assert.Empty(t, body.Data.Message)
	assert.Nil(t, repo.Raw())
}

func TestAddItem_Validation(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{name: "missing id", body: `{}`, wantCode: "VALIDATION_ERROR"},
		{name: "negative id", body: `{"product_id":-3}`, wantCode: "VALIDATION_ERROR"},
		{name: "malformed json", body: `{"product_id":`, wantCode: "INVALID_INPUT"},
		{name: "string id", body: `{"product_id":"one"}`, wantCode: "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/cart/items", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeCart(t, rec)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestAddItem_RejectsNonJSONContentType(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`product_id=1`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestAdjustQuantity(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())
	env.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":9}`)

	rec := env.do(t, http.MethodPatch, "/api/v1/cart/items/9", `{"delta":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decodeCart(t, rec).Data.Items[0].Quantity)

	rec = env.do(t, http.MethodPatch, "/api/v1/cart/items/9", `{"delta":-3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Data.Items)
	assert.False(t, env.badge.Visible())
}

func TestAdjustQuantity_ZeroDeltaRejected(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	rec := env.do(t, http.MethodPatch, "/api/v1/cart/items/9", `{"delta":0}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeCart(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, "must not be 0", body.Error.Fields["delta"])
}

func TestAdjustQuantity_DeltaOutOfRange(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())
	env.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":9}`)

	tests := []struct {
		body    string
		message string
	}{
		{body: `{"delta":10001}`, message: "must be at most 10000"},
		{body: `{"delta":-10001}`, message: "must be at least -10000"},
		{body: `{"delta":9223372036854775807}`, message: "must be at most 10000"},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			rec := env.do(t, http.MethodPatch, "/api/v1/cart/items/9", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decodeCart(t, rec).Error.Fields["delta"])
		})
	}

	cart, err := env.manager.Cart(context.Background())
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
}

func TestAdjustQuantity_BadProductID(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	rec := env.do(t, http.MethodPatch, "/api/v1/cart/items/abc", `{"delta":1}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeCart(t, rec).Error.Code)
}

func TestRemoveItem_Idempotent(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())
	env.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":9}`)
	env.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":10}`)

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodDelete, "/api/v1/cart/items/9", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeCart(t, rec)
		require.Len(t, body.Data.Items, 1)
		assert.Equal(t, int64(10), body.Data.Items[0].ID)
	}
}

func TestAddItem_StoreFailureIs500(t *testing.T) {
	env := newTestEnv(t, failingRepository{})

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeCart(t, rec).Error.Code)
	assert.NotContains(t, rec.Body.String(), "READONLY")
}

func TestGetCart_UnreadableSlotIsEmpty(t *testing.T) {
	env := newTestEnv(t, unreadableRepository{})

	rec := env.do(t, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeCart(t, rec)
	assert.Empty(t, body.Data.Items)
	assert.Equal(t, "$30", body.Data.Totals.GrandTotalDisplay)

	page := env.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Your Cart is Empty")

	// writes still refuse to overwrite a slot that could not be read
	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart/items/1", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// ============================================================================
// HTML storefront
// ============================================================================

func TestProductsPage(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	rec := env.do(t, http.MethodGet, "/?category=electronics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	html := rec.Body.String()
	assert.Contains(t, html, "WD 2TB Elements")
	assert.Contains(t, html, "SanDisk SSD PLUS 1TB")
	assert.NotContains(t, html, "Fjallraven Backpack")
	assert.Contains(t, html, `data-product-id="9"`)
}

func TestAddToCartForm_RedirectsWithFlash(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	rec := env.postForm(t, "/cart/items", url.Values{"product_id": {"10"}, "category": {"electronics"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?category=electronics", rec.Header().Get("Location"))

	var flash *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie {
			flash = c
		}
	}
	require.NotNil(t, flash)

	req := httptest.NewRequest(http.MethodGet, "/?category=electronics", nil)
	req.AddCookie(flash)
	page := httptest.NewRecorder()
	env.router.ServeHTTP(page, req)

	require.Equal(t, http.StatusOK, page.Code)
	html := page.Body.String()
	assert.Contains(t, html, "SanDisk SSD PLUS 1TB added to the cart!")
	assert.Contains(t, html, `<span id="cartCount" class="badge">1</span>`)
}

func TestAddToCartForm_UnknownProductNoFlash(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	rec := env.postForm(t, "/cart/items", url.Values{"product_id": {"77"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())
}

func TestAddToCartForm_BadID(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	rec := env.postForm(t, "/cart/items", url.Values{"product_id": {"x"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartPage_Flow(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	rec := env.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), view.StatusEmpty)
	assert.Contains(t, rec.Body.String(), view.EmptySummaryRow)
	assert.Contains(t, rec.Body.String(), `<dd id="finalAmount">$30</dd>`)

	env.postForm(t, "/cart/items", url.Values{"product_id": {"1"}})
	env.postForm(t, "/cart/items", url.Values{"product_id": {"1"}})

	rec = env.do(t, http.MethodGet, "/cart", "")
	html := rec.Body.String()
	assert.Contains(t, html, ">"+view.StatusFilled+"<")
	assert.Contains(t, html, `<dd id="totalPrice">$24.98</dd>`)
	assert.Contains(t, html, `<dd id="finalAmount">$54.98</dd>`)

	rec = env.postForm(t, "/cart/items/1/quantity", url.Values{"delta": {"-1"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))

	rec = env.postForm(t, "/cart/items/1/remove", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = env.do(t, http.MethodGet, "/cart", "")
	assert.Contains(t, rec.Body.String(), view.StatusEmpty)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestAdjustForm_ZeroDeltaRejected(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	rec := env.postForm(t, "/cart/items/1/quantity", url.Values{"delta": {"0"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdjustForm_DeltaOutOfRangeRejected(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	rec := env.postForm(t, "/cart/items/9/quantity", url.Values{"delta": {"9223372036854775807"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddToCartForm_StoreFailure(t *testing.T) {
	env := newTestEnv(t, failingRepository{})

	rec := env.postForm(t, "/cart/items", url.Values{"product_id": {"1"}})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "READONLY")
}

// ============================================================================
// Operational endpoints
// ============================================================================

func TestOperationalEndpoints(t *testing.T) {
	env := newTestEnv(t, memory.NewCartRepository())

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		rec := env.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := env.do(t, http.MethodGet, "/metrics", "")
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("http_requests_total")))
}

func TestRouterConfig_RequestTimeout(t *testing.T) {
	assert.Equal(t, defaultRequestTimeout, RouterConfig{}.requestTimeout())
	assert.Equal(t, 3*time.Second, RouterConfig{RequestTimeout: 3 * time.Second}.requestTimeout())
}

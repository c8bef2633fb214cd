package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// APIHandler serves the JSON catalog and cart endpoints.
type APIHandler struct {
	catalog *catalog.Store
	cart    *service.CartManager
	logger  *slog.Logger
}

// NewAPIHandler creates a new JSON API handler.
func NewAPIHandler(store *catalog.Store, cart *service.CartManager, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		catalog: store,
		cart:    cart,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// MaxQuantityDelta bounds a single quantity change.
const MaxQuantityDelta = 10000

// AdjustQuantityRequest is the JSON request body for changing a line quantity.
type AdjustQuantityRequest struct {
	Delta int `json:"delta" validate:"ne=0,min=-10000,max=10000"`
}

// --- Response DTOs ---

// CartLineResponse is one cart line with its line total.
type CartLineResponse struct {
	domain.CartLine
	LineTotal string `json:"line_total"`
}

// TotalsResponse is the order summary.
type TotalsResponse struct {
	ItemCount         int    `json:"item_count"`
	Subtotal          string `json:"subtotal"`
	Shipping          string `json:"shipping"`
	GrandTotal        string `json:"grand_total"`
	Currency          string `json:"currency"`
	SubtotalDisplay   string `json:"subtotal_display"`
	GrandTotalDisplay string `json:"grand_total_display"`
}

// CartResponse is the cart plus its totals.
type CartResponse struct {
	Items   []CartLineResponse `json:"items"`
	Totals  TotalsResponse     `json:"totals"`
	Message string             `json:"message,omitempty"`
}

func (h *APIHandler) cartResponse(cart *domain.Cart) CartResponse {
	totals := h.cart.ComputeTotals(cart)

	items := make([]CartLineResponse, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		items = append(items, CartLineResponse{
			CartLine:  line,
			LineTotal: line.LineTotal().StringFixed(2),
		})
	}

	return CartResponse{
		Items: items,
		Totals: TotalsResponse{
			ItemCount:         totals.ItemCount,
			Subtotal:          totals.Subtotal.StringFixed(2),
			Shipping:          totals.Shipping.StringFixed(2),
			GrandTotal:        totals.GrandTotal.StringFixed(2),
			Currency:          totals.Currency.String(),
			SubtotalDisplay:   totals.SubtotalDisplay(),
			GrandTotalDisplay: totals.GrandTotalDisplay(),
		},
	}
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
func (h *APIHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = domain.CategoryAll
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.catalog.FilterByCategory(category)})
}

// ListCategories handles GET /api/v1/categories
func (h *APIHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.catalog.Categories()
	if categories == nil {
		categories = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}

// GetCart handles GET /api/v1/cart
func (h *APIHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.Cart(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.cartResponse(cart)})
}

// AddItem handles POST /api/v1/cart/items
func (h *APIHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, product, err := h.cart.AddItem(r.Context(), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp := h.cartResponse(cart)
	if product != nil {
		resp.Message = addedMessage(*product)
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
}

// AdjustQuantity handles PATCH /api/v1/cart/items/{productId}
func (h *APIHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var req AdjustQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.cart.AdjustQuantity(r.Context(), productID, req.Delta)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.cartResponse(cart)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *APIHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.cart.RemoveItem(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.cartResponse(cart)})
}

// productIDParam parses the {productId} path segment.
func productIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "productId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.InvalidInput("product id must be an integer: " + strconv.Quote(raw))
	}
	return id, nil
}

func addedMessage(p domain.Product) string {
	return p.Title + " added to the cart!"
}

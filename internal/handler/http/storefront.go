package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/view"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

const flashCookie = "storefront_flash"

// StorefrontHandler serves the server-rendered product grid and cart page.
type StorefrontHandler struct {
	catalog  *catalog.Store
	cart     *service.CartManager
	badge    *view.Badge
	cartPage *view.CartPage
	renderer *view.Renderer
	logger   *slog.Logger
}

// NewStorefrontHandler creates a new HTML handler.
func NewStorefrontHandler(
	store *catalog.Store,
	cart *service.CartManager,
	badge *view.Badge,
	cartPage *view.CartPage,
	renderer *view.Renderer,
	logger *slog.Logger,
) *StorefrontHandler {
	return &StorefrontHandler{
		catalog:  store,
		cart:     cart,
		badge:    badge,
		cartPage: cartPage,
		renderer: renderer,
		logger:   logger,
	}
}

// Products handles GET /
func (h *StorefrontHandler) Products(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = domain.CategoryAll
	}

	// a page load re-reads the slot, like the widget did on every load
	_ = h.badge.Refresh(r.Context())

	h.render(w, r, view.PageProducts, view.Page{
		Title: "Storefront",
		Badge: view.BadgeModelOf(h.badge),
		Flash: h.popFlash(w, r),
		Content: view.ProductsModel{
			Category:   category,
			Categories: h.catalog.Categories(),
			Products:   h.catalog.FilterByCategory(category),
		},
	})
}

// Cart handles GET /cart
func (h *StorefrontHandler) Cart(w http.ResponseWriter, r *http.Request) {
	_ = h.cartPage.Refresh(r.Context())
	_ = h.badge.Refresh(r.Context())

	h.render(w, r, view.PageCart, view.Page{
		Title:   "Your Cart",
		Badge:   view.BadgeModelOf(h.badge),
		Flash:   h.popFlash(w, r),
		Content: h.cartPage.Model(),
	})
}

// AddItem handles POST /cart/items
func (h *StorefrontHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(r.PostFormValue("product_id"), 10, 64)
	if err != nil {
		h.writeError(w, r, apperrors.InvalidInput("product_id must be an integer"))
		return
	}

	_, product, err := h.cart.AddItem(r.Context(), productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if product != nil {
		setFlash(w, addedMessage(*product))
	}

	target := "/"
	if c := r.PostFormValue("category"); c != "" && !strings.EqualFold(c, domain.CategoryAll) {
		target = "/?category=" + url.QueryEscape(c)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// AdjustQuantity handles POST /cart/items/{productId}/quantity
func (h *StorefrontHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	delta, err := strconv.Atoi(r.PostFormValue("delta"))
	if err != nil || delta == 0 || delta < -MaxQuantityDelta || delta > MaxQuantityDelta {
		h.writeError(w, r, apperrors.InvalidInput("delta must be a non-zero integer between -10000 and 10000"))
		return
	}

	if _, err := h.cart.AdjustQuantity(r.Context(), productID, delta); err != nil {
		h.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// RemoveItem handles POST /cart/items/{productId}/remove
func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.cart.RemoveItem(r.Context(), productID); err != nil {
		h.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// render buffers the page so a template failure can still produce a 500.
func (h *StorefrontHandler) render(w http.ResponseWriter, r *http.Request, name string, page view.Page) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, name, page); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *StorefrontHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.WithContext(r.Context(), h.logger).ErrorContext(r.Context(), "storefront request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}

func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending acknowledgment, if any, and clears it.
func (h *StorefrontHandler) popFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing"
)

// ProductLookup resolves a product id against the catalog snapshot.
type ProductLookup interface {
	Product(id int64) (domain.Product, bool)
}

// CartManager owns the cart. Every operation runs under one mutex and
// read-modify-writes the whole persisted cart.
type CartManager struct {
	repo     repository.CartRepository
	catalog  ProductLookup
	shipping decimal.Decimal
	logger   *slog.Logger
	tracer   trace.Tracer

	mu sync.Mutex

	obsMu     sync.RWMutex
	observers []Observer
}

// NewCartManager creates a manager persisting through repo. shipping is the
// surcharge added to every grand total.
func NewCartManager(repo repository.CartRepository, catalog ProductLookup, shipping decimal.Decimal, logger *slog.Logger) *CartManager {
	return &CartManager{
		repo:     repo,
		catalog:  catalog,
		shipping: shipping,
		logger:   logger,
		tracer:   tracing.Tracer("github.com/utafrali/storefront/internal/service"),
	}
}

// Subscribe registers an observer for cart changes.
func (m *CartManager) Subscribe(o Observer) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	m.observers = append(m.observers, o)
}

// Cart returns the persisted cart. A slot that cannot be read is shown as an
// empty cart; the failure is only logged.
func (m *CartManager) Cart(ctx context.Context) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, err := m.load(ctx)
	if err != nil {
		logger.WithContext(ctx, m.logger).WarnContext(ctx, "cart unreadable, showing empty cart", slog.String("error", err.Error()))
		return domain.NewCart(nil), nil
	}
	return cart, nil
}

// Totals returns the totals of the persisted cart.
func (m *CartManager) Totals(ctx context.Context) (domain.Totals, error) {
	cart, err := m.Cart(ctx)
	if err != nil {
		return domain.Totals{}, err
	}
	return m.ComputeTotals(cart), nil
}

// ComputeTotals sums cart with the configured surcharge.
func (m *CartManager) ComputeTotals(cart *domain.Cart) domain.Totals {
	return domain.ComputeTotals(cart, m.shipping)
}

// AddItem puts one unit of productID in the cart. An id that is not in the
// catalog is ignored: the current cart is returned with a nil product.
func (m *CartManager) AddItem(ctx context.Context, productID int64) (*domain.Cart, *domain.Product, error) {
	product, ok := m.catalog.Product(productID)
	if !ok {
		logger.WithContext(ctx, m.logger).DebugContext(ctx, "add ignored, product not in catalog", slog.Int64("product_id", productID))
	}

	cart, applied, err := m.mutate(ctx, OpAdd, productID, func(c *domain.Cart) bool {
		if !ok {
			return false
		}
		c.Add(product)
		return true
	})
	if err != nil || !applied {
		return cart, nil, err
	}
	return cart, &product, nil
}

// AdjustQuantity changes the quantity of productID's line by delta. A result
// of zero or less removes the line. A missing line or a zero delta is a no-op.
func (m *CartManager) AdjustQuantity(ctx context.Context, productID int64, delta int) (*domain.Cart, error) {
	cart, _, err := m.mutate(ctx, OpAdjust, productID, func(c *domain.Cart) bool {
		if delta == 0 {
			return false
		}
		return c.Adjust(productID, delta)
	})
	return cart, err
}

// RemoveItem drops productID's line if present.
func (m *CartManager) RemoveItem(ctx context.Context, productID int64) (*domain.Cart, error) {
	cart, _, err := m.mutate(ctx, OpRemove, productID, func(c *domain.Cart) bool {
		return c.Remove(productID)
	})
	return cart, err
}

// mutate loads the cart, applies fn and, if fn reports a change, saves the
// cart and notifies observers once the lock is released.
func (m *CartManager) mutate(ctx context.Context, op Op, productID int64, fn func(*domain.Cart) bool) (*domain.Cart, bool, error) {
	ctx, span := m.tracer.Start(ctx, "CartManager."+string(op),
		trace.WithAttributes(
			attribute.String("cart.op", string(op)),
			attribute.Int64("product.id", productID),
		),
	)
	defer span.End()

	cart, applied, err := m.apply(ctx, fn)
	if err != nil {
		cartOperationsTotal.WithLabelValues(string(op), "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if !applied {
		cartOperationsTotal.WithLabelValues(string(op), "noop").Inc()
		span.SetAttributes(attribute.Bool("cart.applied", false))
		return cart, false, nil
	}

	cartOperationsTotal.WithLabelValues(string(op), "applied").Inc()
	span.SetAttributes(
		attribute.Bool("cart.applied", true),
		attribute.Int("cart.item_count", cart.ItemCount()),
	)
	logger.WithContext(ctx, m.logger).InfoContext(ctx, "cart updated",
		slog.String("op", string(op)),
		slog.Int64("product_id", productID),
		slog.Int("item_count", cart.ItemCount()),
	)

	m.notify(ctx, Change{Op: op, ProductID: productID, Cart: cart.Clone()})
	return cart, true, nil
}

func (m *CartManager) apply(ctx context.Context, fn func(*domain.Cart) bool) (*domain.Cart, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, err := m.load(ctx)
	if err != nil {
		return nil, false, err
	}
	if !fn(cart) {
		return cart, false, nil
	}
	if err := m.repo.Save(ctx, cart); err != nil {
		return nil, false, fmt.Errorf("save cart: %w", err)
	}
	return cart, true, nil
}

// load must be called with m.mu held. Malformed data is logged and replaced
// by an empty cart; the next save overwrites it. Other read failures are
// returned so a mutation never overwrites a slot it could not read.
func (m *CartManager) load(ctx context.Context) (*domain.Cart, error) {
	cart, err := m.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrMalformedCart) {
			logger.WithContext(ctx, m.logger).WarnContext(ctx, "discarding malformed cart", slog.String("error", err.Error()))
			return domain.NewCart(nil), nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

func (m *CartManager) notify(ctx context.Context, change Change) {
	m.obsMu.RLock()
	observers := make([]Observer, len(m.observers))
	copy(observers, m.observers)
	m.obsMu.RUnlock()

	for _, o := range observers {
		o.CartChanged(ctx, change)
	}
}

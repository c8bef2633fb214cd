package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
)

const (
	StatusFilled    = "Your Cart"
	StatusEmpty     = "Your Cart is Empty"
	EmptySummaryRow = "No items in the cart"
)

// LineModel is one rendered cart line.
type LineModel struct {
	ProductID int64
	Title     string
	Image     string
	Price     string
	Quantity  int
	LineTotal string
}

// CartPageModel is everything the cart page shows.
type CartPageModel struct {
	Status     string
	Lines      []LineModel
	Empty      bool
	ItemCount  int
	Subtotal   string
	Shipping   string
	GrandTotal string
}

// NewCartPageModel derives the cart page from a cart and its totals.
func NewCartPageModel(cart *domain.Cart, totals domain.Totals) CartPageModel {
	model := CartPageModel{
		Status:     StatusFilled,
		Empty:      totals.IsEmpty(),
		ItemCount:  totals.ItemCount,
		Subtotal:   totals.SubtotalDisplay(),
		Shipping:   totals.ShippingDisplay(),
		GrandTotal: totals.GrandTotalDisplay(),
	}
	if model.Empty {
		model.Status = StatusEmpty
		return model
	}

	model.Lines = make([]LineModel, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		model.Lines = append(model.Lines, LineModel{
			ProductID: line.ID,
			Title:     line.Title,
			Image:     line.Image,
			Price:     domain.FormatPrice(line.Price),
			Quantity:  line.Quantity,
			LineTotal: domain.FormatPrice(line.LineTotal()),
		})
	}
	return model
}

// CartPage keeps the rendered cart page model current.
type CartPage struct {
	reader CartReader
	logger *slog.Logger

	mu    sync.RWMutex
	model CartPageModel
}

// NewCartPage creates a cart page that starts out empty until refreshed.
func NewCartPage(reader CartReader, logger *slog.Logger) *CartPage {
	return &CartPage{
		reader: reader,
		logger: logger,
		model:  NewCartPageModel(&domain.Cart{}, reader.ComputeTotals(&domain.Cart{})),
	}
}

// Refresh re-reads the cart and rebuilds the model. On error the previous
// model is kept.
func (p *CartPage) Refresh(ctx context.Context) error {
	cart, err := p.reader.Cart(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "cart page refresh failed", slog.String("error", err.Error()))
		return err
	}

	model := NewCartPageModel(cart, p.reader.ComputeTotals(cart))

	p.mu.Lock()
	p.model = model
	p.mu.Unlock()
	return nil
}

// CartChanged implements service.Observer.
func (p *CartPage) CartChanged(ctx context.Context, _ service.Change) {
	_ = p.Refresh(ctx)
}

// Model returns the current page model.
func (p *CartPage) Model() CartPageModel {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model
}

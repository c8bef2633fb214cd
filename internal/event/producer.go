package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// TopicCartChanged carries one event per applied cart mutation.
const TopicCartChanged = "storefront.cart.changed"

// AggregateTypeCart is the aggregate type of cart events.
const AggregateTypeCart = "cart"

// SourceStorefront identifies events originating from this process.
const SourceStorefront = "storefront"

// CartChangedData is the payload of a cart.changed event.
type CartChangedData struct {
	Slot       string         `json:"slot"`
	Op         string         `json:"op"`
	ProductID  int64          `json:"product_id"`
	Items      []CartLineData `json:"items"`
	ItemCount  int            `json:"item_count"`
	Subtotal   string         `json:"subtotal"`
	Shipping   string         `json:"shipping"`
	GrandTotal string         `json:"grand_total"`
	Currency   string         `json:"currency"`
}

// CartLineData is one line within a cart event.
type CartLineData struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Publisher is the part of the Kafka producer the observer needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// TotalsComputer derives totals for a cart snapshot.
type TotalsComputer interface {
	ComputeTotals(cart *domain.Cart) domain.Totals
}

// Producer publishes cart changes to Kafka. It is a service.Observer.
type Producer struct {
	publisher Publisher
	totals    TotalsComputer
	slot      string
	logger    *slog.Logger
}

// NewProducer creates a cart event producer for the given slot.
func NewProducer(publisher Publisher, totals TotalsComputer, slot string, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		totals:    totals,
		slot:      slot,
		logger:    logger,
	}
}

// CartChanged publishes the change. Failures are logged and swallowed.
func (p *Producer) CartChanged(ctx context.Context, change service.Change) {
	if err := p.PublishCartChanged(ctx, change); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish cart changed event",
			slog.String("op", string(change.Op)),
			slog.Int64("product_id", change.ProductID),
			slog.String("error", err.Error()),
		)
	}
}

// PublishCartChanged builds and publishes a cart.changed event.
func (p *Producer) PublishCartChanged(ctx context.Context, change service.Change) error {
	cart := change.Cart
	if cart == nil {
		cart = &domain.Cart{}
	}
	totals := p.totals.ComputeTotals(cart)

	items := make([]CartLineData, len(cart.Lines))
	for i, line := range cart.Lines {
		items[i] = CartLineData{
			ProductID: line.ID,
			Title:     line.Title,
			Category:  line.Category,
			Price:     line.Price.StringFixed(2),
			Quantity:  line.Quantity,
		}
	}

	data := CartChangedData{
		Slot:       p.slot,
		Op:         string(change.Op),
		ProductID:  change.ProductID,
		Items:      items,
		ItemCount:  totals.ItemCount,
		Subtotal:   totals.Subtotal.StringFixed(2),
		Shipping:   totals.Shipping.StringFixed(2),
		GrandTotal: totals.GrandTotal.StringFixed(2),
		Currency:   totals.Currency.String(),
	}

	evt, err := pkgkafka.NewEvent("cart.changed", p.slot, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.changed event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	return p.publisher.Publish(ctx, TopicCartChanged, evt)
}

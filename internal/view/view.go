package view

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// CartReader is the read side of the cart manager the views render from.
type CartReader interface {
	Cart(ctx context.Context) (*domain.Cart, error)
	ComputeTotals(cart *domain.Cart) domain.Totals
}

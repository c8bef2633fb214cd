package service

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// Op names a cart mutation.
type Op string

const (
	OpAdd    Op = "add"
	OpAdjust Op = "adjust"
	OpRemove Op = "remove"
)

// Change describes one applied cart mutation.
type Change struct {
	Op        Op
	ProductID int64
	// Cart is a snapshot of the cart as it was persisted by this mutation.
	Cart *domain.Cart
}

// Observer is notified once after every applied mutation. Observers are
// called in subscription order, outside the manager lock, so they may read
// the cart back through the manager.
type Observer interface {
	CartChanged(ctx context.Context, change Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, change Change)

// CartChanged calls f.
func (f ObserverFunc) CartChanged(ctx context.Context, change Change) {
	f(ctx, change)
}

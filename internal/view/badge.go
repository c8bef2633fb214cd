package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/service"
)

// Badge is the item counter shown in the navigation bar.
type Badge struct {
	reader CartReader
	logger *slog.Logger

	mu    sync.RWMutex
	count int
}

// NewBadge creates a badge that reads counts through reader.
func NewBadge(reader CartReader, logger *slog.Logger) *Badge {
	return &Badge{reader: reader, logger: logger}
}

// Refresh re-reads the item count. On error the previous count is kept.
func (b *Badge) Refresh(ctx context.Context) error {
	cart, err := b.reader.Cart(ctx)
	if err != nil {
		b.logger.WarnContext(ctx, "badge refresh failed", slog.String("error", err.Error()))
		return err
	}

	b.mu.Lock()
	b.count = cart.ItemCount()
	b.mu.Unlock()
	return nil
}

// CartChanged implements service.Observer.
func (b *Badge) CartChanged(ctx context.Context, _ service.Change) {
	_ = b.Refresh(ctx)
}

// Count is the number of items in the cart.
func (b *Badge) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Visible reports whether the badge should be shown.
func (b *Badge) Visible() bool {
	return b.Count() > 0
}

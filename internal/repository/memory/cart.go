package memory

import (
	"context"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

// CartRepository keeps the serialized cart in process memory. It stores the
// encoded bytes rather than the struct so it behaves like the Redis slot.
type CartRepository struct {
	mu   sync.RWMutex
	data []byte
}

// NewCartRepository creates an empty in-memory slot.
func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

// Load decodes the stored bytes, or returns an empty cart if nothing was saved.
func (r *CartRepository) Load(_ context.Context) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.data == nil {
		return domain.NewCart(nil), nil
	}
	return repository.DecodeCart(r.data)
}

// Save replaces the stored bytes.
func (r *CartRepository) Save(_ context.Context, cart *domain.Cart) error {
	data, err := repository.EncodeCart(cart)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.data = data
	r.mu.Unlock()
	return nil
}

// SetRaw overwrites the slot with arbitrary bytes.
func (r *CartRepository) SetRaw(data []byte) {
	r.mu.Lock()
	r.data = append([]byte(nil), data...)
	r.mu.Unlock()
}

// Raw returns a copy of the stored bytes, nil if the slot is absent.
func (r *CartRepository) Raw() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.data == nil {
		return nil
	}
	return append([]byte(nil), r.data...)
}

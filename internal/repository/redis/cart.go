package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

const keyPrefix = "storefront:"

// CartRepository implements repository.CartRepository on one Redis key.
type CartRepository struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewCartRepository creates a Redis-backed cart repository for the given
// slot. A zero ttl stores the key without expiry.
func NewCartRepository(client *redis.Client, slot string, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		key:    keyPrefix + slot,
		ttl:    ttl,
	}
}

// Key returns the Redis key backing the slot.
func (r *CartRepository) Key() string {
	return r.key
}

// Load reads the slot from Redis.
func (r *CartRepository) Load(ctx context.Context) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NewCart(nil), nil
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	return repository.DecodeCart(data)
}

// Save writes the slot to Redis with the configured TTL.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := repository.EncodeCart(cart)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

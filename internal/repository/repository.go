package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
)

// ErrMalformedCart is returned alongside an empty cart when the stored value
// cannot be decoded.
var ErrMalformedCart = errors.New("malformed cart data")

// CartRepository persists the whole cart as one value in a single slot.
type CartRepository interface {
	// Load returns the stored cart. An absent slot yields an empty cart and no
	// error. A value that cannot be decoded yields an empty cart and an error
	// wrapping ErrMalformedCart.
	Load(ctx context.Context) (*domain.Cart, error)

	// Save overwrites the slot with the given cart.
	Save(ctx context.Context, cart *domain.Cart) error
}

// EncodeCart serializes the cart as a JSON array of lines.
func EncodeCart(cart *domain.Cart) ([]byte, error) {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("marshal cart: %w", err)
	}
	return data, nil
}

// DecodeCart parses a stored value. A JSON null decodes to an empty cart.
func DecodeCart(data []byte) (*domain.Cart, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return domain.NewCart(nil), fmt.Errorf("%w: %w", ErrMalformedCart, err)
	}
	return domain.NewCart(lines), nil
}

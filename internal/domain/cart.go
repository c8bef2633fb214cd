package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// CartLine is a product in the cart together with how many of it were added.
// It embeds Product so the serialized line is the product object plus a
// quantity field.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal is price × quantity, unrounded.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an insertion-ordered list of lines with at most one line per
// product id and no line with a quantity below 1.
type Cart struct {
	Lines []CartLine
}

// NewCart builds a cart from persisted lines, restoring the invariants:
// lines with a non-positive quantity are dropped and repeated ids are folded
// into their first occurrence.
func NewCart(lines []CartLine) *Cart {
	c := &Cart{Lines: make([]CartLine, 0, len(lines))}
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if i := c.FindLineIndex(line.ID); i >= 0 {
			c.Lines[i].Quantity += line.Quantity
			continue
		}
		c.Lines = append(c.Lines, line)
	}
	return c
}

// FindLineIndex returns the index of the line for productID, or -1.
func (c *Cart) FindLineIndex(productID int64) int {
	for i := range c.Lines {
		if c.Lines[i].ID == productID {
			return i
		}
	}
	return -1
}

// Line returns the line for productID.
func (c *Cart) Line(productID int64) (CartLine, bool) {
	if i := c.FindLineIndex(productID); i >= 0 {
		return c.Lines[i], true
	}
	return CartLine{}, false
}

// Add puts one more unit of p in the cart. An existing line keeps its
// position and its stored fields; otherwise a new line is appended.
func (c *Cart) Add(p Product) {
	if i := c.FindLineIndex(p.ID); i >= 0 {
		c.Lines[i].Quantity++
		return
	}
	c.Lines = append(c.Lines, CartLine{Product: p, Quantity: 1})
}

// Adjust changes the quantity of productID's line by delta. A resulting
// quantity of zero or less evicts the line. A quantity that would overflow
// int leaves the cart untouched. It reports whether the cart changed.
func (c *Cart) Adjust(productID int64, delta int) bool {
	i := c.FindLineIndex(productID)
	if i < 0 {
		return false
	}
	if delta > 0 && c.Lines[i].Quantity > math.MaxInt-delta {
		return false
	}
	qty := c.Lines[i].Quantity + delta
	if qty <= 0 {
		c.removeAt(i)
		return true
	}
	c.Lines[i].Quantity = qty
	return true
}

// Remove evicts productID's line and reports whether it was present.
func (c *Cart) Remove(productID int64) bool {
	i := c.FindLineIndex(productID)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

// ItemCount is the sum of all quantities.
func (c *Cart) ItemCount() int {
	var count int
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Clone returns a deep copy of the line slice.
func (c *Cart) Clone() *Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return &Cart{Lines: lines}
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

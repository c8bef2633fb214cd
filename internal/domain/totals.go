package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultShippingSurcharge is the flat fee added to every grand total.
var DefaultShippingSurcharge = decimal.NewFromInt(30)

// Currency is the unit every catalog price is quoted in.
var Currency = currency.USD

const currencySymbol = "$"

// Totals is the derived summary of a cart.
type Totals struct {
	ItemCount  int
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	GrandTotal decimal.Decimal
	Currency   currency.Unit
}

// ComputeTotals sums the cart. The subtotal is rounded to 2 places and the
// shipping surcharge is always added, also when the cart is empty.
func ComputeTotals(c *Cart, shipping decimal.Decimal) Totals {
	subtotal := decimal.Zero
	count := 0
	if c != nil {
		for _, line := range c.Lines {
			subtotal = subtotal.Add(line.LineTotal())
		}
		count = c.ItemCount()
	}
	subtotal = subtotal.Round(2)

	return Totals{
		ItemCount:  count,
		Subtotal:   subtotal,
		Shipping:   shipping,
		GrandTotal: subtotal.Add(shipping),
		Currency:   Currency,
	}
}

// IsEmpty reports whether the totals describe a cart with no items.
func (t Totals) IsEmpty() bool {
	return t.ItemCount == 0
}

// SubtotalDisplay is the subtotal as shown on the cart page.
func (t Totals) SubtotalDisplay() string {
	return t.display(t.Subtotal)
}

// GrandTotalDisplay is the grand total as shown on the cart page. An empty
// cart shows the bare surcharge.
func (t Totals) GrandTotalDisplay() string {
	return t.display(t.GrandTotal)
}

// ShippingDisplay is the surcharge as shown on the cart page.
func (t Totals) ShippingDisplay() string {
	return t.display(t.Shipping)
}

// empty carts print whole amounts ("$0", "$30"); otherwise two decimals.
func (t Totals) display(amount decimal.Decimal) string {
	if t.IsEmpty() {
		return currencySymbol + amount.String()
	}
	return FormatPrice(amount)
}

// FormatPrice renders an amount with two decimals, e.g. "$24.98".
func FormatPrice(amount decimal.Decimal) string {
	return currencySymbol + amount.StringFixed(2)
}

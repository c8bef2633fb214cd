package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices are written as JSON numbers, the same form the catalog sends.
	decimal.MarshalJSONWithoutQuotes = true
}

// CategoryAll is the filter value that selects every product.
const CategoryAll = "all"

// Rating is the customer rating the catalog reports for a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is one catalog entry. Products are read-only; the catalog endpoint
// is the only source of truth for them.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Rating      *Rating         `json:"rating,omitempty"`
}

// InCategory reports whether p belongs to category, ignoring case.
// CategoryAll matches every product.
func (p Product) InCategory(category string) bool {
	if strings.EqualFold(category, CategoryAll) {
		return true
	}
	return strings.EqualFold(p.Category, category)
}

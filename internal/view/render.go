package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Page names accepted by Renderer.Render.
const (
	PageProducts = "products"
	PageCart     = "cart"
)

// BadgeModel is the rendered state of the badge.
type BadgeModel struct {
	Count   int
	Visible bool
}

// ProductsModel is the product grid page.
type ProductsModel struct {
	Category   string
	Categories []string
	Products   []domain.Product
}

// Page wraps a page model with the shared layout data.
type Page struct {
	Title   string
	Badge   BadgeModel
	Flash   string
	Content any
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template once.
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"price":        func(d decimal.Decimal) string { return domain.FormatPrice(d) },
		"lower":        strings.ToLower,
		"emptySummary": func() string { return EmptySummaryRow },
	}

	pages := make(map[string]*template.Template, 2)
	for _, name := range []string{PageProducts, PageCart} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.gohtml",
			"templates/badge.gohtml",
			"templates/"+name+".gohtml",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Render writes the named page.
func (r *Renderer) Render(w io.Writer, name string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if err := tmpl.ExecuteTemplate(w, "layout", page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// BadgeModelOf snapshots a badge for rendering.
func BadgeModelOf(b *Badge) BadgeModel {
	count := b.Count()
	return BadgeModel{Count: count, Visible: count > 0}
}

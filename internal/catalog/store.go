package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
)

// Store holds the last successfully fetched catalog snapshot.
type Store struct {
	source Source
	logger *slog.Logger

	mu       sync.RWMutex
	products []domain.Product
	byID     map[int64]int
}

// NewStore creates an empty store backed by source.
func NewStore(source Source, logger *slog.Logger) *Store {
	return &Store{
		source: source,
		logger: logger,
		byID:   make(map[int64]int),
	}
}

// Load fetches the catalog and replaces the snapshot. On failure the previous
// snapshot is kept and the error is returned after being logged.
func (s *Store) Load(ctx context.Context) ([]domain.Product, error) {
	start := time.Now()
	products, err := s.source.Fetch(ctx)
	loadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		loadsTotal.WithLabelValues("error").Inc()
		s.logger.ErrorContext(ctx, "failed to load catalog", slog.String("error", err.Error()))
		return s.Products(), err
	}
	loadsTotal.WithLabelValues("success").Inc()

	byID := make(map[int64]int, len(products))
	for i, p := range products {
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = i
		}
	}

	s.mu.Lock()
	s.products = products
	s.byID = byID
	s.mu.Unlock()

	productsGauge.Set(float64(len(products)))
	s.logger.InfoContext(ctx, "catalog loaded", slog.Int("products", len(products)))

	return s.Products(), nil
}

// Run reloads the catalog every interval until ctx is cancelled. A
// non-positive interval returns immediately.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.Load(ctx)
		}
	}
}

// Products returns a copy of the whole snapshot.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// FilterByCategory returns the products in category, compared
// case-insensitively. "all" returns every product.
func (s *Store) FilterByCategory(category string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.InCategory(category) {
			out = append(out, p)
		}
	}
	return out
}

// Product looks up a product by id.
func (s *Store) Product(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.products[i], true
}

// Categories returns the distinct categories in first-seen order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

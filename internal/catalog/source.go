package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// Source fetches the full product list.
type Source interface {
	Fetch(ctx context.Context) ([]domain.Product, error)
}

// HTTPSource fetches the catalog as a JSON array from a remote endpoint.
type HTTPSource struct {
	client *httpclient.CircuitBreakerClient
	url    string
}

// NewHTTPSource creates a source that GETs url through client.
func NewHTTPSource(client *httpclient.CircuitBreakerClient, url string) *HTTPSource {
	return &HTTPSource{client: client, url: url}
}

// Fetch performs one GET of the catalog endpoint.
func (s *HTTPSource) Fetch(ctx context.Context) ([]domain.Product, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}
	defer resp.Body.Close()

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return products, nil
}

// internal/pricesource/source.go
package pricesource

import (
	"context"
	"errors"
	"fmt"

	"github.com/rovshanmuradov/tokenfolio/internal/domain"
)

// Source answers discovery and pricing queries for tokens.
type Source interface {
	// Search returns candidates matching a free-text query.
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
	// Trending returns currently trending candidates.
	Trending(ctx context.Context) ([]domain.SearchResult, error)
	// BatchPrices returns snapshots for all ids in a single request. An empty
	// id list yields an empty result without a request.
	BatchPrices(ctx context.Context, ids []string) ([]domain.PriceSnapshot, error)
}

// ErrRateLimited is returned when the API keeps answering 429.
var ErrRateLimited = errors.New("price source rate limit exceeded")

// APIError describes a non-successful HTTP response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("price source returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("price source returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Is lets errors.Is match ErrRateLimited on a 429 response.
func (e *APIError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == 429
}

// internal/domain/price.go
package domain

import "sort"

// PriceSnapshot is one refresh cycle's market data for a token.
type PriceSnapshot struct {
	ID           string    `json:"id"`
	CurrentPrice float64   `json:"current_price"`
	Change24hPct float64   `json:"change_24h_pct"`
	Sparkline7d  []float64 `json:"sparkline_7d"`
}

// SearchResult is a discovery candidate returned by the price source.
type SearchResult struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Thumb  string `json:"thumb"`
}

// Input maps a search result onto the shape accepted by the watchlist.
func (r SearchResult) Input() TokenInput {
	return TokenInput{
		ID:     r.ID,
		Symbol: r.Symbol,
		Name:   r.Name,
		Image:  r.Thumb,
	}
}

// IDSet is an order-insensitive set of token ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids, ignoring duplicates.
func NewIDSet(ids ...string) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Equal reports whether both sets hold the same ids.
func (s IDSet) Equal(other IDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the ids in lexical order. Used for stable request keys.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

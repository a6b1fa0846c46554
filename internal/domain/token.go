// internal/domain/token.go
package domain

import (
	"math"
	"strings"
)

// Token is a tracked instrument together with the quantity the user holds.
type Token struct {
	ID       string  `json:"id"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Holdings float64 `json:"holdings"`
}

// TokenInput is a candidate for addition to the watchlist. Holdings are
// always assigned by the store.
type TokenInput struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Image  string `json:"image"`
}

// DisplaySymbol returns the ticker in the upper-case form used for display.
func (t Token) DisplaySymbol() string {
	return strings.ToUpper(t.Symbol)
}

// WatchlistState is the durable record of the watchlist. Insertion order is
// the default display order.
type WatchlistState struct {
	Tokens []Token `json:"tokens"`
}

// IDs returns token ids in watchlist order.
func (s WatchlistState) IDs() []string {
	ids := make([]string, 0, len(s.Tokens))
	for _, t := range s.Tokens {
		ids = append(ids, t.ID)
	}
	return ids
}

// ValidHoldings reports whether v can be stored as a holding quantity.
func ValidHoldings(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// ClampHoldings coerces NaN, infinities and negative values to 0.
func ClampHoldings(v float64) float64 {
	if !ValidHoldings(v) {
		return 0
	}
	return v
}

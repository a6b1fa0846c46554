// internal/domain/portfolio.go
package domain

// Row is the display-ready view of one watchlist entry joined with its
// price snapshot. It is derived on every render and never stored.
type Row struct {
	Token
	CurrentPrice float64
	Change24hPct float64
	Value        float64
	Sparkline7d  []float64
	IsPositive   bool
}

// BreakdownItem is one token's share of the portfolio value.
type BreakdownItem struct {
	ID         string
	Name       string
	Symbol     string
	Value      float64
	Percentage float64
	Color      string
}

// Summary is the aggregated valuation of the watchlist.
type Summary struct {
	TotalValue float64
	Breakdown  []BreakdownItem
}

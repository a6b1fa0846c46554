// internal/portfolio/aggregate.go
package portfolio

import (
	"fmt"
	"sort"
	"unicode/utf16"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rovshanmuradov/tokenfolio/internal/domain"
)

const (
	colorSaturation = 0.6
	colorLightness  = 0.6
)

// Aggregate values the watchlist against snapshots. Tokens without a
// snapshot are priced at 0. The breakdown holds tokens with a positive
// value, largest first, ties in watchlist order.
func Aggregate(tokens []domain.Token, snapshots map[string]domain.PriceSnapshot) domain.Summary {
	values := make([]float64, len(tokens))
	total := 0.0
	for i, t := range tokens {
		values[i] = snapshots[t.ID].CurrentPrice * t.Holdings
		total += values[i]
	}

	breakdown := make([]domain.BreakdownItem, 0, len(tokens))
	for i, t := range tokens {
		if values[i] <= 0 {
			continue
		}
		pct := 0.0
		if total > 0 {
			pct = values[i] / total * 100
		}
		breakdown = append(breakdown, domain.BreakdownItem{
			ID:         t.ID,
			Name:       t.Name,
			Symbol:     t.DisplaySymbol(),
			Value:      values[i],
			Percentage: pct,
			Color:      Color(t.ID),
		})
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Value > breakdown[j].Value
	})

	return domain.Summary{TotalValue: total, Breakdown: breakdown}
}

// Hue hashes id into [0, 360) over its UTF-16 code units.
func Hue(id string) int {
	h := 0
	for _, u := range utf16.Encode([]rune(id)) {
		h = (h*31 + int(u)) % 360
	}
	return h
}

// Color returns the CSS colour of id, e.g. "hsl(120 60% 60%)".
func Color(id string) string {
	return fmt.Sprintf("hsl(%d 60%% 60%%)", Hue(id))
}

// ColorHex returns the same colour as Color in #rrggbb form for terminals.
func ColorHex(id string) string {
	return colorful.Hsl(float64(Hue(id)), colorSaturation, colorLightness).Hex()
}

// internal/portfolio/format.go
package portfolio

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"github.com/shopspring/decimal"
)

// FormatCurrency renders v as USD rounded to cents, with grouping.
func FormatCurrency(v float64) string {
	cents := decimal.NewFromFloat(v).Round(2).Shift(2).IntPart()
	return money.New(cents, money.USD).Display()
}

// FormatPrice keeps six decimals for sub-cent prices.
func FormatPrice(v float64) string {
	if v < 0.01 {
		return fmt.Sprintf("$%.6f", v)
	}
	return FormatCurrency(v)
}

// FormatChange renders a signed percentage with two decimals.
func FormatChange(v float64) string {
	sign := ""
	if v >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, v)
}

// FormatShare renders a breakdown percentage with one decimal.
func FormatShare(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// ParseHoldings converts user input into a holding quantity. Anything that
// is not a finite, non-negative number becomes 0.
func ParseHoldings(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0
	}
	return domain.ClampHoldings(d.InexactFloat64())
}

// FormatHoldings renders a quantity without trailing zeros.
func FormatHoldings(v float64) string {
	return decimal.NewFromFloat(v).String()
}

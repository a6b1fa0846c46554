package component

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"github.com/rovshanmuradov/tokenfolio/internal/portfolio"
	"github.com/rovshanmuradov/tokenfolio/internal/ui/style"
)

// Allocation renders the portfolio breakdown as a stacked bar with a legend
type Allocation struct {
	items    []domain.BreakdownItem
	width    int
	maxItems int
}

// NewAllocation creates a new allocation component
func NewAllocation(width int) *Allocation {
	return &Allocation{width: width, maxItems: 6}
}

// SetItems sets the breakdown to render
func (a *Allocation) SetItems(items []domain.BreakdownItem) *Allocation {
	a.items = items
	return a
}

// SetWidth sets the bar width
func (a *Allocation) SetWidth(width int) *Allocation {
	a.width = width
	return a
}

// SetMaxItems limits the legend length; the rest are folded into "Other"
func (a *Allocation) SetMaxItems(n int) *Allocation {
	a.maxItems = n
	return a
}

// View renders the bar and legend
func (a *Allocation) View() string {
	palette := style.DefaultPalette()
	if len(a.items) == 0 {
		return lipgloss.NewStyle().Foreground(palette.TextMuted).Render("No holdings with a price yet")
	}

	var b strings.Builder
	b.WriteString(a.bar())
	b.WriteString("\n")

	shown := a.items
	var other float64
	if a.maxItems > 0 && len(shown) > a.maxItems {
		for _, item := range shown[a.maxItems:] {
			other += item.Percentage
		}
		shown = shown[:a.maxItems]
	}

	label := lipgloss.NewStyle().Foreground(palette.Text)
	muted := lipgloss.NewStyle().Foreground(palette.TextMuted)
	for _, item := range shown {
		b.WriteString(fmt.Sprintf("%s %s %s %s\n",
			style.Swatch(portfolio.ColorHex(item.ID)),
			label.Render(fmt.Sprintf("%-8s", item.Symbol)),
			muted.Render(fmt.Sprintf("%7s", portfolio.FormatShare(item.Percentage))),
			muted.Render(portfolio.FormatCurrency(item.Value)),
		))
	}
	if other > 0 {
		b.WriteString(muted.Render(fmt.Sprintf("  %-8s %7s", "Other", portfolio.FormatShare(other))))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// bar draws one colored segment per item, sized by percentage
func (a *Allocation) bar() string {
	if a.width <= 0 {
		return ""
	}

	var result strings.Builder
	used := 0
	for i, item := range a.items {
		cells := int(math.Round(item.Percentage / 100 * float64(a.width)))
		if i == len(a.items)-1 {
			cells = a.width - used
		}
		if cells > a.width-used {
			cells = a.width - used
		}
		if cells <= 0 {
			continue
		}
		used += cells
		result.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(portfolio.ColorHex(item.ID))).
			Render(strings.Repeat("█", cells)))
	}
	return result.String()
}

package component

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResample(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		width int
		want  []float64
	}{
		{"empty", nil, 10, nil},
		{"zero width", []float64{1, 2}, 0, nil},
		{"shorter than width", []float64{1, 2, 3}, 10, []float64{1, 2, 3}},
		{"averages buckets", []float64{1, 3, 5, 7}, 2, []float64{2, 6}},
		{"uneven buckets", []float64{1, 2, 3, 4, 5, 6}, 4, []float64{1, 2.5, 4, 5.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resample(tt.data, tt.width))
		})
	}
}

func TestSparklinePlain(t *testing.T) {
	assert.Equal(t, "▁▄█", NewSparkline(10).SetData([]float64{0, 50, 100}).Plain())
	assert.Equal(t, "▄▄", NewSparkline(10).SetData([]float64{3, 3}).Plain())
	assert.Equal(t, "·····", NewSparkline(5).SetData(nil).Plain())

	long := make([]float64, 168)
	for i := range long {
		long[i] = float64(i)
	}
	plain := NewSparkline(12).SetData(long).Plain()
	assert.Equal(t, 12, len([]rune(plain)))
	assert.True(t, strings.HasPrefix(plain, "▁"))
	assert.True(t, strings.HasSuffix(plain, "█"))
}

func TestSparklineView(t *testing.T) {
	line := NewSparkline(3).SetData([]float64{0, 50, 100}).SetColor(lipgloss.Color("#50FA7B"))
	view := line.View()
	assert.Equal(t, 3, lipgloss.Width(view))
	assert.Contains(t, view, line.Plain())

	assert.Empty(t, NewSparkline(0).View())
	assert.Contains(t, NewSparkline(4).View(), "····")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Bitcoin", Truncate("Bitcoin", 10))
	assert.Equal(t, "Bitc…", Truncate("Bitcoin", 5))
	assert.Equal(t, "B", Truncate("Bitcoin", 1))
	assert.Equal(t, "", Truncate("Bitcoin", 0))
	assert.Equal(t, "日本…", Truncate("日本語テキスト", 3))

	styled := lipgloss.NewStyle().Bold(true).Render("BTC")
	assert.Equal(t, styled, Truncate(styled, 3))
}

func TestTableViewContainsRows(t *testing.T) {
	table := NewTable().
		AddColumn("Token", 0, lipgloss.Left).
		AddColumn("Price", 12, lipgloss.Right).
		SetWidth(60)
	table.SetRows([]TableRow{
		{Data: []string{"Bitcoin (BTC)", "$50,000.00"}},
		{Data: []string{"Ethereum (ETH)", "$3,000.00"}, Colors: map[int]lipgloss.Color{1: lipgloss.Color("#FF5555")}},
	})

	view := table.View()
	assert.Contains(t, view, "Token")
	assert.Contains(t, view, "Bitcoin (BTC)")
	assert.Contains(t, view, "$3,000.00")
	assert.Equal(t, 2, table.RowCount())

	table.SetSelectedRow(1)
	assert.Equal(t, 1, table.SelectedRow())
	table.SetRows([]TableRow{{Data: []string{"only"}}})
	assert.Equal(t, 0, table.SelectedRow(), "selection is clamped when rows shrink")
}

func TestAllocationView(t *testing.T) {
	empty := NewAllocation(20).View()
	assert.Contains(t, empty, "No holdings")

	items := []domain.BreakdownItem{
		{ID: "bitcoin", Symbol: "BTC", Value: 750, Percentage: 75},
		{ID: "ethereum", Symbol: "ETH", Value: 150, Percentage: 15},
		{ID: "solana", Symbol: "SOL", Value: 100, Percentage: 10},
	}
	view := NewAllocation(20).SetMaxItems(2).SetItems(items).View()
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "BTC")
	assert.Contains(t, lines[1], "75.0%")
	assert.Contains(t, lines[3], "Other")
	assert.Contains(t, lines[3], "10.0%")
	assert.Equal(t, 20, lipgloss.Width(lines[0]))
}

func TestTableWithoutBorder(t *testing.T) {
	rows := []TableRow{{Data: []string{"Bitcoin (BTC)"}}}

	bordered := NewTable().AddColumn("Token", 20, lipgloss.Left)
	bordered.SetRows(rows)
	assert.Contains(t, bordered.View(), "╭")

	plain := NewTable().AddColumn("Token", 20, lipgloss.Left).SetShowBorder(false)
	plain.SetRows(rows)
	view := plain.View()
	assert.NotContains(t, view, "╭")
	assert.Contains(t, view, "Bitcoin (BTC)")
}

package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/tokenfolio/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// TableRow represents a row of data. Colors optionally sets the
// foreground of individual cells by column index.
type TableRow struct {
	Data   []string
	Colors map[int]lipgloss.Color
}

// Table represents a data table component
type Table struct {
	columns     []TableColumn
	rows        []TableRow
	width       int
	selectedRow int

	// Styling
	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	borderStyle      lipgloss.Style

	// Configuration
	showBorder bool
	selectable bool
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		showBorder: true,
		selectable: true,
	}
}

// AddColumn adds a column to the table. A zero width shares the space left
// by fixed-width columns.
func (t *Table) AddColumn(header string, width int, align lipgloss.Position) *Table {
	t.columns = append(t.columns, TableColumn{
		Header: header,
		Width:  width,
		Align:  align,
	})
	return t
}

// SetRows sets all table rows
func (t *Table) SetRows(rows []TableRow) *Table {
	t.rows = rows
	if t.selectedRow >= len(rows) {
		t.selectedRow = max(len(rows)-1, 0)
	}
	return t
}

// SetWidth sets the total table width
func (t *Table) SetWidth(width int) *Table {
	t.width = width
	return t
}

// SetSelectedRow sets the currently selected row
func (t *Table) SetSelectedRow(index int) *Table {
	if index >= 0 && index < len(t.rows) {
		t.selectedRow = index
	}
	return t
}

// SelectedRow returns the currently selected row index
func (t *Table) SelectedRow() int {
	return t.selectedRow
}

// SetSelectable enables/disables row selection
func (t *Table) SetSelectable(selectable bool) *Table {
	t.selectable = selectable
	return t
}

// SetShowBorder enables/disables table border
func (t *Table) SetShowBorder(show bool) *Table {
	t.showBorder = show
	return t
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return "No columns defined"
	}

	widths := t.columnWidths()
	var content strings.Builder

	var header []string
	for i, col := range t.columns {
		header = append(header, renderCell(col.Header, widths[i], col.Align, t.headerStyle))
	}
	content.WriteString(strings.Join(header, "│"))
	content.WriteString("\n")

	var separator []string
	for i := range t.columns {
		// cells carry one column of padding on each side
		separator = append(separator, strings.Repeat("─", widths[i]+2))
	}
	content.WriteString(strings.Join(separator, "┼"))

	for rowIndex, row := range t.rows {
		selected := t.selectable && rowIndex == t.selectedRow
		var cells []string
		for i, col := range t.columns {
			cellData := ""
			if i < len(row.Data) {
				cellData = row.Data[i]
			}
			cellStyle := t.rowStyle
			if selected {
				cellStyle = t.selectedRowStyle
			} else if color, ok := row.Colors[i]; ok {
				cellStyle = cellStyle.Foreground(color)
			}
			cells = append(cells, renderCell(cellData, widths[i], col.Align, cellStyle))
		}
		content.WriteString("\n")
		content.WriteString(strings.Join(cells, "│"))
	}

	result := content.String()
	if t.showBorder {
		result = t.borderStyle.Render(result)
	}
	return result
}

// renderCell truncates content to width and renders it with padding
func renderCell(content string, width int, align lipgloss.Position, cellStyle lipgloss.Style) string {
	return cellStyle.Width(width + 2).Align(align).Render(Truncate(content, width))
}

// Truncate shortens s to width runes, marking the cut with an ellipsis.
// Styled text that already fits is left intact.
func Truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(runes) <= width || lipgloss.Width(s) <= width {
		return s
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}

// columnWidths resolves zero-width columns against the table width
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.columns))
	fixed, auto := 0, 0
	for i, col := range t.columns {
		widths[i] = col.Width
		if col.Width > 0 {
			fixed += col.Width
		} else {
			auto++
		}
	}
	if auto == 0 {
		return widths
	}

	// padding, separators and border
	chrome := len(t.columns)*2 + len(t.columns) - 1 + 2
	share := 8
	if available := t.width - fixed - chrome; available/auto > share {
		share = available / auto
	}
	for i := range widths {
		if widths[i] <= 0 {
			widths[i] = share
		}
	}
	return widths
}

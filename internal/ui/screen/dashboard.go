package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"github.com/rovshanmuradov/tokenfolio/internal/portfolio"
	"github.com/rovshanmuradov/tokenfolio/internal/prices"
	"github.com/rovshanmuradov/tokenfolio/internal/ui"
	"github.com/rovshanmuradov/tokenfolio/internal/ui/component"
	"github.com/rovshanmuradov/tokenfolio/internal/ui/router"
	"github.com/rovshanmuradov/tokenfolio/internal/ui/style"
	"go.uber.org/zap"
)

const sparklineWidth = 14

// DashboardScreen shows the portfolio summary and the paginated watchlist
type DashboardScreen struct {
	svc    *ui.Services
	logger *zap.Logger
	width  int
	height int
	keyMap ui.KeyMap

	// UI components
	table      *component.Table
	allocation *component.Allocation
	pager      *portfolio.Pager
	paginator  paginator.Model
	spinner    spinner.Model
	help       help.Model
	editor     textinput.Model

	// State
	cursor  int    // row index within the current page
	editing string // token id whose holdings are being edited

	// Styling
	palette style.Palette
	styles  style.Styles
}

// NewDashboardScreen creates the dashboard
func NewDashboardScreen(svc *ui.Services) *DashboardScreen {
	palette := style.DefaultPalette()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(palette.Primary)

	pg := paginator.New()
	pg.Type = paginator.Arabic

	editor := textinput.New()
	editor.Placeholder = "0.00"
	editor.CharLimit = 32
	editor.Width = 20
	editor.Prompt = "› "

	table := component.NewTable().
		AddColumn("Token", 0, lipgloss.Left).
		AddColumn("Price", 14, lipgloss.Right).
		AddColumn("24h %", 9, lipgloss.Right).
		AddColumn("Sparkline (7d)", sparklineWidth, lipgloss.Left).
		AddColumn("Holdings", 12, lipgloss.Right).
		AddColumn("Value", 16, lipgloss.Right)

	return &DashboardScreen{
		svc:        svc,
		logger:     svc.Logger.Named("dashboard"),
		keyMap:     ui.DefaultKeyMap(),
		table:      table,
		allocation: component.NewAllocation(40),
		pager:      portfolio.NewPager(svc.PageSize),
		paginator:  pg,
		spinner:    sp,
		help:       help.New(),
		editor:     editor,
		palette:    palette,
		styles:     style.NewStyles(palette),
	}
}

// Init initializes the screen
func (d *DashboardScreen) Init() tea.Cmd {
	return d.spinner.Tick
}

// Route implements router.Screen
func (d *DashboardScreen) Route() ui.Route {
	return ui.RouteDashboard
}

// SetSize sets the screen dimensions
func (d *DashboardScreen) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.table.SetWidth(width)
	d.allocation.SetWidth(style.AdaptiveWidth(width, 50))
	// short terminals fold more of the breakdown into "Other"
	d.allocation.SetMaxItems(min(max(height/6, 2), 6))
	d.help.Width = width
}

// Editing returns the id of the token being edited, if any
func (d *DashboardScreen) Editing() string {
	return d.editing
}

// Update handles messages
func (d *DashboardScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case tea.KeyMsg:
		if d.editing != "" {
			return d.updateEditor(msg)
		}
		return d.handleKey(msg)
	}

	return d, nil
}

func (d *DashboardScreen) handleKey(msg tea.KeyMsg) (router.Screen, tea.Cmd) {
	page := d.page()

	switch {
	case key.Matches(msg, d.keyMap.Quit):
		return d, tea.Quit

	case key.Matches(msg, d.keyMap.Help):
		d.help.ShowAll = !d.help.ShowAll

	case key.Matches(msg, d.keyMap.Up):
		if d.cursor > 0 {
			d.cursor--
		}

	case key.Matches(msg, d.keyMap.Down):
		if d.cursor < len(page.Rows)-1 {
			d.cursor++
		}

	case key.Matches(msg, d.keyMap.PrevPage):
		d.pager.Prev(page.TotalRows)
		d.cursor = 0

	case key.Matches(msg, d.keyMap.NextPage):
		d.pager.Next(page.TotalRows)
		d.cursor = 0

	case key.Matches(msg, d.keyMap.Add):
		return d, ui.Navigate(ui.RouteDiscovery)

	case key.Matches(msg, d.keyMap.Refresh):
		return d, d.svc.RefreshPrices()

	case key.Matches(msg, d.keyMap.Remove):
		row, ok := d.selected(page)
		if !ok {
			return d, nil
		}
		d.svc.Store.RemoveToken(row.ID)
		d.logger.Info("Token removed", zap.String("id", row.ID))
		return d, d.svc.SyncPrices()

	case key.Matches(msg, d.keyMap.Edit):
		row, ok := d.selected(page)
		if !ok {
			return d, nil
		}
		d.editing = row.ID
		d.editor.SetValue(portfolio.FormatHoldings(row.Holdings))
		d.editor.CursorEnd()
		return d, d.editor.Focus()
	}

	return d, nil
}

// updateEditor routes keys to the holdings editor. Leaving the row commits.
func (d *DashboardScreen) updateEditor(msg tea.KeyMsg) (router.Screen, tea.Cmd) {
	switch {
	case key.Matches(msg, d.keyMap.Discard):
		d.closeEditor()
		return d, nil

	case key.Matches(msg, d.keyMap.Commit):
		d.commitEditor()
		return d, nil

	case msg.Type == tea.KeyUp || msg.Type == tea.KeyDown:
		d.commitEditor()
		return d.handleKey(msg)
	}

	var cmd tea.Cmd
	d.editor, cmd = d.editor.Update(msg)
	return d, cmd
}

func (d *DashboardScreen) commitEditor() {
	value := portfolio.ParseHoldings(d.editor.Value())
	d.svc.Store.SetHoldings(d.editing, value)
	d.logger.Debug("Holdings updated", zap.String("id", d.editing), zap.Float64("holdings", value))
	d.closeEditor()
}

func (d *DashboardScreen) closeEditor() {
	d.editing = ""
	d.editor.Blur()
	d.editor.Reset()
}

func (d *DashboardScreen) page() portfolio.Page {
	return d.pager.Project(d.svc.Store.Tokens(), d.svc.Prices.Snapshots())
}

func (d *DashboardScreen) selected(page portfolio.Page) (domain.Row, bool) {
	if d.cursor < 0 || d.cursor >= len(page.Rows) {
		return domain.Row{}, false
	}
	return page.Rows[d.cursor], true
}

// View renders the dashboard
func (d *DashboardScreen) View() string {
	tokens := d.svc.Store.Tokens()
	state := d.svc.Prices.State()
	page := d.pager.Project(tokens, state.Snapshots)
	if d.cursor >= len(page.Rows) {
		d.cursor = max(len(page.Rows)-1, 0)
	}

	var b strings.Builder
	b.WriteString(d.styles.Title.Render("Token Portfolio"))
	b.WriteString("\n\n")
	b.WriteString(d.renderSummary(tokens, state))
	b.WriteString("\n\n")

	b.WriteString(d.styles.Subtitle.Render(fmt.Sprintf("Watchlist (%d)", len(tokens))))
	b.WriteString("\n")
	if len(tokens) == 0 {
		b.WriteString(d.styles.Muted.Render("Your watchlist is empty. Press a to add tokens."))
		b.WriteString("\n")
	} else {
		d.table.SetRows(d.tableRows(page))
		d.table.SetSelectedRow(d.cursor)
		b.WriteString(d.table.View())
		b.WriteString("\n")

		d.paginator.PerPage = d.pager.PageSize()
		d.paginator.SetTotalPages(page.TotalRows)
		d.paginator.Page = page.Page - 1
		first := (page.Page-1)*d.pager.PageSize() + 1
		last := first + len(page.Rows) - 1
		b.WriteString(d.styles.Muted.Render(fmt.Sprintf("%d-%d of %d results", first, last, page.TotalRows)))
		b.WriteString("   ")
		b.WriteString(d.styles.Label.Render("Page " + d.paginator.View()))
		b.WriteString("\n")
	}

	if d.editing != "" {
		b.WriteString("\n")
		b.WriteString(d.styles.Label.Render("Holdings for " + d.editingLabel(tokens) + ": "))
		b.WriteString(d.editor.View())
		b.WriteString("\n")
		b.WriteString(d.help.View(d.keyMap.EditingHelp()))
	} else {
		b.WriteString("\n")
		b.WriteString(d.help.View(d.keyMap.ContextualHelp(ui.RouteDashboard)))
	}

	return b.String()
}

func (d *DashboardScreen) renderSummary(tokens []domain.Token, state prices.State) string {
	summary := portfolio.Aggregate(tokens, state.Snapshots)

	var left strings.Builder
	left.WriteString(d.styles.Label.Render("Portfolio Total"))
	left.WriteString("\n")
	left.WriteString(d.styles.Value.Render(portfolio.FormatCurrency(summary.TotalValue)))
	left.WriteString("\n\n")

	status := "Last updated: never"
	if !state.LastUpdated.IsZero() {
		status = "Last updated: " + state.LastUpdated.Format("15:04:05")
	}
	left.WriteString(d.styles.Muted.Render(status))
	switch {
	case state.Loading:
		left.WriteString(" " + d.spinner.View() + d.styles.Muted.Render(" refreshing"))
	case len(tokens) > 0 && !d.svc.Prices.IsCurrent():
		left.WriteString("\n" + d.styles.Error.Render("Prices may be outdated, press r to retry"))
	}

	right := d.styles.Label.Render("Portfolio Breakdown") + "\n" + d.allocation.SetItems(summary.Breakdown).View()

	return lipgloss.JoinHorizontal(lipgloss.Top,
		d.styles.Panel.Width(style.AdaptiveWidth(d.width, 40)).Render(left.String()),
		" ",
		d.styles.Panel.Render(right),
	)
}

func (d *DashboardScreen) tableRows(page portfolio.Page) []component.TableRow {
	rows := make([]component.TableRow, 0, len(page.Rows))
	for _, r := range page.Rows {
		changeColor := d.palette.Change(r.IsPositive)
		spark := component.NewSparkline(sparklineWidth).SetData(r.Sparkline7d).SetColor(changeColor).View()
		rows = append(rows, component.TableRow{
			Data: []string{
				fmt.Sprintf("%s (%s)", r.Name, r.DisplaySymbol()),
				portfolio.FormatPrice(r.CurrentPrice),
				portfolio.FormatChange(r.Change24hPct),
				spark,
				portfolio.FormatHoldings(r.Holdings),
				portfolio.FormatCurrency(r.Value),
			},
			Colors: map[int]lipgloss.Color{2: changeColor},
		})
	}
	return rows
}

func (d *DashboardScreen) editingLabel(tokens []domain.Token) string {
	for _, t := range tokens {
		if t.ID == d.editing {
			return t.DisplaySymbol()
		}
	}
	return d.editing
}

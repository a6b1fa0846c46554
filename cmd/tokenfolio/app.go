package main

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/tokenfolio/internal/prices"
	"github.com/rovshanmuradov/tokenfolio/internal/ui"
	"github.com/rovshanmuradov/tokenfolio/internal/ui/router"
	"github.com/rovshanmuradov/tokenfolio/internal/ui/screen"
	"github.com/rovshanmuradov/tokenfolio/internal/ui/style"
	"go.uber.org/zap"
)

const noticeTTL = 5 * time.Second

type notice struct {
	id    int
	text  string
	level ui.NoticeLevel
}

// AppModel represents the main TUI application model
type AppModel struct {
	svc    *ui.Services
	router *router.Router
	logger *zap.Logger
	keyMap ui.KeyMap
	width  int
	height int

	notice    *notice
	noticeSeq int
}

// NewAppModel creates a new application model
func NewAppModel(svc *ui.Services) *AppModel {
	return &AppModel{
		svc:    svc,
		router: router.New(screen.NewDashboardScreen(svc)),
		logger: svc.Logger.Named("app"),
		keyMap: ui.DefaultKeyMap(),
	}
}

// Init loads prices for the persisted watchlist and starts listening to
// the bus
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.router.Init(),
		m.svc.Bus.Listen(),
		m.svc.SyncPrices(),
		m.svc.ScheduleRefresh(),
	)
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.BusMsg:
		_, cmd := m.Update(msg.Msg)
		return m, tea.Batch(cmd, m.svc.Bus.Listen())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.router.Update(msg)

	case tea.KeyMsg:
		if m.notice != nil && key.Matches(msg, m.keyMap.Dismiss) && m.canDismiss() {
			m.notice = nil
			return m, nil
		}
		return m, m.router.Update(msg)

	case ui.RouterMsg:
		return m, m.handleNavigation(msg.To)

	case ui.BackMsg:
		return m, m.router.Pop()

	case ui.PricesFetchedMsg:
		outcome := m.svc.Prices.Apply(msg.Result)
		m.logger.Debug("Price fetch settled",
			zap.Uint64("gen", msg.Result.Gen),
			zap.Stringer("outcome", outcome))
		if m.svc.Metrics != nil {
			m.svc.Metrics.RecordPriceFetch(outcome.String())
		}
		if outcome == prices.Failed {
			return m, m.showNotice(prices.Notification(m.svc.Prices.Err()), ui.NoticeError)
		}
		return m, nil

	case ui.RefreshTickMsg:
		return m, tea.Batch(m.svc.RefreshPrices(), m.svc.ScheduleRefresh())

	case ui.NoticeMsg:
		return m, m.showNotice(msg.Text, msg.Level)

	case ui.DismissNoticeMsg:
		if m.notice != nil && m.notice.id == msg.ID {
			m.notice = nil
		}
		return m, nil
	}

	return m, m.router.Update(msg)
}

// handleNavigation handles navigation to different screens
func (m *AppModel) handleNavigation(route ui.Route) tea.Cmd {
	if m.router.Has(route) {
		return nil
	}

	switch route {
	case ui.RouteDiscovery:
		return m.router.Push(screen.NewDiscoveryScreen(m.svc))
	default:
		return nil
	}
}

// canDismiss keeps "x" available as text input everywhere but the idle
// dashboard
func (m *AppModel) canDismiss() bool {
	dash, ok := m.router.Current().(*screen.DashboardScreen)
	return ok && dash.Editing() == ""
}

func (m *AppModel) showNotice(text string, level ui.NoticeLevel) tea.Cmd {
	m.noticeSeq++
	id := m.noticeSeq
	m.notice = &notice{id: id, text: text, level: level}
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return ui.DismissNoticeMsg{ID: id}
	})
}

// Notice returns the text of the visible notification
func (m *AppModel) Notice() string {
	if m.notice == nil {
		return ""
	}
	return m.notice.text
}

// View renders the application
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var b strings.Builder
	if m.notice != nil {
		b.WriteString(m.renderNotice())
		b.WriteString("\n")
	}
	b.WriteString(m.router.View())
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m *AppModel) renderNotice() string {
	palette := style.DefaultPalette()
	color := palette.Info
	switch m.notice.level {
	case ui.NoticeSuccess:
		color = palette.Success
	case ui.NoticeError:
		color = palette.Error
	}

	text := m.notice.text
	if m.router.Route() == ui.RouteDashboard {
		text += "  (x to dismiss)"
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(color).
		Padding(0, 1).
		Render(text)
}

package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/tokenfolio/internal/discovery"
	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"github.com/rovshanmuradov/tokenfolio/internal/ui"
	"github.com/rovshanmuradov/tokenfolio/internal/ui/component"
	"github.com/rovshanmuradov/tokenfolio/internal/ui/router"
	"github.com/rovshanmuradov/tokenfolio/internal/ui/style"
)

const discoveryListHeight = 12

// DiscoveryScreen lets the user search for tokens and add them to the
// watchlist
type DiscoveryScreen struct {
	svc     *ui.Services
	session *discovery.Session
	width   int
	height  int
	keyMap  ui.KeyMap

	input   textinput.Model
	spinner spinner.Model
	help    help.Model

	cursor int
	hint   string

	styles style.Styles
}

// NewDiscoveryScreen creates the discovery screen on top of the shared
// session
func NewDiscoveryScreen(svc *ui.Services) *DiscoveryScreen {
	palette := style.DefaultPalette()

	input := textinput.New()
	input.Placeholder = "Search tokens (e.g. ETH, SOL)..."
	input.CharLimit = 64
	input.Width = 40
	input.Prompt = "🔍 "

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(palette.Primary)

	return &DiscoveryScreen{
		svc:     svc,
		session: svc.Discovery,
		keyMap:  ui.DefaultKeyMap(),
		input:   input,
		spinner: sp,
		help:    help.New(),
		styles:  style.NewStyles(palette),
	}
}

// Init opens the session and loads the trending list when needed
func (s *DiscoveryScreen) Init() tea.Cmd {
	return tea.Batch(
		s.input.Focus(),
		s.spinner.Tick,
		s.svc.Lookup(s.session.Open()),
	)
}

// Route implements router.Screen
func (s *DiscoveryScreen) Route() ui.Route {
	return ui.RouteDiscovery
}

// SetSize sets the screen dimensions
func (s *DiscoveryScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.help.Width = width
	if width > 10 {
		s.input.Width = min(width-10, 60)
	}
}

// Update handles messages
func (s *DiscoveryScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case ui.DebounceMsg:
		return s, s.svc.Lookup(s.session.Debounced(msg.Tag))

	case ui.DiscoveryResultMsg:
		if s.session.Apply(msg.Response) {
			s.clampCursor()
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s, nil
}

func (s *DiscoveryScreen) handleKey(msg tea.KeyMsg) (router.Screen, tea.Cmd) {
	list := s.session.Display()

	switch {
	case key.Matches(msg, s.keyMap.ForceQuit):
		return s, tea.Quit

	case key.Matches(msg, s.keyMap.Cancel):
		s.session.Cancel()
		return s, ui.Back()

	case key.Matches(msg, s.keyMap.Confirm):
		added, closed := s.session.Confirm()
		if !closed {
			s.hint = "Select at least one token to add"
			return s, nil
		}
		return s, tea.Batch(
			s.svc.SyncPrices(),
			ui.Back(),
			ui.Notify(fmt.Sprintf("Added %d token(s) to your watchlist", added), ui.NoticeSuccess),
		)

	case key.Matches(msg, s.keyMap.Toggle):
		if s.cursor < len(list) {
			s.session.Toggle(list[s.cursor].ID)
			s.hint = ""
		}
		return s, nil

	case msg.Type == tea.KeyUp:
		if s.cursor > 0 {
			s.cursor--
		}
		return s, nil

	case msg.Type == tea.KeyDown:
		if s.cursor < len(list)-1 {
			s.cursor++
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	_, armed := s.session.SetQuery(s.input.Value())
	if armed {
		s.cursor = 0
	}
	if strings.TrimSpace(s.input.Value()) == "" {
		s.cursor = 0
		cmd = tea.Batch(cmd, s.svc.Lookup(s.session.Open()))
	}
	return s, cmd
}

func (s *DiscoveryScreen) clampCursor() {
	if n := len(s.session.Display()); s.cursor >= n {
		s.cursor = max(n-1, 0)
	}
}

// View renders the discovery screen
func (s *DiscoveryScreen) View() string {
	var b strings.Builder

	b.WriteString(s.styles.Title.Render("Add Tokens"))
	b.WriteString("\n\n")
	b.WriteString(s.input.View())
	b.WriteString("\n\n")

	heading := "Trending"
	if strings.TrimSpace(s.session.QueryText()) != "" {
		heading = "Search results"
	}
	b.WriteString(s.styles.Subtitle.Render(heading))
	if s.session.Loading() {
		b.WriteString(" " + s.spinner.View())
	}
	b.WriteString("\n")

	list := s.session.Display()
	switch {
	case s.session.Err() != "":
		b.WriteString(s.styles.Error.Render(s.session.Err()))
		b.WriteString("\n")
	case len(list) == 0 && !s.session.Loading():
		b.WriteString(s.styles.Muted.Render("No tokens found"))
		b.WriteString("\n")
	default:
		b.WriteString(s.renderList(list))
	}

	if selected := len(s.session.Selected()); selected > 0 {
		b.WriteString("\n")
		b.WriteString(s.styles.Info.Render(fmt.Sprintf("%d selected", selected)))
	}
	if s.hint != "" {
		b.WriteString("\n")
		b.WriteString(s.styles.Muted.Render(s.hint))
	}

	b.WriteString("\n\n")
	b.WriteString(s.help.View(s.keyMap.ContextualHelp(ui.RouteDiscovery)))
	return b.String()
}

// renderList shows a window of the candidates around the cursor
func (s *DiscoveryScreen) renderList(list []domain.SearchResult) string {
	start := 0
	if s.cursor >= discoveryListHeight {
		start = s.cursor - discoveryListHeight + 1
	}
	end := min(start+discoveryListHeight, len(list))

	nameWidth := 32
	if s.width > 40 {
		nameWidth = min(s.width-24, 48)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		r := list[i]
		mark := "[ ]"
		lineStyle := lipgloss.NewStyle()
		switch {
		case s.session.IsAdded(r.ID):
			mark = "[✓]"
			lineStyle = s.styles.Muted
		case s.session.IsSelected(r.ID):
			mark = "[x]"
			lineStyle = s.styles.Selected
		}

		line := fmt.Sprintf("%s %s %s", mark,
			component.Truncate(r.Name, nameWidth),
			s.styles.Muted.Render("("+strings.ToUpper(r.Symbol)+")"))
		if s.session.IsAdded(r.ID) {
			line += s.styles.Muted.Render("  added")
		}

		if i == s.cursor {
			b.WriteString(s.styles.Cursor.Render("›") + " ")
		} else {
			b.WriteString("  ")
		}
		b.WriteString(lineStyle.Render(line))
		b.WriteString("\n")
	}
	if len(list) > end {
		b.WriteString(s.styles.Muted.Render(fmt.Sprintf("  … %d more", len(list)-end)))
		b.WriteString("\n")
	}
	return b.String()
}

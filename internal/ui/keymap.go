package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding

	// Dashboard
	Add     key.Binding
	Remove  key.Binding
	Edit    key.Binding
	Refresh key.Binding
	Dismiss key.Binding

	// Holdings editor
	Commit  key.Binding
	Discard key.Binding

	// Discovery
	Toggle  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←/h", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→/l", "next page"),
		),

		Add: key.NewBinding(
			key.WithKeys("a", "+"),
			key.WithHelp("a", "add token"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit holdings"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r", "refresh prices"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss"),
		),

		Commit: key.NewBinding(
			key.WithKeys("enter", "tab"),
			key.WithHelp("enter", "save"),
		),
		Discard: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "discard"),
		),

		// Printable keys belong to the query input on the discovery screen.
		Toggle: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "select"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add selected"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Bindings adapts a flat list of bindings to help.KeyMap
type Bindings []key.Binding

// ShortHelp implements help.KeyMap
func (b Bindings) ShortHelp() []key.Binding {
	return b
}

// FullHelp implements help.KeyMap
func (b Bindings) FullHelp() [][]key.Binding {
	return [][]key.Binding{b}
}

// ContextualHelp returns help bindings for the current route
func (k KeyMap) ContextualHelp(route Route) Bindings {
	switch route {
	case RouteDashboard:
		return Bindings{k.Up, k.Down, k.PrevPage, k.NextPage, k.Add, k.Edit, k.Remove, k.Refresh, k.Help, k.Quit}
	case RouteDiscovery:
		arrows := key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "move"))
		return Bindings{arrows, k.Toggle, k.Confirm, k.Cancel}
	default:
		return Bindings{k.Help, k.Quit}
	}
}

// EditingHelp returns help bindings while the holdings editor is open
func (k KeyMap) EditingHelp() Bindings {
	return Bindings{k.Commit, k.Discard}
}

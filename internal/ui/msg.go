package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/tokenfolio/internal/discovery"
	"github.com/rovshanmuradov/tokenfolio/internal/prices"
)

// Tea message types for UI communication

// RouterMsg asks the application to open a screen
type RouterMsg struct {
	To Route
}

// BackMsg asks the application to close the current screen
type BackMsg struct{}

// PricesFetchedMsg carries a finished price fetch back to the update loop
type PricesFetchedMsg struct {
	Result prices.Result
}

// DiscoveryResultMsg carries a finished search or trending lookup
type DiscoveryResultMsg struct {
	Response discovery.Response
}

// DebounceMsg is published when the search debounce timer fires
type DebounceMsg struct {
	Tag uint64
}

// RefreshTickMsg triggers a periodic price refresh
type RefreshTickMsg struct {
	At time.Time
}

// NoticeLevel classifies a transient notification
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeError
)

// NoticeMsg shows a dismissible notification
type NoticeMsg struct {
	Text  string
	Level NoticeLevel
}

// DismissNoticeMsg hides notification ID if it is still shown
type DismissNoticeMsg struct {
	ID int
}

// Route represents different screens in the application
type Route int

const (
	RouteDashboard Route = iota
	RouteDiscovery
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteDashboard:
		return "dashboard"
	case RouteDiscovery:
		return "discovery"
	default:
		return "unknown"
	}
}

// Navigate returns a command opening route
func Navigate(route Route) tea.Cmd {
	return func() tea.Msg {
		return RouterMsg{To: route}
	}
}

// Back returns a command closing the current screen
func Back() tea.Cmd {
	return func() tea.Msg {
		return BackMsg{}
	}
}

// Notify returns a command showing a notification
func Notify(text string, level NoticeLevel) tea.Cmd {
	return func() tea.Msg {
		return NoticeMsg{Text: text, Level: level}
	}
}

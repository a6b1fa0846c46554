package ui

import (
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// SafeModel wraps a tea.Model with panic recovery so a bug in one update
// does not leave the terminal in raw mode
type SafeModel struct {
	model  tea.Model
	logger *zap.Logger
	bus    *Bus
	panics int
}

// NewSafeModel creates a new safe UI wrapper
func NewSafeModel(model tea.Model, logger *zap.Logger) *SafeModel {
	return &SafeModel{
		model:  model,
		logger: logger.Named("recovery"),
	}
}

// WithBus makes the wrapper keep listening on bus when an update for a
// bus message panics, since the wrapped model re-arms the listener only
// after a successful update
func (sm *SafeModel) WithBus(bus *Bus) *SafeModel {
	sm.bus = bus
	return sm
}

// Init wraps the Init method with panic recovery
func (sm *SafeModel) Init() (cmd tea.Cmd) {
	defer sm.recoverFromPanic("Init", &cmd)
	return sm.model.Init()
}

// Update wraps the Update method with panic recovery
func (sm *SafeModel) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	model = sm
	defer func() {
		if r := recover(); r != nil {
			sm.handlePanic("Update", r, &cmd)
			if _, ok := msg.(BusMsg); ok && sm.bus != nil {
				cmd = sm.bus.Listen()
			}
		}
	}()
	sm.model, cmd = sm.model.Update(msg)
	return sm, cmd
}

// View wraps the View method with panic recovery
func (sm *SafeModel) View() (view string) {
	defer func() {
		if r := recover(); r != nil {
			sm.panics++
			sm.logger.Error("View panic recovered",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())))
			view = "UI Error: View crashed. Press Ctrl+C to exit."
		}
	}()
	return sm.model.View()
}

// Panics returns the number of recovered panics
func (sm *SafeModel) Panics() int {
	return sm.panics
}

// Unwrap returns the wrapped model
func (sm *SafeModel) Unwrap() tea.Model {
	return sm.model
}

// recoverFromPanic recovers from panics in UI methods
func (sm *SafeModel) recoverFromPanic(method string, cmd *tea.Cmd) {
	if r := recover(); r != nil {
		sm.handlePanic(method, r, cmd)
	}
}

func (sm *SafeModel) handlePanic(method string, r any, cmd *tea.Cmd) {
	sm.panics++
	sm.logger.Error("UI method panic recovered",
		zap.String("method", method),
		zap.Any("panic", r),
		zap.String("stack", string(debug.Stack())))
	*cmd = nil
}

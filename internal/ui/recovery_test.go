package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// mockModel is a test UI model
type mockModel struct {
	panicOnInit   bool
	panicOnUpdate bool
	panicOnView   bool
	updates       int
}

func (m *mockModel) Init() tea.Cmd {
	if m.panicOnInit {
		panic("init panic test")
	}
	return tea.Quit
}

func (m *mockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.updates++
	if m.panicOnUpdate {
		panic("update panic test")
	}
	return m, tea.Quit
}

func (m *mockModel) View() string {
	if m.panicOnView {
		panic("view panic test")
	}
	return "Test UI"
}

func TestSafeModelPassesThrough(t *testing.T) {
	inner := &mockModel{}
	safe := NewSafeModel(inner, zap.NewNop())

	assert.NotNil(t, safe.Init())
	model, cmd := safe.Update(DebounceMsg{Tag: 1})
	assert.Same(t, safe, model)
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, inner.updates)
	assert.Equal(t, "Test UI", safe.View())
	assert.Zero(t, safe.Panics())
	assert.Same(t, inner, safe.Unwrap())
}

func TestSafeModelRecoversPanics(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	safe := NewSafeModel(&mockModel{panicOnInit: true, panicOnUpdate: true, panicOnView: true}, zap.New(core))

	var cmd tea.Cmd
	require.NotPanics(t, func() { cmd = safe.Init() })
	assert.Nil(t, cmd)

	var model tea.Model
	require.NotPanics(t, func() { model, cmd = safe.Update(DebounceMsg{Tag: 1}) })
	assert.Same(t, safe, model)
	assert.Nil(t, cmd)

	assert.Contains(t, safe.View(), "View crashed")
	assert.Equal(t, 3, safe.Panics())

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "Init", entries[0].ContextMap()["method"])
	assert.Equal(t, "Update", entries[1].ContextMap()["method"])
}

func TestSafeModelKeepsListeningAfterBusPanic(t *testing.T) {
	bus := NewBus(4, zap.NewNop())
	safe := NewSafeModel(&mockModel{panicOnUpdate: true}, zap.NewNop()).WithBus(bus)

	_, cmd := safe.Update(BusMsg{Msg: DebounceMsg{Tag: 1}})
	require.NotNil(t, cmd, "listener is re-armed")

	require.True(t, bus.Send(DebounceMsg{Tag: 2}))
	assert.Equal(t, BusMsg{Msg: DebounceMsg{Tag: 2}}, cmd())

	_, cmd = safe.Update(DebounceMsg{Tag: 3})
	assert.Nil(t, cmd, "only bus messages re-arm")
	assert.Equal(t, 2, safe.Panics())
}

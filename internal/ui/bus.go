package ui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// DefaultBusSize is the buffer of a bus created with a non-positive size
const DefaultBusSize = 64

// BusMsg wraps a message delivered through the Bus so the receiver knows
// to listen again
type BusMsg struct {
	Msg tea.Msg
}

// Bus delivers messages from timers and other goroutines into the update
// loop without blocking the sender
type Bus struct {
	ch      chan tea.Msg
	sent    uint64
	dropped uint64
	logger  *zap.Logger
}

// NewBus creates a bus with the given buffer size
func NewBus(size int, logger *zap.Logger) *Bus {
	if size <= 0 {
		size = DefaultBusSize
	}
	return &Bus{
		ch:     make(chan tea.Msg, size),
		logger: logger.Named("bus"),
	}
}

// Send publishes msg without blocking. It reports whether msg was queued.
func (b *Bus) Send(msg tea.Msg) bool {
	select {
	case b.ch <- msg:
		atomic.AddUint64(&b.sent, 1)
		return true
	default:
		dropped := atomic.AddUint64(&b.dropped, 1)
		b.logger.Warn("UI bus full, message dropped",
			zap.String("type", typeName(msg)),
			zap.Uint64("dropped", dropped))
		return false
	}
}

// Listen returns a tea.Cmd that waits for the next bus message
func (b *Bus) Listen() tea.Cmd {
	return func() tea.Msg {
		return BusMsg{Msg: <-b.ch}
	}
}

// Stats returns the number of sent and dropped messages
func (b *Bus) Stats() (sent, dropped uint64) {
	return atomic.LoadUint64(&b.sent), atomic.LoadUint64(&b.dropped)
}

func typeName(msg tea.Msg) string {
	switch msg.(type) {
	case DebounceMsg:
		return "debounce"
	case NoticeMsg:
		return "notice"
	default:
		return "other"
	}
}

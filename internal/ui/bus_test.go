package ui

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBusNonBlocking(t *testing.T) {
	bus := NewBus(10, zap.NewNop())

	for i := 0; i < 10; i++ {
		assert.True(t, bus.Send(DebounceMsg{Tag: uint64(i)}))
	}

	start := time.Now()
	for i := 0; i < 100; i++ {
		assert.False(t, bus.Send(DebounceMsg{Tag: 99}))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "Send must not block")

	sent, dropped := bus.Stats()
	assert.EqualValues(t, 10, sent)
	assert.EqualValues(t, 100, dropped)
}

func TestBusConcurrentSend(t *testing.T) {
	bus := NewBus(100, zap.NewNop())

	var wg sync.WaitGroup
	const goroutines, perGoroutine = 10, 100
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				bus.Send(NoticeMsg{Text: "x"})
			}
		}()
	}
	wg.Wait()

	sent, dropped := bus.Stats()
	assert.EqualValues(t, goroutines*perGoroutine, sent+dropped)
	assert.EqualValues(t, 100, sent)
}

func TestBusListenWrapsMessage(t *testing.T) {
	bus := NewBus(0, zap.NewNop())
	require.True(t, bus.Send(DebounceMsg{Tag: 7}))

	msg := bus.Listen()()
	wrapped, ok := msg.(BusMsg)
	require.True(t, ok)
	assert.Equal(t, DebounceMsg{Tag: 7}, wrapped.Msg)
}

package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/tokenfolio/internal/discovery"
	"github.com/rovshanmuradov/tokenfolio/internal/metrics"
	"github.com/rovshanmuradov/tokenfolio/internal/prices"
	"github.com/rovshanmuradov/tokenfolio/internal/watchlist"
	"go.uber.org/zap"
)

// Services bundles the core components shared by the screens. Every field
// except Ctx is touched only from the update loop; blocking calls run
// inside the commands built below.
type Services struct {
	Ctx       context.Context
	Store     *watchlist.Store
	Prices    *prices.Cache
	Discovery *discovery.Session
	Bus       *Bus
	Logger    *zap.Logger
	// Metrics is optional.
	Metrics   *metrics.Collector

	PageSize        int
	RefreshInterval time.Duration
}

// SyncPrices points the price cache at the current watchlist and returns
// the fetch to run, if any.
func (s *Services) SyncPrices() tea.Cmd {
	ids := s.Store.IDs()
	if s.Metrics != nil {
		s.Metrics.SetWatchlistSize(len(ids))
	}
	return FetchPrices(s.Prices, s.Prices.Sync(ids))
}

// RefreshPrices refetches the current watchlist regardless of the key.
func (s *Services) RefreshPrices() tea.Cmd {
	return FetchPrices(s.Prices, s.Prices.Refresh())
}

// Lookup runs a discovery request.
func (s *Services) Lookup(req *discovery.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	session, ctx := s.Discovery, s.Ctx
	return func() tea.Msg {
		return DiscoveryResultMsg{Response: session.Run(ctx, req)}
	}
}

// ScheduleRefresh arms the next auto-refresh tick. It is a no-op when
// auto-refresh is off.
func (s *Services) ScheduleRefresh() tea.Cmd {
	if s.RefreshInterval <= 0 {
		return nil
	}
	return tea.Tick(s.RefreshInterval, func(t time.Time) tea.Msg {
		return RefreshTickMsg{At: t}
	})
}

// FetchPrices wraps a blocking price fetch in a command.
func FetchPrices(cache *prices.Cache, req *prices.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	return func() tea.Msg {
		return PricesFetchedMsg{Result: cache.Fetch(req)}
	}
}

package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"github.com/rovshanmuradov/tokenfolio/internal/watchlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	mu          sync.Mutex
	searches    []string
	trendCalls  int
	results     map[string][]domain.SearchResult
	trending    []domain.SearchResult
	searchErr   error
	trendingErr error
}

func (f *fakeSource) Search(_ context.Context, q string) ([]domain.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, q)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results[q], nil
}

func (f *fakeSource) Trending(context.Context) ([]domain.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trendCalls++
	if f.trendingErr != nil {
		return nil, f.trendingErr
	}
	return f.trending, nil
}

func (f *fakeSource) BatchPrices(context.Context, []string) ([]domain.PriceSnapshot, error) {
	return nil, nil
}

func (f *fakeSource) searchCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

func cand(id string) domain.SearchResult {
	return domain.SearchResult{ID: id, Name: id, Symbol: id, Thumb: "thumb/" + id}
}

func newTestSession(t *testing.T, src *fakeSource, opts Options) (*Session, *watchlist.Store) {
	t.Helper()
	store := watchlist.NewStore(watchlist.NewMemoryPersister(), zap.NewNop())
	store.Load()
	s := NewSession(src, store, opts, zap.NewNop())
	t.Cleanup(func() { s.Cancel() })
	return s, store
}

func TestDebounceCollapsesKeystrokes(t *testing.T) {
	src := &fakeSource{results: map[string][]domain.SearchResult{"et": {cand("ethereum")}}}
	fired := make(chan uint64, 4)
	s, _ := newTestSession(t, src, Options{
		Debounce:   300 * time.Millisecond,
		OnDebounce: func(tag uint64) { fired <- tag },
	})

	_, armed := s.SetQuery("e")
	require.True(t, armed)
	time.Sleep(100 * time.Millisecond)
	_, armed = s.SetQuery("et")
	require.True(t, armed)

	var tag uint64
	select {
	case tag = <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("debounce never fired")
	}

	req := s.Debounced(tag)
	require.NotNil(t, req)
	assert.Equal(t, "et", req.Query)
	require.True(t, s.Apply(s.Run(context.Background(), req)))

	select {
	case extra := <-fired:
		assert.Nil(t, s.Debounced(extra), "superseded timer must not search")
	case <-time.After(500 * time.Millisecond):
	}

	assert.Equal(t, []string{"et"}, src.searchCalls())
	assert.Equal(t, "et", s.DebouncedQuery())
	assert.Equal(t, []domain.SearchResult{cand("ethereum")}, s.Display())
}

func TestDebouncedRejectsStaleTag(t *testing.T) {
	s, _ := newTestSession(t, &fakeSource{}, Options{Debounce: time.Hour})

	first, _ := s.SetQuery("b")
	second, _ := s.SetQuery("bt")

	assert.Nil(t, s.Debounced(first))
	assert.NotNil(t, s.Debounced(second))
}

func TestBlankQueryShowsTrendingWithoutSearch(t *testing.T) {
	src := &fakeSource{trending: []domain.SearchResult{cand("pepe")}}
	s, _ := newTestSession(t, src, Options{Debounce: time.Hour})

	req := s.Open()
	require.NotNil(t, req)
	assert.Equal(t, KindTrending, req.Kind)
	assert.True(t, s.Loading())
	s.Apply(s.Run(context.Background(), req))
	assert.Nil(t, s.Open(), "trending is kept once loaded")

	tag, _ := s.SetQuery("sol")
	tagBlank, armed := s.SetQuery("   ")

	assert.False(t, armed)
	assert.Nil(t, s.Debounced(tag))
	assert.Nil(t, s.Debounced(tagBlank))
	assert.Empty(t, src.searchCalls())
	assert.Equal(t, []domain.SearchResult{cand("pepe")}, s.Display())
	assert.Equal(t, 1, src.trendCalls)
}

func TestOutOfOrderSearchResultsKeepLatest(t *testing.T) {
	src := &fakeSource{results: map[string][]domain.SearchResult{
		"bi":  {cand("bitcoin"), cand("binancecoin")},
		"bit": {cand("bitcoin")},
	}}
	s, _ := newTestSession(t, src, Options{Debounce: time.Hour})

	tag, _ := s.SetQuery("bi")
	older := s.Debounced(tag)
	tag, _ = s.SetQuery("bit")
	newer := s.Debounced(tag)

	newerResp := s.Run(context.Background(), newer)
	olderResp := s.Run(context.Background(), older)

	assert.True(t, s.Apply(newerResp))
	assert.False(t, s.Apply(olderResp))
	assert.Equal(t, []domain.SearchResult{cand("bitcoin")}, s.Results())
}

func TestSearchFailureIsInline(t *testing.T) {
	src := &fakeSource{searchErr: errors.New("502")}
	s, _ := newTestSession(t, src, Options{Debounce: time.Hour})

	tag, _ := s.SetQuery("x")
	req := s.Debounced(tag)
	assert.True(t, s.Loading())
	s.Apply(s.Run(context.Background(), req))

	assert.False(t, s.Loading())
	assert.Equal(t, "Failed to search tokens", s.Err())
	assert.Empty(t, s.Display())

	src.searchErr = nil
	tag, _ = s.SetQuery("xy")
	s.Apply(s.Run(context.Background(), s.Debounced(tag)))
	assert.Empty(t, s.Err())
}

func TestTrendingFailure(t *testing.T) {
	src := &fakeSource{trendingErr: errors.New("timeout")}
	s, _ := newTestSession(t, src, Options{Debounce: time.Hour})

	s.Apply(s.Run(context.Background(), s.Open()))

	assert.Equal(t, "Failed to load trending tokens", s.Err())
	assert.NotNil(t, s.Open(), "failed trending can be retried")
}

func TestToggle(t *testing.T) {
	s, store := newTestSession(t, &fakeSource{}, Options{Debounce: time.Hour})
	store.AddTokens([]domain.TokenInput{{ID: "bitcoin", Symbol: "btc"}})

	assert.True(t, s.Toggle("ethereum"))
	assert.True(t, s.IsSelected("ethereum"))
	assert.True(t, s.Toggle("ethereum"))
	assert.False(t, s.IsSelected("ethereum"))

	assert.False(t, s.Toggle("bitcoin"), "already added is read-only")
	assert.False(t, s.IsSelected("bitcoin"))
	assert.True(t, s.IsAdded("bitcoin"))
}

func TestConfirmAddsSelectedUnion(t *testing.T) {
	src := &fakeSource{
		trending: []domain.SearchResult{cand("pepe"), cand("sui")},
		results:  map[string][]domain.SearchResult{"eth": {cand("ethereum"), cand("pepe")}},
	}
	s, store := newTestSession(t, src, Options{Debounce: time.Hour})
	store.AddTokens([]domain.TokenInput{{ID: "sui"}})

	s.Apply(s.Run(context.Background(), s.Open()))
	tag, _ := s.SetQuery("eth")
	s.Apply(s.Run(context.Background(), s.Debounced(tag)))

	s.Toggle("ethereum")
	s.Toggle("pepe")
	s.Toggle("unknown")

	added, closed := s.Confirm()

	assert.Equal(t, 2, added)
	assert.True(t, closed)
	assert.Equal(t, []string{"sui", "ethereum", "pepe"}, store.IDs())
	for _, tok := range store.Tokens() {
		assert.Zero(t, tok.Holdings)
	}
	added2 := store.Tokens()[1]
	assert.Equal(t, "thumb/ethereum", added2.Image)

	assert.Empty(t, s.QueryText())
	assert.Empty(t, s.Selected())
	assert.Empty(t, s.Results())
}

func TestConfirmEmptyKeepsOpen(t *testing.T) {
	src := &fakeSource{trending: []domain.SearchResult{cand("pepe")}}
	s, store := newTestSession(t, src, Options{Debounce: time.Hour})
	s.Apply(s.Run(context.Background(), s.Open()))
	s.SetQuery("pe")

	added, closed := s.Confirm()

	assert.Zero(t, added)
	assert.False(t, closed)
	assert.Equal(t, "pe", s.QueryText(), "session untouched")
	assert.Zero(t, store.Len())

	// A selection whose candidate is no longer listed is also empty.
	s.Toggle("ghost")
	_, closed = s.Confirm()
	assert.False(t, closed)
}

func TestCancelDiscardsLateTrending(t *testing.T) {
	src := &fakeSource{trending: []domain.SearchResult{cand("pepe")}}
	s, _ := newTestSession(t, src, Options{Debounce: time.Hour})

	req := s.Open()
	s.Cancel()

	assert.False(t, s.Apply(s.Run(context.Background(), req)))
	assert.Empty(t, s.Trending())
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	fired := make(chan struct{}, 1)
	d.Trigger(func() { fired <- struct{}{} })

	assert.True(t, d.Stop())
	select {
	case <-fired:
		t.Fatal("stopped debouncer fired")
	case <-time.After(60 * time.Millisecond):
	}
	assert.False(t, d.Stop())
	assert.Equal(t, DefaultDebounce, NewDebouncer(0).Delay())
}

func TestBlankQueryAfterTrendingFailureReloads(t *testing.T) {
	src := &fakeSource{trendingErr: errors.New("timeout")}
	s, _ := newTestSession(t, src, Options{Debounce: time.Hour})

	s.Apply(s.Run(context.Background(), s.Open()))
	s.SetQuery("pe")
	s.SetQuery("")
	assert.Equal(t, "Failed to load trending tokens", s.Err(), "blank query keeps the trending error")

	src.trendingErr = nil
	src.trending = []domain.SearchResult{cand("pepe")}
	req := s.Open()
	require.NotNil(t, req)
	assert.True(t, s.Loading())
	s.Apply(s.Run(context.Background(), req))

	assert.Empty(t, s.Err())
	assert.Equal(t, []domain.SearchResult{cand("pepe")}, s.Display())
	assert.Equal(t, 2, src.trendCalls)
}

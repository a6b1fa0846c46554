// internal/discovery/session.go
package discovery

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"github.com/rovshanmuradov/tokenfolio/internal/pricesource"
	"go.uber.org/zap"
)

const (
	errSearchMsg   = "Failed to search tokens"
	errTrendingMsg = "Failed to load trending tokens"
)

// Watchlist is the part of the watchlist store a session needs.
type Watchlist interface {
	Contains(id string) bool
	AddTokens(candidates []domain.TokenInput) int
}

// Kind tells search and trending requests apart.
type Kind int

const (
	KindSearch Kind = iota
	KindTrending
)

// Request is a remote lookup issued by the session.
type Request struct {
	Kind  Kind
	Gen   uint64
	Query string
}

// Response is the outcome of a Request.
type Response struct {
	Kind    Kind
	Gen     uint64
	Query   string
	Results []domain.SearchResult
	Err     error
}

// Options configures a Session.
type Options struct {
	Debounce time.Duration
	// OnDebounce is called from the timer goroutine when a query has been
	// quiet long enough. The receiver must hand tag back to Debounced on the
	// goroutine that owns the session.
	OnDebounce func(tag uint64)
}

// Session is one token discovery interaction: query, results, trending
// list and the selection to add.
type Session struct {
	mu        sync.Mutex
	source    pricesource.Source
	watchlist Watchlist
	logger    *zap.Logger
	debouncer *Debouncer
	onFire    func(tag uint64)

	queryText      string
	debouncedQuery string
	results        []domain.SearchResult
	trending       []domain.SearchResult
	trendingLoaded bool
	selected       map[string]struct{}
	searching      bool
	loadingTrend   bool
	errMsg         string

	tag       uint64 // latest armed debounce
	searchGen uint64 // latest issued search
	epoch     uint64 // bumped on reset, guards trending
}

// NewSession creates a closed-state session bound to a watchlist.
func NewSession(source pricesource.Source, watchlist Watchlist, opts Options, logger *zap.Logger) *Session {
	onFire := opts.OnDebounce
	if onFire == nil {
		onFire = func(uint64) {}
	}
	return &Session{
		source:    source,
		watchlist: watchlist,
		logger:    logger.Named("discovery"),
		debouncer: NewDebouncer(opts.Debounce),
		onFire:    onFire,
		selected:  make(map[string]struct{}),
	}
}

// Open starts the interaction. It returns the trending request to run when
// the trending list has not been loaded yet.
func (s *Session) Open() *Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trendingLoaded || s.loadingTrend {
		return nil
	}
	s.logger.Debug("Loading trending tokens", zap.Duration("debounce", s.debouncer.Delay()))
	s.loadingTrend = true
	s.errMsg = ""
	return &Request{Kind: KindTrending, Gen: s.epoch}
}

// SetQuery updates the query text. A non-blank query re-arms the debounce
// timer and returns its tag; a blank one cancels any pending search and
// falls back to the trending list. When trending is missing, Open returns
// the request that reloads it.
func (s *Session) SetQuery(text string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if text == s.queryText {
		return s.tag, false
	}
	s.queryText = text
	s.tag++

	if strings.TrimSpace(text) == "" {
		s.debouncer.Stop()
		s.debouncedQuery = ""
		s.results = nil
		s.searchGen++
		s.searching = false
		s.errMsg = ""
		if !s.trendingLoaded && !s.loadingTrend {
			// Trending failed earlier; the caller reloads it through Open.
			s.errMsg = errTrendingMsg
		}
		return s.tag, false
	}

	tag := s.tag
	s.debouncer.Trigger(func() { s.onFire(tag) })
	return tag, true
}

// Debounced is called when the timer armed with tag fires. It returns the
// search to issue, or nil when a newer keystroke superseded tag.
func (s *Session) Debounced(tag uint64) *Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tag != s.tag || strings.TrimSpace(s.queryText) == "" {
		return nil
	}
	s.debouncedQuery = s.queryText
	s.searchGen++
	s.searching = true
	s.errMsg = ""

	s.logger.Debug("Search issued",
		zap.String("query", s.debouncedQuery),
		zap.Uint64("gen", s.searchGen))
	return &Request{Kind: KindSearch, Gen: s.searchGen, Query: s.debouncedQuery}
}

// Run executes req against the source. It blocks and does not touch
// session state.
func (s *Session) Run(ctx context.Context, req *Request) Response {
	resp := Response{Kind: req.Kind, Gen: req.Gen, Query: req.Query}
	switch req.Kind {
	case KindTrending:
		resp.Results, resp.Err = s.source.Trending(ctx)
	default:
		resp.Results, resp.Err = s.source.Search(ctx, req.Query)
	}
	return resp
}

// Apply commits resp when it answers the latest request of its kind. It
// reports whether the session changed.
func (s *Session) Apply(resp Response) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resp.Kind {
	case KindTrending:
		if resp.Gen != s.epoch {
			return false
		}
		s.loadingTrend = false
		if resp.Err != nil {
			s.logger.Warn("Trending fetch failed", zap.Error(resp.Err))
			if strings.TrimSpace(s.queryText) == "" {
				s.errMsg = errTrendingMsg
			}
			return true
		}
		s.trending = resp.Results
		s.trendingLoaded = true
		return true

	default:
		if resp.Gen != s.searchGen {
			s.logger.Debug("Discarding stale search result",
				zap.String("query", resp.Query),
				zap.Uint64("gen", resp.Gen),
				zap.Uint64("latest", s.searchGen))
			return false
		}
		s.searching = false
		if resp.Err != nil {
			s.logger.Warn("Search failed", zap.String("query", resp.Query), zap.Error(resp.Err))
			s.results = nil
			s.errMsg = errSearchMsg
			return true
		}
		s.results = resp.Results
		s.errMsg = ""
		return true
	}
}

// Toggle flips the selection of id. Tokens already in the watchlist are
// read-only; Toggle reports whether the selection changed.
func (s *Session) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchlist.Contains(id) {
		return false
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
	return true
}

// Confirm adds the selected candidates that are not tracked yet. With
// nothing to add it is a no-op and the interaction stays open; otherwise the
// session resets and closed is true.
func (s *Session) Confirm() (added int, closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make([]domain.TokenInput, 0, len(s.selected))
	seen := make(map[string]struct{}, len(s.selected))
	for _, list := range [][]domain.SearchResult{s.results, s.trending} {
		for _, r := range list {
			if _, ok := s.selected[r.ID]; !ok {
				continue
			}
			if _, dup := seen[r.ID]; dup {
				continue
			}
			if s.watchlist.Contains(r.ID) {
				continue
			}
			seen[r.ID] = struct{}{}
			candidates = append(candidates, r.Input())
		}
	}

	if len(candidates) == 0 {
		return 0, false
	}

	added = s.watchlist.AddTokens(candidates)
	s.logger.Info("Tokens confirmed", zap.Int("selected", len(s.selected)), zap.Int("added", added))
	s.reset()
	return added, true
}

// Cancel closes the interaction without adding anything.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// reset discards the interaction. Trending is reloaded on the next Open.
// Callers hold s.mu.
func (s *Session) reset() {
	s.debouncer.Stop()
	s.queryText = ""
	s.debouncedQuery = ""
	s.results = nil
	s.trending = nil
	s.trendingLoaded = false
	s.selected = make(map[string]struct{})
	s.searching = false
	s.loadingTrend = false
	s.errMsg = ""
	s.tag++
	s.searchGen++
	s.epoch++
}

// Display returns the candidates to show: search results for a non-blank
// query, the trending list otherwise.
func (s *Session) Display() []domain.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.trending
	if strings.TrimSpace(s.queryText) != "" {
		src = s.results
	}
	out := make([]domain.SearchResult, len(src))
	copy(out, src)
	return out
}

// QueryText returns the raw query.
func (s *Session) QueryText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryText
}

// DebouncedQuery returns the query of the latest issued search.
func (s *Session) DebouncedQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debouncedQuery
}

// Results returns the latest committed search results.
func (s *Session) Results() []domain.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SearchResult(nil), s.results...)
}

// Trending returns the trending list.
func (s *Session) Trending() []domain.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SearchResult(nil), s.trending...)
}

// Selected returns the selected ids.
func (s *Session) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.selected))
	for id := range s.selected {
		out = append(out, id)
	}
	return domain.NewIDSet(out...).Sorted()
}

// IsSelected reports whether id is selected.
func (s *Session) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[id]
	return ok
}

// IsAdded reports whether id is already tracked and therefore read-only.
func (s *Session) IsAdded(id string) bool {
	return s.watchlist.Contains(id)
}

// Loading reports whether the lookup behind the displayed list is in
// flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(s.queryText) != "" {
		return s.searching
	}
	return s.loadingTrend
}

// Err returns the inline error message, if any.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

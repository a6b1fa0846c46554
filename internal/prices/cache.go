// internal/prices/cache.go
package prices

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"github.com/rovshanmuradov/tokenfolio/internal/pricesource"
	"go.uber.org/zap"
)

// Request is one batched price fetch issued by the cache. Only the most
// recently issued request can be committed.
type Request struct {
	Gen uint64
	IDs []string

	ctx context.Context
}

// Result carries the outcome of a Request back to the cache.
type Result struct {
	Gen       uint64
	IDs       []string
	Snapshots []domain.PriceSnapshot
	Err       error
}

// Outcome tells the caller what Apply did with a Result.
type Outcome int

const (
	// Discarded means the result belonged to a superseded request.
	Discarded Outcome = iota
	// Committed means the snapshots were replaced.
	Committed
	// Failed means the latest request failed; previous snapshots were kept.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case Failed:
		return "failed"
	default:
		return "discarded"
	}
}

// State is a read-only copy of the cache.
type State struct {
	Snapshots      map[string]domain.PriceSnapshot
	Loading        bool
	Err            string
	LastRefreshKey domain.IDSet
	LastUpdated    time.Time
}

// Cache keeps price snapshots aligned with the watchlist id set.
type Cache struct {
	mu     sync.RWMutex
	source pricesource.Source
	logger *zap.Logger
	parent context.Context
	now    func() time.Time

	snapshots      map[string]domain.PriceSnapshot
	loading        bool
	errMsg         string
	lastRefreshKey domain.IDSet
	lastUpdated    time.Time

	key    domain.IDSet
	ids    []string
	gen    uint64
	cancel context.CancelFunc
}

// NewCache creates a cache fetching from source. Requests derive their
// context from ctx.
func NewCache(ctx context.Context, source pricesource.Source, logger *zap.Logger) *Cache {
	return &Cache{
		source:         source,
		logger:         logger.Named("prices"),
		parent:         ctx,
		now:            time.Now,
		snapshots:      make(map[string]domain.PriceSnapshot),
		lastRefreshKey: domain.NewIDSet(),
	}
}

// Sync aligns the requested id set with ids. It returns the request to run
// when the set changed, or nil when nothing has to be fetched. An empty set
// clears the cache synchronously without a fetch.
func (c *Cache) Sync(ids []string) *Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := domain.NewIDSet(ids...)
	if c.key != nil && c.key.Equal(next) {
		return nil
	}
	c.key = next
	c.ids = append([]string(nil), ids...)

	if len(next) == 0 {
		c.supersede()
		c.snapshots = make(map[string]domain.PriceSnapshot)
		c.errMsg = ""
		c.loading = false
		c.lastRefreshKey = domain.NewIDSet()
		c.logger.Debug("Watchlist empty, price cache cleared")
		return nil
	}

	return c.issue()
}

// Refresh re-fetches the current id set. It returns nil when the watchlist
// is empty.
func (c *Cache) Refresh() *Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.key) == 0 {
		return nil
	}
	return c.issue()
}

// issue bumps the generation and cancels whatever was in flight.
func (c *Cache) issue() *Request {
	c.supersede()

	ctx, cancel := context.WithCancel(c.parent)
	c.cancel = cancel
	c.loading = true

	req := &Request{
		Gen: c.gen,
		IDs: append([]string(nil), c.ids...),
		ctx: ctx,
	}
	c.logger.Debug("Price fetch issued",
		zap.Uint64("gen", req.Gen),
		zap.Strings("ids", req.IDs))
	return req
}

func (c *Cache) supersede() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Fetch runs req against the price source. It blocks and must not be
// called from the UI loop; it does not touch cache state.
func (c *Cache) Fetch(req *Request) Result {
	ctx := req.ctx
	if ctx == nil {
		ctx = c.parent
	}
	snaps, err := c.source.BatchPrices(ctx, req.IDs)
	return Result{Gen: req.Gen, IDs: req.IDs, Snapshots: snaps, Err: err}
}

// Apply commits res if it answers the latest issued request.
func (c *Cache) Apply(res Result) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if res.Gen != c.gen {
		c.logger.Debug("Discarding stale price result",
			zap.Uint64("gen", res.Gen),
			zap.Uint64("latest", c.gen))
		return Discarded
	}

	c.loading = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if res.Err != nil {
		c.errMsg = describe(res.Err)
		c.logger.Warn("Price fetch failed, keeping previous snapshots",
			zap.Int("kept", len(c.snapshots)),
			zap.Error(res.Err))
		return Failed
	}

	snapshots := make(map[string]domain.PriceSnapshot, len(res.Snapshots))
	for _, s := range res.Snapshots {
		snapshots[s.ID] = s
	}
	c.snapshots = snapshots
	c.errMsg = ""
	c.lastRefreshKey = domain.NewIDSet(res.IDs...)
	c.lastUpdated = c.now()

	c.logger.Info("Prices refreshed", zap.Int("count", len(snapshots)))
	return Committed
}

// State returns a copy of the cache state.
func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snaps := make(map[string]domain.PriceSnapshot, len(c.snapshots))
	for id, s := range c.snapshots {
		snaps[id] = s
	}
	key := make(domain.IDSet, len(c.lastRefreshKey))
	for id := range c.lastRefreshKey {
		key[id] = struct{}{}
	}
	return State{
		Snapshots:      snaps,
		Loading:        c.loading,
		Err:            c.errMsg,
		LastRefreshKey: key,
		LastUpdated:    c.lastUpdated,
	}
}

// Snapshots returns a copy of the current snapshots.
func (c *Cache) Snapshots() map[string]domain.PriceSnapshot {
	return c.State().Snapshots
}

// Err returns the message of the latest failure, if any.
func (c *Cache) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// IsCurrent reports whether the committed snapshots answer the current
// requested id set.
func (c *Cache) IsCurrent() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key != nil && c.key.Equal(c.lastRefreshKey)
}

// Close cancels any in-flight request.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersede()
	c.loading = false
}

// Notification formats the transient message shown after a failed refresh.
func Notification(errMsg string) string {
	return fmt.Sprintf("Error: %s. Please try after sometime.", errMsg)
}

func describe(err error) string {
	switch {
	case errors.Is(err, pricesource.ErrRateLimited):
		return "Price API rate limit reached"
	case errors.Is(err, context.DeadlineExceeded):
		return "Price request timed out"
	default:
		var apiErr *pricesource.APIError
		if errors.As(err, &apiErr) {
			return fmt.Sprintf("Price API returned HTTP %d", apiErr.StatusCode)
		}
		return "Failed to fetch prices"
	}
}

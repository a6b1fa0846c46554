// internal/pricesource/coingecko.go
package pricesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL    = "https://api.coingecko.com/api/v3"
	DefaultVsCurrency = "usd"
	DefaultTimeout    = 10 * time.Second

	apiKeyHeader   = "x-cg-demo-api-key"
	maxErrorBody   = 512
	maxRetryElapse = 8 * time.Second
)

// CoinGeckoConfig configures the CoinGecko client.
type CoinGeckoConfig struct {
	BaseURL    string
	APIKey     string
	VsCurrency string
	Timeout    time.Duration
	// Retries is the number of extra attempts on 429/5xx responses.
	Retries int
	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
	// Observer, when set, sees every HTTP round trip.
	Observer RequestObserver
}

// RequestObserver records API round trips. Status 0 marks a transport
// error.
type RequestObserver interface {
	ObserveRequest(endpoint string, status int, duration time.Duration)
}

// CoinGecko implements Source against the CoinGecko v3 REST API.
type CoinGecko struct {
	baseURL    string
	apiKey     string
	vsCurrency string
	retries    int
	http       *http.Client
	observer   RequestObserver
	logger     *zap.Logger

	newBackOff func() backoff.BackOff
}

var _ Source = (*CoinGecko)(nil)

// NewCoinGecko creates a client, filling unset fields with defaults.
func NewCoinGecko(cfg CoinGeckoConfig, logger *zap.Logger) *CoinGecko {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = DefaultVsCurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &CoinGecko{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		vsCurrency: cfg.VsCurrency,
		retries:    cfg.Retries,
		http:       client,
		observer:   cfg.Observer,
		logger:     logger.Named("coingecko"),
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

type searchResponse struct {
	Coins []coinRef `json:"coins"`
}

type coinRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Thumb  string `json:"thumb"`
}

type trendingResponse struct {
	Coins []struct {
		Item coinRef `json:"item"`
	} `json:"coins"`
}

type marketCoin struct {
	ID                       string   `json:"id"`
	Name                     string   `json:"name"`
	Symbol                   string   `json:"symbol"`
	Image                    string   `json:"image"`
	CurrentPrice             *float64 `json:"current_price"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	SparklineIn7d            *struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d"`
}

// Search implements Source.
func (c *CoinGecko) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	results := make([]domain.SearchResult, 0, len(resp.Coins))
	for _, coin := range resp.Coins {
		results = append(results, coin.result())
	}
	return results, nil
}

// Trending implements Source.
func (c *CoinGecko) Trending(ctx context.Context) ([]domain.SearchResult, error) {
	var resp trendingResponse
	if err := c.get(ctx, "/search/trending", nil, &resp); err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(resp.Coins))
	for _, coin := range resp.Coins {
		results = append(results, coin.Item.result())
	}
	return results, nil
}

// BatchPrices implements Source.
func (c *CoinGecko) BatchPrices(ctx context.Context, ids []string) ([]domain.PriceSnapshot, error) {
	if len(ids) == 0 {
		return []domain.PriceSnapshot{}, nil
	}

	params := url.Values{}
	params.Set("vs_currency", c.vsCurrency)
	params.Set("ids", strings.Join(ids, ","))
	params.Set("sparkline", "true")
	params.Set("price_change_percentage", "24h")

	var coins []marketCoin
	if err := c.get(ctx, "/coins/markets", params, &coins); err != nil {
		return nil, fmt.Errorf("batch prices for %d ids: %w", len(ids), err)
	}

	snapshots := make([]domain.PriceSnapshot, 0, len(coins))
	for _, coin := range coins {
		snap := domain.PriceSnapshot{ID: coin.ID, Sparkline7d: []float64{}}
		if coin.CurrentPrice != nil {
			snap.CurrentPrice = *coin.CurrentPrice
		}
		if coin.PriceChangePercentage24h != nil {
			snap.Change24hPct = *coin.PriceChangePercentage24h
		}
		if coin.SparklineIn7d != nil && coin.SparklineIn7d.Price != nil {
			snap.Sparkline7d = coin.SparklineIn7d.Price
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func (r coinRef) result() domain.SearchResult {
	return domain.SearchResult{ID: r.ID, Name: r.Name, Symbol: r.Symbol, Thumb: r.Thumb}
}

// get performs a GET and decodes the JSON body into out. Rate limiting and
// server errors are retried with exponential backoff; other failures are
// permanent.
func (c *CoinGecko) get(ctx context.Context, path string, params url.Values, out any) error {
	addr := c.baseURL + path
	if len(params) > 0 {
		addr += "?" + params.Encode()
	}

	op := func() (struct{}, error) {
		return struct{}{}, c.do(ctx, path, addr, out)
	}

	_, err := backoff.Retry(
		ctx,
		op,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.retries+1)),
		backoff.WithMaxElapsedTime(maxRetryElapse),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("Retrying price source request",
				zap.String("path", path),
				zap.Duration("backoff", next),
				zap.Error(err))
		}),
	)
	return err
}

func (c *CoinGecko) do(ctx context.Context, path, addr string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(path, 0, time.Since(start))
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	defer resp.Body.Close()

	c.observe(path, resp.StatusCode, time.Since(start))
	c.logger.Debug("Price source request",
		zap.String("url", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return apiErr
		}
		return backoff.Permanent(apiErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *CoinGecko) observe(path string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(path, status, d)
	}
}

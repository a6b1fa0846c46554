package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"github.com/rovshanmuradov/tokenfolio/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunReport(t *testing.T) {
	src := &stubSource{
		prices:   map[string]float64{"bitcoin": 50000, "ethereum": 3000},
		trending: []domain.SearchResult{{ID: "pepe", Name: "Pepe", Symbol: "pepe"}},
	}
	tokens := []domain.Token{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", Holdings: 2},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
	}

	var out bytes.Buffer
	require.NoError(t, runReport(context.Background(), &out, tokens, src, reportOptions{PageSize: 10}, zap.NewNop()))

	report := out.String()
	assert.Contains(t, report, "Portfolio Total: $100,000.00")
	assert.Contains(t, report, "BTC")
	assert.Contains(t, report, "100.0%")
	assert.Contains(t, report, "Bitcoin (BTC)")
	assert.Contains(t, report, "Ethereum (ETH)")
	assert.Contains(t, report, "Page 1 of 1")
	assert.Contains(t, report, "Pepe (PEPE)")
	require.Len(t, src.batches, 1, "one batched price call")
	assert.ElementsMatch(t, []string{"bitcoin", "ethereum"}, src.batches[0])
}

func TestRunReportPaginates(t *testing.T) {
	src := &stubSource{prices: map[string]float64{}}
	tokens := []domain.Token{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}}

	var out bytes.Buffer
	require.NoError(t, runReport(context.Background(), &out, tokens, src, reportOptions{PageSize: 2}, zap.NewNop()))
	assert.Contains(t, out.String(), "Page 1 of 2")
	assert.Contains(t, out.String(), "Page 2 of 2")
}

func TestRunReportEmptyWatchlist(t *testing.T) {
	src := &stubSource{}

	var out bytes.Buffer
	require.NoError(t, runReport(context.Background(), &out, nil, src, reportOptions{PageSize: 10}, zap.NewNop()))
	assert.Contains(t, out.String(), "Portfolio Total: $0.00")
	assert.Contains(t, out.String(), "Your watchlist is empty.")
	assert.Empty(t, src.batches, "no price call for an empty watchlist")
}

func TestRunReportPriceFailure(t *testing.T) {
	src := &stubSource{priceErr: errors.New("down")}
	tokens := []domain.Token{{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", Holdings: 1}}

	var out bytes.Buffer
	require.NoError(t, runReport(context.Background(), &out, tokens, src, reportOptions{PageSize: 10}, zap.NewNop()))

	report := out.String()
	assert.Contains(t, report, "Portfolio Total: $0.00")
	assert.Contains(t, report, "Bitcoin (BTC)")
	assert.Contains(t, report, "Error: Failed to fetch prices. Please try after sometime.")
}

func TestRunReportWritesSnapshot(t *testing.T) {
	src := &stubSource{prices: map[string]float64{"bitcoin": 50000}}
	tokens := []domain.Token{{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", Holdings: 1}}
	dir := t.TempDir()

	var out bytes.Buffer
	err := runReport(context.Background(), &out, tokens, src, reportOptions{
		PageSize:       10,
		SnapshotFormat: export.FormatJSON,
		SnapshotDir:    dir,
	}, zap.NewNop())
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "portfolio_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, out.String(), "Snapshot written to "+matches[0])
}

func TestRunReportSnapshotOnlyHeld(t *testing.T) {
	src := &stubSource{prices: map[string]float64{"bitcoin": 50000, "ethereum": 3000}}
	tokens := []domain.Token{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", Holdings: 1},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
	}
	dir := t.TempDir()

	var out bytes.Buffer
	require.NoError(t, runReport(context.Background(), &out, tokens, src, reportOptions{
		PageSize:       10,
		SnapshotFormat: export.FormatCSV,
		SnapshotDir:    dir,
		SnapshotHeld:   true,
	}, zap.NewNop()))

	matches, err := filepath.Glob(filepath.Join(dir, "portfolio_*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "bitcoin")
	assert.NotContains(t, string(data), "ethereum")
}

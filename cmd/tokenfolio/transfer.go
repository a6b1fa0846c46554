package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"github.com/rovshanmuradov/tokenfolio/internal/watchlist"
)

// importWatchlist replaces the watchlist with the record stored at path.
// Invalid entries are sanitized by the store.
func importWatchlist(store *watchlist.Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read import: %w", err)
	}

	var state domain.WatchlistState
	if err := json.Unmarshal(data, &state); err != nil {
		return 0, fmt.Errorf("decode import: %w", err)
	}

	store.SetWatchlist(state.Tokens)
	return store.Len(), nil
}

// exportWatchlist writes the watchlist to path in the persisted format
func exportWatchlist(store *watchlist.Store, path string) error {
	data, err := json.MarshalIndent(domain.WatchlistState{Tokens: store.Tokens()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

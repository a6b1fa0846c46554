// internal/watchlist/store.go
package watchlist

import (
	"errors"
	"sync"

	"github.com/rovshanmuradov/tokenfolio/internal/domain"
	"go.uber.org/zap"
)

// Store owns the user's watchlist. Every mutation is applied synchronously
// and persisted before the call returns.
type Store struct {
	mu        sync.RWMutex
	tokens    []domain.Token
	persister Persister
	logger    *zap.Logger
}

// NewStore creates an empty store. Call Load to restore durable state.
func NewStore(persister Persister, logger *zap.Logger) *Store {
	return &Store{
		tokens:    make([]domain.Token, 0),
		persister: persister,
		logger:    logger.Named("watchlist"),
	}
}

// Load restores the durable record. Missing or corrupt data resets the
// watchlist to empty and is only logged.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.persister.Read()
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			s.logger.Debug("No stored watchlist, starting empty")
		} else {
			s.logger.Error("Failed to load watchlist, starting empty", zap.Error(err))
		}
		s.tokens = make([]domain.Token, 0)
		return
	}

	s.tokens = sanitize(state.Tokens, s.logger)
	s.logger.Info("Watchlist loaded", zap.Int("count", len(s.tokens)))
}

// save writes the current state. Failures are logged and swallowed.
// Callers hold s.mu.
func (s *Store) save() {
	state := domain.WatchlistState{Tokens: s.snapshot()}
	if err := s.persister.Write(state); err != nil {
		s.logger.Error("Failed to save watchlist", zap.Error(err))
	}
}

// Tokens returns a copy of the watchlist in display order.
func (s *Store) Tokens() []domain.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// IDs returns token ids in watchlist order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.tokens))
	for _, t := range s.tokens {
		ids = append(ids, t.ID)
	}
	return ids
}

// Len returns the number of tracked tokens.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// Contains reports whether id is tracked.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// AddTokens appends candidates whose id is not tracked yet, in input order,
// with zero holdings. Nothing is persisted when no candidate is accepted.
// It returns the number of tokens added.
func (s *Store) AddTokens(candidates []domain.TokenInput) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.tokens)+len(candidates))
	for _, t := range s.tokens {
		seen[t.ID] = struct{}{}
	}

	added := 0
	for _, c := range candidates {
		if c.ID == "" {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		s.tokens = append(s.tokens, domain.Token{
			ID:       c.ID,
			Symbol:   c.Symbol,
			Name:     c.Name,
			Image:    c.Image,
			Holdings: 0,
		})
		added++
	}

	if added == 0 {
		return 0
	}

	s.logger.Info("Tokens added", zap.Int("added", added), zap.Int("total", len(s.tokens)))
	s.save()
	return added
}

// RemoveToken drops the token with id. Unknown ids are ignored.
func (s *Store) RemoveToken(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.tokens = append(s.tokens[:idx], s.tokens[idx+1:]...)

	s.logger.Info("Token removed", zap.String("id", id))
	s.save()
}

// SetHoldings updates the holdings of id. Unknown ids are ignored. Values
// that are not finite and non-negative are stored as 0.
func (s *Store) SetHoldings(id string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	if !domain.ValidHoldings(value) {
		s.logger.Warn("Invalid holdings clamped to zero",
			zap.String("id", id),
			zap.Float64("value", value))
		value = 0
	}
	s.tokens[idx].Holdings = value
	s.save()
}

// SetWatchlist replaces the whole list. The input is sanitized the same way
// as a loaded record.
func (s *Store) SetWatchlist(tokens []domain.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = sanitize(tokens, s.logger)
	s.save()
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tokens {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []domain.Token {
	out := make([]domain.Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// sanitize drops tokens without id or with a duplicate id and clamps
// holdings, keeping the first occurrence of every id.
func sanitize(tokens []domain.Token, logger *zap.Logger) []domain.Token {
	out := make([]domain.Token, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	dropped := 0

	for _, t := range tokens {
		if t.ID == "" {
			dropped++
			continue
		}
		if _, dup := seen[t.ID]; dup {
			dropped++
			continue
		}
		seen[t.ID] = struct{}{}
		t.Holdings = domain.ClampHoldings(t.Holdings)
		out = append(out, t)
	}

	if dropped > 0 {
		logger.Warn("Dropped invalid watchlist entries", zap.Int("dropped", dropped))
	}
	return out
}

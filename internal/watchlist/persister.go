// internal/watchlist/persister.go
package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rovshanmuradov/tokenfolio/internal/domain"
)

// StorageKey names the single durable record holding the watchlist.
const StorageKey = "token_portfolio_watchlist_v1"

// ErrNoRecord is returned by a Persister when nothing has been stored yet.
var ErrNoRecord = errors.New("watchlist record not found")

// Persister reads and writes the serialized watchlist record.
type Persister interface {
	Read() (domain.WatchlistState, error)
	Write(state domain.WatchlistState) error
}

// FilePersister stores the record as JSON under a data directory.
type FilePersister struct {
	path string
}

// NewFilePersister creates a persister writing <dir>/<StorageKey>.json.
func NewFilePersister(dir string) *FilePersister {
	return &FilePersister{path: filepath.Join(dir, StorageKey+".json")}
}

// Path returns the file backing the record.
func (p *FilePersister) Path() string {
	return p.path
}

// Read loads and decodes the record.
func (p *FilePersister) Read() (domain.WatchlistState, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.WatchlistState{}, ErrNoRecord
		}
		return domain.WatchlistState{}, fmt.Errorf("read watchlist: %w", err)
	}

	var state domain.WatchlistState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.WatchlistState{}, fmt.Errorf("decode watchlist: %w", err)
	}
	return state, nil
}

// Write replaces the record atomically (temp file + rename).
func (p *FilePersister) Write(state domain.WatchlistState) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode watchlist: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), StorageKey+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, p.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace watchlist: %w", err)
	}
	return nil
}

// MemoryPersister keeps the record in memory. Writes are counted so callers
// can assert that no-op mutations skip persistence.
type MemoryPersister struct {
	mu     sync.Mutex
	state  *domain.WatchlistState
	raw    []byte
	writes int

	ReadErr  error
	WriteErr error
}

// NewMemoryPersister returns an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// SetRaw stores an undecoded record, e.g. corrupt JSON.
func (m *MemoryPersister) SetRaw(raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = raw
	m.state = nil
}

// Read implements Persister.
func (m *MemoryPersister) Read() (domain.WatchlistState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReadErr != nil {
		return domain.WatchlistState{}, m.ReadErr
	}
	if m.raw != nil {
		var state domain.WatchlistState
		if err := json.Unmarshal(m.raw, &state); err != nil {
			return domain.WatchlistState{}, fmt.Errorf("decode watchlist: %w", err)
		}
		return state, nil
	}
	if m.state == nil {
		return domain.WatchlistState{}, ErrNoRecord
	}
	return cloneState(*m.state), nil
}

// Write implements Persister.
func (m *MemoryPersister) Write(state domain.WatchlistState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return m.WriteErr
	}
	s := cloneState(state)
	m.state = &s
	m.raw = nil
	m.writes++
	return nil
}

// Writes returns how many successful writes happened.
func (m *MemoryPersister) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func cloneState(s domain.WatchlistState) domain.WatchlistState {
	tokens := make([]domain.Token, len(s.Tokens))
	copy(tokens, s.Tokens)
	return domain.WatchlistState{Tokens: tokens}
}

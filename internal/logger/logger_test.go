package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(&Config{LogFile: path, MaxSize: 1, Development: true})
	require.NoError(t, err)

	log.WithComponent("prices").Info("Prices refreshed", zap.Int("count", 3))
	log.LogError("Failed to save watchlist", errors.New("disk full"))
	require.NoError(t, log.Sync())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.Len(t, entries, 2)

	assert.Equal(t, "Prices refreshed", entries[0]["msg"])
	assert.Equal(t, "prices", entries[0]["component"])
	assert.EqualValues(t, 3, entries[0]["count"])
	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "disk full", entries[1]["error"])
}

func TestWithOperationAddsCorrelationID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "op.log")
	log, err := New(&Config{LogFile: path, MaxSize: 1})
	require.NoError(t, err)

	end := log.TrackPerformance("refresh")
	end()
	log.WithOperation("refresh").Info("done")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"correlation_id"`)
	assert.Contains(t, string(data), `"operation":"refresh"`)
}

func TestNewWithoutSinksIsNop(t *testing.T) {
	log, err := New(&Config{})
	require.NoError(t, err)
	log.Info("dropped")
	assert.NoError(t, log.Sync())
}

// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validConfigYAML = `
api_base_url: "https://pro-api.coingecko.com/api/v3"
api_key: "cg-secret-1234"
vs_currency: "usd"
request_timeout_ms: 5000
retries: 1
data_dir: "/tmp/tokenfolio-test"
page_size: 5
search_debounce_ms: 250
refresh_interval_ms: 60000
debug_logging: true
log_file: "debug.log"
metrics_addr: "127.0.0.1:9464"
`

var invalidConfigYAML = `
api_base_url: "ftp://example.com"
page_size: -1
`

func setupTestConfig(t *testing.T, name, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))
	return configPath
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "Valid yaml config",
			file:    "config.yaml",
			content: validConfigYAML,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://pro-api.coingecko.com/api/v3", cfg.APIBaseURL)
				assert.Equal(t, "cg-secret-1234", cfg.APIKey)
				assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
				assert.Equal(t, 250*time.Millisecond, cfg.SearchDebounce)
				assert.Equal(t, time.Minute, cfg.RefreshInterval)
				assert.Equal(t, 5, cfg.PageSize)
				assert.Equal(t, 1, cfg.Retries)
				assert.True(t, cfg.DebugLogging)
				assert.Equal(t, "127.0.0.1:9464", cfg.MetricsAddr)
				assert.Equal(t, filepath.Join("/tmp/tokenfolio-test", "debug.log"), cfg.LogPath())
			},
		},
		{
			name:    "Valid json config",
			file:    "config.json",
			content: `{"page_size": 20, "retries": 0}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 20, cfg.PageSize)
				assert.Zero(t, cfg.Retries)
				assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
			},
		},
		{
			name:    "Invalid values",
			file:    "config.yaml",
			content: invalidConfigYAML,
			wantErr: true,
		},
		{
			name:    "Invalid JSON syntax",
			file:    "config.json",
			content: "{invalid json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(setupTestConfig(t, tt.file, tt.content))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultVsCurrency, cfg.VsCurrency)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Zero(t, cfg.RefreshInterval)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("TOKENFOLIO_API_KEY", "env-key")
	t.Setenv("TOKENFOLIO_PAGE_SIZE", "25")

	cfg, err := Load(setupTestConfig(t, "config.yaml", validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, 25, cfg.PageSize)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIBaseURL:       DefaultAPIBaseURL,
			VsCurrency:       "usd",
			RequestTimeoutMS: 1000,
			Retries:          1,
			DataDir:          "/tmp/x",
			PageSize:         10,
			SearchDebounceMS: 300,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad scheme", func(c *Config) { c.APIBaseURL = "ws://x.io" }, true},
		{"no host", func(c *Config) { c.APIBaseURL = "https://" }, true},
		{"no currency", func(c *Config) { c.VsCurrency = "" }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeoutMS = 0 }, true},
		{"negative retries", func(c *Config) { c.Retries = -1 }, true},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, true},
		{"zero debounce", func(c *Config) { c.SearchDebounceMS = 0 }, true},
		{"negative refresh", func(c *Config) { c.RefreshEveryMS = -5 }, true},
		{"no data dir", func(c *Config) { c.DataDir = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			assert.Equal(t, tt.wantErr, err != nil, "validate() error = %v", err)
		})
	}
}

func TestMaskedAPIKey(t *testing.T) {
	assert.Equal(t, "**********1234", (&Config{APIKey: "cg-secret-1234"}).MaskedAPIKey())
	assert.Equal(t, "***", (&Config{APIKey: "abc"}).MaskedAPIKey())
	assert.Empty(t, (&Config{}).MaskedAPIKey())
}

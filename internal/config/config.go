// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "TOKENFOLIO"

// Config holds application settings loaded from the config file and the
// TOKENFOLIO_* environment.
type Config struct {
	APIBaseURL       string        `mapstructure:"api_base_url"`
	APIKey           string        `mapstructure:"api_key"`
	VsCurrency       string        `mapstructure:"vs_currency"`
	RequestTimeout   time.Duration `mapstructure:"-"`
	RequestTimeoutMS int           `mapstructure:"request_timeout_ms"`
	Retries          int           `mapstructure:"retries"`
	DataDir          string        `mapstructure:"data_dir"`
	PageSize         int           `mapstructure:"page_size"`
	SearchDebounce   time.Duration `mapstructure:"-"`
	SearchDebounceMS int           `mapstructure:"search_debounce_ms"`
	RefreshInterval  time.Duration `mapstructure:"-"`
	RefreshEveryMS   int           `mapstructure:"refresh_interval_ms"`
	DebugLogging     bool          `mapstructure:"debug_logging"`
	LogFile          string        `mapstructure:"log_file"`
	MetricsAddr      string        `mapstructure:"metrics_addr"`
}

const (
	DefaultAPIBaseURL       = "https://api.coingecko.com/api/v3"
	DefaultVsCurrency       = "usd"
	DefaultRequestTimeoutMS = 10000
	DefaultRetries          = 2
	DefaultPageSize         = 10
	DefaultSearchDebounceMS = 300
	DefaultLogFile          = "tokenfolio.log"
)

// Load reads configuration from path. An empty path, or a path that does not
// exist, yields defaults plus environment overrides. A .env file in the
// working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	defaults := map[string]interface{}{
		"api_base_url":        DefaultAPIBaseURL,
		"api_key":             "",
		"vs_currency":         DefaultVsCurrency,
		"request_timeout_ms":  DefaultRequestTimeoutMS,
		"retries":             DefaultRetries,
		"data_dir":            defaultDataDir(),
		"page_size":           DefaultPageSize,
		"search_debounce_ms":  DefaultSearchDebounceMS,
		"refresh_interval_ms": 0,
		"debug_logging":       false,
		"log_file":            DefaultLogFile,
		"metrics_addr":        "",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config error: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	// Convert ms to Duration
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutMS) * time.Millisecond
	cfg.SearchDebounce = time.Duration(cfg.SearchDebounceMS) * time.Millisecond
	cfg.RefreshInterval = time.Duration(cfg.RefreshEveryMS) * time.Millisecond

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil || parsed.Host == "" {
		return errors.New("invalid api_base_url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("api_base_url must use http or https")
	}
	if c.VsCurrency == "" {
		return errors.New("vs_currency is required")
	}
	if c.RequestTimeoutMS <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	if c.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if c.PageSize <= 0 {
		return errors.New("invalid page_size")
	}
	if c.SearchDebounceMS <= 0 {
		return errors.New("invalid search_debounce_ms")
	}
	if c.RefreshEveryMS < 0 {
		return errors.New("invalid refresh_interval_ms")
	}
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	return nil
}

// LogPath returns the log file location, relative paths resolved against
// the data directory.
func (c *Config) LogPath() string {
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, c.LogFile)
}

// MaskedAPIKey hides all but the last four characters of the API key.
func (c *Config) MaskedAPIKey() string {
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tokenfolio")
	}
	return ".tokenfolio"
}

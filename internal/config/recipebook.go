// Package config loads recipebook settings from viper.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/recipebook/internal/common"
	"github.com/spf13/viper"
)

// Keys read from viper.
const (
	KeyAPIBaseURL     = "api.base_url"
	KeyAPIToken       = "api.token"
	KeyAPITimeout     = "api.timeout"
	KeyDatabasePath   = "database.path"
	KeySearchDebounce = "search.debounce"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
	KeyLogFile        = "logging.file"
)

// Defaults.
const (
	DefaultAPIBaseURL   = "https://food2fork.ca/"
	DefaultAPITimeout   = 15 * time.Second
	DefaultDatabasePath = "$HOME/.local/share/recipebook/recipes.db"
	DefaultDebounce     = 300 * time.Millisecond
	DefaultLogFile      = "$HOME/.local/state/recipebook/browse.log"
)

// Config holds everything the commands need to build a repository and a browser.
type Config struct {
	APIBaseURL   string
	APIToken     string
	DatabasePath string
	LogFile      string
	APITimeout   time.Duration
	Debounce     time.Duration
}

// DefaultConfig returns a Config populated with default values.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:   DefaultAPIBaseURL,
		APITimeout:   DefaultAPITimeout,
		DatabasePath: ExpandPath(DefaultDatabasePath),
		Debounce:     DefaultDebounce,
		LogFile:      ExpandPath(DefaultLogFile),
	}
}

// SetDefaults registers default values so unset keys resolve sensibly.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIBaseURL, DefaultAPIBaseURL)
	v.SetDefault(KeyAPITimeout, DefaultAPITimeout)
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeySearchDebounce, DefaultDebounce)
	v.SetDefault(KeyLogFile, DefaultLogFile)
}

// Load builds a Config from viper. It follows this precedence:
// 1. Viper configuration (flags, config file or RECIPEBOOK_ env vars)
// 2. Direct environment variable FOOD2FORK_TOKEN for the API token
// 3. Default values
func Load(v *viper.Viper) (*Config, error) {
	config := DefaultConfig()

	if s := v.GetString(KeyAPIBaseURL); s != "" {
		config.APIBaseURL = s
	}
	config.APIToken = v.GetString(KeyAPIToken)
	if config.APIToken == "" {
		config.APIToken = os.Getenv("FOOD2FORK_TOKEN")
	}
	if v.IsSet(KeyAPITimeout) {
		config.APITimeout = v.GetDuration(KeyAPITimeout)
	}
	if s := v.GetString(KeyDatabasePath); s != "" {
		config.DatabasePath = ExpandPath(s)
	}
	if v.IsSet(KeySearchDebounce) {
		config.Debounce = v.GetDuration(KeySearchDebounce)
	}
	if s := v.GetString(KeyLogFile); s != "" {
		config.LogFile = ExpandPath(s)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an http(s) URL, got %q", common.ErrInvalidConfig, KeyAPIBaseURL, c.APIBaseURL)
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyAPITimeout)
	}

	if c.Debounce <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeySearchDebounce)
	}

	if c.DatabasePath == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}

	return nil
}

// ExpandPath resolves a leading ~ to the home directory and then $VAR references.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + strings.TrimPrefix(path, "~")
		}
	}
	return os.ExpandEnv(path)
}

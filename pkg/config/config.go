// Package config holds explicit service configuration. The provider
// API key is an injected value here, never an ambient lookup inside the
// request path; a missing key is reported at call time so the client
// can prompt for reconfiguration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIKey          string
	Model           string
	ProviderBaseURL string
	ProviderTimeout time.Duration
	MaxConcurrent   int
	SessionCapacity int
	ListenAddr      string
	Verbose         bool
}

// DefaultConfig returns the defaults for the hosted Gemini endpoint.
func DefaultConfig() *Config {
	return &Config{
		Model:           "gemini-3-pro-preview",
		ProviderBaseURL: "https://generativelanguage.googleapis.com",
		ProviderTimeout: 90 * time.Second,
		MaxConcurrent:   3,
		SessionCapacity: 512,
		ListenAddr:      ":9090",
	}
}

// FromEnv builds a config from defaults overridden by environment
// variables. A .env file is loaded first when present.
func FromEnv() (*Config, error) {
	LoadDotEnv()

	cfg := DefaultConfig()
	if v, ok := EnvString("QUICKPRICE_API_KEY"); ok {
		cfg.APIKey = v
	} else if v, ok := EnvString("GEMINI_API_KEY"); ok {
		cfg.APIKey = v
	}
	if v, ok := EnvString("QUICKPRICE_MODEL"); ok {
		cfg.Model = v
	}
	if v, ok := EnvString("QUICKPRICE_PROVIDER_URL"); ok {
		cfg.ProviderBaseURL = v
	}
	if v, ok := EnvString("QUICKPRICE_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok, err := EnvInt("QUICKPRICE_MAX_CONCURRENT"); err != nil {
		return nil, fmt.Errorf("invalid QUICKPRICE_MAX_CONCURRENT: %w", err)
	} else if ok {
		cfg.MaxConcurrent = v
	}
	if v, ok, err := EnvInt("QUICKPRICE_SESSION_CAPACITY"); err != nil {
		return nil, fmt.Errorf("invalid QUICKPRICE_SESSION_CAPACITY: %w", err)
	} else if ok {
		cfg.SessionCapacity = v
	}
	if v, ok, err := EnvInt("QUICKPRICE_TIMEOUT_SECONDS"); err != nil {
		return nil, fmt.Errorf("invalid QUICKPRICE_TIMEOUT_SECONDS: %w", err)
	} else if ok {
		cfg.ProviderTimeout = time.Duration(v) * time.Second
	}
	if v, ok, err := EnvBool("QUICKPRICE_VERBOSE"); err != nil {
		return nil, fmt.Errorf("invalid QUICKPRICE_VERBOSE: %w", err)
	} else if ok {
		cfg.Verbose = v
	}
	return cfg, nil
}

// LoadDotEnv loads a local .env file if one exists. Missing files are
// fine; the process environment wins on conflict anyway.
func LoadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

// Validate ensures all configuration values are coherent. An empty API
// key is allowed here: it surfaces as a CONFIG_MISSING failure on the
// first query, so the UI can offer the credential-selection flow.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.ProviderBaseURL == "" {
		return fmt.Errorf("provider base URL cannot be empty")
	}
	parsed, err := url.Parse(c.ProviderBaseURL)
	if err != nil {
		return fmt.Errorf("invalid provider base URL: %w", err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("provider base URL must include a host")
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("provider timeout must be positive")
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max concurrent must be positive")
	}
	if c.SessionCapacity <= 0 {
		return fmt.Errorf("session capacity must be positive")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	return nil
}

// EnvString reads a non-empty environment variable.
func EnvString(key string) (string, bool) {
	value := os.Getenv(key)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvBool reads a boolean environment variable.
func EnvBool(key string) (bool, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, err
	}
	return parsed, true, nil
}

// EnvInt reads an integer environment variable.
func EnvInt(key string) (int, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, err
	}
	return parsed, true, nil
}

package config

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidateAllowsEmptyAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty API key is a runtime condition, not a config error: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty model", mutate: func(c *Config) { c.Model = "" }},
		{name: "empty provider url", mutate: func(c *Config) { c.ProviderBaseURL = "" }},
		{name: "hostless provider url", mutate: func(c *Config) { c.ProviderBaseURL = "/just/a/path" }},
		{name: "zero timeout", mutate: func(c *Config) { c.ProviderTimeout = 0 }},
		{name: "zero concurrency", mutate: func(c *Config) { c.MaxConcurrent = 0 }},
		{name: "zero capacity", mutate: func(c *Config) { c.SessionCapacity = 0 }},
		{name: "empty addr", mutate: func(c *Config) { c.ListenAddr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("QUICKPRICE_API_KEY", "test-key")
	t.Setenv("QUICKPRICE_MODEL", "gemini-3-flash-preview")
	t.Setenv("QUICKPRICE_MAX_CONCURRENT", "5")
	t.Setenv("QUICKPRICE_TIMEOUT_SECONDS", "30")
	t.Setenv("QUICKPRICE_VERBOSE", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.APIKey != "test-key" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.Model != "gemini-3-flash-preview" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.MaxConcurrent != 5 {
		t.Errorf("MaxConcurrent = %d", cfg.MaxConcurrent)
	}
	if cfg.ProviderTimeout != 30*time.Second {
		t.Errorf("ProviderTimeout = %v", cfg.ProviderTimeout)
	}
	if !cfg.Verbose {
		t.Errorf("Verbose = false, want true")
	}
}

func TestFromEnvFallbackKey(t *testing.T) {
	t.Setenv("QUICKPRICE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "fallback-key")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.APIKey != "fallback-key" {
		t.Errorf("APIKey = %q, want the GEMINI_API_KEY fallback", cfg.APIKey)
	}
}

func TestFromEnvRejectsBadInt(t *testing.T) {
	t.Setenv("QUICKPRICE_MAX_CONCURRENT", "lots")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for non-numeric value")
	}
}

func TestFromEnvRejectsBadBool(t *testing.T) {
	t.Setenv("QUICKPRICE_VERBOSE", "always")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for non-boolean value")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("QP_TEST_INT", "42")
	v, ok, err := EnvInt("QP_TEST_INT")
	if err != nil || !ok || v != 42 {
		t.Fatalf("EnvInt = (%d, %v, %v)", v, ok, err)
	}

	if _, ok, err := EnvInt("QP_TEST_INT_UNSET"); ok || err != nil {
		t.Fatalf("unset variable should report not-ok, got (%v, %v)", ok, err)
	}
}

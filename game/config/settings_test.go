package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoadSettings_Defaults(t *testing.T) {
	for _, key := range []string{"CONFIG_DIR", "DEFAULT_CONFIG", "SCORES_DB", "REDIS_ADDR", "REDIS_KEY", "LOG_LEVEL", "SESSION_TTL", "NGROK_ENABLED"} {
		// Setenv restores the original value after the test
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.ConfigDir != "configs" {
		t.Errorf("Expected default config dir 'configs', got %q", s.ConfigDir)
	}
	if s.SessionTTL != 24*time.Hour {
		t.Errorf("Expected default TTL 24h, got %v", s.SessionTTL)
	}
	if s.RedisAddr != "" || s.DefaultConfig != "" {
		t.Errorf("Expected no redis address or default config, got %+v", s)
	}
}

func TestLoadSettings_FromEnv(t *testing.T) {
	t.Setenv("CONFIG_DIR", "/srv/tiles")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("NGROK_ENABLED", "true")
	t.Setenv("DEFAULT_CONFIG", "big")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.ConfigDir != "/srv/tiles" {
		t.Errorf("Expected /srv/tiles, got %q", s.ConfigDir)
	}
	if s.SessionTTL != 90*time.Minute {
		t.Errorf("Expected 90m, got %v", s.SessionTTL)
	}
	if s.DefaultConfig != "big" {
		t.Errorf("Expected default config big, got %q", s.DefaultConfig)
	}
	if !s.NgrokEnabled {
		t.Error("Expected ngrok to be enabled")
	}
}

func TestLoadSettings_Error(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")

	_, err := LoadSettings()
	if err == nil {
		t.Fatal("Expected error for bad duration")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Errorf("Expected parse env prefix, got %v", err)
	}
}

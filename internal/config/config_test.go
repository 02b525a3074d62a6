package config

import (
	"os"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Engine: EngineConfig{
			ComboWindow:      5 * time.Second,
			BattleTick:       time.Second,
			OpponentChance:   0.35,
			OpponentMinScore: 50,
			OpponentMaxScore: 500,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("accepts defaults", func(t *testing.T) {
		if err := validConfig().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects bad port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Port = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for port 0")
		}
	})

	t.Run("rejects non-positive combo window", func(t *testing.T) {
		cfg := validConfig()
		cfg.Engine.ComboWindow = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for zero combo window")
		}
	})

	t.Run("rejects chance above one", func(t *testing.T) {
		cfg := validConfig()
		cfg.Engine.OpponentChance = 1.5
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for chance 1.5")
		}
	})

	t.Run("rejects inverted score bounds", func(t *testing.T) {
		cfg := validConfig()
		cfg.Engine.OpponentMinScore = 600
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for min > max")
		}
	})

	t.Run("rejects feed without poll interval", func(t *testing.T) {
		cfg := validConfig()
		cfg.Feed.URL = "https://feed.example.com"
		cfg.Feed.PollInterval = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for zero feed poll interval")
		}
	})
}

func TestLoad(t *testing.T) {
	t.Setenv("LIVE_JWT_SECRET", "test-secret")
	t.Setenv("LIVE_STREAM_KEY_HASH", "$2a$10$test")
	t.Setenv("LIVE_PORT", "9090")
	t.Setenv("LIVE_COMBO_WINDOW", "7s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Engine.ComboWindow != 7*time.Second {
		t.Errorf("expected 7s combo window, got %v", cfg.Engine.ComboWindow)
	}
	if cfg.Engine.StartingBalance != 1000 {
		t.Errorf("expected default starting balance, got %d", cfg.Engine.StartingBalance)
	}
	if cfg.Auth.TokenExpiry != 24*time.Hour {
		t.Errorf("expected default token expiry, got %v", cfg.Auth.TokenExpiry)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	// Setenv registers the restore; the vars must be absent, not empty.
	t.Setenv("LIVE_JWT_SECRET", "x")
	t.Setenv("LIVE_STREAM_KEY_HASH", "x")
	os.Unsetenv("LIVE_JWT_SECRET")
	os.Unsetenv("LIVE_STREAM_KEY_HASH")

	if _, err := Load(); err == nil {
		t.Error("expected error without required settings")
	}
}

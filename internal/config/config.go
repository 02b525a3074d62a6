// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Engine   EngineConfig
	Feed     FeedConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         int           `envconfig:"LIVE_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"LIVE_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"LIVE_WRITE_TIMEOUT" default:"15s"`
	LogLevel     string        `envconfig:"LIVE_LOG_LEVEL" default:"info"`
}

// DatabaseConfig holds the audit trail database settings. An empty DSN
// disables the audit trail.
type DatabaseConfig struct {
	Driver         string        `envconfig:"LIVE_DB_DRIVER" default:"postgres"`
	DSN            string        `envconfig:"LIVE_DB_DSN"`
	AuditRetention time.Duration `envconfig:"LIVE_AUDIT_RETENTION" default:"720h"`
}

// AuthConfig holds token and stream key settings
type AuthConfig struct {
	JWTSecret     string        `envconfig:"LIVE_JWT_SECRET" required:"true"`
	TokenExpiry   time.Duration `envconfig:"LIVE_TOKEN_EXPIRY" default:"24h"`
	StreamKeyHash string        `envconfig:"LIVE_STREAM_KEY_HASH" required:"true"`
}

// EngineConfig tunes session engines
type EngineConfig struct {
	ComboWindow        time.Duration `envconfig:"LIVE_COMBO_WINDOW" default:"5s"`
	BattleTick         time.Duration `envconfig:"LIVE_BATTLE_TICK" default:"1s"`
	LogCap             int           `envconfig:"LIVE_LOG_CAP" default:"200"`
	StartingBalance    int64         `envconfig:"LIVE_STARTING_BALANCE" default:"1000"`
	SessionIdleTimeout time.Duration `envconfig:"LIVE_SESSION_IDLE_TIMEOUT" default:"2h"`
	SimulateOpponent   bool          `envconfig:"LIVE_SIMULATE_OPPONENT" default:"true"`
	OpponentChance     float64       `envconfig:"LIVE_OPPONENT_CHANCE" default:"0.35"`
	OpponentMinScore   int64         `envconfig:"LIVE_OPPONENT_MIN_SCORE" default:"50"`
	OpponentMaxScore   int64         `envconfig:"LIVE_OPPONENT_MAX_SCORE" default:"500"`
}

// FeedConfig holds the remote opponent score feed settings. An empty
// URL disables the feed and battles fall back to the simulated opponent.
type FeedConfig struct {
	URL          string        `envconfig:"LIVE_SCOREFEED_URL"`
	APIKey       string        `envconfig:"LIVE_SCOREFEED_API_KEY"`
	PollInterval time.Duration `envconfig:"LIVE_SCOREFEED_POLL_INTERVAL" default:"1s"`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Engine.ComboWindow <= 0 {
		return fmt.Errorf("combo window must be positive")
	}
	if c.Engine.BattleTick <= 0 {
		return fmt.Errorf("battle tick must be positive")
	}
	if c.Engine.OpponentChance < 0 || c.Engine.OpponentChance > 1 {
		return fmt.Errorf("opponent chance must be in [0, 1]")
	}
	if c.Engine.OpponentMinScore > c.Engine.OpponentMaxScore {
		return fmt.Errorf("opponent score bounds inverted")
	}
	if c.Feed.URL != "" && c.Feed.PollInterval <= 0 {
		return fmt.Errorf("feed poll interval must be positive")
	}
	return nil
}

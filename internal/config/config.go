// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

// Package config provides typed application configuration loaded via koanf
// from layered sources: built-in defaults, an optional YAML file, and
// environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Storage    StorageConfig    `koanf:"storage"`
	Gateway    GatewayConfig    `koanf:"gateway"`
	Thresholds ThresholdsConfig `koanf:"thresholds"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SecurityConfig holds authentication and abuse-control settings.
type SecurityConfig struct {
	// JWTSecret signs and verifies bearer tokens (HS256).
	// Minimum 32 characters.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout bounds token validity.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// CORSOrigins lists allowed origins for the HTTP and WebSocket surface.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs/RateLimitWindow bound HTTP requests per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// StorageConfig holds embedded store settings.
type StorageConfig struct {
	// Path is the BadgerDB directory for the alert/emergency ledger and
	// snapshot history. Empty means in-memory (tests).
	Path string `koanf:"path"`

	// SnapshotRetention bounds how long historical snapshots are kept.
	SnapshotRetention time.Duration `koanf:"snapshot_retention"`
}

// GatewayConfig holds realtime gateway tuning.
type GatewayConfig struct {
	// SendBuffer is the per-connection outbound queue size. A full queue
	// drops the connection rather than blocking the hub.
	SendBuffer int `koanf:"send_buffer"`

	// MaxMessageSize bounds inbound WebSocket frames in bytes.
	MaxMessageSize int64 `koanf:"max_message_size"`

	// EventRate/EventBurst bound inbound events per connection per second.
	EventRate  float64 `koanf:"event_rate"`
	EventBurst int     `koanf:"event_burst"`
}

// ThresholdsConfig holds environmental danger thresholds.
type ThresholdsConfig struct {
	// MethanePct is the methane danger threshold in percent.
	MethanePct float64 `koanf:"methane_pct"`

	// CarbonMonoxidePPM is the CO danger threshold in parts per million.
	CarbonMonoxidePPM float64 `koanf:"carbon_monoxide_ppm"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			SessionTimeout:  24 * time.Hour,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Storage: StorageConfig{
			Path:              "/data/coalmine",
			SnapshotRetention: 30 * 24 * time.Hour,
		},
		Gateway: GatewayConfig{
			SendBuffer:     256,
			MaxMessageSize: 512 * 1024,
			EventRate:      50,
			EventBurst:     100,
		},
		Thresholds: ThresholdsConfig{
			MethanePct:        1.5,
			CarbonMonoxidePPM: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks configuration invariants that cannot be expressed as
// defaults. It is called by Load after all layers are merged.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters")
	}
	if c.Gateway.SendBuffer < 1 {
		return fmt.Errorf("gateway.send_buffer must be positive, got %d", c.Gateway.SendBuffer)
	}
	if c.Thresholds.MethanePct <= 0 {
		return fmt.Errorf("thresholds.methane_pct must be positive, got %v", c.Thresholds.MethanePct)
	}
	if c.Thresholds.CarbonMonoxidePPM <= 0 {
		return fmt.Errorf("thresholds.carbon_monoxide_ppm must be positive, got %v", c.Thresholds.CarbonMonoxidePPM)
	}
	return nil
}

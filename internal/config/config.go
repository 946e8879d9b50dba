// Package config loads service configuration from an optional YAML file with
// PAIRLINE_* environment-variable overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Agora       AgoraConfig       `yaml:"agora"`
	Matchmaking MatchmakingConfig `yaml:"matchmaking"`
	Topics      TopicsConfig      `yaml:"topics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	Address      string `yaml:"address"`
	RateLimitRPM int    `yaml:"rate_limit_rpm"` // per-IP, 0 disables
	RateBurst    int    `yaml:"rate_burst"`
}

// AgoraConfig identifies the external credential provider project. Consumed
// only by the rtc provider, never by the engine.
type AgoraConfig struct {
	AppID          string `yaml:"app_id"`
	AppCertificate string `yaml:"app_certificate"`
}

// MatchmakingConfig contains engine timing parameters, all in seconds.
type MatchmakingConfig struct {
	WaitTimeout     int `yaml:"wait_timeout"`     // eviction of unmatched requests
	ChannelDuration int `yaml:"channel_duration"` // hard ceiling per channel
	SweepInterval   int `yaml:"sweep_interval"`   // expiration sweep cadence
	MintTimeout     int `yaml:"mint_timeout"`     // credential provider bound
}

func (m *MatchmakingConfig) WaitTimeoutDuration() time.Duration {
	return time.Duration(m.WaitTimeout) * time.Second
}

func (m *MatchmakingConfig) ChannelDurationDuration() time.Duration {
	return time.Duration(m.ChannelDuration) * time.Second
}

func (m *MatchmakingConfig) SweepIntervalDuration() time.Duration {
	return time.Duration(m.SweepInterval) * time.Second
}

func (m *MatchmakingConfig) MintTimeoutDuration() time.Duration {
	return time.Duration(m.MintTimeout) * time.Second
}

// TopicsConfig points at an optional YAML catalog of conversation prompts.
type TopicsConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns a runnable development configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Address:      "0.0.0.0",
			RateLimitRPM: 0,
			RateBurst:    10,
		},
		Matchmaking: MatchmakingConfig{
			WaitTimeout:     300, // 5 minutes
			ChannelDuration: 600, // 10 minutes
			SweepInterval:   60,
			MintTimeout:     2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides, then validation.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PAIRLINE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("PAIRLINE_ADDRESS"); v != "" {
		c.Server.Address = v
	}
	if v := os.Getenv("PAIRLINE_RATE_LIMIT_RPM"); v != "" {
		if rpm, err := strconv.Atoi(v); err == nil {
			c.Server.RateLimitRPM = rpm
		}
	}
	if v := os.Getenv("PAIRLINE_AGORA_APP_ID"); v != "" {
		c.Agora.AppID = v
	}
	if v := os.Getenv("PAIRLINE_AGORA_APP_CERTIFICATE"); v != "" {
		c.Agora.AppCertificate = v
	}
	if v := os.Getenv("PAIRLINE_TOPICS_FILE"); v != "" {
		c.Topics.Path = v
	}
	if v := os.Getenv("PAIRLINE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PAIRLINE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// Validate checks the full configuration.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Matchmaking.Validate(); err != nil {
		return fmt.Errorf("matchmaking config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates server configuration.
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	if s.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if s.RateLimitRPM < 0 {
		return fmt.Errorf("rate_limit_rpm cannot be negative, got %d", s.RateLimitRPM)
	}
	return nil
}

// Validate validates matchmaking timing parameters.
func (m *MatchmakingConfig) Validate() error {
	if m.WaitTimeout <= 0 {
		return fmt.Errorf("wait_timeout must be positive seconds, got %d", m.WaitTimeout)
	}
	if m.ChannelDuration <= 0 {
		return fmt.Errorf("channel_duration must be positive seconds, got %d", m.ChannelDuration)
	}
	if m.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive seconds, got %d", m.SweepInterval)
	}
	if m.MintTimeout <= 0 {
		return fmt.Errorf("mint_timeout must be positive seconds, got %d", m.MintTimeout)
	}
	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of debug, info, warn, error, got %q", l.Level)
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", l.Format)
	}
	return nil
}

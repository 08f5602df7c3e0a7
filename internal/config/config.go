package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds server configuration values.
type Config struct {
	Addr              string         `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration  `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration  `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string         `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string         `mapstructure:"log_format" yaml:"log_format"`
	MaxMessageBytes   int64          `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	ClientBuffer      int            `mapstructure:"client_buffer" yaml:"client_buffer"`
	RateLimit         int            `mapstructure:"rate_limit" yaml:"rate_limit"`
	SessionPolicy     string         `mapstructure:"session_policy" yaml:"session_policy"`
	AllowedOrigins    []string       `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	Servers           []ServerConfig `mapstructure:"servers" yaml:"servers"`
}

// ServerConfig defines one chat server, its channels and its members.
type ServerConfig struct {
	ID       string          `mapstructure:"id" yaml:"id"`
	Name     string          `mapstructure:"name" yaml:"name"`
	Icon     string          `mapstructure:"icon" yaml:"icon"`
	Channels []ChannelConfig `mapstructure:"channels" yaml:"channels"`
	Members  []MemberConfig  `mapstructure:"members" yaml:"members"`
}

// ChannelConfig defines a channel; Type is "text" or "voice".
type ChannelConfig struct {
	ID   string `mapstructure:"id" yaml:"id"`
	Name string `mapstructure:"name" yaml:"name"`
	Type string `mapstructure:"type" yaml:"type"`
}

// MemberConfig grants a user a role ("admin" or "member") on a server.
type MemberConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	Role string `mapstructure:"role" yaml:"role"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		MaxMessageBytes:   1 << 16,
		ClientBuffer:      64,
		RateLimit:         120,
		SessionPolicy:     "supersede",
		Servers:           defaultServers(),
	}
}

func defaultServers() []ServerConfig {
	text := func(id string) ChannelConfig { return ChannelConfig{ID: id, Name: id, Type: "text"} }

	return []ServerConfig{
		{
			ID: "1", Name: "My Server", Icon: "🏠",
			Channels: []ChannelConfig{text("general"), text("random"), text("announcements")},
			Members: []MemberConfig{
				{Name: "alice", Role: "admin"},
				{Name: "bob", Role: "member"},
				{Name: "charlie", Role: "member"},
				{Name: "diana", Role: "member"},
			},
		},
		{
			ID: "2", Name: "Gaming", Icon: "🎮",
			Channels: []ChannelConfig{
				text("general"),
				text("game-chat"),
				{ID: "voice-general", Name: "Voice General", Type: "voice"},
			},
			Members: []MemberConfig{
				{Name: "alice", Role: "admin"},
				{Name: "charlie", Role: "member"},
				{Name: "eve", Role: "member"},
			},
		},
		{
			ID: "3", Name: "Work", Icon: "💼",
			Channels: []ChannelConfig{
				text("general"),
				text("projects"),
				{ID: "meeting-room", Name: "Meeting Room", Type: "voice"},
			},
			Members: []MemberConfig{
				{Name: "bob", Role: "admin"},
				{Name: "diana", Role: "member"},
				{Name: "frank", Role: "member"},
			},
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.ClientBuffer != 0 {
		c.ClientBuffer = other.ClientBuffer
	}
	if other.RateLimit != 0 {
		c.RateLimit = other.RateLimit
	}
	if other.SessionPolicy != "" {
		c.SessionPolicy = other.SessionPolicy
	}
	if len(other.AllowedOrigins) > 0 {
		c.AllowedOrigins = other.AllowedOrigins
	}
	if len(other.Servers) > 0 {
		c.Servers = other.Servers
	}
}

// Validate checks values that cannot be fixed with a default.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.MaxMessageBytes < 0 {
		errs = append(errs, errors.New("max_message_bytes must not be negative"))
	}
	if c.ClientBuffer < 0 {
		errs = append(errs, errors.New("client_buffer must not be negative"))
	}
	switch strings.ToLower(c.SessionPolicy) {
	case "", "supersede", "reject":
	default:
		errs = append(errs, fmt.Errorf("session_policy %q must be supersede or reject", c.SessionPolicy))
	}
	if len(c.Servers) == 0 {
		errs = append(errs, errors.New("at least one server must be configured"))
	}
	return errors.Join(errs...)
}

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config is the root configuration for a tickerboard run.
type Config struct {
	API          APIConfig          `yaml:"api"`
	Subscription SubscriptionConfig `yaml:"subscription"`
	Display      DisplayConfig      `yaml:"display"`
	Lifetime     LifetimeConfig     `yaml:"lifetime"`
	Connections  ConnectionsConfig  `yaml:"connections"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Log          LogConfig          `yaml:"log"`
}

// APIConfig holds Upbit endpoint settings.
type APIConfig struct {
	RestURL      string        `yaml:"rest_url"`
	WSURL        string        `yaml:"ws_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	RateLimit    float64       `yaml:"rate_limit"` // REST requests per second
	RateBurst    int           `yaml:"rate_burst"`
}

// SubscriptionConfig selects what the feed streams.
type SubscriptionConfig struct {
	Ticket         string   `yaml:"ticket"` // "auto" generates a fresh ticket per run
	Type           string   `yaml:"type"`
	Codes          []string `yaml:"codes"`
	AllMarkets     bool     `yaml:"all_markets"` // subscribe to every catalog market
	Quote          string   `yaml:"quote"`       // with all_markets, keep only this quote currency
	IsOnlySnapshot bool     `yaml:"is_only_snapshot"`
	IsOnlyRealtime bool     `yaml:"is_only_realtime"`
}

// DisplayConfig controls the terminal table.
type DisplayConfig struct {
	Rows        int    `yaml:"rows"`
	Timezone    string `yaml:"timezone"` // IANA name, "Local" or "UTC"
	ClearScreen *bool  `yaml:"clear_screen"`
}

// LifetimeConfig bounds the run.
type LifetimeConfig struct {
	Duration        *time.Duration `yaml:"duration"` // 0 runs until interrupted
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
	ExitOnClose     bool           `yaml:"exit_on_close"` // stop when the server closes the stream
}

// ConnectionsConfig holds WebSocket connection manager settings.
type ConnectionsConfig struct {
	WorkerCount      int           `yaml:"worker_count"`
	QueueSize        int           `yaml:"queue_size"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	PingInterval     time.Duration `yaml:"ping_interval"`
	PingTimeout      time.Duration `yaml:"ping_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	BufferSize       int           `yaml:"buffer_size"`
}

// MetricsConfig holds the metrics HTTP server settings. Port 0 disables it.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// RunDuration returns the configured lifetime; 0 means until interrupted.
func (l LifetimeConfig) RunDuration() time.Duration {
	if l.Duration == nil {
		return DefaultDuration
	}
	return *l.Duration
}

// ShouldClear reports whether the screen is cleared before each repaint.
func (d DisplayConfig) ShouldClear() bool {
	if d.ClearScreen == nil {
		return true
	}
	return *d.ClearScreen
}

// Location resolves the display timezone.
func (d DisplayConfig) Location() (*time.Location, error) {
	switch d.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", d.Timezone, err)
	}
	return loc, nil
}

// SlogLevel converts the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q: %w", l.Level, err)
	}
	return level, nil
}

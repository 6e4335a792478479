package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL          = "https://api.upbit.com/v1"
	DefaultWSURL            = "wss://api.upbit.com/websocket/v1"
	DefaultAPITimeout       = 30 * time.Second
	DefaultMaxRetries       = 3
	DefaultRetryBackoff     = 1 * time.Second
	DefaultRateLimit        = 10.0
	DefaultRateBurst        = 10
	DefaultTicket           = "test"
	DefaultChannelType      = "ticker"
	DefaultCode             = "KRW-BTC"
	DefaultRows             = 8
	DefaultDuration         = 30 * time.Second
	DefaultShutdownTimeout  = 5 * time.Second
	DefaultWorkerCount      = 1
	DefaultQueueSize        = 16
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultPingInterval     = 30 * time.Second
	DefaultPingTimeout      = 120 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultBufferSize       = 1024
	DefaultMetricsPath      = "/metrics"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

// Default returns a configuration built from defaults alone.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.WSURL == "" {
		c.API.WSURL = DefaultWSURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}
	if c.API.RateLimit == 0 {
		c.API.RateLimit = DefaultRateLimit
	}
	if c.API.RateBurst == 0 {
		c.API.RateBurst = DefaultRateBurst
	}

	// Subscription defaults
	if c.Subscription.Ticket == "" {
		c.Subscription.Ticket = DefaultTicket
	}
	if c.Subscription.Type == "" {
		c.Subscription.Type = DefaultChannelType
	}
	if len(c.Subscription.Codes) == 0 && !c.Subscription.AllMarkets {
		c.Subscription.Codes = []string{DefaultCode}
	}

	// Display defaults
	if c.Display.Rows == 0 {
		c.Display.Rows = DefaultRows
	}
	if c.Display.ClearScreen == nil {
		on := true
		c.Display.ClearScreen = &on
	}

	// Lifetime defaults
	if c.Lifetime.Duration == nil {
		d := DefaultDuration
		c.Lifetime.Duration = &d
	}
	if c.Lifetime.ShutdownTimeout == 0 {
		c.Lifetime.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Connections defaults
	if c.Connections.WorkerCount == 0 {
		c.Connections.WorkerCount = DefaultWorkerCount
	}
	if c.Connections.QueueSize == 0 {
		c.Connections.QueueSize = DefaultQueueSize
	}
	if c.Connections.HandshakeTimeout == 0 {
		c.Connections.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Connections.PingInterval == 0 {
		c.Connections.PingInterval = DefaultPingInterval
	}
	if c.Connections.PingTimeout == 0 {
		c.Connections.PingTimeout = DefaultPingTimeout
	}
	if c.Connections.WriteTimeout == 0 {
		c.Connections.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connections.BufferSize == 0 {
		c.Connections.BufferSize = DefaultBufferSize
	}

	// Metrics defaults (port 0 keeps the server off)
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

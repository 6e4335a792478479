package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := validateURL("api.rest_url", c.API.RestURL, "http", "https"); err != nil {
		return err
	}
	if err := validateURL("api.ws_url", c.API.WSURL, "ws", "wss"); err != nil {
		return err
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}
	if c.API.RateLimit < 0 {
		return errors.New("api.rate_limit must be >= 0")
	}
	if err := validateDurations(
		durationField{"api.timeout", c.API.Timeout},
		durationField{"api.retry_backoff", c.API.RetryBackoff},
	); err != nil {
		return err
	}

	if c.Subscription.Type == "" {
		return errors.New("subscription.type is required")
	}
	if !c.Subscription.AllMarkets && len(c.Subscription.Codes) == 0 {
		return errors.New("subscription.codes is required")
	}
	for i, code := range c.Subscription.Codes {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("subscription.codes[%d] is empty", i)
		}
	}
	if c.Subscription.IsOnlySnapshot && c.Subscription.IsOnlyRealtime {
		return errors.New("subscription.is_only_snapshot and subscription.is_only_realtime are mutually exclusive")
	}

	if c.Display.Rows < 1 {
		return errors.New("display.rows must be >= 1")
	}
	if _, err := c.Display.Location(); err != nil {
		return fmt.Errorf("display.timezone: %w", err)
	}

	if c.Lifetime.RunDuration() < 0 {
		return errors.New("lifetime.duration must be >= 0")
	}
	if c.Lifetime.ShutdownTimeout < 0 {
		return errors.New("lifetime.shutdown_timeout must be >= 0")
	}

	if c.Connections.WorkerCount < 1 {
		return errors.New("connections.worker_count must be >= 1")
	}
	if c.Connections.QueueSize < 1 {
		return errors.New("connections.queue_size must be >= 1")
	}
	if c.Connections.BufferSize < 1 {
		return errors.New("connections.buffer_size must be >= 1")
	}
	if err := validateDurations(
		durationField{"connections.handshake_timeout", c.Connections.HandshakeTimeout},
		durationField{"connections.ping_interval", c.Connections.PingInterval},
		durationField{"connections.ping_timeout", c.Connections.PingTimeout},
		durationField{"connections.write_timeout", c.Connections.WriteTimeout},
	); err != nil {
		return err
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 0 and 65535, got %d", c.Metrics.Port)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return errors.New("log.level must be one of debug, info, warn, error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

type durationField struct {
	name  string
	value time.Duration
}

func validateDurations(fields ...durationField) error {
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%s must be >= 0, got %s", f.name, f.value)
		}
	}
	return nil
}

func validateURL(field, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%s must use %s, got %q", field, strings.Join(schemes, " or "), u.Scheme)
}

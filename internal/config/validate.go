package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/dexux/marketsync/internal/session"
)

// Validate checks that all required fields are set and values are valid.
func (c *SyncConfig) Validate() error {
	if c.Server.WSURL == "" {
		return errors.New("server.ws_url is required")
	}
	u, err := url.Parse(c.Server.WSURL)
	if err != nil {
		return fmt.Errorf("server.ws_url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("server.ws_url must use ws or wss, got %q", u.Scheme)
	}

	if c.Connection.BufferSize < 1 {
		return errors.New("connection.buffer_size must be >= 1")
	}
	if c.Connection.PingTimeout <= 0 {
		return errors.New("connection.ping_timeout must be > 0")
	}
	if c.Connection.WriteTimeout <= 0 {
		return errors.New("connection.write_timeout must be > 0")
	}
	if c.Connection.HandshakeTimeout < 0 {
		return errors.New("connection.handshake_timeout must be >= 0")
	}

	if err := c.Refresh.validate("refresh"); err != nil {
		return err
	}

	if _, err := session.ParseFilter(c.Search.Filter); err != nil {
		return fmt.Errorf("search.filter: %w", err)
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	return nil
}

func (r *RefreshConfig) validate(prefix string) error {
	delays := []struct {
		name string
		d    time.Duration
	}{
		{"book", r.Book},
		{"ticker", r.Ticker},
		{"blocknum", r.Blocknum},
		{"candles", r.Candles},
	}
	for _, x := range delays {
		if x.d <= 0 {
			return fmt.Errorf("%s.%s must be > 0", prefix, x.name)
		}
	}
	return nil
}

// SlogLevel parses the configured level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/dexux/marketsync/internal/metrics"
)

// Manager owns the single connection to the data server. Every resource is
// requested and answered over this one connection.
type Manager interface {
	// Connect dials the data server. pair and contract only address the
	// initial route; later requests may target any market.
	Connect(ctx context.Context, pair, contract string) error

	// Send encodes and writes a request. No acknowledgment is awaited.
	Send(req Request) error

	// Messages returns the channel of raw incoming messages.
	Messages() <-chan TimestampedMessage

	// Errors returns the channel of transport errors.
	Errors() <-chan error

	// Close shuts the connection down.
	Close() error

	// Stats returns request counters.
	Stats() ManagerStats
}

// ManagerStats provides statistics about the connection manager.
type ManagerStats struct {
	Connected    bool
	RequestsSent int64
	SendErrors   int64
}

// manager implements the Manager interface.
type manager struct {
	cfg       ManagerConfig
	logger    *slog.Logger
	newClient func(ClientConfig, *slog.Logger) Client

	mu     sync.RWMutex
	client Client

	sent       atomic.Int64
	sendErrors atomic.Int64
}

// NewManager creates a new Connection Manager.
func NewManager(cfg ManagerConfig, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &manager{
		cfg:       cfg,
		logger:    logger,
		newClient: NewClient,
	}
}

// DialURL builds the connection URL for the initial route.
func DialURL(base, pair, contract string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse ws url: %w", err)
	}
	q := u.Query()
	q.Set("resource", string(ResourceBook))
	q.Set("pair", pair)
	q.Set("contract", contract)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect dials the data server.
func (m *manager) Connect(ctx context.Context, pair, contract string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return ErrAlreadyConnected
	}

	dialURL, err := DialURL(m.cfg.WSURL, pair, contract)
	if err != nil {
		return err
	}

	c := m.newClient(ClientConfig{
		URL:              dialURL,
		PingTimeout:      m.cfg.PingTimeout,
		WriteTimeout:     m.cfg.WriteTimeout,
		HandshakeTimeout: m.cfg.HandshakeTimeout,
		BufferSize:       m.cfg.BufferSize,
	}, m.logger)

	if err := c.Connect(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", m.cfg.WSURL, err)
	}
	m.client = c
	metrics.Connected.Set(1)

	m.logger.Info("connected to data server",
		"url", m.cfg.WSURL,
		"pair", pair,
		"contract", contract,
	)
	return nil
}

// Send encodes and writes a request.
func (m *manager) Send(req Request) error {
	m.mu.RLock()
	c := m.client
	m.mu.RUnlock()

	resource := string(req.Resource())
	if c == nil {
		m.sendErrors.Add(1)
		metrics.SendErrors.WithLabelValues(resource).Inc()
		return ErrNotConnected
	}

	data, err := json.Marshal(req)
	if err != nil {
		m.sendErrors.Add(1)
		metrics.SendErrors.WithLabelValues(resource).Inc()
		return fmt.Errorf("encode %s request: %w", resource, err)
	}

	if err := c.Send(data); err != nil {
		m.sendErrors.Add(1)
		metrics.SendErrors.WithLabelValues(resource).Inc()
		return fmt.Errorf("send %s request: %w", resource, err)
	}

	m.sent.Add(1)
	metrics.RequestsSent.WithLabelValues(resource).Inc()
	m.logger.Debug("request sent", "resource", resource)
	return nil
}

// Messages returns the raw incoming messages. It returns nil before Connect.
func (m *manager) Messages() <-chan TimestampedMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return nil
	}
	return m.client.Messages()
}

// Errors returns transport errors. It returns nil before Connect.
func (m *manager) Errors() <-chan error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return nil
	}
	return m.client.Errors()
}

// Close shuts the connection down.
func (m *manager) Close() error {
	m.mu.Lock()
	c := m.client
	m.mu.Unlock()

	if c == nil {
		return nil
	}
	metrics.Connected.Set(0)
	m.logger.Info("closing data server connection")
	return c.Close()
}

// Stats returns request counters.
func (m *manager) Stats() ManagerStats {
	m.mu.RLock()
	c := m.client
	m.mu.RUnlock()

	return ManagerStats{
		Connected:    c != nil && c.IsConnected(),
		RequestsSent: m.sent.Load(),
		SendErrors:   m.sendErrors.Load(),
	}
}

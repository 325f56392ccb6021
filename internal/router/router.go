package router

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dexux/marketsync/internal/connection"
	"github.com/dexux/marketsync/internal/metrics"
)

// Router parses raw messages and dispatches them by resource tag.
type Router interface {
	// Route parses and dispatches a single message.
	Route(raw connection.TimestampedMessage)

	// Stats returns current router statistics.
	Stats() RouterStats
}

// router is the internal implementation.
type router struct {
	handler Handler
	logger  *slog.Logger

	mu              sync.RWMutex
	received        int64
	routed          int64
	parseErrors     int64
	unknownMessages int64
}

// NewRouter creates a new Message Router.
func NewRouter(handler Handler, logger *slog.Logger) Router {
	if logger == nil {
		logger = slog.Default()
	}

	return &router{
		handler: handler,
		logger:  logger,
	}
}

// Stats returns current statistics.
func (r *router) Stats() RouterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RouterStats{
		MessagesReceived: r.received,
		MessagesRouted:   r.routed,
		ParseErrors:      r.parseErrors,
		UnknownMessages:  r.unknownMessages,
	}
}

var knownResources = map[connection.Resource]bool{
	connection.ResourceBook:       true,
	connection.ResourceBlocknum:   true,
	connection.ResourceTicker:     true,
	connection.ResourceListAssets: true,
	connection.ResourceCandles:    true,
}

// Route parses and dispatches a single message. Malformed messages and
// unknown resource tags are logged and dropped.
func (r *router) Route(raw connection.TimestampedMessage) {
	r.mu.Lock()
	r.received++
	r.mu.Unlock()

	var env envelope
	if err := json.Unmarshal(raw.Data, &env); err != nil {
		r.logger.Warn("failed to parse envelope", "error", err)
		r.parseError()
		return
	}

	resource := connection.Resource(env.Resource)
	if knownResources[resource] {
		// label only known tags; anything else is counted as dropped below
		metrics.MessagesReceived.WithLabelValues(env.Resource).Inc()
	}

	switch resource {
	case connection.ResourceBook:
		var book BookPayload
		if err := json.Unmarshal(env.Payload, &book); err != nil {
			r.logger.Warn("failed to parse book", "error", err)
			r.parseError()
			return
		}
		r.handler.HandleBook(book)

	case connection.ResourceBlocknum:
		var num int64
		if err := json.Unmarshal(env.Payload, &num); err != nil {
			r.logger.Warn("failed to parse blocknum", "error", err)
			r.parseError()
			return
		}
		r.handler.HandleBlocknum(num)

	case connection.ResourceTicker:
		r.handler.HandleTicker(env.Payload)

	case connection.ResourceListAssets:
		var html string
		if err := json.Unmarshal(env.Payload, &html); err != nil {
			r.logger.Warn("failed to parse list_assets", "error", err)
			r.parseError()
			return
		}
		r.handler.HandleListAssets(html)

	case connection.ResourceCandles:
		var candles CandlePayload
		if err := json.Unmarshal(env.Payload, &candles); err != nil {
			r.logger.Warn("failed to parse candles", "error", err)
			r.parseError()
			return
		}
		r.handler.HandleCandles(candles)

	default:
		r.logger.Info("unknown resource, dropping", "resource", env.Resource)
		metrics.MessagesDropped.WithLabelValues("unknown_resource").Inc()
		r.mu.Lock()
		r.unknownMessages++
		r.mu.Unlock()
		return
	}

	r.mu.Lock()
	r.routed++
	r.mu.Unlock()
}

func (r *router) parseError() {
	metrics.MessagesDropped.WithLabelValues("parse_error").Inc()
	r.mu.Lock()
	r.parseErrors++
	r.mu.Unlock()
}

package coordinator

import (
	"fmt"

	"github.com/dexux/marketsync/internal/connection"
	"github.com/dexux/marketsync/internal/refresh"
	"github.com/dexux/marketsync/internal/session"
)

// event is one unit of work for the loop. A non-nil error ends Run.
type event interface {
	apply(c *Coordinator) error
}

// messageEvent is a raw message from the data server.
type messageEvent connection.TimestampedMessage

func (e messageEvent) apply(c *Coordinator) error {
	c.router.Route(connection.TimestampedMessage(e))
	return nil
}

// tickEvent is a refresh timer firing.
type tickEvent refresh.Tick

func (e tickEvent) apply(c *Coordinator) error {
	t := refresh.Tick(e)
	if !c.sched.Claim(t) {
		c.logger.Debug("stale refresh dropped", "resource", t.Resource)
		return nil
	}

	snap := c.session.Snapshot()
	switch t.Resource {
	case connection.ResourceBook:
		c.selectMarket(session.Selection{})
	case connection.ResourceTicker:
		c.send(connection.NewTickerRequest(snap.Pair, snap.Contract))
	case connection.ResourceBlocknum:
		c.send(connection.NewBlocknumRequest())
	case connection.ResourceCandles:
		c.requestChart()
	}
	return nil
}

// actionEvent is a user action.
type actionEvent func(c *Coordinator)

func (e actionEvent) apply(c *Coordinator) error {
	e(c)
	return nil
}

// failureEvent is a transport error. There is no reconnect, so it ends Run.
type failureEvent struct {
	err error
}

func (e failureEvent) apply(c *Coordinator) error {
	c.logger.Error("data server connection failed", "error", e.err)
	return fmt.Errorf("%w: %w", ErrTransport, e.err)
}

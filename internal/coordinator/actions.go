package coordinator

import (
	"context"

	"github.com/dexux/marketsync/internal/connection"
	"github.com/dexux/marketsync/internal/session"
)

// User actions. Each is queued and applied on the loop; they return
// ErrStopped once Run has returned.

// SelectMarket applies a market picker choice. An empty base keeps the
// current market. A pool id as base makes market the composed pool pair.
func (c *Coordinator) SelectMarket(base, market string) error {
	sel := session.Selection{Base: base, Market: market}
	return c.enqueue(func(c *Coordinator) {
		c.selectMarket(sel)
	})
}

// Invert swaps the quote direction and re-requests book, ticker and chart.
// Search state is left alone.
func (c *Coordinator) Invert() error {
	return c.enqueue(func(c *Coordinator) {
		if err := c.session.Invert(); err != nil {
			c.logger.Warn("invert ignored", "error", err)
			return
		}
		snap := c.session.Snapshot()
		c.logger.Info("market inverted", "pair", snap.Pair, "inverted", snap.UseInvertedQuote)
		c.send(connection.NewBookRequest(snap.Pair, snap.Contract))
		c.send(connection.NewTickerRequest(snap.Pair, snap.Contract))
		c.send(connection.NewCandlesRequest(connection.DefaultChartType, connection.DefaultCandleSize, snap.Pair, snap.Contract))
	})
}

// ToggleLogScale flips the chart scale, queues the indicator overlays for the
// next indicator surface and re-requests the chart.
func (c *Coordinator) ToggleLogScale() error {
	return c.enqueue(func(c *Coordinator) {
		on := c.session.ToggleLogScale()
		c.charts.QueueIndicators()
		c.logger.Debug("log scale toggled", "log_scale", on)
		c.requestChart()
	})
}

// SetFilter makes value ("MPA", "LPT", "UIA", "Pool" or "BTS") the only
// active search filter and searches again.
func (c *Coordinator) SetFilter(value string) error {
	f, err := session.ParseFilter(value)
	if err != nil {
		return err
	}
	return c.enqueue(func(c *Coordinator) {
		c.session.SetFilter(f)
		c.search()
	})
}

// Search runs a market search for the search box contents.
func (c *Coordinator) Search() error {
	return c.enqueue(func(c *Coordinator) {
		c.search()
	})
}

// FirstSearch moves the picker to its other stage with token as the first
// asset and searches its USD markets.
func (c *Coordinator) FirstSearch(token string) error {
	return c.enqueue(func(c *Coordinator) {
		c.session.BeginFirstSearch(token)
		c.dom.SetContent(CtrlSearch, "USD")
		c.search()
	})
}

// RequestChart requests candles for the chart controls' size and type.
func (c *Coordinator) RequestChart() error {
	return c.enqueue(func(c *Coordinator) {
		c.requestChart()
	})
}

// Snapshot returns the session state as seen by the loop.
func (c *Coordinator) Snapshot(ctx context.Context) (session.Snapshot, error) {
	out := make(chan session.Snapshot, 1)
	if err := c.enqueue(func(c *Coordinator) {
		out <- c.session.Snapshot()
	}); err != nil {
		return session.Snapshot{}, err
	}

	select {
	case snap := <-out:
		return snap, nil
	case <-ctx.Done():
		return session.Snapshot{}, ctx.Err()
	}
}

func (c *Coordinator) enqueue(f func(*Coordinator)) error {
	if !c.queue.Push(actionEvent(f)) {
		return ErrStopped
	}
	return nil
}

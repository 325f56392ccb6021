package coordinator

import (
	"encoding/json"
	"strconv"

	"github.com/dexux/marketsync/internal/connection"
	"github.com/dexux/marketsync/internal/router"
)

// handlers applies routed payloads. It is only invoked from the loop.
type handlers struct {
	c *Coordinator
}

func (h handlers) HandleBook(p router.BookPayload) {
	c := h.c
	c.dom.SetContent(ElemOrderbook, p.Book)
	if err := c.charts.Depth(p); err != nil {
		c.logger.Warn("depth chart failed", "error", err)
	}

	snap := c.session.Snapshot()
	c.dom.SetContent(ElemAsset, snap.Asset)
	c.dom.SetContent(ElemCurrency, snap.Currency)

	c.sched.Arm(connection.ResourceBook, c.cfg.Delays.Book)
}

func (h handlers) HandleBlocknum(num int64) {
	c := h.c
	c.dom.SetContent(ElemBlocknum, strconv.FormatInt(num, 10))
	c.sched.Arm(connection.ResourceBlocknum, c.cfg.Delays.Blocknum)
}

func (h handlers) HandleTicker(payload json.RawMessage) {
	c := h.c
	c.dom.SetContent(ElemTicker, string(payload))
	c.sched.Arm(connection.ResourceTicker, c.cfg.Delays.Ticker)
}

// HandleListAssets fills the result table of the active picker stage.
// Search results are not refreshed.
func (h handlers) HandleListAssets(html string) {
	c := h.c
	target := ElemMarketPairs
	if c.session.Snapshot().FirstChoice {
		target = ElemPickA
	}
	c.dom.SetContent(target, html)
}

func (h handlers) HandleCandles(p router.CandlePayload) {
	c := h.c
	route, err := c.charts.Dispatch(p, c.session.Snapshot().UseLogScale)
	if err != nil {
		c.logger.Warn("chart not rendered", "route", route, "error", err)
	}
	c.sched.Arm(connection.ResourceCandles, c.cfg.Delays.Candles)
}

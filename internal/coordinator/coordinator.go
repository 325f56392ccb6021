package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dexux/marketsync/internal/chart"
	"github.com/dexux/marketsync/internal/connection"
	"github.com/dexux/marketsync/internal/refresh"
	"github.com/dexux/marketsync/internal/router"
	"github.com/dexux/marketsync/internal/session"
)

// Errors
var (
	ErrStopped        = errors.New("coordinator stopped")
	ErrAlreadyRunning = errors.New("coordinator already running")
	ErrTransport      = errors.New("transport")
)

// UI element and control ids.
const (
	ElemOrderbook     = "orderbook"
	ElemTicker        = "ticker"
	ElemBlocknum      = "blocknum"
	ElemAsset         = "asset"
	ElemCurrency      = "currency"
	ElemPickA         = "pick-a"
	ElemMarketPairs   = "market-pairs"
	ElemSearchResults = "search-results"

	CtrlSearch     = "coinsearch"
	CtrlCandleSize = "options"
	CtrlChartType  = "candles"
)

// LoadingPlaceholder fills a result table until the server answers.
const LoadingPlaceholder = "<tbody><tr><td>Loading...</td></tr></tbody>"

// DOM is the UI the coordinator reads from and writes to.
type DOM interface {
	chart.Display
	ReadControl(id string) string
}

// Config holds the starting market and polling cadence.
type Config struct {
	Pair     string
	Asset    string
	Currency string
	Contract string

	Delays    refresh.Delays
	LogScale  bool
	Filter    session.Filter // zero keeps the default
	AssetA    string         // empty keeps the default
	QueueSize int
}

// DefaultConfig returns the standard cadence with an empty market.
func DefaultConfig() Config {
	return Config{
		Delays:    refresh.DefaultDelays(),
		QueueSize: 64,
	}
}

// Stats is a point-in-time view of the coordinator.
type Stats struct {
	SessionID      string
	Router         router.RouterStats
	Queue          router.QueueStats
	Connection     connection.ManagerStats
	PendingRefresh int
}

// Coordinator runs the single event loop. Incoming messages, refresh timer
// fires and user actions are queued and applied one at a time, so session
// state is only ever touched from the loop goroutine.
type Coordinator struct {
	cfg    Config
	conn   connection.Manager
	dom    DOM
	logger *slog.Logger
	id     uuid.UUID

	session *session.Session
	charts  *chart.Dispatcher
	router  router.Router
	sched   *refresh.Scheduler
	queue   *router.Queue[event]

	running atomic.Bool
}

// New creates a Coordinator.
func New(cfg Config, conn connection.Manager, dom DOM, renderer chart.Renderer, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}

	id := uuid.New()
	logger = logger.With("session_id", id.String())

	c := &Coordinator{
		cfg:     cfg,
		conn:    conn,
		dom:     dom,
		logger:  logger,
		id:      id,
		session: session.New(),
		charts:  chart.NewDispatcher(renderer, dom, logger.With("component", "chart")),
		queue:   router.NewQueue[event](cfg.QueueSize),
	}
	c.router = router.NewRouter(handlers{c}, logger.With("component", "router"))
	c.sched = refresh.New(func(t refresh.Tick) {
		c.queue.Push(tickEvent(t))
	}, logger.With("component", "refresh"))

	if cfg.LogScale {
		c.session.ToggleLogScale()
	}
	if cfg.Filter != 0 {
		c.session.SetFilter(cfg.Filter)
	}
	if cfg.AssetA != "" {
		c.session.SetAssetA(cfg.AssetA)
	}
	return c
}

// ID returns the session id that tags this coordinator's logs.
func (c *Coordinator) ID() string {
	return c.id.String()
}

// Run initializes the session, connects, performs the full refresh and then
// processes events until ctx is done or the transport fails. An invalid
// starting market is reported without opening a connection.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	if err := c.session.Initialize(c.cfg.Pair, c.cfg.Asset, c.cfg.Currency, c.cfg.Contract); err != nil {
		c.logger.Error("invalid starting market",
			"pair", c.cfg.Pair,
			"asset", c.cfg.Asset,
			"currency", c.cfg.Currency,
			"contract", c.cfg.Contract,
			"error", err,
		)
		c.queue.Close()
		return fmt.Errorf("initialize session: %w", err)
	}

	if err := c.conn.Connect(ctx, c.cfg.Pair, c.cfg.Contract); err != nil {
		c.queue.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		c.sched.Stop()
		c.queue.Close()
		if err := c.conn.Close(); err != nil {
			c.logger.Warn("close connection", "error", err)
		}
	}()

	go c.pump(ctx)

	c.logger.Info("coordinator started", "pair", c.cfg.Pair, "contract", c.cfg.Contract)
	c.fullRefresh()

	for {
		ev, ok := c.queue.Pop(ctx)
		if !ok {
			c.logger.Info("coordinator stopped")
			return ctx.Err()
		}
		if err := ev.apply(c); err != nil {
			return err
		}
	}
}

// pump moves transport output onto the event queue. Answers buffered ahead
// of a terminal error are queued before the failure.
func (c *Coordinator) pump(ctx context.Context) {
	msgs := c.conn.Messages()
	errs := c.conn.Errors()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-msgs:
			c.queue.Push(messageEvent(msg))
		case err := <-errs:
			c.drain(msgs)
			c.queue.Push(failureEvent{err})
			return
		}
	}
}

// drain queues whatever msgs holds without waiting for more.
func (c *Coordinator) drain(msgs <-chan connection.TimestampedMessage) {
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			c.queue.Push(messageEvent(msg))
		default:
			return
		}
	}
}

// Stats returns router, queue, connection and scheduler counters.
func (c *Coordinator) Stats() Stats {
	return Stats{
		SessionID:      c.id.String(),
		Router:         c.router.Stats(),
		Queue:          c.queue.Stats(),
		Connection:     c.conn.Stats(),
		PendingRefresh: c.sched.Len(),
	}
}

// send writes a request without waiting for any answer. Failures are logged.
func (c *Coordinator) send(req connection.Request) {
	if err := c.conn.Send(req); err != nil {
		c.logger.Warn("request not sent", "resource", req.Resource(), "error", err)
	}
}

// fullRefresh requests book, ticker, block number, the default chart and
// the current search results, in that order.
func (c *Coordinator) fullRefresh() {
	snap := c.session.Snapshot()
	c.send(connection.NewBookRequest(snap.Pair, snap.Contract))
	c.send(connection.NewTickerRequest(snap.Pair, snap.Contract))
	c.send(connection.NewBlocknumRequest())
	c.send(connection.NewCandlesRequest(connection.DefaultChartType, connection.DefaultCandleSize, snap.Pair, snap.Contract))
	c.search()
}

// search shows the active result table with a placeholder and requests
// results for the search box contents.
func (c *Coordinator) search() {
	snap := c.session.Snapshot()

	shown, hidden := ElemPickA, ElemSearchResults
	target := ElemPickA
	if !snap.FirstChoice {
		shown, hidden = ElemSearchResults, ElemPickA
		target = ElemMarketPairs
	}
	c.dom.SetVisible(hidden, false)
	c.dom.SetVisible(shown, true)
	c.dom.SetContent(target, LoadingPlaceholder)

	flags := snap.Filter.Flags()
	c.send(connection.ListAssetsRequest{
		Res:         connection.ResourceListAssets,
		Search:      c.dom.ReadControl(CtrlSearch),
		AssetA:      snap.AssetA,
		UseMPA:      flags.MPA,
		UseLPT:      flags.LPT,
		UseUIA:      flags.UIA,
		UsePool:     flags.Pool,
		FirstChoice: snap.FirstChoice,
		UseBTS:      flags.BTS,
	})
}

// requestChart requests candles using the chart controls.
func (c *Coordinator) requestChart() {
	snap := c.session.Snapshot()
	size := c.dom.ReadControl(CtrlCandleSize)
	style := c.dom.ReadControl(CtrlChartType)
	c.logger.Debug("chart requested", "candle_size", size, "chart_type", style)
	c.send(connection.NewCandlesRequest(style, size, snap.Pair, snap.Contract))
}

// selectMarket applies a picker selection. Keeping the market re-requests
// only the book; a new market gets a full refresh followed by a book
// request for that market.
func (c *Coordinator) selectMarket(sel session.Selection) {
	res, err := c.session.Resolve(sel)
	if err != nil {
		c.logger.Warn("market selection ignored", "error", err)
		return
	}

	snap := c.session.Snapshot()
	if res == session.Changed {
		c.logger.Info("market selected", "pair", snap.Pair, "contract", snap.Contract)
		c.fullRefresh()
	}
	c.send(connection.NewBookRequest(snap.Pair, snap.Contract))
}

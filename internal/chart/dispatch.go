package chart

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dexux/marketsync/internal/router"
)

// Rendering surfaces. Exactly one is visible after each dispatch.
const (
	SimpleSurface    = "chart-window"
	IndicatorSurface = "kline-window"
)

// Renderer draws series on a surface.
type Renderer interface {
	RenderContinuous(series json.RawMessage, opts ContinuousOptions) error
	RenderAdvanced(series json.RawMessage, opts AdvancedOptions) error
	RenderDiscrete(series json.RawMessage, opts DiscreteOptions) error
	RenderDepth(book router.BookPayload) error
}

// Display is the part of the UI the dispatcher controls.
type Display interface {
	SetContent(id, html string)
	SetVisible(id string, visible bool)
}

// Route is the renderer a candle payload is sent to.
type Route int

const (
	RouteContinuous Route = iota
	RouteAdvanced
	RouteDiscrete
)

func (r Route) String() string {
	switch r {
	case RouteContinuous:
		return "continuous"
	case RouteAdvanced:
		return "advanced"
	case RouteDiscrete:
		return "discrete"
	}
	return fmt.Sprintf("Route(%d)", int(r))
}

// Surface returns the surface the route renders on.
func (r Route) Surface() string {
	if r == RouteAdvanced {
		return IndicatorSurface
	}
	return SimpleSurface
}

// Select picks the renderer for p. The discrete regime wins over any style.
func Select(p router.CandlePayload) Route {
	switch {
	case p.Discrete():
		return RouteDiscrete
	case p.Style == router.StyleAdvanced:
		return RouteAdvanced
	default:
		return RouteContinuous
	}
}

// Dispatcher routes candle and depth payloads to the renderer.
type Dispatcher struct {
	renderer Renderer
	display  Display
	logger   *slog.Logger

	// attach is the queued "attach indicators on next init" command.
	attach atomic.Bool

	mu      sync.Mutex
	surface string
}

// NewDispatcher creates a Dispatcher. The indicator command starts queued so
// the first indicator surface gets its overlays.
func NewDispatcher(renderer Renderer, display Display, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		renderer: renderer,
		display:  display,
		logger:   logger,
	}
	d.attach.Store(true)
	return d
}

// QueueIndicators queues the indicator command for the next advanced render.
// Queuing an already queued command has no further effect.
func (d *Dispatcher) QueueIndicators() {
	d.attach.Store(true)
}

// IndicatorsQueued reports whether the indicator command is pending.
func (d *Dispatcher) IndicatorsQueued() bool {
	return d.attach.Load()
}

// Surface returns the surface shown by the last dispatch, or "" before any.
func (d *Dispatcher) Surface() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.surface
}

// Dispatch shows the surface for p, then renders p on it.
func (d *Dispatcher) Dispatch(p router.CandlePayload, logScale bool) (Route, error) {
	route := Select(p)
	d.show(route.Surface())

	var err error
	switch route {
	case RouteDiscrete:
		var opts DiscreteOptions
		opts, err = discreteOptions(p.Style, p.Series, logScale)
		if err == nil {
			err = d.renderer.RenderDiscrete(p.Series, opts)
		}

	case RouteAdvanced:
		opts := AdvancedOptions{
			Scale:            scaleFor(logScale),
			AttachIndicators: d.attach.Swap(false),
		}
		if opts.AttachIndicators {
			opts.Indicators = DefaultIndicators
		}
		err = d.renderer.RenderAdvanced(p.Series, opts)
		if err != nil && opts.AttachIndicators {
			d.attach.Store(true)
		}

	default:
		var opts ContinuousOptions
		opts, err = continuousOptions(p.Style, p.Series, logScale)
		if err == nil {
			err = d.renderer.RenderContinuous(p.Series, opts)
		}
	}

	if err != nil {
		return route, fmt.Errorf("render %s chart: %w", route, err)
	}
	d.logger.Debug("chart rendered", "route", route, "style", p.Style, "regime", p.Regime)
	return route, nil
}

// Depth renders the depth chart of a book payload.
func (d *Dispatcher) Depth(book router.BookPayload) error {
	if err := d.renderer.RenderDepth(book); err != nil {
		return fmt.Errorf("render depth: %w", err)
	}
	return nil
}

// show makes target the visible surface; the other is hidden and cleared.
func (d *Dispatcher) show(target string) {
	other := IndicatorSurface
	if target == IndicatorSurface {
		other = SimpleSurface
	}

	d.display.SetContent(other, "")
	d.display.SetVisible(other, false)
	d.display.SetVisible(target, true)

	d.mu.Lock()
	d.surface = target
	d.mu.Unlock()
}

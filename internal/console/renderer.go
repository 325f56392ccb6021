package console

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dexux/marketsync/internal/chart"
	"github.com/dexux/marketsync/internal/router"
)

// Renderer logs a summary of every chart instead of drawing it.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger}
}

func (r *Renderer) RenderContinuous(series json.RawMessage, opts chart.ContinuousOptions) error {
	n, err := count(series)
	if err != nil {
		return err
	}
	attrs := []any{"surface", chart.SimpleSurface, "kind", opts.Kind, "points", n, "scale", opts.Scale}
	if opts.Kind == chart.SeriesArea {
		attrs = append(attrs, "color", opts.Area.Line)
	}
	r.logger.Info("chart", attrs...)
	return nil
}

func (r *Renderer) RenderAdvanced(series json.RawMessage, opts chart.AdvancedOptions) error {
	n, err := count(series)
	if err != nil {
		return err
	}
	r.logger.Info("chart",
		"surface", chart.IndicatorSurface,
		"points", n,
		"scale", opts.Scale,
		"indicators", opts.Indicators,
	)
	return nil
}

func (r *Renderer) RenderDiscrete(series json.RawMessage, opts chart.DiscreteOptions) error {
	var rows []json.RawMessage
	if err := json.Unmarshal(series, &rows); err != nil {
		return fmt.Errorf("decode discrete series: %w", err)
	}
	n := 0
	if len(rows) > 0 {
		var err error
		if n, err = count(rows[0]); err != nil {
			return err
		}
	}
	r.logger.Info("chart",
		"surface", chart.SimpleSurface,
		"style", opts.Style,
		"mode", opts.Mode,
		"points", n,
		"color", opts.LineColor,
		"scale", opts.Scale,
	)
	return nil
}

// RenderDepth logs the inside of the book.
func (r *Renderer) RenderDepth(book router.BookPayload) error {
	bid, hasBid := best(book.Bid.Price, decimal.Max)
	ask, hasAsk := best(book.Ask.Price, decimal.Min)

	attrs := []any{"bid_levels", len(book.Bid.Price), "ask_levels", len(book.Ask.Price)}
	if hasBid {
		attrs = append(attrs, "best_bid", bid.String())
	}
	if hasAsk {
		attrs = append(attrs, "best_ask", ask.String())
	}
	if hasBid && hasAsk {
		attrs = append(attrs, "spread", ask.Sub(bid).String())
	}
	r.logger.Info("depth", attrs...)
	return nil
}

func best(prices []decimal.Decimal, pick func(decimal.Decimal, ...decimal.Decimal) decimal.Decimal) (decimal.Decimal, bool) {
	if len(prices) == 0 {
		return decimal.Zero, false
	}
	return pick(prices[0], prices[1:]...), true
}

func count(series json.RawMessage) (int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(series, &items); err != nil {
		return 0, fmt.Errorf("decode series: %w", err)
	}
	return len(items), nil
}

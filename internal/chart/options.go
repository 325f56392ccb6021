package chart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dexux/marketsync/internal/router"
)

// Colors shared by every renderer.
const (
	UpColor   = "#26de81"
	DownColor = "#ff231f"

	risingLine  = "#00FF00"
	fallingLine = "#FF0000"
)

// SeriesKind is the lightweight renderer series type.
type SeriesKind string

const (
	SeriesCandlestick SeriesKind = "candlestick"
	SeriesArea        SeriesKind = "area"
)

// ScaleMode is the price axis scaling.
type ScaleMode string

const (
	ScaleLinear ScaleMode = "linear"
	ScaleLog    ScaleMode = "log"
)

func scaleFor(logScale bool) ScaleMode {
	if logScale {
		return ScaleLog
	}
	return ScaleLinear
}

// Trend compares the last value of a series to its first.
type Trend int

const (
	Rising  Trend = iota // last >= first, or not enough points to tell
	Falling              // last < first
)

// AreaColors are the fill and line colors of an area series.
type AreaColors struct {
	Top    string
	Bottom string
	Line   string
}

func areaColors(t Trend) AreaColors {
	rgb := "0, 255, 0"
	if t == Falling {
		rgb = "255, 0, 0"
	}
	return AreaColors{
		Top:    fmt.Sprintf("rgba(%s, 0.56)", rgb),
		Bottom: fmt.Sprintf("rgba(%s, 0.04)", rgb),
		Line:   fmt.Sprintf("rgba(%s, 1)", rgb),
	}
}

// ContinuousOptions drives the lightweight candle/area renderer.
type ContinuousOptions struct {
	Kind      SeriesKind
	Scale     ScaleMode
	Precision int32
	MinMove   decimal.Decimal

	// Candlestick only.
	UpColor   string
	DownColor string

	// Area only.
	Trend Trend
	Area  AreaColors
}

// AdvancedOptions drives the indicator-capable renderer.
type AdvancedOptions struct {
	Scale ScaleMode

	// AttachIndicators is true once per queued indicator command. The
	// renderer attaches Indicators to the surface it initializes.
	AttachIndicators bool
	Indicators       []string
}

// DefaultIndicators are attached to a fresh indicator surface.
var DefaultIndicators = []string{"MA", "VOL"}

// DiscreteOptions drives the irregular-timestamp renderer.
type DiscreteOptions struct {
	Style        string
	Mode         string // "lines" or "markers"
	Trace        string // "line" or "scatter"
	MarkerSize   int
	MarkerSymbol string
	LineWidth    int
	LineColor    string
	Trend        Trend
	Scale        ScaleMode

	// HoverText is the per-point annotation row, set for advanced style only.
	HoverText json.RawMessage
}

const pricePrecision = 6

// continuousOptions builds the options for a fixed-interval series.
func continuousOptions(style string, series json.RawMessage, logScale bool) (ContinuousOptions, error) {
	opts := ContinuousOptions{
		Scale:     scaleFor(logScale),
		Precision: pricePrecision,
		MinMove:   decimal.New(1, -pricePrecision),
	}

	if style == router.StyleCandle {
		opts.Kind = SeriesCandlestick
		opts.UpColor = UpColor
		opts.DownColor = DownColor
		return opts, nil
	}

	var points []struct {
		Value *decimal.Decimal `json:"value"`
	}
	if err := json.Unmarshal(series, &points); err != nil {
		return opts, fmt.Errorf("decode line series: %w", err)
	}
	values := make([]decimal.Decimal, 0, len(points))
	for _, p := range points {
		if p.Value != nil {
			values = append(values, *p.Value)
		}
	}

	opts.Kind = SeriesArea
	opts.Trend = trendOf(values)
	opts.Area = areaColors(opts.Trend)
	return opts, nil
}

// discreteOptions builds the options for a trade-by-trade series. The series
// is a list of rows: row 0 holds x values, row 1 y values and row 6 the hover
// annotations.
func discreteOptions(style string, series json.RawMessage, logScale bool) (DiscreteOptions, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(series, &rows); err != nil {
		return DiscreteOptions{}, fmt.Errorf("decode discrete series: %w", err)
	}

	var ys []decimal.Decimal
	if len(rows) > 1 {
		if err := json.Unmarshal(rows[1], &ys); err != nil {
			return DiscreteOptions{}, fmt.Errorf("decode discrete y values: %w", err)
		}
	}

	opts := DiscreteOptions{
		Style:      style,
		Mode:       "markers",
		Trace:      "scatter",
		MarkerSize: 1,
		Trend:      trendOf(ys),
		Scale:      scaleFor(logScale),
	}

	switch style {
	case router.StyleLine:
		opts.Mode = "lines"
		opts.LineWidth = 1
	case router.StyleCandle:
		opts.Trace = "line"
		opts.MarkerSize = 4
		opts.MarkerSymbol = "line-ew-open"
	case router.StyleAdvanced:
		if len(rows) > 6 {
			opts.HoverText = rows[6]
		}
	}

	opts.LineColor = risingLine
	if opts.Trend == Falling {
		opts.LineColor = fallingLine
	}
	return opts, nil
}

func trendOf(values []decimal.Decimal) Trend {
	if len(values) < 2 {
		return Rising
	}
	if values[len(values)-1].LessThan(values[0]) {
		return Falling
	}
	return Rising
}

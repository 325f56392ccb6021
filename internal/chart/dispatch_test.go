package chart

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dexux/marketsync/internal/router"
)

type renderCall struct {
	route      Route
	continuous ContinuousOptions
	advanced   AdvancedOptions
	discrete   DiscreteOptions
}

type fakeRenderer struct {
	calls  []renderCall
	depths []router.BookPayload
	err    error
}

func (r *fakeRenderer) RenderContinuous(_ json.RawMessage, opts ContinuousOptions) error {
	r.calls = append(r.calls, renderCall{route: RouteContinuous, continuous: opts})
	return r.err
}

func (r *fakeRenderer) RenderAdvanced(_ json.RawMessage, opts AdvancedOptions) error {
	r.calls = append(r.calls, renderCall{route: RouteAdvanced, advanced: opts})
	return r.err
}

func (r *fakeRenderer) RenderDiscrete(_ json.RawMessage, opts DiscreteOptions) error {
	r.calls = append(r.calls, renderCall{route: RouteDiscrete, discrete: opts})
	return r.err
}

func (r *fakeRenderer) RenderDepth(book router.BookPayload) error {
	r.depths = append(r.depths, book)
	return r.err
}

type fakeDisplay struct {
	content map[string]string
	visible map[string]bool
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		content: map[string]string{SimpleSurface: "old", IndicatorSurface: "old"},
		visible: map[string]bool{},
	}
}

func (d *fakeDisplay) SetContent(id, html string) { d.content[id] = html }
func (d *fakeDisplay) SetVisible(id string, visible bool) { d.visible[id] = visible }

func payload(style, series, regime string) router.CandlePayload {
	return router.CandlePayload{Style: style, Series: json.RawMessage(series), Regime: regime}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		style  string
		regime string
		want   Route
	}{
		{"advanced discrete goes discrete", router.StyleAdvanced, router.RegimeDiscrete, RouteDiscrete},
		{"line discrete", router.StyleLine, router.RegimeDiscrete, RouteDiscrete},
		{"candle discrete", router.StyleCandle, router.RegimeDiscrete, RouteDiscrete},
		{"advanced hourly", router.StyleAdvanced, "c3600", RouteAdvanced},
		{"candle daily", router.StyleCandle, "c86400", RouteContinuous},
		{"line daily", router.StyleLine, "c86400", RouteContinuous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Select(payload(tt.style, `[]`, tt.regime)); got != tt.want {
				t.Errorf("Select() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDispatch_AdvancedDiscreteUsesDiscreteRenderer(t *testing.T) {
	r := &fakeRenderer{}
	d := NewDispatcher(r, newFakeDisplay(), nil)

	series := `[[1,2,3],[5,6,7],[],[],[],[],["a","b","c"]]`
	route, err := d.Dispatch(payload(router.StyleAdvanced, series, router.RegimeDiscrete), false)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if route != RouteDiscrete {
		t.Errorf("route = %v, want discrete", route)
	}
	if len(r.calls) != 1 || r.calls[0].route != RouteDiscrete {
		t.Fatalf("calls = %+v, want one discrete render", r.calls)
	}
	opts := r.calls[0].discrete
	if string(opts.HoverText) != `["a","b","c"]` {
		t.Errorf("HoverText = %s", opts.HoverText)
	}
	if opts.Mode != "markers" || opts.Trace != "scatter" {
		t.Errorf("Mode/Trace = %s/%s, want markers/scatter", opts.Mode, opts.Trace)
	}
	if !d.IndicatorsQueued() {
		t.Error("discrete render consumed the indicator command")
	}
}

func TestDiscreteOptions(t *testing.T) {
	tests := []struct {
		name       string
		style      string
		series     string
		logScale   bool
		wantMode   string
		wantTrace  string
		wantSize   int
		wantSymbol string
		wantWidth  int
		wantColor  string
		wantScale  ScaleMode
	}{
		{
			name:      "line rising",
			style:     router.StyleLine,
			series:    `[[1,2],[1.5,2.5]]`,
			wantMode:  "lines",
			wantTrace: "scatter",
			wantSize:  1,
			wantWidth: 1,
			wantColor: "#00FF00",
			wantScale: ScaleLinear,
		},
		{
			name:       "candle falling log",
			style:      router.StyleCandle,
			series:     `[[1,2],[3,2]]`,
			logScale:   true,
			wantMode:   "markers",
			wantTrace:  "line",
			wantSize:   4,
			wantSymbol: "line-ew-open",
			wantColor:  "#FF0000",
			wantScale:  ScaleLog,
		},
		{
			name:      "flat is rising",
			style:     router.StyleAdvanced,
			series:    `[[1,2],["0.1","0.1"]]`,
			wantMode:  "markers",
			wantTrace: "scatter",
			wantSize:  1,
			wantColor: "#00FF00",
			wantScale: ScaleLinear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := discreteOptions(tt.style, json.RawMessage(tt.series), tt.logScale)
			if err != nil {
				t.Fatalf("discreteOptions failed: %v", err)
			}
			if opts.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", opts.Mode, tt.wantMode)
			}
			if opts.Trace != tt.wantTrace {
				t.Errorf("Trace = %q, want %q", opts.Trace, tt.wantTrace)
			}
			if opts.MarkerSize != tt.wantSize {
				t.Errorf("MarkerSize = %d, want %d", opts.MarkerSize, tt.wantSize)
			}
			if opts.MarkerSymbol != tt.wantSymbol {
				t.Errorf("MarkerSymbol = %q, want %q", opts.MarkerSymbol, tt.wantSymbol)
			}
			if opts.LineWidth != tt.wantWidth {
				t.Errorf("LineWidth = %d, want %d", opts.LineWidth, tt.wantWidth)
			}
			if opts.LineColor != tt.wantColor {
				t.Errorf("LineColor = %q, want %q", opts.LineColor, tt.wantColor)
			}
			if opts.Scale != tt.wantScale {
				t.Errorf("Scale = %q, want %q", opts.Scale, tt.wantScale)
			}
		})
	}
}

func TestContinuousOptions(t *testing.T) {
	t.Run("candle", func(t *testing.T) {
		opts, err := continuousOptions(router.StyleCandle, json.RawMessage(`[]`), true)
		if err != nil {
			t.Fatalf("continuousOptions failed: %v", err)
		}
		if opts.Kind != SeriesCandlestick {
			t.Errorf("Kind = %q, want candlestick", opts.Kind)
		}
		if opts.UpColor != UpColor || opts.DownColor != DownColor {
			t.Errorf("colors = %s/%s", opts.UpColor, opts.DownColor)
		}
		if opts.Scale != ScaleLog {
			t.Errorf("Scale = %q, want log", opts.Scale)
		}
		if opts.Precision != 6 || opts.MinMove.String() != "0.000001" {
			t.Errorf("Precision/MinMove = %d/%s", opts.Precision, opts.MinMove)
		}
	})

	t.Run("line falling", func(t *testing.T) {
		series := `[{"time":1,"value":0.5},{"time":2,"value":0.7},{"time":3,"value":0.4}]`
		opts, err := continuousOptions(router.StyleLine, json.RawMessage(series), false)
		if err != nil {
			t.Fatalf("continuousOptions failed: %v", err)
		}
		if opts.Kind != SeriesArea {
			t.Errorf("Kind = %q, want area", opts.Kind)
		}
		if opts.Trend != Falling {
			t.Errorf("Trend = %v, want Falling", opts.Trend)
		}
		if opts.Area.Line != "rgba(255, 0, 0, 1)" {
			t.Errorf("Area.Line = %q", opts.Area.Line)
		}
	})

	t.Run("line rising", func(t *testing.T) {
		series := `[{"time":1,"value":0.5},{"time":2,"value":0.5}]`
		opts, err := continuousOptions(router.StyleLine, json.RawMessage(series), false)
		if err != nil {
			t.Fatalf("continuousOptions failed: %v", err)
		}
		if opts.Trend != Rising || opts.Area.Top != "rgba(0, 255, 0, 0.56)" {
			t.Errorf("Trend/Top = %v/%q", opts.Trend, opts.Area.Top)
		}
	})

	t.Run("line malformed", func(t *testing.T) {
		if _, err := continuousOptions(router.StyleLine, json.RawMessage(`{}`), false); err == nil {
			t.Error("expected error for non-array series")
		}
	})
}

func TestDispatch_IndicatorsAttachedOnce(t *testing.T) {
	r := &fakeRenderer{}
	d := NewDispatcher(r, newFakeDisplay(), nil)
	adv := payload(router.StyleAdvanced, `[{"timestamp":1}]`, "c86400")

	d.Dispatch(adv, false)
	d.Dispatch(adv, false)
	d.QueueIndicators()
	d.QueueIndicators()
	d.Dispatch(adv, true)

	want := []bool{true, false, true}
	if len(r.calls) != len(want) {
		t.Fatalf("calls = %d, want %d", len(r.calls), len(want))
	}
	for i, w := range want {
		got := r.calls[i].advanced
		if got.AttachIndicators != w {
			t.Errorf("call %d AttachIndicators = %v, want %v", i, got.AttachIndicators, w)
		}
		if w && len(got.Indicators) != 2 {
			t.Errorf("call %d Indicators = %v, want MA and VOL", i, got.Indicators)
		}
	}
	if r.calls[2].advanced.Scale != ScaleLog {
		t.Errorf("Scale = %q, want log", r.calls[2].advanced.Scale)
	}
}

func TestDispatch_FailedRenderRequeuesIndicators(t *testing.T) {
	r := &fakeRenderer{err: errors.New("surface gone")}
	d := NewDispatcher(r, newFakeDisplay(), nil)

	if _, err := d.Dispatch(payload(router.StyleAdvanced, `[]`, "c60"), false); err == nil {
		t.Fatal("expected render error")
	}
	if !d.IndicatorsQueued() {
		t.Error("indicator command lost after failed render")
	}
}

func TestDispatch_SurfaceSwitch(t *testing.T) {
	tests := []struct {
		name        string
		payload     router.CandlePayload
		wantShown   string
		wantCleared string
	}{
		{"advanced", payload(router.StyleAdvanced, `[]`, "c86400"), IndicatorSurface, SimpleSurface},
		{"line", payload(router.StyleLine, `[]`, "c86400"), SimpleSurface, IndicatorSurface},
		{"advanced discrete", payload(router.StyleAdvanced, `[[],[]]`, router.RegimeDiscrete), SimpleSurface, IndicatorSurface},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disp := newFakeDisplay()
			d := NewDispatcher(&fakeRenderer{}, disp, nil)

			if _, err := d.Dispatch(tt.payload, false); err != nil {
				t.Fatalf("Dispatch failed: %v", err)
			}
			if !disp.visible[tt.wantShown] {
				t.Errorf("%s not visible", tt.wantShown)
			}
			if disp.visible[tt.wantCleared] {
				t.Errorf("%s still visible", tt.wantCleared)
			}
			if disp.content[tt.wantCleared] != "" {
				t.Errorf("%s not cleared", tt.wantCleared)
			}
			if d.Surface() != tt.wantShown {
				t.Errorf("Surface() = %q, want %q", d.Surface(), tt.wantShown)
			}
		})
	}
}

func TestDispatcher_Depth(t *testing.T) {
	r := &fakeRenderer{}
	d := NewDispatcher(r, newFakeDisplay(), nil)

	if err := d.Depth(router.BookPayload{Book: "<tbody></tbody>"}); err != nil {
		t.Fatalf("Depth failed: %v", err)
	}
	if len(r.depths) != 1 {
		t.Errorf("depths = %d, want 1", len(r.depths))
	}
}

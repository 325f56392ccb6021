package router

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errors
var (
	ErrShortCandlePayload = errors.New("candle payload needs at least style and series")
)

// Handler receives decoded payloads, one method per resource tag.
type Handler interface {
	HandleBook(BookPayload)
	HandleBlocknum(int64)
	HandleTicker(json.RawMessage)
	HandleListAssets(string)
	HandleCandles(CandlePayload)
}

// RouterStats contains runtime statistics.
type RouterStats struct {
	MessagesReceived int64
	MessagesRouted   int64
	ParseErrors      int64
	UnknownMessages  int64
}

// envelope is the wire format of every incoming message.
type envelope struct {
	Resource string          `json:"resource"`
	Payload  json.RawMessage `json:"payload"`
}

// BookPayload is an orderbook response: the rendered book plus cumulative
// depth per side.
type BookPayload struct {
	Book string    `json:"book"` // HTML table
	Bid  DepthSide `json:"bid"`
	Ask  DepthSide `json:"ask"`
}

// DepthSide holds cumulative volume by price for one side of the book.
type DepthSide struct {
	Price  []decimal.Decimal `json:"price"`
	Volume []decimal.Decimal `json:"volume"`
}

// Candle regimes. Any candle size other than RegimeDiscrete is a fixed interval.
const (
	RegimeDiscrete = "discrete"
)

// Chart styles.
const (
	StyleLine     = "line"
	StyleCandle   = "candle"
	StyleAdvanced = "advanced"
)

// CandlePayload is a candles response, sent on the wire as the array
// [style, series, candle_size].
type CandlePayload struct {
	Style  string
	Series json.RawMessage
	Regime string // candle size, e.g. "c86400" or "discrete"
}

// Discrete reports whether the series has irregular, trade-by-trade timestamps.
func (p CandlePayload) Discrete() bool {
	return p.Regime == RegimeDiscrete
}

// UnmarshalJSON decodes the [style, series, candle_size] array.
func (p *CandlePayload) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) < 2 {
		return ErrShortCandlePayload
	}

	var out CandlePayload
	if err := json.Unmarshal(parts[0], &out.Style); err != nil {
		return fmt.Errorf("candle style: %w", err)
	}
	out.Series = parts[1]
	if len(parts) > 2 {
		if err := json.Unmarshal(parts[2], &out.Regime); err != nil {
			return fmt.Errorf("candle regime: %w", err)
		}
	}

	*p = out
	return nil
}

// MarshalJSON encodes the payload back into its array form.
func (p CandlePayload) MarshalJSON() ([]byte, error) {
	series := p.Series
	if len(series) == 0 {
		series = json.RawMessage("null")
	}
	return json.Marshal([]interface{}{p.Style, series, p.Regime})
}

package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected     = errors.New("not connected")
	ErrStaleConnection  = errors.New("connection stale (no traffic)")
	ErrClosedByServer   = errors.New("closed by server")
	ErrAlreadyClosed    = errors.New("already closed")
	ErrAlreadyConnected = errors.New("already connected")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Resource is the tag that selects request and response handling.
type Resource string

const (
	ResourceBook       Resource = "book"
	ResourceTicker     Resource = "ticker"
	ResourceCandles    Resource = "candles"
	ResourceBlocknum   Resource = "blocknum"
	ResourceListAssets Resource = "list_assets"
)

// Request is an outgoing request envelope.
type Request interface {
	Resource() Resource
}

// BookRequest asks for the orderbook of a market.
type BookRequest struct {
	Res      Resource `json:"resource"`
	Pair     string   `json:"pair"`
	Contract string   `json:"contract"`
}

// NewBookRequest builds a book request.
func NewBookRequest(pair, contract string) BookRequest {
	return BookRequest{Res: ResourceBook, Pair: pair, Contract: contract}
}

func (r BookRequest) Resource() Resource { return r.Res }

// TickerRequest asks for the ticker of a market.
type TickerRequest struct {
	Res      Resource `json:"resource"`
	Pair     string   `json:"pair"`
	Contract string   `json:"contract"`
}

// NewTickerRequest builds a ticker request.
func NewTickerRequest(pair, contract string) TickerRequest {
	return TickerRequest{Res: ResourceTicker, Pair: pair, Contract: contract}
}

func (r TickerRequest) Resource() Resource { return r.Res }

// CandlesRequest asks for chart data.
type CandlesRequest struct {
	Res        Resource `json:"resource"`
	ChartType  string   `json:"chart_type"`  // "line", "candle" or "advanced"
	CandleSize string   `json:"candle_size"` // e.g. "c86400" or "discrete"
	Contract   string   `json:"contract"`
	Pair       string   `json:"pair"`
}

// Chart defaults used by a full refresh.
const (
	DefaultChartType  = "line"
	DefaultCandleSize = "c86400"
)

// NewCandlesRequest builds a candles request.
func NewCandlesRequest(chartType, candleSize, pair, contract string) CandlesRequest {
	return CandlesRequest{
		Res:        ResourceCandles,
		ChartType:  chartType,
		CandleSize: candleSize,
		Contract:   contract,
		Pair:       pair,
	}
}

func (r CandlesRequest) Resource() Resource { return r.Res }

// BlocknumRequest asks for the current head block number.
type BlocknumRequest struct {
	Res Resource `json:"resource"`
}

// NewBlocknumRequest builds a blocknum request.
func NewBlocknumRequest() BlocknumRequest {
	return BlocknumRequest{Res: ResourceBlocknum}
}

func (r BlocknumRequest) Resource() Resource { return r.Res }

// ListAssetsRequest runs a market picker search.
type ListAssetsRequest struct {
	Res         Resource `json:"resource"`
	Search      string   `json:"search"`
	AssetA      string   `json:"assetA"`
	UseMPA      bool     `json:"useMPA"`
	UseLPT      bool     `json:"useLPT"`
	UseUIA      bool     `json:"useUIA"`
	UsePool     bool     `json:"usePool"`
	FirstChoice bool     `json:"firstChoice"`
	UseBTS      bool     `json:"useBTS"`
}

func (r ListAssetsRequest) Resource() Resource { return r.Res }

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // Full WebSocket URL including query
	PingTimeout      time.Duration // Max silence (no frame, ping or pong) before the connection is stale
	WriteTimeout     time.Duration // Write deadline for data and control frames
	HandshakeTimeout time.Duration
	BufferSize       int   // Message channel buffer size
	ReadLimit        int64 // Max inbound frame size; 0 means DefaultReadLimit
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:      60 * time.Second,
		WriteTimeout:     5 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		BufferSize:       1000,
		ReadLimit:        DefaultReadLimit,
	}
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	WSURL            string        // Data server URL (e.g., ws://127.0.0.1:8001/)
	PingTimeout      time.Duration // See ClientConfig
	WriteTimeout     time.Duration
	HandshakeTimeout time.Duration
	BufferSize       int
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	c := DefaultClientConfig()
	return ManagerConfig{
		WSURL:            "ws://127.0.0.1:8001/",
		PingTimeout:      c.PingTimeout,
		WriteTimeout:     c.WriteTimeout,
		HandshakeTimeout: c.HandshakeTimeout,
		BufferSize:       c.BufferSize,
	}
}

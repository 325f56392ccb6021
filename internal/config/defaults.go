package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultWSURL            = "ws://127.0.0.1:8001/"
	DefaultPingTimeout      = 60 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultBufferSize       = 1000
	DefaultBookRefresh      = 10 * time.Second
	DefaultTickerRefresh    = 10 * time.Second
	DefaultBlocknumRefresh  = 1 * time.Second
	DefaultCandlesRefresh   = 1 * time.Hour
	DefaultAssetA           = "BTC"
	DefaultFilter           = "MPA"
	DefaultCandleSize       = "c86400"
	DefaultChartType        = "line"
	DefaultMetricsPort      = 9090
	DefaultMetricsPath      = "/metrics"
	DefaultLogLevel         = "info"
)

func (c *SyncConfig) applyDefaults() {
	if c.Server.WSURL == "" {
		c.Server.WSURL = DefaultWSURL
	}

	// Connection defaults
	if c.Connection.PingTimeout == 0 {
		c.Connection.PingTimeout = DefaultPingTimeout
	}
	if c.Connection.WriteTimeout == 0 {
		c.Connection.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connection.HandshakeTimeout == 0 {
		c.Connection.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Connection.BufferSize == 0 {
		c.Connection.BufferSize = DefaultBufferSize
	}

	// Refresh defaults
	if c.Refresh.Book == 0 {
		c.Refresh.Book = DefaultBookRefresh
	}
	if c.Refresh.Ticker == 0 {
		c.Refresh.Ticker = DefaultTickerRefresh
	}
	if c.Refresh.Blocknum == 0 {
		c.Refresh.Blocknum = DefaultBlocknumRefresh
	}
	if c.Refresh.Candles == 0 {
		c.Refresh.Candles = DefaultCandlesRefresh
	}

	// Picker and chart defaults
	if c.Search.AssetA == "" {
		c.Search.AssetA = DefaultAssetA
	}
	if c.Search.Filter == "" {
		c.Search.Filter = DefaultFilter
	}
	if c.Chart.CandleSize == "" {
		c.Chart.CandleSize = DefaultCandleSize
	}
	if c.Chart.ChartType == "" {
		c.Chart.ChartType = DefaultChartType
	}

	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

package config

import "time"

// SyncConfig is the root configuration of a sync client.
type SyncConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Market     MarketConfig     `yaml:"market"`
	Connection ConnectionConfig `yaml:"connection"`
	Refresh    RefreshConfig    `yaml:"refresh"`
	Search     SearchConfig     `yaml:"search"`
	Chart      ChartConfig      `yaml:"chart"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds the data server address.
type ServerConfig struct {
	WSURL string `yaml:"ws_url"`
}

// MarketConfig is the starting market. All four fields are checked when the
// client starts, not at load time, so a bad market never opens a connection
// but still leaves the health endpoint up.
type MarketConfig struct {
	Pair     string `yaml:"pair"`     // "BTS_USD" or, for pools, "XBTSX.BTC:USD"
	Asset    string `yaml:"asset"`
	Currency string `yaml:"currency"`
	Contract string `yaml:"contract"` // "1.0.0" for orderbooks, "1.19.x" for pools
}

// ConnectionConfig holds WebSocket settings.
type ConnectionConfig struct {
	PingTimeout      time.Duration `yaml:"ping_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	BufferSize       int           `yaml:"buffer_size"`
}

// RefreshConfig holds the polling delay per resource.
type RefreshConfig struct {
	Book     time.Duration `yaml:"book"`
	Ticker   time.Duration `yaml:"ticker"`
	Blocknum time.Duration `yaml:"blocknum"`
	Candles  time.Duration `yaml:"candles"`
}

// SearchConfig holds the market picker starting state.
type SearchConfig struct {
	AssetA string `yaml:"asset_a"`
	Query  string `yaml:"query"`
	Filter string `yaml:"filter"` // MPA, LPT, UIA, Pool or BTS
}

// ChartConfig holds chart preferences and the initial chart controls.
type ChartConfig struct {
	LogScale   bool   `yaml:"log_scale"`
	CandleSize string `yaml:"candle_size"`
	ChartType  string `yaml:"chart_type"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

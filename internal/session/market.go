package session

import "strings"

// Leg separators.
const (
	PlainSep byte = '_' // "BTS_USD"
	PoolSep  byte = ':' // "XBTSX.BTC:USD"
)

const (
	// OrderbookContract is the contract of every plain orderbook market.
	OrderbookContract = "1.0.0"

	// PoolPrefix prefixes liquidity pool object ids (e.g. "1.19.42").
	PoolPrefix = "1.19."
)

// Pair is a two-leg market identifier.
type Pair struct {
	Base  string
	Quote string
	Sep   byte
}

// String joins the legs with the pair's separator.
func (p Pair) String() string {
	if p.Base == "" && p.Quote == "" {
		return ""
	}
	return p.Base + string(p.Sep) + p.Quote
}

// Swapped returns the pair with its legs exchanged.
func (p Pair) Swapped() Pair {
	return Pair{Base: p.Quote, Quote: p.Base, Sep: p.Sep}
}

// SplitPair splits s at the first sep. No validation is done: a string
// without sep yields the whole string as Base and an empty Quote.
func SplitPair(s string, sep byte) Pair {
	base, quote, _ := strings.Cut(s, string(sep))
	return Pair{Base: base, Quote: quote, Sep: sep}
}

// Market addresses either a plain orderbook market or a liquidity pool.
// The concrete type is one of Plain or Pool.
type Market interface {
	// Pair returns the market's legs.
	Pair() Pair

	// Contract returns the market address sent to the data server.
	Contract() string

	// Inverted returns the same market with its legs swapped.
	Inverted() Market

	isMarket()
}

// Plain is an orderbook market addressed by its two assets.
type Plain struct {
	Legs Pair
}

func (m Plain) Pair() Pair       { return m.Legs }
func (m Plain) Contract() string { return OrderbookContract }
func (m Plain) Inverted() Market { return Plain{Legs: m.Legs.Swapped()} }
func (Plain) isMarket()          {}

// Pool is a liquidity pool market addressed by its pool object id.
type Pool struct {
	ID   string
	Legs Pair
}

func (m Pool) Pair() Pair       { return m.Legs }
func (m Pool) Contract() string { return m.ID }
func (m Pool) Inverted() Market { return Pool{ID: m.ID, Legs: m.Legs.Swapped()} }
func (Pool) isMarket()          {}

// IsPoolID reports whether s is a liquidity pool object id.
func IsPoolID(s string) bool {
	return strings.HasPrefix(s, PoolPrefix)
}

// ParseSelection builds a Market from a market picker selection.
//
// For orderbook markets the picker sends the base asset and the counter asset.
// For pools it sends the pool id in the base slot and the already composed
// "ASSET:CURRENCY" pair in the market slot.
func ParseSelection(base, market string) Market {
	if IsPoolID(base) {
		return Pool{ID: base, Legs: SplitPair(market, PoolSep)}
	}
	return Plain{Legs: Pair{Base: base, Quote: market, Sep: PlainSep}}
}

// marketFromParts builds the Market for an explicit
// (pair, asset, currency, contract) quadruple. The separator is taken from pair.
func marketFromParts(pair, asset, currency, contract string) Market {
	sep := PlainSep
	if strings.IndexByte(pair, PoolSep) >= 0 {
		sep = PoolSep
	}
	legs := Pair{Base: asset, Quote: currency, Sep: sep}
	if contract == OrderbookContract {
		return Plain{Legs: legs}
	}
	return Pool{ID: contract, Legs: legs}
}

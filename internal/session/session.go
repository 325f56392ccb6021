package session

import "errors"

// Errors
var (
	ErrInvalidInit    = errors.New("pair, asset, currency and contract are required")
	ErrNotInitialized = errors.New("session not initialized")
	ErrUnknownFilter  = errors.New("unknown search filter")
)

// DefaultAssetA is the asset preselected in the first stage of the market picker.
const DefaultAssetA = "BTC"

// Resolution tells the caller what a Resolve call changed.
type Resolution int

const (
	// Unchanged means the market was kept; only the book needs re-requesting.
	Unchanged Resolution = iota

	// Changed means a new market was selected; a full refresh is due.
	Changed
)

// Selection is a market picker choice. An empty Base means "keep the
// current market".
type Selection struct {
	Base   string
	Market string
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Pair     string
	Asset    string
	Currency string
	Contract string
	Market   Market // nil before Initialize

	UseInvertedQuote bool
	UseLogScale      bool

	Filter      Filter
	FirstChoice bool
	AssetA      string

	LastBase  string // remembered base leg, "" until the first empty selection
	LastQuote string
}

// Session is the client's selected-market state.
type Session struct {
	market Market

	invertedQuote bool
	logScale      bool

	filter      Filter
	firstChoice bool
	assetA      string

	remembered *Pair
}

// New returns an empty, uninitialized session with picker defaults.
func New() *Session {
	return &Session{
		filter:      FilterMPA,
		firstChoice: true,
		assetA:      DefaultAssetA,
	}
}

// Initialize sets the starting market. All four values must be non-empty;
// otherwise ErrInvalidInit is returned and the session is left untouched.
func (s *Session) Initialize(pair, asset, currency, contract string) error {
	if pair == "" || asset == "" || currency == "" || contract == "" {
		return ErrInvalidInit
	}
	s.market = marketFromParts(pair, asset, currency, contract)
	return nil
}

// Initialized reports whether a market has been set.
func (s *Session) Initialized() bool {
	return s.market != nil
}

// Market returns the current market, or nil before Initialize.
func (s *Session) Market() Market {
	return s.market
}

// Resolve applies a market picker selection.
//
// With an empty Base the current market is kept. The first such call also
// remembers the current legs as the base/counter selection.
// With a Base, the selection is parsed into a plain or pool market which
// replaces the current one.
func (s *Session) Resolve(sel Selection) (Resolution, error) {
	if sel.Base == "" {
		if s.market == nil {
			return Unchanged, ErrNotInitialized
		}
		if s.remembered == nil {
			legs := s.market.Pair()
			s.remembered = &legs
		}
		return Unchanged, nil
	}

	s.market = ParseSelection(sel.Base, sel.Market)
	return Changed, nil
}

// Invert swaps the legs of the current market and flips the inverted-quote flag.
func (s *Session) Invert() error {
	if s.market == nil {
		return ErrNotInitialized
	}
	s.market = s.market.Inverted()
	s.invertedQuote = !s.invertedQuote
	return nil
}

// ToggleLogScale flips the log-scale chart preference and returns the new value.
func (s *Session) ToggleLogScale() bool {
	s.logScale = !s.logScale
	return s.logScale
}

// SetFilter makes f the only active search filter.
func (s *Session) SetFilter(f Filter) {
	s.filter = f
}

// BeginFirstSearch switches between the two picker stages and records the
// asset chosen in the first stage.
func (s *Session) BeginFirstSearch(token string) {
	s.firstChoice = !s.firstChoice
	s.assetA = token
}

// SetAssetA sets the first-stage picker asset without changing stage.
func (s *Session) SetAssetA(token string) {
	s.assetA = token
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Market:           s.market,
		UseInvertedQuote: s.invertedQuote,
		UseLogScale:      s.logScale,
		Filter:           s.filter,
		FirstChoice:      s.firstChoice,
		AssetA:           s.assetA,
	}
	if s.market != nil {
		legs := s.market.Pair()
		snap.Pair = legs.String()
		snap.Asset = legs.Base
		snap.Currency = legs.Quote
		snap.Contract = s.market.Contract()
	}
	if s.remembered != nil {
		snap.LastBase = s.remembered.Base
		snap.LastQuote = s.remembered.Quote
	}
	return snap
}

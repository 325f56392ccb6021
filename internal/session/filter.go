package session

import "fmt"

// Filter selects which asset class a market search returns.
// Exactly one filter is active at a time.
type Filter uint8

const (
	FilterMPA  Filter = iota + 1 // market pegged assets
	FilterLPT                    // liquidity pool tokens
	FilterUIA                    // user issued assets
	FilterPool                   // liquidity pools
	FilterBTS                    // network native asset
)

// String returns the picker radio value for f.
func (f Filter) String() string {
	switch f {
	case FilterMPA:
		return "MPA"
	case FilterLPT:
		return "LPT"
	case FilterUIA:
		return "UIA"
	case FilterPool:
		return "Pool"
	case FilterBTS:
		return "BTS"
	default:
		return fmt.Sprintf("Filter(%d)", uint8(f))
	}
}

// ParseFilter parses a picker radio value ("MPA", "LPT", "UIA", "Pool", "BTS").
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "MPA":
		return FilterMPA, nil
	case "LPT":
		return FilterLPT, nil
	case "UIA":
		return FilterUIA, nil
	case "Pool":
		return FilterPool, nil
	case "BTS":
		return FilterBTS, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// FilterFlags is the one-hot boolean form of a Filter carried in search requests.
type FilterFlags struct {
	MPA  bool
	LPT  bool
	UIA  bool
	Pool bool
	BTS  bool
}

// Flags expands f into its one-hot flags.
func (f Filter) Flags() FilterFlags {
	return FilterFlags{
		MPA:  f == FilterMPA,
		LPT:  f == FilterLPT,
		UIA:  f == FilterUIA,
		Pool: f == FilterPool,
		BTS:  f == FilterBTS,
	}
}

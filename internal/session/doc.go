// Package session holds the client's view of the selected market.
//
// The Session is the single source of truth for:
//   - The current market (plain orderbook or liquidity pool)
//   - Quote inversion and log-scale chart preferences
//   - Market picker state (search filter, first/second choice, asset A)
//   - The remembered base/counter selection
//
// Every mutation goes through a named transition (Initialize, Resolve, Invert,
// ToggleLogScale, SetFilter, BeginFirstSearch). Session is not safe for
// concurrent use; the coordinator calls it from its event loop only.
package session

// Package chart decides which renderer a candle payload belongs to and
// computes the style options it is drawn with.
//
// Discrete-regime series (irregular, trade-by-trade timestamps) always go to
// the discrete renderer. Fixed-interval series go to the indicator renderer
// for the advanced style and to the lightweight renderer otherwise. Two
// surfaces exist; the one about to render is shown and the other is hidden
// and cleared.
package chart

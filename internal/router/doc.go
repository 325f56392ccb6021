// Package router decodes messages from the data server and dispatches them
// by resource tag.
//
// Every message is an envelope {resource, payload}. The router decodes the
// payload for the five known resources (book, blocknum, ticker, list_assets,
// candles) and calls the matching Handler method. Unknown tags and
// malformed payloads are logged, counted and dropped.
//
// Queue is the unbounded event queue the coordinator loop drains.
package router

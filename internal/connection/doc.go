// Package connection implements the Connection Manager component.
//
// The Connection Manager:
//   - Maintains exactly one WebSocket connection to the data server
//   - Encodes outgoing request envelopes ({"resource": ..., ...})
//   - Sends fire-and-forget: no acknowledgment is awaited
//   - Exposes the raw incoming messages to the Message Router
//
// The connection is not re-established when it drops.
package connection

// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Messages received, routed and dropped per resource
//   - Requests sent and send failures per resource
//   - Refresh timers fired per resource
package metrics

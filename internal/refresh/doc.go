// Package refresh re-issues data requests on a per-resource cadence.
//
// A timer is armed only after a response has been applied, so a slow
// response delays the next poll rather than overlapping it. Each resource
// has at most one armed timer at a time.
package refresh

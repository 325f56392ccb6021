// Package console provides the terminal collaborators of the sync client:
// an in-memory DOM, a renderer that logs chart summaries and a line-based
// command reader that drives user actions.
package console

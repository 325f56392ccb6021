package console

import (
	"log/slog"
	"sync"
)

// Control defaults match the initial state of the trading page.
var defaultControls = map[string]string{
	"options":    "c86400",
	"candles":    "line",
	"coinsearch": "",
}

// DOM is an in-memory UI. Content written to an element id that is also a
// control sets the control's value.
type DOM struct {
	logger *slog.Logger

	mu       sync.RWMutex
	content  map[string]string
	visible  map[string]bool
	controls map[string]string
}

// NewDOM creates a DOM with the default control values, overridden by
// controls.
func NewDOM(controls map[string]string, logger *slog.Logger) *DOM {
	if logger == nil {
		logger = slog.Default()
	}
	d := &DOM{
		logger:   logger,
		content:  make(map[string]string),
		visible:  make(map[string]bool),
		controls: make(map[string]string, len(defaultControls)),
	}
	for id, v := range defaultControls {
		d.controls[id] = v
	}
	for id, v := range controls {
		d.controls[id] = v
	}
	return d
}

// SetContent replaces the content of an element.
func (d *DOM) SetContent(id, html string) {
	d.mu.Lock()
	d.content[id] = html
	if _, ok := d.controls[id]; ok {
		d.controls[id] = html
	}
	d.mu.Unlock()

	d.logger.Debug("content", "id", id, "bytes", len(html), "text", abbreviate(html, 80))
}

// SetVisible shows or hides an element.
func (d *DOM) SetVisible(id string, visible bool) {
	d.mu.Lock()
	d.visible[id] = visible
	d.mu.Unlock()
}

// ReadControl returns the current value of a control, or "" if unknown.
func (d *DOM) ReadControl(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.controls[id]
}

// SetControl sets a control's value, as a user would.
func (d *DOM) SetControl(id, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.controls[id] = value
}

// Content returns the content of an element.
func (d *DOM) Content(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content[id]
}

// Visible reports whether an element is shown.
func (d *DOM) Visible(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.visible[id]
}

func abbreviate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

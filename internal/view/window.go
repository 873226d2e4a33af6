package view

import "scentlog/internal/record"

// Pagination defaults.
const (
	DefaultPageSize = 50
)

// Window tracks how many projected records are rendered. The count grows by
// Step up to the total and resets to Base whenever the filter key changes.
type Window struct {
	Base int
	Step int

	key string
	n   int
}

// NewWindow returns a window of base records grown by step. Non-positive
// values fall back to DefaultPageSize.
func NewWindow(base, step int) *Window {
	if base <= 0 {
		base = DefaultPageSize
	}
	if step <= 0 {
		step = DefaultPageSize
	}
	return &Window{Base: base, Step: step, n: base}
}

// Sync resets the window when key differs from the last synced key.
func (w *Window) Sync(key string) {
	if key != w.key {
		w.key = key
		w.n = w.Base
	}
}

// Size is the current window size before clamping to a total.
func (w *Window) Size() int {
	return w.n
}

// Grow extends the window by Step, clamped to total. It never shrinks.
func (w *Window) Grow(total int) {
	if w.n >= total {
		return
	}
	w.n += w.Step
	if w.n > total {
		w.n = total
	}
}

// Visible returns the first Size records of projected.
func (w *Window) Visible(projected []record.Record) []record.Record {
	if w.n >= len(projected) {
		return projected
	}
	return projected[:w.n]
}

// HasMore reports whether projected extends beyond the window.
func (w *Window) HasMore(total int) bool {
	return w.n < total
}

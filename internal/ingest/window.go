// Package ingest receives pushed wire messages on the client side and
// maintains the charting window, alert list and durable sample buffer.
package ingest

import (
	"sync"

	"github.com/holee9/gx10-dashboard/internal/model"
)

// Window is a fixed-capacity ring buffer of history samples for charting.
// When full, the oldest sample is dropped before the newest is appended;
// the evict-then-append sequence is atomic. Contents are derivative and
// rebuilt from scratch on reconnect.
type Window struct {
	mu   sync.Mutex
	buf  []model.HistorySample
	head int // index of the oldest sample
	size int
}

// NewWindow creates a window with the given capacity (minimum 1).
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]model.HistorySample, capacity)}
}

// Append adds a sample, evicting the oldest when at capacity. O(1).
func (w *Window) Append(s model.HistorySample) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size < len(w.buf) {
		w.buf[(w.head+w.size)%len(w.buf)] = s
		w.size++
		return
	}
	w.buf[w.head] = s
	w.head = (w.head + 1) % len(w.buf)
}

// Samples returns a copy of the window contents in append order, oldest
// first.
func (w *Window) Samples() []model.HistorySample {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]model.HistorySample, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}

// Len returns the number of samples currently held.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Cap returns the fixed capacity.
func (w *Window) Cap() int {
	return len(w.buf)
}

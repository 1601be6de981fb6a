// Package ringbuf provides a fixed-capacity ring retaining the most recent
// scan signals for the API and the websocket stream. Oldest entries are
// overwritten once the ring is full.
package ringbuf

import (
	"sync"

	"backtest-systemv1/internal/model"
)

// Ring keeps the last N scan signals in arrival order.
type Ring struct {
	mu    sync.RWMutex
	buf   []model.ScanSignal
	next  int
	count int
}

// New creates a ring with the given capacity (minimum 1).
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]model.ScanSignal, capacity)}
}

// Add appends a signal, evicting the oldest when full.
func (r *Ring) Add(sig model.ScanSignal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = sig
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Recent returns the retained signals, oldest first.
func (r *Ring) Recent() []model.ScanSignal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.ScanSignal, 0, r.count)
	start := r.next - r.count
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Len returns the number of retained signals.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

package event

import "sync"

// Dispatcher is an explicit in-process publish/subscribe fan-out. There is no
// global bus: stores receive a dispatcher at construction time and publish
// typed events to it after their mutations commit.
//
// Delivery is synchronous and in subscription order. Publish never runs
// concurrently with Subscribe on the same listener slice; the slice is
// copied on write so listeners added during delivery see only later events.
type Dispatcher struct {
	mu        sync.Mutex
	listeners []Listener
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers a listener for all subsequent events.
func (d *Dispatcher) Subscribe(l Listener) {
	if l == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	next := make([]Listener, len(d.listeners), len(d.listeners)+1)
	copy(next, d.listeners)
	d.listeners = append(next, l)
}

// Publish delivers e to every registered listener, in subscription order,
// on the caller's goroutine.
func (d *Dispatcher) Publish(e Event) {
	d.mu.Lock()
	listeners := d.listeners
	d.mu.Unlock()

	for _, l := range listeners {
		l(e)
	}
}

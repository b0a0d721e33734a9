// Package watch provides the change-notification half of the dashboard's
// state containers: each container owns a Hub and calls Notify after every
// mutation, readers Subscribe and re-read the container when signalled.
package watch

import "sync"

// Hub fans out coalescing change signals. The zero value is ready to use.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// Subscribe returns a channel that receives a value after every Notify.
// Signals coalesce: the channel buffers at most one pending signal. The
// returned cancel func closes the channel and may be called more than once.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]chan struct{})
	}
	id := h.next
	h.next++
	ch := make(chan struct{}, 1)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Notify signals every subscriber without blocking.
func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len reports the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Package notifier wakes the update streams of one dashboard session.
package notifier

import "sync"

// Notifier is owned by a single session. Its Broadcast is the session
// controller's change callback; every open /updates stream of that session
// holds a subscription and re-renders from a fresh snapshot when pinged.
type Notifier struct {
	mu      sync.RWMutex
	streams map[chan struct{}]struct{}
}

// New returns a notifier with no streams.
func New() *Notifier {
	return &Notifier{streams: make(map[chan struct{}]struct{})}
}

// Subscribe registers a stream. The channel holds at most one pending ping,
// so a burst of controller changes collapses into a single re-render.
// Release it with Unsubscribe.
func (n *Notifier) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.streams[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe drops a stream and closes its channel.
func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	delete(n.streams, ch)
	n.mu.Unlock()
	close(ch)
}

// Listeners returns the number of open streams.
func (n *Notifier) Listeners() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.streams)
}

// Broadcast pings every stream without blocking. It runs on whichever
// goroutine changed the controller.
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.streams {
		select {
		case ch <- struct{}{}:
		default:
			// already pending
		}
	}
}

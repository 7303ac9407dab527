// Package loading implements the process-wide busy indicator as a counted
// resource. Each operation acquires a handle and releases it when done;
// the indicator stays visible while any handle is held.
package loading

import "sync"

// DefaultMessage is shown when Acquire is given an empty message.
const DefaultMessage = "Processing..."

// Status is a snapshot of the indicator.
type Status struct {
	Visible bool
	Message string
	Active  int
}

// Indicator is the busy overlay. Only handle acquisition and release
// change its visibility.
type Indicator struct {
	mu       sync.Mutex
	active   []*Handle
	onChange func(Status)
}

// New creates a hidden indicator.
func New() *Indicator {
	return &Indicator{}
}

// OnChange registers fn to run after every transition. fn runs without
// the indicator lock held.
func (i *Indicator) OnChange(fn func(Status)) {
	i.mu.Lock()
	i.onChange = fn
	i.mu.Unlock()
}

// Handle is one outstanding acquisition.
type Handle struct {
	ind     *Indicator
	message string
	once    sync.Once
}

// Acquire shows the indicator with message and returns the handle that
// must be released when the operation completes.
func (i *Indicator) Acquire(message string) *Handle {
	if message == "" {
		message = DefaultMessage
	}
	h := &Handle{ind: i, message: message}

	i.mu.Lock()
	i.active = append(i.active, h)
	st, fn := i.statusLocked(), i.onChange
	i.mu.Unlock()

	if fn != nil {
		fn(st)
	}
	return h
}

// Release gives the handle back. Releasing twice is a no-op.
func (h *Handle) Release() {
	h.once.Do(func() {
		i := h.ind
		i.mu.Lock()
		for idx, a := range i.active {
			if a == h {
				i.active = append(i.active[:idx], i.active[idx+1:]...)
				break
			}
		}
		st, fn := i.statusLocked(), i.onChange
		i.mu.Unlock()

		if fn != nil {
			fn(st)
		}
	})
}

// Message returns the text this handle asked for.
func (h *Handle) Message() string { return h.message }

// Status returns the current snapshot.
func (i *Indicator) Status() Status {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.statusLocked()
}

// statusLocked shows the message of the most recently acquired handle
// that is still held.
func (i *Indicator) statusLocked() Status {
	n := len(i.active)
	if n == 0 {
		return Status{}
	}
	return Status{Visible: true, Message: i.active[n-1].message, Active: n}
}

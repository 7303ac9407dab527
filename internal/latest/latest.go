// Package latest tracks request tokens so that only the most recently
// issued operation in a slot may publish its result.
package latest

import "sync"

// Token identifies one issued operation.
type Token uint64

// Tracker hands out tokens per named slot ("student", "department", ...).
// Issuing a token invalidates every earlier token in the same slot.
type Tracker struct {
	mu      sync.Mutex
	current map[string]Token
	next    Token
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{current: make(map[string]Token)}
}

// Issue returns a fresh token for slot and makes it current.
func (t *Tracker) Issue(slot string) Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.current[slot] = t.next
	return t.next
}

// IsCurrent reports whether tok is still the newest token for slot.
func (t *Tracker) IsCurrent(slot string, tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current[slot] == tok
}

// Invalidate retires the current token of slot without issuing a new one.
func (t *Tracker) Invalidate(slot string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.current, slot)
}

// Commit runs fn while holding the tracker lock, but only if tok is still
// current. It reports whether fn ran. This closes the gap between checking
// a token and publishing its result.
func (t *Tracker) Commit(slot string, tok Token, fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current[slot] != tok {
		return false
	}
	fn()
	return true
}

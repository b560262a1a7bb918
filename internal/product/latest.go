package product

import "sync"

// Latest hands out increasing tickets per key so that only the response to
// the most recent request for that key is applied. Older responses are
// dropped when they arrive late.
type Latest struct {
	mu      sync.Mutex
	tickets map[string]uint64
}

func NewLatest() *Latest {
	return &Latest{tickets: make(map[string]uint64)}
}

// Next issues a new ticket for key, superseding every earlier one.
func (l *Latest) Next(key string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tickets[key]++
	return l.tickets[key]
}

// IsCurrent reports whether ticket is still the newest for key.
func (l *Latest) IsCurrent(key string, ticket uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tickets[key] == ticket
}

// Apply runs fn only when ticket is still current, holding the guard so that
// a newer ticket cannot be issued and applied in between.
func (l *Latest) Apply(key string, ticket uint64, fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tickets[key] != ticket {
		return false
	}
	fn()
	return true
}

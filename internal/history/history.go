// Package history implements the navigation history of visited addresses.
package history

import (
	"sync"

	"github.com/retroenv/gbdisasm/internal/address"
)

// DefaultLimit is the default number of entries that are kept.
const DefaultLimit = 1000

// History is a list of visited addresses with a cursor. It is safe for
// concurrent use.
type History struct {
	mu      sync.Mutex
	limit   int
	entries []address.Address
	cursor  int // index of the current entry, -1 if empty
}

// New returns an empty history that keeps at most limit entries. The oldest
// entries are dropped first.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{
		limit:  limit,
		cursor: -1,
	}
}

// Push adds an address after the current entry and makes it current. All
// entries after the current one are discarded.
func (h *History) Push(a address.Address) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.cursor+1], a)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	h.cursor = len(h.entries) - 1
}

// Back moves to the previous entry and returns it.
func (h *History) Back() (address.Address, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor <= 0 {
		return address.Address{}, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Forward moves to the next entry and returns it.
func (h *History) Forward() (address.Address, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor+1 >= len(h.entries) {
		return address.Address{}, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// Current returns the current entry.
func (h *History) Current() (address.Address, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor < 0 {
		return address.Address{}, false
	}
	return h.entries[h.cursor], true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

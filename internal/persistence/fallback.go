package persistence

import (
	"github.com/nikolayk812/spicecart/internal/domain"
	"sync"
)

// FallbackState tracks whether carts are currently held in memory because the
// durable store rejected a write. Adapters sharing one FallbackState see the
// same degraded signal.
type FallbackState struct {
	mu     sync.Mutex
	active bool
	buffer []domain.CartItem
}

func NewFallbackState() *FallbackState {
	return &FallbackState{}
}

func (f *FallbackState) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// enter stores items in the buffer and reports whether this call switched
// fallback mode on.
func (f *FallbackState) enter(items []domain.CartItem) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.buffer = domain.CloneItems(items)
	if f.active {
		return false
	}
	f.active = true
	return true
}

// leave switches fallback mode off when it is on and the cart is non-empty.
// The buffer is left untouched; it is only read while fallback is active.
func (f *FallbackState) leave(items []domain.CartItem) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.active || len(items) == 0 {
		return false
	}
	f.active = false
	return true
}

// snapshot returns a copy of the buffer when fallback is active and the
// buffer holds at least one item.
func (f *FallbackState) snapshot() ([]domain.CartItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.active || len(f.buffer) == 0 {
		return nil, false
	}
	return domain.CloneItems(f.buffer), true
}

package core

import (
	"fmt"
	"sync"
)

// IdentifierPool hands out small integer ids and recycles released ones.
type IdentifierPool struct {
	mu     sync.Mutex
	owners []interface{}
}

func NewIdentifierPool(capacity int) *IdentifierPool {
	return &IdentifierPool{
		owners: make([]interface{}, capacity),
	}
}

// Acquire returns the lowest free id and records owner in its slot.
func (ip *IdentifierPool) Acquire(owner interface{}) uint32 {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	length := uint32(len(ip.owners))
	for i := uint32(0); i < length; i++ {
		// Existing free spot. Take it.
		if ip.owners[i] == nil {
			ip.owners[i] = owner
			return i
		}
	}

	// No free slot left, push a new one.
	ip.owners = append(ip.owners, owner)
	return uint32(len(ip.owners)) - 1
}

// Release frees id so that it can be handed out again.
func (ip *IdentifierPool) Release(id uint32) error {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	length := uint32(len(ip.owners))
	if id >= length {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d). Nothing was done", id, length)
	}
	if ip.owners[id] == nil {
		return fmt.Errorf("identifier release: id '%d' is not in use. Nothing was done", id)
	}
	ip.owners[id] = nil
	return nil
}

// Owner returns what was registered with id, or nil.
func (ip *IdentifierPool) Owner(id uint32) interface{} {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	if id >= uint32(len(ip.owners)) {
		return nil
	}
	return ip.owners[id]
}

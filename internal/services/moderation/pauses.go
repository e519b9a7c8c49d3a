package moderation

import "sync"

// Pauses is the set of admins who muted new-submission notifications. It
// lives only in memory and is empty after a restart.
type Pauses struct {
	mu     sync.RWMutex
	paused map[int64]struct{}
}

func NewPauses() *Pauses {
	return &Pauses{paused: make(map[int64]struct{})}
}

// Toggle flips the admin's state and returns the new one.
func (p *Pauses) Toggle(adminID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.paused[adminID]; ok {
		delete(p.paused, adminID)
		return false
	}
	p.paused[adminID] = struct{}{}
	return true
}

func (p *Pauses) IsPaused(adminID int64) bool {
	if p == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.paused[adminID]
	return ok
}

package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry keeps the sessions whose screens are currently open.
// Sessions live in memory only: opened with the screen, discarded when it closes.
type Registry struct {
	mu       sync.RWMutex
	machines map[uuid.UUID]*Machine
}

func NewRegistry() *Registry {
	return &Registry{machines: make(map[uuid.UUID]*Machine)}
}

// Open returns the machine of the session identified by key, creating it if needed.
// The bool is true when a new session was created.
func (r *Registry) Open(key Key) (*Machine, bool) {
	id := key.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.machines[id]; ok {
		return m, false
	}
	m := NewMachine(key)
	r.machines[id] = m
	return m, true
}

func (r *Registry) Get(id uuid.UUID) (*Machine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m, ok := r.machines[id]; ok {
		return m, nil
	}
	return nil, ErrNotFound
}

// Discard forgets the session; it reports whether it was open.
func (r *Registry) Discard(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.machines[id]
	delete(r.machines, id)
	return ok
}

// PurgeBefore discards every session dated before the day of t, returning how many were dropped.
func (r *Registry) PurgeBefore(t time.Time) int {
	y, mo, d := t.Date()
	day := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	for id, m := range r.machines {
		if m.Session().Date.Before(day) {
			delete(r.machines, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.machines)
}

package services

import (
	"context"
	"sync"
)

// Inflight lets the latest request for a key win. Starting a request under a
// key cancels the one already running under it.
type Inflight struct {
	mu      sync.Mutex
	seq     uint64
	running map[string]inflightEntry
}

type inflightEntry struct {
	id     uint64
	cancel context.CancelFunc
}

// NewInflight creates an empty registry.
func NewInflight() *Inflight {
	return &Inflight{running: make(map[string]inflightEntry)}
}

// Begin derives a context for a new request under key and cancels the
// previous one. done must be called when the request finishes; it releases
// the context and forgets the key unless a newer request took it over.
func (f *Inflight) Begin(ctx context.Context, key string) (context.Context, func()) {
	child, cancel := context.WithCancel(ctx)

	f.mu.Lock()
	f.seq++
	id := f.seq
	if prev, ok := f.running[key]; ok {
		prev.cancel()
	}
	f.running[key] = inflightEntry{id: id, cancel: cancel}
	f.mu.Unlock()

	done := func() {
		f.mu.Lock()
		if cur, ok := f.running[key]; ok && cur.id == id {
			delete(f.running, key)
		}
		f.mu.Unlock()
		cancel()
	}
	return child, done
}

// Len reports how many keys have a request running.
func (f *Inflight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.running)
}

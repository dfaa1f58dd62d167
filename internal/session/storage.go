package session

import (
	"context"
	"sync"
	"time"
)

// Storage keys. They mirror the slots the storefront has always used in the
// visitor's browser so existing tooling keeps understanding them.
const (
	KeyAccessToken      = "accessToken"
	KeyRefreshToken     = "refreshToken"
	KeyUser             = "user"
	KeyCustomerPhone    = "customer_phone"
	KeyCheckoutCustomer = "checkout_customer"
	KeyCart             = "cart"

	// Legacy guest profile slots, migrated into KeyCheckoutCustomer.
	KeyOrderCustomer = "order_customer"
	KeyCustomer      = "customer"
	KeyShippingInfo  = "shipping_info"
)

// legacyProfileKeys are read in this order; the first usable one wins.
var legacyProfileKeys = []string{KeyOrderCustomer, KeyCustomer, KeyShippingInfo}

// guestKeys are removed on logout so a following guest checkout starts clean.
var guestKeys = []string{
	KeyCustomerPhone,
	KeyCheckoutCustomer,
	KeyOrderCustomer,
	KeyCustomer,
	KeyShippingInfo,
}

// Storage is the key/value space of one visitor session.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// Apply writes set and removes del as one atomic change.
	Apply(ctx context.Context, set map[string]string, del []string) error
	// Update replaces key with the result of fn, read and write happening as
	// one step with respect to other updates of the same session. fn gets
	// the current value and whether it exists; an empty result removes key.
	Update(ctx context.Context, key string, fn func(old string, ok bool) (string, error)) error
}

// Backend hands out the storage of a session.
type Backend interface {
	Open(sessionID string) Storage
}

// MemoryBackend keeps sessions in process memory. It is used when no
// database is configured and in tests.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
	written  map[string]time.Time
	now      func() time.Time
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		sessions: map[string]map[string]string{},
		written:  map[string]time.Time{},
		now:      time.Now,
	}
}

// Purge drops sessions not written since cutoff and returns how many went.
func (b *MemoryBackend) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var n int64
	for id, at := range b.written {
		if at.Before(cutoff) {
			delete(b.sessions, id)
			delete(b.written, id)
			n++
		}
	}
	return n, nil
}

// store writes values of one session. Callers hold b.mu.
func (b *MemoryBackend) store(id string, set map[string]string, del []string) {
	values, ok := b.sessions[id]
	if !ok {
		values = map[string]string{}
		b.sessions[id] = values
	}
	for _, k := range del {
		delete(values, k)
	}
	for k, v := range set {
		values[k] = v
	}
	if len(values) == 0 {
		delete(b.sessions, id)
		delete(b.written, id)
		return
	}
	b.written[id] = b.now()
}

// Open returns the storage of sessionID.
func (b *MemoryBackend) Open(sessionID string) Storage {
	return &memoryStorage{backend: b, id: sessionID}
}

// Snapshot copies the values of a session.
func (b *MemoryBackend) Snapshot(sessionID string) map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := map[string]string{}
	for k, v := range b.sessions[sessionID] {
		out[k] = v
	}
	return out
}

type memoryStorage struct {
	backend *MemoryBackend
	id      string
}

func (s *memoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	v, ok := s.backend.sessions[s.id][key]
	return v, ok, nil
}

func (s *memoryStorage) Apply(ctx context.Context, set map[string]string, del []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.store(s.id, set, del)
	return nil
}

func (s *memoryStorage) Update(ctx context.Context, key string, fn func(string, bool) (string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	old, ok := s.backend.sessions[s.id][key]
	next, err := fn(old, ok)
	if err != nil {
		return err
	}
	if next == "" {
		s.backend.store(s.id, nil, []string{key})
	} else {
		s.backend.store(s.id, map[string]string{key: next}, nil)
	}
	return nil
}

package stores

// SessionStore keeps one value per key in memory with a sliding expiry.  It
// backs the chat sessions in development and single-node deployments;
// replicas that must share conversations use the s3 store instead.

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	DefaultSessionTTL    = 24 * time.Hour
	DefaultSweepInterval = time.Hour
)

// sessionData wraps the actual data with expiration time
type sessionData[V any] struct {
	Data      V
	ExpiresAt time.Time
}

type SessionStore[V any] struct {
	mu       sync.RWMutex
	data     map[string]*sessionData[V]
	ttl      time.Duration
	interval time.Duration
	clock    func() time.Time
}

type SessionStoreOption[V any] func(*SessionStore[V])

func NewSessionStore[V any](options ...SessionStoreOption[V]) *SessionStore[V] {
	store := &SessionStore[V]{
		data:     make(map[string]*sessionData[V]),
		ttl:      DefaultSessionTTL,
		interval: DefaultSweepInterval,
		clock:    time.Now,
	}

	for _, option := range options {
		option(store)
	}

	return store
}

func WithTTL[V any](ttl time.Duration) SessionStoreOption[V] {
	return func(store *SessionStore[V]) {
		if ttl > 0 {
			store.ttl = ttl
		}
	}
}

func WithSweepInterval[V any](interval time.Duration) SessionStoreOption[V] {
	return func(store *SessionStore[V]) {
		if interval > 0 {
			store.interval = interval
		}
	}
}

func WithSessionClock[V any](clock func() time.Time) SessionStoreOption[V] {
	return func(store *SessionStore[V]) {
		store.clock = clock
	}
}

func (store *SessionStore[V]) Get(_ context.Context, id string) (V, bool, error) {
	var zero V

	store.mu.RLock()
	entry, ok := store.data[id]
	store.mu.RUnlock()

	if !ok {
		return zero, false, nil
	}

	if now := store.clock(); now.After(entry.ExpiresAt) {
		store.mu.Lock()
		defer store.mu.Unlock()

		// A Put may have refreshed the entry since the read lock was released.
		current, ok := store.data[id]

		if !ok {
			return zero, false, nil
		}

		if now.After(current.ExpiresAt) {
			delete(store.data, id)
			return zero, false, nil
		}

		return current.Data, true, nil
	}

	return entry.Data, true, nil
}

// Put stores value and pushes the expiry out by the TTL.
func (store *SessionStore[V]) Put(_ context.Context, id string, value V) error {
	store.mu.Lock()
	store.data[id] = &sessionData[V]{
		Data:      value,
		ExpiresAt: store.clock().Add(store.ttl),
	}
	store.mu.Unlock()

	return nil
}

func (store *SessionStore[V]) Delete(_ context.Context, id string) error {
	store.mu.Lock()
	delete(store.data, id)
	store.mu.Unlock()

	return nil
}

func (store *SessionStore[V]) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()

	return len(store.data)
}

// Cleanup drops every expired entry and reports how many went.
func (store *SessionStore[V]) Cleanup() int {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := store.clock()
	removed := 0

	for id, entry := range store.data {
		if now.After(entry.ExpiresAt) {
			delete(store.data, id)
			removed++
		}
	}

	return removed
}

/*
Run sweeps expired sessions until ctx is done.  It is meant to run under
the server's errgroup so it stops with everything else.
*/
func (store *SessionStore[V]) Run(ctx context.Context) error {
	ticker := time.NewTicker(store.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := store.Cleanup(); removed > 0 {
				log.Debug("expired sessions swept", "removed", removed)
			}
		}
	}
}

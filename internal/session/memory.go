package session

import (
	"context"
	"sync"
	"time"

	"worklog-bot/internal/flow"
)

const sweepInterval = time.Minute

// entry wraps a stored session with its last-touch time for expiry.
type entry struct {
	sess    flow.Session
	touched time.Time
}

// MemoryStore is the default in-process backend: a mutex-guarded keyed
// map with a janitor goroutine that sweeps out sessions idle past the
// TTL. Sessions do not survive a restart; deployments that need that
// run the Redis backend instead.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry

	ttl  time.Duration
	done chan struct{}
	once sync.Once
}

// NewMemoryStore creates a memory store whose sessions expire after
// ttl of inactivity. A ttl of zero disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	if ttl > 0 {
		go s.janitor()
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (flow.Session, error) {
	s.mu.RLock()
	e, ok := s.entries[userID]
	s.mu.RUnlock()

	if !ok {
		return flow.NewSession(), nil
	}
	if s.ttl > 0 && time.Since(e.touched) > s.ttl {
		// Expired but not yet swept; treat as absent.
		return flow.NewSession(), nil
	}
	return e.sess.Clone(), nil
}

func (s *MemoryStore) Set(ctx context.Context, userID string, sess flow.Session) error {
	s.mu.Lock()
	s.entries[userID] = entry{sess: sess.Clone(), touched: time.Now()}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
	return nil
}

// Close stops the janitor. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

// sweep drops entries idle past the TTL.
func (s *MemoryStore) sweep(now time.Time) {
	s.mu.Lock()
	for id, e := range s.entries {
		if now.Sub(e.touched) > s.ttl {
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()
}

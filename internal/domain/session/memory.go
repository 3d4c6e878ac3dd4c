package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. It backs tests and local
// development; production uses the PostgreSQL store.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: map[string]*Session{},
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, identity string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[identity]
	if !ok {
		return nil, nil
	}
	if m.now().Sub(sess.UpdatedAt) >= m.ttl {
		delete(m.sessions, identity)
		return nil, nil
	}
	return sess.clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := sess.clone()
	stored.UpdatedAt = m.now()
	m.sessions[sess.Identity] = stored
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, identity)
	return nil
}

// Sweep removes expired sessions. Run runs it on an interval until ctx ends.
func (m *MemoryStore) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now()
	for identity, sess := range m.sessions {
		if cutoff.Sub(sess.UpdatedAt) >= m.ttl {
			delete(m.sessions, identity)
		}
	}
}

func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

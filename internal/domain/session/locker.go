package session

import "sync"

// Locker serializes message handling per identity. A second message that
// arrives while the first is still processing is rejected rather than queued.
type Locker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocker() *Locker {
	return &Locker{held: map[string]struct{}{}}
}

// TryAcquire reports whether the identity's lock was taken. It never blocks.
func (l *Locker) TryAcquire(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[identity]; busy {
		return false
	}
	l.held[identity] = struct{}{}
	return true
}

func (l *Locker) Release(identity string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, identity)
}

package cartlock

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the process-local lock registry. Lock state here does
// not survive a restart; use the Redis store for multi-instance setups.
type MemoryStore struct {
	mu    sync.Mutex
	locks map[string]*Lock
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{locks: make(map[string]*Lock)}
}

func (s *MemoryStore) Acquire(_ context.Context, lock *Lock) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.locks[lock.Identity]; ok && !existing.Expired(time.Now()) {
		return false, nil
	}

	cp := *lock
	s.locks[lock.Identity] = &cp
	return true, nil
}

func (s *MemoryStore) Get(_ context.Context, identity string) (*Lock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[identity]
	if !ok {
		return nil, nil
	}
	cp := *lock
	return &cp, nil
}

func (s *MemoryStore) Put(_ context.Context, lock *Lock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *lock
	s.locks[lock.Identity] = &cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, identity string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.locks[identity]
	delete(s.locks, identity)
	return ok, nil
}

func (s *MemoryStore) Identities(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.locks))
	for id := range s.locks {
		ids = append(ids, id)
	}
	return ids, nil
}

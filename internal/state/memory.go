package state

import (
	"fmt"
	"sync"
)

type memoryStore struct {
	mu               sync.Mutex
	sessions         map[string]SessionInfo
	closing          bool
	ready            bool
	totalSessions    int64
	upstreamFailures int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[string]SessionInfo)}
}

var _ Store = (*memoryStore)(nil)

func (s *memoryStore) Add(info SessionInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[info.ID]; exists {
		return fmt.Errorf("session already registered: %s", info.ID)
	}
	s.sessions[info.ID] = info
	s.totalSessions++
	return nil
}

func (s *memoryStore) Remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *memoryStore) IncUpstreamFailure() {
	s.mu.Lock()
	s.upstreamFailures++
	s.mu.Unlock()
}

func (s *memoryStore) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *memoryStore) Totals() (int64, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSessions, s.upstreamFailures
}

func (s *memoryStore) SetReady(ready bool)     { s.mu.Lock(); s.ready = ready; s.mu.Unlock() }
func (s *memoryStore) SetClosing(closing bool) { s.mu.Lock(); s.closing = closing; s.mu.Unlock() }
func (s *memoryStore) Ready() bool             { s.mu.Lock(); defer s.mu.Unlock(); return s.ready }
func (s *memoryStore) Closing() bool           { s.mu.Lock(); defer s.mu.Unlock(); return s.closing }

func (s *memoryStore) Close() error { return nil }

package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore 进程内会话存储，重启后会话失效
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	cp := *s
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &cp
	m.gcLocked()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.Expired(m.now()) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// Len 当前保存的会话数（含未清理的过期会话）
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// gcLocked drops expired sessions; caller holds mu
func (m *MemoryStore) gcLocked() {
	now := m.now()
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
		}
	}
}

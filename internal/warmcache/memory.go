package warmcache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value  string
	stored time.Time
}

// Memory is an in-process Backend.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]map[string]memEntry
	now      func() time.Time
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]map[string]memEntry), now: time.Now}
}

func (m *Memory) Load(_ context.Context, session, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[session][key]
	return e.value, ok, nil
}

func (m *Memory) Save(_ context.Context, session, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[session]
	if !ok {
		s = make(map[string]memEntry)
		m.sessions[session] = s
	}
	s[key] = memEntry{value: value, stored: m.now()}
	return nil
}

func (m *Memory) Purge(_ context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		for k, e := range s {
			if e.stored.Before(before) {
				delete(s, k)
				n++
			}
		}
		if len(s) == 0 {
			delete(m.sessions, id)
		}
	}
	return n, nil
}

func (m *Memory) Close() error { return nil }

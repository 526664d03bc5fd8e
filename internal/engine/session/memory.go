package session

import (
	"context"
	"sync"
	"time"

	"github.com/petaldesk/engine/internal/engine/model"
	logx "github.com/petaldesk/engine/pkg/logger"
)

// MemoryBackend is the in-process fallback: size bounded, TTL enforced on
// access. Sessions held here survive a Redis outage but not a restart.
type MemoryBackend struct {
	mu       sync.Mutex
	entries  map[string]*memEntry
	ttl      time.Duration
	capacity int
	maxTurns int
	now      func() time.Time
}

type memEntry struct {
	sess      *model.Session
	expiresAt time.Time
}

func NewMemoryBackend(ttl time.Duration, capacity, maxTurns int) *MemoryBackend {
	return &MemoryBackend{
		entries:  make(map[string]*memEntry),
		ttl:      ttl,
		capacity: capacity,
		maxTurns: maxTurns,
		now:      time.Now,
	}
}

func (m *MemoryBackend) Load(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	if m.ttl > 0 && m.now().After(e.expiresAt) {
		delete(m.entries, id)
		return nil, nil
	}
	return e.sess.Clone(), nil
}

// Append merges only the new turns into the stored session, mirroring the
// Redis list append. A concurrent turn that loaded an older snapshot must
// not erase history another commit already stored, so the caller's turn list
// is never taken wholesale.
func (m *MemoryBackend) Append(_ context.Context, s *model.Session, turns ...model.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.entries[s.ID]
	if exists && m.ttl > 0 && m.now().After(e.expiresAt) {
		delete(m.entries, s.ID)
		exists = false
	}
	if !exists {
		if m.capacity > 0 && len(m.entries) >= m.capacity {
			m.evictLocked()
		}
		m.entries[s.ID] = &memEntry{sess: s.Clone(), expiresAt: m.now().Add(m.ttl)}
		return nil
	}

	stored := e.sess
	stored.Turns = append(stored.Turns, turns...)
	if m.maxTurns > 0 && len(stored.Turns) > m.maxTurns {
		dropped := len(stored.Turns) - m.maxTurns
		stored.Turns = append([]model.Turn(nil), stored.Turns[dropped:]...)
		stored.CompactedTurns += dropped
	}
	stored.Touch(s.LastActiveAt)
	stored.Preferences = s.Preferences.Clone()
	if s.PendingIntent != nil {
		pi := s.PendingIntent.Clone()
		stored.PendingIntent = &pi
	}
	e.expiresAt = m.now().Add(m.ttl)
	return nil
}

func (m *MemoryBackend) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// evictLocked removes expired entries, then the least recently active one if
// the store is still full.
func (m *MemoryBackend) evictLocked() {
	now := m.now()
	for id, e := range m.entries {
		if m.ttl > 0 && now.After(e.expiresAt) {
			delete(m.entries, id)
		}
	}
	if len(m.entries) < m.capacity {
		return
	}
	var oldestID string
	var oldest time.Time
	for id, e := range m.entries {
		if oldestID == "" || e.sess.LastActiveAt.Before(oldest) {
			oldestID = id
			oldest = e.sess.LastActiveAt
		}
	}
	if oldestID != "" {
		delete(m.entries, oldestID)
		logx.Warn().Str("sessionID", oldestID).Msg("memory session store full, evicted least recently active session")
	}
}

var _ Backend = (*MemoryBackend)(nil)

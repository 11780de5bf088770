package session

import (
	"time"

	"github.com/google/uuid"

	"gastos/internal/cache"
	"gastos/internal/log"
)

// Manager owns every live Store, keyed by an opaque session id.
// Idle sessions expire after the configured TTL and the least recently
// used session is dropped when the capacity is reached.
type Manager struct {
	stores *cache.LRUCache[*Store]
	logger *log.Logger
	newID  func() string
}

func NewManager(maxSessions int, ttl time.Duration, logger *log.Logger) *Manager {
	m := &Manager{
		logger: logger.WithComponent(log.ComponentSession),
		newID:  uuid.NewString,
	}
	m.stores = cache.NewLRUCache[*Store](maxSessions, ttl,
		cache.WithSlidingExpiration[*Store](),
		cache.WithEvictCallback(func(id string, s *Store) {
			m.logger.Info("Session dropped", log.FieldSessionID, id, "transactions", s.Len())
		}),
	)
	return m
}

// Get returns the store for id if the session is still alive.
func (m *Manager) Get(id string) (*Store, bool) {
	if id == "" {
		return nil, false
	}
	return m.stores.Get(id)
}

// GetOrCreate returns the store for id, or a fresh one under a new id.
// created reports whether a new session was started.
func (m *Manager) GetOrCreate(id string) (store *Store, created bool) {
	if s, ok := m.Get(id); ok {
		return s, false
	}
	s := NewStore(m.newID())
	m.stores.Set(s.ID(), s)
	m.logger.Debug("Session created", log.FieldSessionID, s.ID())
	return s, true
}

// Delete ends a session.
func (m *Manager) Delete(id string) {
	m.stores.Delete(id)
}

func (m *Manager) Size() int {
	return m.stores.Size()
}

// CleanExpired implements cache.Cleaner.
func (m *Manager) CleanExpired() int {
	return m.stores.CleanExpired()
}

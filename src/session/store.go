package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Store keeps the workspaces of every live browser session. A workspace
// expires after the configured idle time; each access extends it.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
	deps  Deps
	mu    sync.Mutex
}

// -----------------------------------------------------------------------------

func NewStore(ttl time.Duration, deps Deps) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(_ string, v interface{}) {
		if ws, ok := v.(*Workspace); ok {
			ws.Close()
		}
	})
	return &Store{cache: c, ttl: ttl, deps: deps}
}

// -----------------------------------------------------------------------------

// Get returns the workspace id and extends its lifetime.
func (s *Store) Get(id string) (*Workspace, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	ws := v.(*Workspace)
	s.cache.Set(id, ws, cache.DefaultExpiration)
	return ws, true
}

// -----------------------------------------------------------------------------

// Acquire returns the workspace for id, creating a fresh one under a new id
// when id is unknown or expired. The credentials of an existing workspace
// are refreshed.
func (s *Store) Acquire(id string, creds Credentials) (*Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws, ok := s.Get(id); ok {
		ws.UpdateCredentials(creds)
		return ws, false
	}

	ws := NewWorkspace(uuid.NewString(), creds, s.deps)
	s.cache.Set(ws.ID, ws, cache.DefaultExpiration)
	if s.deps.Logger != nil {
		s.deps.Logger.Debug("New workspace %s", ws.ID)
	}
	return ws, true
}

// -----------------------------------------------------------------------------

// Remove ends a session immediately.
func (s *Store) Remove(id string) {
	s.cache.Delete(id)
}

// Count is the number of live workspaces.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}

// TTL is the idle lifetime of a workspace.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

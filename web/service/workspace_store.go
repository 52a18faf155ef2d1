package service

import (
	"sync"
	"time"

	"github.com/invcheck/invcheck/caching"
)

const workspaceKeyPrefix = "workspace:"

// WorkspaceStore keeps one Workspace per browser session in the shared cache.
// Idle workspaces expire after ttl.
type WorkspaceStore struct {
	cache     *caching.Cache
	backend   InventoryBackend
	adminUser string
	rollback  bool
	ttl       time.Duration

	mu sync.Mutex
}

func NewWorkspaceStore(c *caching.Cache, b InventoryBackend, adminUser string, rollback bool, ttl time.Duration) *WorkspaceStore {
	return &WorkspaceStore{
		cache:     c,
		backend:   b,
		adminUser: adminUser,
		rollback:  rollback,
		ttl:       ttl,
	}
}

// IsAdmin reports whether username is the privileged identity.
func (s *WorkspaceStore) IsAdmin(username string) bool {
	return username != "" && username == s.adminUser
}

// Open returns the workspace stored under id for username, creating a fresh
// one when none exists or the stored one belongs to another user. Every open
// refreshes the expiry.
func (s *WorkspaceStore) Open(id, username string) *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := workspaceKeyPrefix + id
	if obj, ok := s.cache.Memory().Get(key); ok {
		if ws, ok := obj.(*Workspace); ok && ws.Username() == username {
			s.cache.Memory().Set(key, ws, s.ttl)
			return ws
		}
	}

	ws := NewWorkspace(s.backend, WorkspaceOptions{
		Username: username,
		Admin:    s.IsAdmin(username),
		Rollback: s.rollback,
	})
	s.cache.Memory().Set(key, ws, s.ttl)
	return ws
}

// Drop forgets the workspace stored under id.
func (s *WorkspaceStore) Drop(id string) {
	s.cache.Memory().Delete(workspaceKeyPrefix + id)
}

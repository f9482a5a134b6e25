package credstore

import "sync"

// MemoryStore defines a public type used by authkit APIs.
//
// MemoryStore keeps the credential and tenant selector in process memory. Contents
// do not survive a restart; it exists for tests and short-lived embedded clients.
type MemoryStore struct {
	mu     sync.RWMutex
	token  string
	tenant string
	hasTok bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored credential, if any.
func (s *MemoryStore) Get() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasTok {
		return Credential{}, false
	}
	return Credential{BearerToken: s.token}, true
}

// Set persists the credential.
func (s *MemoryStore) Set(c Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = c.BearerToken
	s.hasTok = true
	return nil
}

// Clear removes the credential.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.hasTok = false
	return nil
}

// Tenant returns the selected tenant id.
func (s *MemoryStore) Tenant() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tenant
}

// SetTenant persists the tenant selector. An empty id clears the selection.
func (s *MemoryStore) SetTenant(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenant = id
	return nil
}

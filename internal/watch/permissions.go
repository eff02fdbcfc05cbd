package watch

import "sync"

// PermissionStore records which test files may be edited during a session.
// It is an explicit, injected dependency rather than process-global state:
// one store belongs to one watch session and is cleared when the session
// starts.
type PermissionStore struct {
	mu      sync.Mutex
	allowed map[string]bool
}

// NewPermissionStore creates an empty PermissionStore
func NewPermissionStore() *PermissionStore {
	return &PermissionStore{allowed: make(map[string]bool)}
}

// Grant allows edits to the given file path
func (s *PermissionStore) Grant(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowed[path] = true
}

// Allowed reports whether edits to path have been granted
func (s *PermissionStore) Allowed(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allowed[path]
}

// Granted returns all granted paths
func (s *PermissionStore) Granted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.allowed))
	for path := range s.allowed {
		out = append(out, path)
	}
	return out
}

// Clear resets the store. Called at the start of each watch session.
func (s *PermissionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowed = make(map[string]bool)
}
